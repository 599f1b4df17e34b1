package attendance

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

// entryRule decides whether a row is a successful entry. Exactly one rule
// is chosen per file, from the columns its header provides.
type entryRule interface {
	Kind() attendance.EntryRuleKind
	IsEntry(ev attendance.RawEvent) bool
}

type categoryRule struct{}

func (categoryRule) Kind() attendance.EntryRuleKind { return attendance.EntryRuleCategory }

func (categoryRule) IsEntry(ev attendance.RawEvent) bool {
	return ev.Category == attendance.CategoryUnlock
}

type typeResultRule struct{}

func (typeResultRule) Kind() attendance.EntryRuleKind { return attendance.EntryRuleTypeResult }

func (typeResultRule) IsEntry(ev attendance.RawEvent) bool {
	return ev.Event == attendance.EventUnlock && ev.Result == attendance.ResultGranted
}

// columnLayout holds header positions; -1 marks an absent column.
type columnLayout struct {
	event     int
	result    int
	category  int
	user      int
	firstName int
	lastName  int
	timestamp int

	timestampColumn string
}

// normalizedLog is the Schema Normalizer output for one file.
type normalizedLog struct {
	Delimiter         rune
	Rule              attendance.EntryRuleKind
	TimestampColumn   string
	Events            []attendance.CanonicalEvent
	InvalidTimestamps int
}

// normalize reads a delimited access log and maps every row onto a
// CanonicalEvent, including rows that are not entries.
func normalize(r io.Reader, profile attendance.SiteProfile) (normalizedLog, error) {
	br := bufio.NewReaderSize(r, delimiterSampleSize)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delimiter := profile.Delimiter
	if delimiter == 0 {
		sample, err := br.Peek(delimiterSampleSize)
		truncated := true
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return normalizedLog{}, &attendance.IngestionError{
					Err:    attendance.ErrMalformedInput,
					Detail: fmt.Sprintf("unable to read sample: %v", err),
				}
			}
			truncated = false
		}
		delimiter, err = detectDelimiter(sample, truncated, profile.PreferredDelimiter)
		if err != nil {
			return normalizedLog{}, err
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return normalizedLog{}, &attendance.IngestionError{
				Err:    attendance.ErrMalformedInput,
				Detail: "file is empty",
			}
		}
		return normalizedLog{}, &attendance.IngestionError{
			Err:    attendance.ErrMalformedInput,
			Detail: fmt.Sprintf("unable to read header: %v", err),
		}
	}

	layout, rule, err := resolveLayout(header, profile)
	if err != nil {
		return normalizedLog{}, err
	}

	out := normalizedLog{
		Delimiter:       delimiter,
		Rule:            rule.Kind(),
		TimestampColumn: layout.timestampColumn,
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return normalizedLog{}, &attendance.IngestionError{
				Err:    attendance.ErrMalformedInput,
				Detail: err.Error(),
			}
		}

		line, _ := reader.FieldPos(0)
		raw := layout.rawEvent(line, record)
		ts := parseTimestamp(raw.Timestamp)
		if ts == nil {
			out.InvalidTimestamps++
		}
		out.Events = append(out.Events, attendance.NewCanonicalEvent(line, raw.User, ts, rule.IsEntry(raw)))
	}

	return out, nil
}

func resolveLayout(header []string, profile attendance.SiteProfile) (columnLayout, entryRule, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}
	column := func(name string) int {
		if idx, ok := index[name]; ok {
			return idx
		}
		return -1
	}

	layout := columnLayout{
		event:     column(attendance.ColumnEvent),
		result:    column(attendance.ColumnResult),
		category:  column(attendance.ColumnEventCategory),
		user:      column(attendance.ColumnUser),
		firstName: column(attendance.ColumnUserFirstName),
		lastName:  column(attendance.ColumnUserLastName),
		timestamp: -1,
	}

	var missing []string

	if layout.user < 0 && (layout.firstName < 0 || layout.lastName < 0) {
		missing = append(missing, fmt.Sprintf("%q or %q + %q",
			attendance.ColumnUser, attendance.ColumnUserFirstName, attendance.ColumnUserLastName))
	}

	candidates := []string{profile.TimestampColumn, attendance.ColumnBrowserTime, attendance.ColumnLocalTime}
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if idx := column(name); idx >= 0 {
			layout.timestamp = idx
			layout.timestampColumn = name
			break
		}
	}
	if layout.timestamp < 0 {
		missing = append(missing, fmt.Sprintf("timestamp column (%q or %q)",
			attendance.ColumnBrowserTime, attendance.ColumnLocalTime))
	}

	var rule entryRule
	switch {
	case layout.category >= 0:
		rule = categoryRule{}
	case layout.event >= 0 && layout.result >= 0:
		rule = typeResultRule{}
	default:
		missing = append(missing, fmt.Sprintf("%q or %q + %q",
			attendance.ColumnEventCategory, attendance.ColumnEvent, attendance.ColumnResult))
	}

	if len(missing) > 0 {
		return columnLayout{}, nil, &attendance.IngestionError{
			Err:    attendance.ErrMissingColumns,
			Detail: strings.Join(missing, "; "),
		}
	}

	return layout, rule, nil
}

func (l columnLayout) rawEvent(line int, record []string) attendance.RawEvent {
	user := getValue(record, l.user)
	if l.firstName >= 0 && l.lastName >= 0 {
		if joined := strings.TrimSpace(getValue(record, l.firstName) + " " + getValue(record, l.lastName)); joined != "" {
			user = joined
		}
	}
	return attendance.RawEvent{
		Line:      line,
		Event:     getValue(record, l.event),
		Result:    getValue(record, l.result),
		Category:  getValue(record, l.category),
		User:      user,
		Timestamp: getValue(record, l.timestamp),
	}
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
