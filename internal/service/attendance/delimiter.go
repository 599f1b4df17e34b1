package attendance

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

// delimiterSampleSize is the leading sample inspected for auto-detection.
const delimiterSampleSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// detectDelimiter picks the field separator from a leading sample of the
// file. A candidate is consistent when it appears on the header line and the
// same number of times (outside quotes) on every complete line of the sample.
// truncated tells whether the sample ends mid-file, in which case its last
// line is ignored.
func detectDelimiter(sample []byte, truncated bool, preferred rune) (rune, error) {
	sample = bytes.TrimPrefix(sample, utf8BOM)
	lines := countPerLine(sample, truncated)
	if len(lines) == 0 {
		return 0, &attendance.IngestionError{
			Err:    attendance.ErrDelimiterUndetectable,
			Detail: "no header line found",
		}
	}

	var consistent []rune
	for i, candidate := range attendance.DelimiterCandidates {
		header := lines[0][i]
		if header == 0 {
			continue
		}
		ok := true
		for _, counts := range lines[1:] {
			if counts[i] != header {
				ok = false
				break
			}
		}
		if ok {
			consistent = append(consistent, candidate)
		}
	}

	switch len(consistent) {
	case 1:
		return consistent[0], nil
	case 0:
		return 0, &attendance.IngestionError{
			Err:    attendance.ErrDelimiterUndetectable,
			Detail: fmt.Sprintf("no candidate in %s splits the first %d lines consistently", candidateList(), len(lines)),
		}
	default:
		for _, c := range consistent {
			if c == preferred {
				return c, nil
			}
		}
		return 0, &attendance.IngestionError{
			Err:    attendance.ErrDelimiterUndetectable,
			Detail: fmt.Sprintf("both %s fit the sample; set an explicit delimiter on the site profile", candidateList()),
		}
	}
}

// countPerLine counts each delimiter candidate per logical line, ignoring
// blank lines and anything inside double quotes.
func countPerLine(sample []byte, truncated bool) [][]int {
	var (
		lines    [][]int
		current  = make([]int, len(attendance.DelimiterCandidates))
		inQuotes bool
		nonBlank bool
	)
	flush := func() {
		if nonBlank {
			lines = append(lines, current)
		}
		current = make([]int, len(attendance.DelimiterCandidates))
		nonBlank = false
	}

	for _, r := range string(sample) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			nonBlank = true
		case inQuotes:
		case r == '\n':
			flush()
		case r == '\r' || r == ' ' || r == '\t':
		default:
			nonBlank = true
			for i, c := range attendance.DelimiterCandidates {
				if r == c {
					current[i]++
				}
			}
		}
	}
	if !truncated {
		flush()
	}
	return lines
}

func candidateList() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range attendance.DelimiterCandidates {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%q", c)
	}
	buf.WriteByte('}')
	return buf.String()
}
