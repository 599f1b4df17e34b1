package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Column names recognized in badge-access log exports.
const (
	ColumnEvent         = "Event"
	ColumnResult        = "Result"
	ColumnUser          = "User"
	ColumnBrowserTime   = "Browser time"
	ColumnUserFirstName = "User First Name"
	ColumnUserLastName  = "User Last Name"
	ColumnEventCategory = "Event Category"
	ColumnLocalTime     = "Local Time"
)

// Sentinel values that mark a successful unlock.
const (
	CategoryUnlock = "lock_opened"
	EventUnlock    = "Entry Unlock"
	ResultGranted  = "Granted"
)

// EntryRuleKind names the predicate used to decide whether a row is an entry.
type EntryRuleKind string

const (
	EntryRuleCategory   EntryRuleKind = "category"
	EntryRuleTypeResult EntryRuleKind = "type_result"
)

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the wall-clock date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() Weekday {
	return Weekday(d.Time().Weekday())
}

func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year, Month: d.Month}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey identifies a calendar month, e.g. 2024-03.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m MonthKey) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MonthKey) UnmarshalText(text []byte) error {
	t, err := time.Parse("2006-01", strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid month %q: %w", string(text), err)
	}
	*m = MonthKey{Year: t.Year(), Month: t.Month()}
	return nil
}

// RawEvent is one row of an uploaded log, with the user already joined from
// first and last name where the source splits them.
type RawEvent struct {
	Line      int
	Event     string
	Result    string
	Category  string
	User      string
	Timestamp string
}

// CanonicalEvent is the site-independent form of a RawEvent.
// Date, Weekday and Month are only meaningful when HasTimestamp is true.
type CanonicalEvent struct {
	Line         int
	User         string
	Timestamp    time.Time
	HasTimestamp bool
	IsEntry      bool
	Date         Date
	Weekday      Weekday
	Month        MonthKey
}

// NewCanonicalEvent derives the date fields from ts. A nil ts marks a row
// whose timestamp could not be parsed.
func NewCanonicalEvent(line int, user string, ts *time.Time, isEntry bool) CanonicalEvent {
	event := CanonicalEvent{
		Line:    line,
		User:    user,
		IsEntry: isEntry,
	}
	if ts != nil {
		event.Timestamp = *ts
		event.HasTimestamp = true
		event.Date = DateOf(*ts)
		event.Weekday = event.Date.Weekday()
		event.Month = event.Date.MonthKey()
	}
	return event
}

// DailyPresence records that a user had at least one entry on a date.
type DailyPresence struct {
	User    string
	Date    Date
	Weekday Weekday
	Month   MonthKey
}

type DailyCount struct {
	Date    Date    `json:"date"`
	Weekday Weekday `json:"weekday"`
	Count   int     `json:"count"`
}

type MonthlyAttendance struct {
	User  string   `json:"user"`
	Month MonthKey `json:"month"`
	Days  int      `json:"days"`
}

// UserSummary is one row of the per-user report. TotalAttendance and
// Compliant stay nil when the user is missing from the joined source.
type UserSummary struct {
	User               string `json:"user"`
	MandatoryDaysTotal int    `json:"mandatory_days_total"`
	TotalAttendance    *int   `json:"total_attendance"`
	Compliant          *bool  `json:"compliant"`
}

// Statistics holds the scalar results. Nil means "no data".
type Statistics struct {
	AverageDailyAttendance           *float64 `json:"average_daily_attendance"`
	AverageMandatoryDayAttendance    *float64 `json:"average_mandatory_day_attendance"`
	AverageNonMandatoryDayAttendance *float64 `json:"average_non_mandatory_day_attendance"`
	DailyAttendancePercent           *float64 `json:"daily_attendance_percent"`
	MandatoryDayAttendancePercent    *float64 `json:"mandatory_day_attendance_percent"`
	NonMandatoryDayAttendancePercent *float64 `json:"non_mandatory_day_attendance_percent"`
	CompliancePercent                *float64 `json:"compliance_percent"`
	TotalEmployees                   *int     `json:"total_employees"`
	DaysObserved                     int      `json:"days_observed"`
	UsersObserved                    int      `json:"users_observed"`
}

type IngestionSummary struct {
	Profile              string        `json:"profile"`
	Delimiter            string        `json:"delimiter"`
	EntryRule            EntryRuleKind `json:"entry_rule"`
	TimestampColumn      string        `json:"timestamp_column"`
	RowsRead             int           `json:"rows_read"`
	EntryRows            int           `json:"entry_rows"`
	InvalidTimestampRows int           `json:"invalid_timestamp_rows"`
	DailyPresenceRows    int           `json:"daily_presence_rows"`
}

// Report is the complete output of one analysis run.
type Report struct {
	Ingestion   IngestionSummary    `json:"ingestion"`
	Statistics  Statistics          `json:"statistics"`
	Users       []UserSummary       `json:"users"`
	DailyCounts []DailyCount        `json:"daily_counts"`
	Monthly     []MonthlyAttendance `json:"monthly_attendance"`
}
