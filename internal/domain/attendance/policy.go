package attendance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMonthlyThresholdStandard = 8
	DefaultMonthlyThresholdLow      = 4
)

// Weekday is a time.Weekday that encodes as its English name.
type Weekday time.Weekday

func (w Weekday) String() string {
	return time.Weekday(w).String()
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) == 3 && name == full[:3]) {
			return Weekday(d), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

type WeekdaySet map[Weekday]struct{}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	set := make(WeekdaySet, len(days))
	for _, d := range days {
		set[Weekday(d)] = struct{}{}
	}
	return set
}

func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	set := make(WeekdaySet, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		d, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		set[d] = struct{}{}
	}
	return set, nil
}

func (s WeekdaySet) Contains(d Weekday) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the days in Sunday-first order.
func (s WeekdaySet) Sorted() []Weekday {
	days := make([]Weekday, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (s WeekdaySet) Names() []string {
	days := s.Sorted()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return names
}

type UserSet map[string]struct{}

func NewUserSet(users ...string) UserSet {
	set := make(UserSet, len(users))
	for _, u := range users {
		if u = strings.TrimSpace(u); u != "" {
			set[u] = struct{}{}
		}
	}
	return set
}

// ParseUserList splits a comma-separated list of names, dropping blanks.
func ParseUserList(s string) UserSet {
	return NewUserSet(strings.Split(s, ",")...)
}

func (s UserSet) Contains(user string) bool {
	_, ok := s[user]
	return ok
}

func (s UserSet) Sorted() []string {
	users := make([]string, 0, len(s))
	for u := range s {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// ParseTotalEmployees returns nil unless s holds a positive integer.
// Anything else means percentages are reported as absent.
func ParseTotalEmployees(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// Policy is the attendance policy for a single analysis run.
type Policy struct {
	ExcludedUsers            UserSet
	LowRequirementUsers      UserSet
	MandatoryWeekdays        WeekdaySet
	NonMandatoryWeekdays     WeekdaySet
	TotalEmployees           *int
	MonthlyThresholdStandard int
	MonthlyThresholdLow      int
}

// ThresholdFor returns the monthly attendance-day threshold that applies to user.
func (p Policy) ThresholdFor(user string) int {
	if p.LowRequirementUsers.Contains(user) {
		return p.MonthlyThresholdLow
	}
	return p.MonthlyThresholdStandard
}
