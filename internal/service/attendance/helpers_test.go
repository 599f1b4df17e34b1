package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

func defaultTestProfile() attendance.SiteProfile {
	return attendance.SiteProfile{
		Name:                 "default",
		PreferredDelimiter:   ',',
		TimestampColumn:      attendance.ColumnBrowserTime,
		MandatoryWeekdays:    attendance.NewWeekdaySet(time.Monday, time.Thursday),
		NonMandatoryWeekdays: attendance.NewWeekdaySet(time.Sunday, time.Tuesday, time.Wednesday),
	}
}

func branchTestProfile() attendance.SiteProfile {
	p := defaultTestProfile()
	p.Name = "branch"
	p.PreferredDelimiter = ';'
	p.TimestampColumn = attendance.ColumnLocalTime
	return p
}

func testCatalog() attendance.ProfileCatalog {
	return attendance.ProfileCatalog{
		DefaultName: "default",
		Profiles: map[string]attendance.SiteProfile{
			"default": defaultTestProfile(),
			"branch":  branchTestProfile(),
		},
	}
}

// accessLog builds a comma-delimited log in the Event/Result/User layout.
type accessLog struct {
	rows []string
}

func newAccessLog() *accessLog {
	return &accessLog{}
}

func (l *accessLog) add(event, result, user, timestamp string) *accessLog {
	l.rows = append(l.rows, strings.Join([]string{event, result, user, timestamp}, ","))
	return l
}

// entry adds a granted unlock for user at 09:00 plus offsetMinutes on day.
func (l *accessLog) entry(user, day string, offsetMinutes int) *accessLog {
	return l.add(attendance.EventUnlock, attendance.ResultGranted, user, fmt.Sprintf("%s %02d:%02d:00", day, 9+offsetMinutes/60, offsetMinutes%60))
}

// entries adds one granted unlock per day.
func (l *accessLog) entries(user string, days ...string) *accessLog {
	for _, d := range days {
		l.entry(user, d, 0)
	}
	return l
}

func (l *accessLog) String() string {
	header := strings.Join([]string{
		attendance.ColumnEvent, attendance.ColumnResult, attendance.ColumnUser, attendance.ColumnBrowserTime,
	}, ",")
	return header + "\n" + strings.Join(l.rows, "\n") + "\n"
}

func (l *accessLog) Reader() *strings.Reader {
	return strings.NewReader(l.String())
}

// March 2024 mandatory days (Mondays and Thursdays).
var marchMandatoryDays = []string{
	"2024-03-04", "2024-03-07", "2024-03-11", "2024-03-14",
	"2024-03-18", "2024-03-21", "2024-03-25", "2024-03-28",
}

func findUser(rows []attendance.UserSummary, user string) (attendance.UserSummary, bool) {
	for _, r := range rows {
		if r.User == user {
			return r, true
		}
	}
	return attendance.UserSummary{}, false
}
