package attendance

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T, profile attendance.SiteProfile, policy attendance.Policy, input string) attendance.Report {
	t.Helper()
	report, err := NewPipeline(profile, policy).Run(strings.NewReader(input))
	require.NoError(t, err)
	return report
}

func policyFor(profile attendance.SiteProfile, exclude, low, total string) attendance.Policy {
	return profile.Policy(&exclude, &low, total)
}

func TestPipeline_ComplianceThresholdBoundaries(t *testing.T) {
	log := newAccessLog().
		entries("Low Three", marchMandatoryDays[:3]...).
		entries("Low Four", marchMandatoryDays[:4]...).
		entries("Std Seven", marchMandatoryDays[:7]...).
		entries("Std Eight", marchMandatoryDays[:8]...)

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "Low Three, Low Four", ""), log.String())

	want := map[string]bool{
		"Low Three": false,
		"Low Four":  true,
		"Std Seven": false,
		"Std Eight": true,
	}
	require.Len(t, report.Users, len(want))
	for user, compliant := range want {
		row, ok := findUser(report.Users, user)
		require.True(t, ok, user)
		require.NotNil(t, row.Compliant, user)
		assert.Equal(t, compliant, *row.Compliant, user)
	}

	require.NotNil(t, report.Statistics.CompliancePercent)
	assert.InDelta(t, 50.0, *report.Statistics.CompliancePercent, 1e-9)
}

func TestPipeline_LowRequirementScenario(t *testing.T) {
	log := newAccessLog().
		entries("A", marchMandatoryDays[:5]...).
		entries("B", marchMandatoryDays[:7]...)

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "A", ""), log.String())

	a, ok := findUser(report.Users, "A")
	require.True(t, ok)
	require.NotNil(t, a.Compliant)
	assert.True(t, *a.Compliant)
	assert.Equal(t, 5, a.MandatoryDaysTotal)

	b, ok := findUser(report.Users, "B")
	require.True(t, ok)
	require.NotNil(t, b.Compliant)
	assert.False(t, *b.Compliant)
	assert.Equal(t, 7, b.MandatoryDaysTotal)
	require.NotNil(t, b.TotalAttendance)
	assert.Equal(t, 7, *b.TotalAttendance)
}

func TestPipeline_Averages(t *testing.T) {
	// Mon 4th: A, B; Tue 5th: A; Thu 7th: A, B, C; Sat 9th: C.
	log := newAccessLog().
		entries("A", "2024-03-04", "2024-03-05", "2024-03-07").
		entries("B", "2024-03-04", "2024-03-07").
		entries("C", "2024-03-07", "2024-03-09")

	profile := defaultTestProfile()
	stats := runPipeline(t, profile, policyFor(profile, "", "", "10"), log.String()).Statistics

	require.NotNil(t, stats.AverageDailyAttendance)
	require.NotNil(t, stats.AverageMandatoryDayAttendance)
	require.NotNil(t, stats.AverageNonMandatoryDayAttendance)
	assert.InDelta(t, 1.75, *stats.AverageDailyAttendance, 1e-9)
	assert.InDelta(t, 2.5, *stats.AverageMandatoryDayAttendance, 1e-9)
	assert.InDelta(t, 1.0, *stats.AverageNonMandatoryDayAttendance, 1e-9)

	require.NotNil(t, stats.DailyAttendancePercent)
	require.NotNil(t, stats.MandatoryDayAttendancePercent)
	require.NotNil(t, stats.NonMandatoryDayAttendancePercent)
	assert.InDelta(t, 17.5, *stats.DailyAttendancePercent, 1e-9)
	assert.InDelta(t, 25.0, *stats.MandatoryDayAttendancePercent, 1e-9)
	assert.InDelta(t, 10.0, *stats.NonMandatoryDayAttendancePercent, 1e-9)

	assert.Equal(t, 4, stats.DaysObserved)
	assert.Equal(t, 3, stats.UsersObserved)
}

func TestPipeline_NonNumericTotalEmployees(t *testing.T) {
	log := newAccessLog().entries("A", "2024-03-04", "2024-03-07")

	profile := defaultTestProfile()
	stats := runPipeline(t, profile, policyFor(profile, "", "", "abc"), log.String()).Statistics

	assert.NotNil(t, stats.AverageDailyAttendance)
	assert.NotNil(t, stats.AverageMandatoryDayAttendance)
	assert.Nil(t, stats.TotalEmployees)
	assert.Nil(t, stats.DailyAttendancePercent)
	assert.Nil(t, stats.MandatoryDayAttendancePercent)
	assert.Nil(t, stats.NonMandatoryDayAttendancePercent)
}

func TestPipeline_SameDayEventsCountOnce(t *testing.T) {
	log := newAccessLog().
		entry("A", "2024-03-04", 0).
		entry("A", "2024-03-04", 240).
		entry("A", "2024-03-04", 480)

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", ""), log.String())

	assert.Equal(t, 3, report.Ingestion.EntryRows)
	assert.Equal(t, 1, report.Ingestion.DailyPresenceRows)
	require.Len(t, report.Users, 1)
	require.NotNil(t, report.Users[0].TotalAttendance)
	assert.Equal(t, 1, *report.Users[0].TotalAttendance)
	assert.Equal(t, 1, report.Users[0].MandatoryDaysTotal)
	require.Len(t, report.DailyCounts, 1)
	assert.Equal(t, 1, report.DailyCounts[0].Count)
}

func TestPipeline_SemicolonCategoryLog(t *testing.T) {
	input := "Event Category;User;Local Time\n" +
		"lock_opened;Ana Lima;04.03.2024 09:00\n" +
		"lock_opened;Ana Lima;07.03.2024 09:10\n" +
		"lock_closed;Bo Chen;07.03.2024 09:20\n"

	profile := branchTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", ""), input)

	assert.Equal(t, ";", report.Ingestion.Delimiter)
	assert.Equal(t, attendance.EntryRuleCategory, report.Ingestion.EntryRule)
	assert.Equal(t, 2, report.Ingestion.EntryRows)
	require.Len(t, report.Users, 1)
	assert.Equal(t, "Ana Lima", report.Users[0].User)
	assert.Equal(t, 2, report.Users[0].MandatoryDaysTotal)
}

func TestPipeline_FiltersRows(t *testing.T) {
	log := newAccessLog().
		entries("Kept", "2024-03-04").
		add(attendance.EventUnlock, "Denied", "Denied User", "2024-03-04 09:00:00").
		add("Door Forced", attendance.ResultGranted, "Wrong Event", "2024-03-04 09:00:00").
		entries("Front Desk", "2024-03-04").
		add(attendance.EventUnlock, attendance.ResultGranted, "Bad Clock", "sometime").
		add(attendance.EventUnlock, attendance.ResultGranted, "", "2024-03-04 09:00:00")

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "Front Desk", "", ""), log.String())

	assert.Equal(t, 6, report.Ingestion.RowsRead)
	assert.Equal(t, 1, report.Ingestion.EntryRows)
	assert.Equal(t, 1, report.Ingestion.InvalidTimestampRows)
	assert.Equal(t, 1, report.Ingestion.DailyPresenceRows)
	require.Len(t, report.Users, 1)
	assert.Equal(t, "Kept", report.Users[0].User)
}

func TestPipeline_UsersWithoutMandatoryDaysLeaveTheTable(t *testing.T) {
	log := newAccessLog().
		entries("Mandatory", "2024-03-04").
		entries("Weekend Only", "2024-03-09", "2024-03-10")

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", ""), log.String())

	_, ok := findUser(report.Users, "Weekend Only")
	assert.False(t, ok)
	assert.Equal(t, 2, report.Statistics.UsersObserved)

	// Still part of the daily and monthly breakdowns.
	var monthlyUsers []string
	for _, m := range report.Monthly {
		monthlyUsers = append(monthlyUsers, m.User)
	}
	assert.Equal(t, []string{"Mandatory", "Weekend Only"}, monthlyUsers)
}

func TestPipeline_TotalAttendanceMatchesDailyPresence(t *testing.T) {
	log := newAccessLog().
		entries("A", "2024-03-04", "2024-03-05", "2024-03-07", "2024-04-01").
		entries("B", "2024-03-07", "2024-03-11").
		entry("B", "2024-03-11", 60).
		entries("C", "2024-03-14")

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", ""), log.String())

	sum := 0
	for _, u := range report.Users {
		require.NotNil(t, u.TotalAttendance)
		sum += *u.TotalAttendance
	}
	assert.Equal(t, report.Ingestion.DailyPresenceRows, sum)
	assert.Equal(t, 7, sum)

	months := map[string]int{}
	for _, m := range report.Monthly {
		if m.User == "A" {
			months[m.Month.String()] = m.Days
		}
	}
	assert.Equal(t, map[string]int{"2024-03": 3, "2024-04": 1}, months)
}

func TestPipeline_EmptyResult(t *testing.T) {
	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "", "", "25"), "Event,Result,User,Browser time\n")

	stats := report.Statistics
	assert.Nil(t, stats.AverageDailyAttendance)
	assert.Nil(t, stats.AverageMandatoryDayAttendance)
	assert.Nil(t, stats.AverageNonMandatoryDayAttendance)
	assert.Nil(t, stats.DailyAttendancePercent)
	assert.Nil(t, stats.CompliancePercent)
	assert.Empty(t, report.Users)
	assert.Empty(t, report.DailyCounts)

	payload, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"average_daily_attendance":null`)
	assert.Contains(t, string(payload), `"users":[]`)
}

func TestPipeline_EverythingExcluded(t *testing.T) {
	log := newAccessLog().entries("Front Desk", marchMandatoryDays...)

	profile := defaultTestProfile()
	report := runPipeline(t, profile, policyFor(profile, "Front Desk", "", ""), log.String())

	assert.Nil(t, report.Statistics.AverageDailyAttendance)
	assert.Nil(t, report.Statistics.CompliancePercent)
	assert.Empty(t, report.Users)
}

func TestPipeline_Deterministic(t *testing.T) {
	log := newAccessLog().
		entries("Zed", "2024-03-07", "2024-03-04").
		entries("Amy", "2024-03-28", "2024-02-29", "2024-03-04").
		entries("Mia", "2024-03-05")

	profile := defaultTestProfile()
	policy := policyFor(profile, "", "Mia", "12")

	first, err := json.Marshal(runPipeline(t, profile, policy, log.String()))
	require.NoError(t, err)
	second, err := json.Marshal(runPipeline(t, profile, policy, log.String()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	report := runPipeline(t, profile, policy, log.String())
	assert.Equal(t, "Amy", report.Users[0].User)
	assert.Equal(t, "2024-02-29", report.DailyCounts[0].Date.String())
}
