package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

// assembleUsers joins mandatory-day totals with total attendance and
// compliance. Users missing from the mandatory-day totals are dropped;
// values missing on the right stay nil.
func assembleUsers(agg aggregation, compliance map[string]bool) []attendance.UserSummary {
	users := make([]string, 0, len(agg.MandatoryDays))
	for user := range agg.MandatoryDays {
		users = append(users, user)
	}
	sort.Strings(users)

	rows := make([]attendance.UserSummary, 0, len(users))
	for _, user := range users {
		row := attendance.UserSummary{
			User:               user,
			MandatoryDaysTotal: agg.MandatoryDays[user],
		}
		if total, ok := agg.TotalAttendance[user]; ok {
			row.TotalAttendance = &total
		}
		if flag, ok := compliance[user]; ok {
			row.Compliant = &flag
		}
		rows = append(rows, row)
	}
	return rows
}

// compliancePercent counts only rows explicitly marked compliant; a nil
// flag counts against the percentage.
func compliancePercent(rows []attendance.UserSummary) *float64 {
	if len(rows) == 0 {
		return nil
	}
	compliant := 0
	for _, row := range rows {
		if row.Compliant != nil && *row.Compliant {
			compliant++
		}
	}
	pct := 100 * float64(compliant) / float64(len(rows))
	return &pct
}

func assembleMonthly(monthly map[string]map[attendance.MonthKey]int) []attendance.MonthlyAttendance {
	out := make([]attendance.MonthlyAttendance, 0, len(monthly))
	for user, months := range monthly {
		for month, days := range months {
			out = append(out, attendance.MonthlyAttendance{User: user, Month: month, Days: days})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].User != out[j].User {
			return out[i].User < out[j].User
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

func assembleReport(log normalizedLog, profile attendance.SiteProfile, policy attendance.Policy,
	entries []attendance.CanonicalEvent, presence []attendance.DailyPresence) attendance.Report {

	agg := aggregate(presence, policy)
	users := assembleUsers(agg, classifyCompliance(agg.MonthlyTotals, policy))

	return attendance.Report{
		Ingestion: attendance.IngestionSummary{
			Profile:              profile.Name,
			Delimiter:            string(log.Delimiter),
			EntryRule:            log.Rule,
			TimestampColumn:      log.TimestampColumn,
			RowsRead:             len(log.Events),
			EntryRows:            len(entries),
			InvalidTimestampRows: log.InvalidTimestamps,
			DailyPresenceRows:    len(presence),
		},
		Statistics: attendance.Statistics{
			AverageDailyAttendance:           agg.AverageDaily,
			AverageMandatoryDayAttendance:    agg.AverageMandatory,
			AverageNonMandatoryDayAttendance: agg.AverageNonMandatory,
			DailyAttendancePercent:           percentOf(agg.AverageDaily, policy.TotalEmployees),
			MandatoryDayAttendancePercent:    percentOf(agg.AverageMandatory, policy.TotalEmployees),
			NonMandatoryDayAttendancePercent: percentOf(agg.AverageNonMandatory, policy.TotalEmployees),
			CompliancePercent:                compliancePercent(users),
			TotalEmployees:                   policy.TotalEmployees,
			DaysObserved:                     len(agg.DailyCounts),
			UsersObserved:                    len(agg.TotalAttendance),
		},
		Users:       users,
		DailyCounts: agg.DailyCounts,
		Monthly:     assembleMonthly(agg.Monthly),
	}
}
