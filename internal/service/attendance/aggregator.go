package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

// aggregation holds everything derived from the daily presence set.
type aggregation struct {
	DailyCounts []attendance.DailyCount

	AverageDaily        *float64
	AverageMandatory    *float64
	AverageNonMandatory *float64

	// MandatoryDays only lists users with at least one mandatory-day visit.
	MandatoryDays   map[string]int
	TotalAttendance map[string]int
	Monthly         map[string]map[attendance.MonthKey]int
	MonthlyTotals   map[string]int
}

func aggregate(presence []attendance.DailyPresence, policy attendance.Policy) aggregation {
	agg := aggregation{
		MandatoryDays:   make(map[string]int),
		TotalAttendance: make(map[string]int),
		Monthly:         make(map[string]map[attendance.MonthKey]int),
		MonthlyTotals:   make(map[string]int),
	}

	byDate := make(map[attendance.Date]int)
	for _, p := range presence {
		byDate[p.Date]++
		agg.TotalAttendance[p.User]++
		if policy.MandatoryWeekdays.Contains(p.Weekday) {
			agg.MandatoryDays[p.User]++
		}
		months, ok := agg.Monthly[p.User]
		if !ok {
			months = make(map[attendance.MonthKey]int)
			agg.Monthly[p.User] = months
		}
		months[p.Month]++
	}

	for user, months := range agg.Monthly {
		for _, days := range months {
			agg.MonthlyTotals[user] += days
		}
	}

	agg.DailyCounts = make([]attendance.DailyCount, 0, len(byDate))
	for date, count := range byDate {
		agg.DailyCounts = append(agg.DailyCounts, attendance.DailyCount{
			Date:    date,
			Weekday: date.Weekday(),
			Count:   count,
		})
	}
	sort.Slice(agg.DailyCounts, func(i, j int) bool {
		return agg.DailyCounts[i].Date.Before(agg.DailyCounts[j].Date)
	})

	agg.AverageDaily = meanCount(agg.DailyCounts, func(attendance.Weekday) bool { return true })
	agg.AverageMandatory = meanCount(agg.DailyCounts, policy.MandatoryWeekdays.Contains)
	agg.AverageNonMandatory = meanCount(agg.DailyCounts, policy.NonMandatoryWeekdays.Contains)

	return agg
}

// meanCount averages the counts of days whose weekday matches. It returns
// nil when no day matches.
func meanCount(counts []attendance.DailyCount, match func(attendance.Weekday) bool) *float64 {
	var sum, n int
	for _, c := range counts {
		if match(c.Weekday) {
			sum += c.Count
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := float64(sum) / float64(n)
	return &mean
}

// percentOf converts an average into a share of the workforce. Either
// side being absent yields nil.
func percentOf(average *float64, totalEmployees *int) *float64 {
	if average == nil || totalEmployees == nil || *totalEmployees <= 0 {
		return nil
	}
	pct := 100 * *average / float64(*totalEmployees)
	return &pct
}
