package attendance

import "github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"

func isCompliant(days, threshold int) bool {
	return days >= threshold
}

// classifyCompliance flags each user whose summed monthly attendance meets
// their threshold.
func classifyCompliance(monthlyTotals map[string]int, policy attendance.Policy) map[string]bool {
	flags := make(map[string]bool, len(monthlyTotals))
	for user, days := range monthlyTotals {
		flags[user] = isCompliant(days, policy.ThresholdFor(user))
	}
	return flags
}
