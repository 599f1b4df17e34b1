package attendance

import "github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"

// filterEntries keeps successful entries by known, non-excluded users that
// carry a usable timestamp. Order is preserved.
func filterEntries(events []attendance.CanonicalEvent, excluded attendance.UserSet) []attendance.CanonicalEvent {
	kept := make([]attendance.CanonicalEvent, 0, len(events))
	for _, ev := range events {
		if !ev.IsEntry || ev.User == "" || !ev.HasTimestamp {
			continue
		}
		if excluded.Contains(ev.User) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}
