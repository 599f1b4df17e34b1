package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

type presenceKey struct {
	user string
	date attendance.Date
}

// reduceDailyPresence collapses entries to one mark per (user, date),
// sorted by date and then user.
func reduceDailyPresence(entries []attendance.CanonicalEvent) []attendance.DailyPresence {
	seen := make(map[presenceKey]struct{}, len(entries))
	presence := make([]attendance.DailyPresence, 0, len(entries))

	for _, ev := range entries {
		key := presenceKey{user: ev.User, date: ev.Date}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		presence = append(presence, attendance.DailyPresence{
			User:    ev.User,
			Date:    ev.Date,
			Weekday: ev.Weekday,
			Month:   ev.Month,
		})
	}

	sort.Slice(presence, func(i, j int) bool {
		if presence[i].Date != presence[j].Date {
			return presence[i].Date.Before(presence[j].Date)
		}
		return presence[i].User < presence[j].User
	})
	return presence
}
