package domain

import (
	"fmt"
	"sort"
)

// WorkHours summarizes one user's scheduled stickers on a single day. Each
// sticker counts as one hour, so minutes are always zero.
type WorkHours struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	TaskName string `json:"task_name"`
	Hours    int    `json:"hours"`
	Minutes  int    `json:"minutes"`
	Display  string `json:"display"`
}

// DailyWorkHours groups scheduled stickers by day and owner. Stickers that are
// not scheduled or carry no date are skipped. Entries within a day are sorted
// by username.
func DailyWorkHours(stickers []SharedSticker) map[string][]WorkHours {
	type groupKey struct {
		date   string
		userID int64
	}
	groups := make(map[groupKey]*WorkHours)
	for _, s := range stickers {
		if s.PositionType != PositionScheduled || s.ScheduledDate == nil || *s.ScheduledDate == "" {
			continue
		}
		k := groupKey{date: *s.ScheduledDate, userID: s.UserID}
		g, ok := groups[k]
		if !ok {
			g = &WorkHours{
				UserID:   s.UserID,
				Username: s.Username,
				TaskName: s.TaskName,
			}
			groups[k] = g
		}
		g.Hours++
	}

	out := make(map[string][]WorkHours, len(groups))
	for k, g := range groups {
		g.Display = fmt.Sprintf("%d:00", g.Hours)
		out[k.date] = append(out[k.date], *g)
	}
	for date := range out {
		entries := out[date]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Username < entries[j].Username
		})
	}
	return out
}
