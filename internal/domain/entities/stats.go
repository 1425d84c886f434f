package entities

import "time"

// Stats contains the aggregates of a user's ledger.
type Stats struct {
	TotalBoulders      int           `json:"totalBoulders"`
	TotalPoints        int64         `json:"totalPoints"`
	CompletedToday     int           `json:"completedToday"`
	CompletedThisWeek  int           `json:"completedThisWeek"`
	CompletedThisMonth int           `json:"completedThisMonth"`
	ByColor            map[Color]int `json:"byColor"`
}

// NewStats returns zeroed stats with every color present.
func NewStats() Stats {
	byColor := make(map[Color]int, len(Colors))
	for _, c := range Colors {
		byColor[c] = 0
	}
	return Stats{ByColor: byColor}
}

// ComputeStats aggregates entries relative to now.
//
// Day and month windows follow the calendar of now's location; the week
// window is the trailing 7*24h. Entries without a resolvable boulder count
// toward the totals but not toward ByColor.
func ComputeStats(entries []ProgressEntry, now time.Time) Stats {
	stats := NewStats()

	loc := now.Location()
	y, m, d := now.Date()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	for _, e := range entries {
		count := max(0, e.Count)
		stats.TotalBoulders += count

		at := e.CompletedAt.In(loc)
		if ey, em, ed := at.Date(); ey == y && em == m && ed == d {
			stats.CompletedToday += count
		}
		if !at.Before(weekAgo) {
			stats.CompletedThisWeek += count
		}
		if !at.Before(monthStart) {
			stats.CompletedThisMonth += count
		}

		if c, ok := e.Color(); ok {
			if _, known := stats.ByColor[c]; known {
				stats.ByColor[c] += count
			}
		}
	}

	stats.TotalPoints = int64(stats.TotalBoulders) * PointsPerBoulder

	return stats
}
