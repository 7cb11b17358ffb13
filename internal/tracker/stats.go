package tracker

import (
	"math"
	"sort"
	"time"
)

// NewestLimit is the number of most recently updated applications reported in Stats.
const NewestLimit = 6

// Stats summarizes a user's application pipeline.
type Stats struct {
	Total   int            `json:"total"`
	Counts  map[Status]int `json:"counts"`
	Percent map[Status]int `json:"percent"`
	Last7   int            `json:"last7"`
	Last30  int            `json:"last30"`
	Newest  []Application  `json:"newest"`
}

// ComputeStats counts applications per status and recent activity relative to now.
// Percentages are rounded to the nearest integer; an empty pipeline reports zero everywhere.
func ComputeStats(apps []Application, now time.Time) Stats {
	stats := Stats{
		Total:   len(apps),
		Counts:  make(map[Status]int, len(Statuses)),
		Percent: make(map[Status]int, len(Statuses)),
		Newest:  []Application{},
	}
	for _, s := range Statuses {
		stats.Counts[s] = 0
	}

	for _, app := range apps {
		stats.Counts[app.Status]++

		days := daysBetween(app.UpdatedAt, now)
		if days <= 7 {
			stats.Last7++
		}
		if days <= 30 {
			stats.Last30++
		}
	}

	total := len(apps)
	if total == 0 {
		total = 1
	}
	for _, s := range Statuses {
		stats.Percent[s] = int(math.Floor(float64(stats.Counts[s])/float64(total)*100 + 0.5))
	}

	sorted := make([]Application, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if len(sorted) > NewestLimit {
		sorted = sorted[:NewestLimit]
	}
	stats.Newest = append(stats.Newest, sorted...)

	return stats
}

// daysBetween returns the whole number of days from a to b, rounded and never negative.
func daysBetween(a, b time.Time) int {
	days := math.Floor(b.Sub(a).Hours()/24 + 0.5)
	if days < 0 {
		return 0
	}
	return int(days)
}
