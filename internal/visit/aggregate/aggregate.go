// Package aggregate computes the dashboard views over a user's visits. All
// functions are pure: they take the visit list and a wall-clock now, and
// recompute from scratch on every call.
//
// Day membership is decided by formatting the visit's creation timestamp as
// YYYY-MM-DD in its own location and comparing prefixes. No zone conversion
// happens: a visit recorded at 23:30 local counts for that local day.
package aggregate

import (
	"sort"
	"time"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
)

const dayPrefix = "2006-01-02"

// DayCount is one day's visit total in the daily series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailySeries returns one entry per calendar day of now's month, first to
// last, in order, zero-filled for days without visits.
func DailySeries(visits []*models.Visit, now time.Time) []DayCount {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	days := first.AddDate(0, 1, -1).Day()

	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format(dayPrefix)
		series[i] = DayCount{Date: date}
		index[date] = i
	}
	for _, v := range visits {
		if i, ok := index[v.CreatedAt.Format(dayPrefix)]; ok {
			series[i].Count++
		}
	}
	return series
}

// Today returns the visits created on now's calendar day.
func Today(visits []*models.Visit, now time.Time) []*models.Visit {
	prefix := now.Format(dayPrefix)
	var out []*models.Visit
	for _, v := range visits {
		if v.CreatedAt.Format(dayPrefix) == prefix {
			out = append(out, v)
		}
	}
	return out
}

// Month returns the visits created in now's calendar month.
func Month(visits []*models.Visit, now time.Time) []*models.Visit {
	prefix := now.Format("2006-01")
	var out []*models.Visit
	for _, v := range visits {
		if v.CreatedAt.Format("2006-01") == prefix {
			out = append(out, v)
		}
	}
	return out
}

// Recent returns the n most recently created visits, newest first. A zero
// creation timestamp sorts as the epoch, so it lands at the end.
func Recent(visits []*models.Visit, n int) []*models.Visit {
	out := make([]*models.Visit, len(visits))
	copy(out, visits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
