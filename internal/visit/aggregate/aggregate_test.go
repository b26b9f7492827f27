package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
)

func visitAt(created time.Time) *models.Visit {
	return &models.Visit{CreatedAt: created}
}

func TestDailySeries(t *testing.T) {
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)
	visits := []*models.Visit{
		visitAt(time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)),
		visitAt(time.Date(2024, time.June, 1, 17, 30, 0, 0, time.UTC)),
		visitAt(time.Date(2024, time.June, 3, 11, 0, 0, 0, time.UTC)),
		visitAt(time.Date(2024, time.June, 15, 8, 45, 0, 0, time.UTC)),
		visitAt(time.Date(2024, time.July, 2, 10, 0, 0, 0, time.UTC)),
	}

	series := DailySeries(visits, now)

	require.Len(t, series, 30, "June has 30 days")
	assert.Equal(t, "2024-06-01", series[0].Date)
	assert.Equal(t, "2024-06-30", series[29].Date)
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, 1, series[2].Count)
	assert.Equal(t, 1, series[14].Count)

	total := 0
	for i, day := range series {
		total += day.Count
		if i > 0 {
			assert.Less(t, series[i-1].Date, day.Date, "series is chronological")
		}
	}
	assert.Equal(t, 4, total, "July visit is excluded")
}

func TestDailySeries_LeapFebruary(t *testing.T) {
	now := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	series := DailySeries(nil, now)
	require.Len(t, series, 29)
	for _, day := range series {
		assert.Zero(t, day.Count)
	}
}

func TestDailySeries_LateNightVisitCountsForItsOwnDay(t *testing.T) {
	lima := time.FixedZone("America/Lima", -5*60*60)
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, lima)
	// 23:30 in Lima is 04:30 UTC the next day. The series counts the local
	// day because membership compares formatted prefixes without conversion.
	visits := []*models.Visit{
		visitAt(time.Date(2024, time.June, 5, 23, 30, 0, 0, lima)),
	}

	series := DailySeries(visits, now)
	assert.Equal(t, 1, series[4].Count)
	assert.Equal(t, 0, series[5].Count)
}

func TestTodayAndMonth(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 0, 0, 0, time.UTC)
	today := visitAt(time.Date(2024, time.June, 15, 7, 0, 0, 0, time.UTC))
	sameMonth := visitAt(time.Date(2024, time.June, 1, 7, 0, 0, 0, time.UTC))
	lastMonth := visitAt(time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC))
	visits := []*models.Visit{today, sameMonth, lastMonth}

	assert.Equal(t, []*models.Visit{today}, Today(visits, now))
	assert.Equal(t, []*models.Visit{today, sameMonth}, Month(visits, now))
}

func TestRecent(t *testing.T) {
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	oldest := visitAt(base)
	middle := visitAt(base.Add(24 * time.Hour))
	newest := visitAt(base.Add(48 * time.Hour))
	unstamped := visitAt(time.Time{})
	visits := []*models.Visit{oldest, unstamped, newest, middle}

	t.Run("returns newest first, truncated", func(t *testing.T) {
		got := Recent(visits, 3)
		require.Len(t, got, 3)
		assert.Equal(t, []*models.Visit{newest, middle, oldest}, got)
	})

	t.Run("zero timestamp sorts last", func(t *testing.T) {
		got := Recent(visits, len(visits))
		assert.Equal(t, unstamped, got[len(got)-1])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		Recent(visits, 1)
		assert.Equal(t, []*models.Visit{oldest, unstamped, newest, middle}, visits)
	})

	t.Run("shorter list returned whole", func(t *testing.T) {
		got := Recent(visits[:2], 3)
		assert.Len(t, got, 2)
	})
}
