package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verti90/commun-api/internal/models"
)

func yogaActivity(clock *Clock) models.Activity {
	return models.Activity{
		ID:         "activity-yoga",
		Name:       "Yoga",
		DateTime:   clock.FromWallClock(2024, time.January, 1, 7, 0, 0),
		Location:   "Sunroom",
		Recurrence: models.RecurrenceWeekly,
		Capacity:   1,
	}
}

func TestExpandWeeklyWindow(t *testing.T) {
	clock := newTestClock(t)
	activity := yogaActivity(clock)

	start, err := clock.ParseDate("2024-01-01")
	require.NoError(t, err)
	end := clock.EndOfDay(clock.FromWallClock(2024, time.January, 22, 0, 0, 0))

	occurrences := Expand(clock, activity, start, end)
	require.Len(t, occurrences, 4)

	for i, day := range []int{1, 8, 15, 22} {
		civil := clock.ToCivil(occurrences[i].Instant)
		assert.Equal(t, day, civil.Day())
		assert.Equal(t, 7, civil.Hour())
	}
}

func TestExpandSequenceStrictlyIncreasingWithinBounds(t *testing.T) {
	clock := newTestClock(t)
	activity := models.Activity{
		DateTime:   clock.FromWallClock(2024, time.March, 1, 10, 30, 0),
		Recurrence: models.RecurrenceDaily,
	}

	start := activity.DateTime
	end := start.Add(45 * 24 * time.Hour)

	occurrences := Expand(clock, activity, start, end)
	require.NotEmpty(t, occurrences)

	prev := time.Time{}
	for _, occ := range occurrences {
		assert.True(t, occ.Instant.After(prev), "occurrences must be strictly increasing")
		assert.False(t, occ.Instant.Before(activity.DateTime))
		assert.False(t, occ.Instant.After(end))
		prev = occ.Instant
	}
}

func TestExpandNoneEmitsAnchorOnly(t *testing.T) {
	clock := newTestClock(t)
	activity := models.Activity{
		DateTime:   clock.FromWallClock(2024, time.February, 14, 15, 0, 0),
		Recurrence: models.RecurrenceNone,
	}

	start := clock.StartOfDay(activity.DateTime)
	end := start.Add(60 * 24 * time.Hour)

	occurrences := Expand(clock, activity, start, end)
	require.Len(t, occurrences, 1)
	assert.Equal(t, activity.DateTime, occurrences[0].Instant)
}

func TestExpandNoneOutsideWindowEmitsNothing(t *testing.T) {
	clock := newTestClock(t)
	activity := models.Activity{
		DateTime:   clock.FromWallClock(2024, time.February, 14, 15, 0, 0),
		Recurrence: models.RecurrenceNone,
	}

	start := clock.FromWallClock(2024, time.March, 1, 0, 0, 0)
	end := start.Add(30 * 24 * time.Hour)

	occurrences := Expand(clock, activity, start, end)
	assert.Empty(t, occurrences)
}

func TestExpandMonthlyRollsOverYearBoundary(t *testing.T) {
	clock := newTestClock(t)
	activity := models.Activity{
		DateTime:   clock.FromWallClock(2023, time.December, 15, 9, 0, 0),
		Recurrence: models.RecurrenceMonthly,
	}

	start := clock.StartOfDay(activity.DateTime)
	end := clock.FromWallClock(2024, time.February, 28, 23, 0, 0)

	occurrences := Expand(clock, activity, start, end)
	require.Len(t, occurrences, 3)
	assert.Equal(t, time.December, occurrences[0].Instant.UTC().Month())
	assert.Equal(t, time.January, occurrences[1].Instant.UTC().Month())
	assert.Equal(t, time.February, occurrences[2].Instant.UTC().Month())
}

func TestExpandMonthlyMissingDayFallsBackFourWeeks(t *testing.T) {
	clock := newTestClock(t)
	anchor := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
	activity := models.Activity{
		DateTime:   anchor,
		Recurrence: models.RecurrenceMonthly,
	}

	start := anchor
	end := anchor.Add(90 * 24 * time.Hour)

	occurrences := Expand(clock, activity, start, end)
	require.True(t, len(occurrences) >= 3)

	// There is no Feb 31: the second occurrence is Jan 31 + 4 weeks.
	assert.Equal(t, anchor, occurrences[0].Instant)
	assert.Equal(t, anchor.Add(4*7*24*time.Hour), occurrences[1].Instant)
	assert.Equal(t, time.February, occurrences[1].Instant.UTC().Month())
	assert.Equal(t, 28, occurrences[1].Instant.UTC().Day())

	// From Feb 28 the plain same-day advance resumes.
	assert.Equal(t, time.March, occurrences[2].Instant.UTC().Month())
	assert.Equal(t, 28, occurrences[2].Instant.UTC().Day())
}

func TestExpandMidnightAnchorIncludedAtWindowStart(t *testing.T) {
	clock := newTestClock(t)
	midnight := clock.FromWallClock(2024, time.March, 5, 0, 0, 0)
	activity := models.Activity{
		DateTime:   midnight,
		Recurrence: models.RecurrenceDaily,
	}

	occurrences := Expand(clock, activity, midnight, midnight.Add(time.Hour))
	require.Len(t, occurrences, 1)

	// The stored instant keeps the exact midnight key; the civil view is
	// nudged one second forward.
	assert.Equal(t, midnight, occurrences[0].Instant)
	assert.Equal(t, 1, occurrences[0].Civil.Second())
}

func TestExpanderIsRestartable(t *testing.T) {
	clock := newTestClock(t)
	activity := yogaActivity(clock)

	start, err := clock.ParseDate("2024-01-01")
	require.NoError(t, err)
	end := clock.EndOfDay(clock.FromWallClock(2024, time.January, 22, 0, 0, 0))

	first := Expand(clock, activity, start, end)
	second := Expand(clock, activity, start, end)
	assert.Equal(t, first, second)
}
