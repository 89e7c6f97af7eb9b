package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClock(t *testing.T) *Clock {
	t.Helper()
	clock, err := NewClock("America/Chicago")
	require.NoError(t, err)
	return clock
}

func TestNewClockDefaultsTimezone(t *testing.T) {
	clock, err := NewClock("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, clock.Location().String())
}

func TestNewClockRejectsUnknownZone(t *testing.T) {
	_, err := NewClock("Mars/Olympus_Mons")
	require.Error(t, err)
}

func TestParseDateIsCivilMidnight(t *testing.T) {
	clock := newTestClock(t)

	d, err := clock.ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, clock.Location(), d.Location())
	// January in Chicago is UTC-6.
	assert.Equal(t, 6, d.UTC().Hour())
}

func TestParseDateTimeNaiveUsesCivilZone(t *testing.T) {
	clock := newTestClock(t)

	got, err := clock.ParseDateTime("2024-01-08T07:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC), got)
}

func TestParseDateTimeZonedConvertsDirectly(t *testing.T) {
	clock := newTestClock(t)

	got, err := clock.ParseDateTime("2024-01-08T13:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC), got)

	got, err = clock.ParseDateTime("2024-06-08T07:00:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC), got)
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	clock := newTestClock(t)

	_, err := clock.ParseDateTime("next tuesday")
	require.Error(t, err)
}

func TestDayBoundariesComputedInCivilTime(t *testing.T) {
	clock := newTestClock(t)

	// 03:30 UTC on Jan 16 is still Jan 15 in Chicago.
	instant := time.Date(2024, 1, 16, 3, 30, 0, 0, time.UTC)

	start := clock.StartOfDay(instant)
	end := clock.EndOfDay(instant)

	assert.Equal(t, 15, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 15, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.After(start))
}

func TestFromWallClock(t *testing.T) {
	clock := newTestClock(t)

	got := clock.FromWallClock(2024, time.July, 4, 18, 0, 0)
	// July in Chicago is UTC-5.
	assert.Equal(t, time.Date(2024, 7, 4, 23, 0, 0, 0, time.UTC), got)
}
