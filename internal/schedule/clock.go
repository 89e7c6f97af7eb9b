package schedule

import (
	"fmt"
	"time"
)

// DefaultTimezone is the community's civil zone when none is configured.
const DefaultTimezone = "America/Chicago"

// Clock converts between the community's civil wall-clock time and absolute
// UTC instants. All window-boundary arithmetic (start of day, end of day)
// happens in civil time first and is converted to instants afterwards, never
// the other way around, so offset transitions cannot skew day boundaries.
type Clock struct {
	loc *time.Location
}

// NewClock loads the named zone, falling back to the community default for
// an empty name.
func NewClock(timezone string) (*Clock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc}, nil
}

// Location exposes the configured civil zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// ToCivil converts an absolute instant to civil wall-clock time.
func (c *Clock) ToCivil(instant time.Time) time.Time {
	return instant.In(c.loc)
}

// ToAbsolute converts any time value to its UTC instant.
func (c *Clock) ToAbsolute(t time.Time) time.Time {
	return t.UTC()
}

// FromWallClock interprets naive date/time fields in the civil zone and
// returns the matching absolute instant.
func (c *Clock) FromWallClock(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, c.loc).UTC()
}

// ParseDate parses a YYYY-MM-DD value as a civil calendar date (midnight in
// the community zone).
func (c *Clock) ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// ParseDateTime parses an ISO-8601 datetime. Values carrying zone
// information convert directly; naive values are interpreted in the civil
// zone before conversion to an absolute instant.
func (c *Clock) ParseDateTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", raw)
}

// StartOfDay returns civil midnight of the instant's calendar day.
func (c *Clock) StartOfDay(instant time.Time) time.Time {
	civil := instant.In(c.loc)
	return time.Date(civil.Year(), civil.Month(), civil.Day(), 0, 0, 0, 0, c.loc)
}

// EndOfDay returns the last representable moment of the instant's civil day.
func (c *Clock) EndOfDay(instant time.Time) time.Time {
	civil := instant.In(c.loc)
	return time.Date(civil.Year(), civil.Month(), civil.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), c.loc)
}
