// Package timefmt parses raw message timestamps and renders the terse labels
// shown above message groups ("Today 3:04 PM", "Yesterday 9:12 AM", ...).
package timefmt

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLayout matches ISO-8601 UTC timestamps with millisecond precision,
// e.g. "2024-03-05T14:07:09.123Z".
const DefaultLayout = "2006-01-02T15:04:05.000Z"

const clockSuffix = "3:04 PM"

// ErrUnparsable is returned by Parse when a timestamp does not match the layout.
var ErrUnparsable = errors.New("timefmt: unparsable timestamp")

// Formatter converts raw timestamps to milliseconds and milliseconds to labels.
// The zero value is usable: it parses DefaultLayout in UTC and labels in the
// local time zone against the wall clock.
type Formatter struct {
	// Layout is the Go time layout raw timestamps are parsed with.
	Layout string

	// Location is the zone labels are computed in. Calendar-day comparisons
	// ("Today", "Yesterday") happen in this zone.
	Location *time.Location

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// New returns a formatter for layout in loc. Empty layout and nil loc fall
// back to the defaults.
func New(layout string, loc *time.Location) *Formatter {
	return &Formatter{Layout: layout, Location: loc}
}

func (f *Formatter) layout() string {
	if f == nil || f.Layout == "" {
		return DefaultLayout
	}
	return f.Layout
}

func (f *Formatter) location() *time.Location {
	if f == nil || f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f *Formatter) now() time.Time {
	if f == nil || f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// Parse returns the Unix milliseconds encoded by raw. Layouts without zone
// information are interpreted as UTC.
func (f *Formatter) Parse(raw string) (int64, error) {
	t, err := time.Parse(f.layout(), raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsable, raw)
	}
	return t.UnixMilli(), nil
}

// Millis is Parse with failures degraded to 0. A zero result carries no
// grouping signal; callers never see the parse error.
func (f *Formatter) Millis(raw string) int64 {
	ms, err := f.Parse(raw)
	if err != nil {
		return 0
	}
	return ms
}

// Format renders millis relative to the formatter's clock. The rules are
// evaluated in order:
//
//	same day of year, same year      -> "Today 3:04 PM"
//	one day of year earlier          -> "Yesterday 3:04 PM"
//	up to six days of year earlier   -> "Mon 3:04 PM"
//	same year                        -> "Mon, Jan 2, 3:04 PM"
//	otherwise                        -> "1/2/2006 3:04 PM"
//
// Day differences are plain day-of-year subtraction within a year, so Dec 31
// is never "Yesterday" on Jan 1.
func (f *Formatter) Format(millis int64) string {
	loc := f.location()
	t := time.UnixMilli(millis).In(loc)
	now := f.now().In(loc)

	sameYear := now.Year() == t.Year()
	days := now.YearDay() - t.YearDay()

	switch {
	case sameYear && days == 0:
		return "Today " + t.Format(clockSuffix)
	case sameYear && days == 1:
		return "Yesterday " + t.Format(clockSuffix)
	case sameYear && days <= 6:
		return t.Format("Mon " + clockSuffix)
	case sameYear:
		return t.Format("Mon, Jan 2, " + clockSuffix)
	default:
		return t.Format("1/2/2006 " + clockSuffix)
	}
}

// Label returns the display label for a raw timestamp. Unparsable input is
// returned unchanged.
func (f *Formatter) Label(raw string) string {
	ms, err := f.Parse(raw)
	if err != nil {
		return raw
	}
	return f.Format(ms)
}
