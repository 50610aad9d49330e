// Package clock holds the value types used to talk about simulated time.
// The scheduler never reads the wall clock; every Timestamp it sees is
// derived from an input record.
package clock

import (
	"time"

	"github.com/pkg/errors"
)

// Layout matches the wire format's "YYYY-MM-DD HH:MM:SS" pair.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Timestamp is an absolute point in time. Parse and FromTime produce whole
// seconds; Add keeps any sub-second part of its duration, so a job with a
// fractional length completes between whole seconds.
type Timestamp struct {
	t time.Time
}

// Zero reports whether ts is the unset zero value.
func (ts Timestamp) Zero() bool {
	return ts.t.IsZero()
}

// Parse builds a Timestamp from the date and time fields of an input line.
func Parse(date, clockTime string) (Timestamp, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+clockTime)
	if err != nil {
		return Timestamp{}, errors.Wrapf(err, "invalid timestamp %q %q", date, clockTime)
	}
	return Timestamp{t: t}, nil
}

// FromTime wraps an already-parsed time.Time, truncating to the second.
func FromTime(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Second)}
}

// Time returns the underlying time.Time.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Add returns ts shifted by d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{t: ts.t.Add(d)}
}

// Before reports whether ts occurs strictly before other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// After reports whether ts occurs strictly after other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.t.After(other.t)
}

// Sub returns the duration ts-other.
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return ts.t.Sub(other.t)
}

// Max returns the later of ts and other.
func Max(ts, other Timestamp) Timestamp {
	if other.After(ts) {
		return other
	}
	return ts
}

// DateTime renders ts as the "YYYY-MM-DD" and "HH:MM:SS" fields used on the
// wire, in both input and output.
func (ts Timestamp) DateTime() (date, clockTime string) {
	return ts.t.Format(DateLayout), ts.t.Format(TimeLayout)
}

// String renders ts as "YYYY-MM-DD HH:MM:SS".
func (ts Timestamp) String() string {
	date, clockTime := ts.DateTime()
	return date + " " + clockTime
}
