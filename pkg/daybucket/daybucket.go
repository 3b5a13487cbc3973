// Package daybucket maps instants onto civil days of a fixed UTC offset.
//
// A bucket is the closed interval [Start, End] of one calendar day, where Start
// is local midnight expressed in UTC and End is one millisecond before the next
// day's Start. Buckets are the unit of accrual and of idempotency checks.
package daybucket

import "time"

// Day is the length of one civil day in a fixed offset calendar.
const Day = 24 * time.Hour

// Bucket is one civil day.
type Bucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Of returns the bucket of the civil day, in the fixed offset calendar, that
// contains t.
func Of(t time.Time, offset time.Duration) Bucket {
	local := t.UTC().Add(offset)
	y, m, d := local.Date()

	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-offset)

	return fromStart(start)
}

func fromStart(start time.Time) Bucket {
	return Bucket{
		Start: start,
		End:   start.Add(Day - time.Millisecond),
	}
}

// Contains reports whether t falls inside the bucket, bounds included.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// AddDays returns the bucket n days after b (before b for negative n).
func (b Bucket) AddDays(n int) Bucket {
	return fromStart(b.Start.Add(time.Duration(n) * Day))
}

// DaysBetween returns the number of whole days from a to b.
// It is negative when b is before a.
func DaysBetween(a, b Bucket) int {
	return int(b.Start.Sub(a.Start) / Day)
}

// Next returns the following day.
func (b Bucket) Next() Bucket { return b.AddDays(1) }

// Prev returns the preceding day.
func (b Bucket) Prev() Bucket { return b.AddDays(-1) }
