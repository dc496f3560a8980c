package date

import "iter"

// Range represents a closed range of calendar days, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Contains reports whether day falls inside the range, boundaries included.
func (r Range) Contains(day Date) bool { return !day.Before(r.From) && !day.After(r.To) }

// Days returns the number of calendar days in the range, boundaries included.
// A range of a single day has one day.
func (r Range) Days() int {
	if r.To.Before(r.From) {
		return 0
	}
	return r.To.Sub(r.From) + 1
}

// All returns an iterator over every calendar day in the range in ascending
// order, weekends and holidays included.
func (r Range) All() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for day := r.From; !day.After(r.To); day = day.Add(1) {
			if !yield(day) {
				return
			}
		}
	}
}
