package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a
// date. Dates are unique and the series is always sorted, so lookups can
// binary-search.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Append adds a point to the history, keeping it sorted.
// An existing value at the same date is overwritten.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value recorded exactly at day.
func (h *History[T]) Get(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if !found {
		var zero T
		return zero, false
	}
	return h.values[i], true
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it. This is the forward-fill lookup: gaps in the series resolve to
// the last known point.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false // no point on or before the given day
	}
	return h.values[i-1], true
}

// Latest returns the latest date and value in the history, or zero values
// when the history is empty.
func (h *History[T]) Latest() (Date, T) {
	last := len(h.days) - 1
	if last < 0 {
		var zero T
		return Date{}, zero
	}
	return h.days[last], h.values[last]
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
