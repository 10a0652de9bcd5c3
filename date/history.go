package date

import "slices"

// History is a chronological series of values with at most one value per day.
// Its zero value is an empty History.
type History[T any] struct {
	points []point[T]
}

type point[T any] struct {
	on    Date
	value T
}

// search returns the position of day in h, and whether h has a value on it.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.points, day, func(p point[T], day Date) int { return p.on.Compare(day) })
}

// Len returns the number of days in h.
func (h *History[T]) Len() int { return len(h.points) }

// Append records v on day. A value already recorded that day is replaced.
func (h *History[T]) Append(day Date, v T) *History[T] {
	i, found := h.search(day)
	if found {
		h.points[i].value = v
		return h
	}
	h.points = slices.Insert(h.points, i, point[T]{day, v})
	return h
}

// First returns the earliest day of h, or the zero Date.
func (h *History[T]) First() Date {
	if len(h.points) == 0 {
		return Date{}
	}
	return h.points[0].on
}

// Get returns the value recorded on day.
func (h *History[T]) Get(day Date) (T, bool) {
	i, found := h.search(day)
	if !found {
		var zero T
		return zero, false
	}
	return h.points[i].value, true
}

// ValueAsOf returns the value recorded on day or else the latest one before,
// with the day it was recorded. It reports false if h starts after day.
func (h *History[T]) ValueAsOf(day Date) (Date, T, bool) {
	i, found := h.search(day)
	if !found {
		i-- // latest point before day
	}
	if i < 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.points[i].on, h.points[i].value, true
}
