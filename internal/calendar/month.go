// Package calendar holds the month-grid arithmetic: enumerating the days of a
// month and placing events on them by calendar day.
package calendar

import (
	"fmt"
	"time"

	"github.com/yewon-dev/gongjucal/internal/model"
)

const dayKeyLayout = "2006-01-02"

// MonthOf returns midnight on the first day of t's month, in t's location.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Prev returns the first day of the month before the given anchor.
func Prev(month time.Time) time.Time {
	return MonthOf(month).AddDate(0, -1, 0)
}

// Next returns the first day of the month after the given anchor.
func Next(month time.Time) time.Time {
	return MonthOf(month).AddDate(0, 1, 0)
}

// Days enumerates every calendar day of the anchor's month, first through
// last, ascending. No leading or trailing days from adjacent months are
// synthesized.
func Days(month time.Time) []time.Time {
	first := MonthOf(month)
	next := first.AddDate(0, 1, 0)

	var days []time.Time
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayKey normalizes a timestamp to its calendar day. Placement compares these
// strings, so time-of-day differences never affect which cell an event lands
// in.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// Group buckets events by calendar day, preserving list order within a day.
func Group(events []model.Event) map[string][]model.Event {
	byDay := make(map[string][]model.Event)
	for _, e := range events {
		key := DayKey(e.Date)
		byDay[key] = append(byDay[key], e)
	}
	return byDay
}

// Day is one rendered cell of the month grid.
type Day struct {
	Date   time.Time
	Events []model.Event
}

// Grid builds the cells for the anchor's month from the full event list.
func Grid(month time.Time, events []model.Event) []Day {
	byDay := Group(events)

	days := Days(month)
	cells := make([]Day, 0, len(days))
	for _, d := range days {
		cells = append(cells, Day{Date: d, Events: byDay[DayKey(d)]})
	}
	return cells
}

// Title formats a month anchor for the header, e.g. "2025년 6월".
func Title(month time.Time) string {
	return fmt.Sprintf("%d년 %d월", month.Year(), int(month.Month()))
}

// ParseMonth reads a "YYYY-MM" query value, falling back to now's month when
// the value is missing or malformed.
func ParseMonth(s string, now time.Time) time.Time {
	if s == "" {
		return MonthOf(now)
	}
	t, err := time.ParseInLocation("2006-01", s, now.Location())
	if err != nil {
		return MonthOf(now)
	}
	return t
}

// MonthKey is the inverse of ParseMonth for building navigation links.
func MonthKey(month time.Time) string {
	return month.Format("2006-01")
}
