package report

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

var ErrInvalidWindow = errors.New("report window ends before it starts")

// DateKey encodes t's calendar date as YYYYMMDD, the same shape the usage
// log query compares against.
func DateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func civil(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DayOffset is the number of calendar days from start's date to the given
// date. The clock time and zone offset of start are ignored.
func DayOffset(start time.Time, year, month, day int) int {
	sy, sm, sd := start.Date()
	return int((civil(year, month, day).Unix() - civil(sy, int(sm), sd).Unix()) / secondsPerDay)
}

func DaysBetween(start, end time.Time) int {
	y, m, d := end.Date()
	return DayOffset(start, y, int(m), d)
}

func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Window is an inclusive range of calendar days. Start and End are
// midnight in the reporting timezone.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	w := Window{Start: midnight(start, loc), End: midnight(end, loc)}
	if w.End.Before(w.Start) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

// LastDays is the window of n days ending on now's date.
func LastDays(now time.Time, n int, loc *time.Location) (Window, error) {
	if n < 1 {
		return Window{}, fmt.Errorf("%w: %d days", ErrInvalidWindow, n)
	}
	if loc == nil {
		loc = time.UTC
	}
	end := midnight(now, loc)
	return NewWindow(end.AddDate(0, 0, -(n-1)), end, loc)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Days is the highest day offset in the window, so a window has Days()+1
// columns.
func (w Window) Days() int {
	return DaysBetween(w.Start, w.End)
}

func (w Window) MinKey() int { return DateKey(w.Start) }
func (w Window) MaxKey() int { return DateKey(w.End) }

func (w Window) Location() *time.Location {
	return w.Start.Location()
}

func (w Window) Contains(offset int) bool {
	return offset >= 0 && offset <= w.Days()
}

// Dates returns the calendar date of every column.
func (w Window) Dates() []time.Time {
	days := w.Days()
	dates := make([]time.Time, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, w.Start.AddDate(0, 0, i))
	}
	return dates
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}
