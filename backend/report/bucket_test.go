package report

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	assert.Equal(t, 20240301, DateKey(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 19991231, DateKey(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestDayOffset(t *testing.T) {
	start := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		year, month, day int
		want             int
	}{
		{"same day", 2024, 2, 27, 0},
		{"leap day", 2024, 2, 29, 2},
		{"month boundary", 2024, 3, 1, 3},
		{"before start", 2024, 2, 26, -1},
		{"next year", 2025, 2, 27, 366},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayOffset(start, tt.year, tt.month, tt.day))
		})
	}
}

func TestDayOffset_FarFromStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 400 Gregorian years are exactly 146097 days.
	assert.Equal(t, 2*146097, DayOffset(start, 2824, 1, 1))
	assert.Equal(t, -146097, DayOffset(start, 1624, 1, 1))
}

func TestDayOffset_AcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2024-03-31 is a 23 hour day in Berlin, 2024-10-27 a 25 hour one.
	spring := time.Date(2024, 3, 30, 0, 0, 0, 0, berlin)
	assert.Equal(t, 2, DayOffset(spring, 2024, 4, 1))

	autumn := time.Date(2024, 10, 26, 0, 0, 0, 0, berlin)
	assert.Equal(t, 2, DayOffset(autumn, 2024, 10, 28))
}

func TestNewWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 3, 2, 0, 0, 0, time.UTC)

	w, err := NewWindow(start, end, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Days())
	assert.Equal(t, 20240301, w.MinKey())
	assert.Equal(t, 20240303, w.MaxKey())
	assert.Equal(t, "2024-03-01..2024-03-03", w.String())
	assert.True(t, w.Contains(0))
	assert.True(t, w.Contains(2))
	assert.False(t, w.Contains(3))
	assert.False(t, w.Contains(-1))

	single, err := NewWindow(start, start, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, single.Days())
	assert.Len(t, single.Dates(), 1)

	_, err = NewWindow(end, start, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestNewWindow_UsesReportTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in Tokyo.
	late := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	w, err := NewWindow(late, late, tokyo)
	require.NoError(t, err)
	assert.Equal(t, 20240302, w.MinKey())
	assert.Equal(t, tokyo, w.Location())
}

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	w, err := LastDays(now, 7, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 20240225, w.MinKey())
	assert.Equal(t, 20240302, w.MaxKey())
	assert.Equal(t, 6, w.Days())

	_, err = LastDays(now, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindow_DatesAcrossYear(t *testing.T) {
	w, err := NewWindow(
		time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.UTC,
	)
	require.NoError(t, err)

	dates := w.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, "2023-12-30", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2024-01-02", dates[3].Format("2006-01-02"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 20240301, DateKey(d))

	_, err = ParseDate("01.03.2024", time.UTC)
	assert.Error(t, err)
}
