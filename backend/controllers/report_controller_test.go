package controllers

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usagereport/backend/config"
	"usagereport/backend/report"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint
		wantErr bool
	}{
		{"", nil, false},
		{"5", []uint{5}, false},
		{"3, 1,3,,", []uint{1, 3}, false},
		{"1,a", nil, true},
		{"0", nil, true},
		{"-2", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseIDList(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseWindow(t *testing.T) {
	cfg := &config.Config{Timezone: "UTC", ReportDefaultDays: 7, ReportMaxDays: 31}
	now := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end string
		wantWindow string
		wantErr    error
	}{
		{name: "default", wantWindow: "2024-03-04..2024-03-10"},
		{name: "explicit", start: "2024-03-01", end: "2024-03-03", wantWindow: "2024-03-01..2024-03-03"},
		{name: "start only", start: "2024-03-08", wantWindow: "2024-03-08..2024-03-10"},
		{name: "end only", end: "2024-02-29", wantWindow: "2024-02-23..2024-02-29"},
		{name: "reversed", start: "2024-03-05", end: "2024-03-01", wantErr: report.ErrInvalidWindow},
		{name: "too large", start: "2024-01-01", end: "2024-02-01", wantErr: ErrWindowTooLarge},
		{name: "max size", start: "2024-01-01", end: "2024-01-31", wantWindow: "2024-01-01..2024-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.start, tt.end, now, cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWindow, w.String())
		})
	}

	_, err := ParseWindow("March", "", now, cfg)
	assert.Error(t, err)
}

func TestParseWindow_Timezone(t *testing.T) {
	cfg := &config.Config{Timezone: "Asia/Tokyo", ReportDefaultDays: 1, ReportMaxDays: 31}
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	w, err := ParseWindow("", "", now, cfg)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11..2024-03-11", w.String())
}
