package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limaCalendar(t *testing.T, nowUTC time.Time) *Calendar {
	t.Helper()
	cal, err := LoadCalendar("America/Lima")
	require.NoError(t, err)
	cal.Now = func() time.Time { return nowUTC }
	return cal
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestBuildDateRange(t *testing.T) {
	cal := limaCalendar(t, utc("2024-05-10T15:00:00Z"))

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "start only spans thirty days forward",
			start:     "2024-03-01",
			wantStart: utc("2024-03-01T05:00:00Z"),
			wantEnd:   utc("2024-04-01T04:59:59.999999999Z"),
		},
		{
			name:      "end only spans thirty days back",
			end:       "2024-03-31",
			wantStart: utc("2024-03-01T05:00:00Z"),
			wantEnd:   utc("2024-04-01T04:59:59.999999999Z"),
		},
		{
			name:      "both within six months",
			start:     "2024-01-15",
			end:       "2024-02-15",
			wantStart: utc("2024-01-15T05:00:00Z"),
			wantEnd:   utc("2024-02-16T04:59:59.999999999Z"),
		},
		{
			name:      "span over six months is clamped",
			start:     "2024-01-01",
			end:       "2024-12-31",
			wantStart: utc("2024-01-01T05:00:00Z"),
			wantEnd:   utc("2024-07-02T04:59:59.999999999Z"),
		},
		{
			name:      "neither covers the last thirty days",
			wantStart: utc("2024-04-10T05:00:00Z"),
			wantEnd:   utc("2024-05-11T04:59:59.999999999Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := cal.BuildDateRange(tt.start, tt.end)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(r.Start), "start: got %s", r.Start)
			assert.True(t, tt.wantEnd.Equal(r.End), "end: got %s", r.End)
		})
	}
}

func TestBuildDateRangeRejectsBadInput(t *testing.T) {
	cal := limaCalendar(t, utc("2024-05-10T15:00:00Z"))

	_, err := cal.BuildDateRange("2024-13-01", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = cal.BuildDateRange("2024-05-10", "2024-05-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCalendarBoundaries(t *testing.T) {
	// 02:00 UTC on Saturday is still Friday evening in Lima.
	cal := limaCalendar(t, utc("2024-05-11T02:00:00Z"))
	ts := cal.Now()

	sameInstant(t, utc("2024-05-10T05:00:00Z"), cal.StartOfDay(ts))
	sameInstant(t, utc("2024-05-11T04:59:59.999999999Z"), cal.EndOfDay(ts))
	sameInstant(t, utc("2024-05-05T05:00:00Z"), cal.StartOfWeek(ts))
	sameInstant(t, utc("2024-05-01T05:00:00Z"), cal.StartOfMonth(ts))

	today := cal.Today()
	sameInstant(t, utc("2024-05-10T05:00:00Z"), today.Start)

	day, err := cal.Day("2024-02-29")
	require.NoError(t, err)
	sameInstant(t, utc("2024-02-29T05:00:00Z"), day.Start)
	sameInstant(t, utc("2024-03-01T04:59:59.999999999Z"), day.End)
}
