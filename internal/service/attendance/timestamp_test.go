package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		date  string
		clock string
	}{
		{"2024-03-04T09:15:00Z", "2024-03-04", "09:15"},
		{"2024-03-04T23:30:00+02:00", "2024-03-04", "23:30"},
		{"2024-03-04 09:15:00", "2024-03-04", "09:15"},
		{"2024-03-04 09:15", "2024-03-04", "09:15"},
		{"2024/03/04 09:15:00", "2024-03-04", "09:15"},
		{"3/4/2024, 9:15:00 AM", "2024-03-04", "09:15"},
		{"3/4/2024 9:15 PM", "2024-03-04", "21:15"},
		{"3/4/2024 21:15", "2024-03-04", "21:15"},
		{"07.03.2024 09:15", "2024-03-07", "09:15"},
		{"4.3.2024 09:00", "2024-03-04", "09:00"},
		{"4.3.2024 9:00:30", "2024-03-04", "09:00"},
		{"14.3.2024", "2024-03-14", "00:00"},
		{"Mar 4, 2024 9:15:00 AM", "2024-03-04", "09:15"},
		{"2024-03-04", "2024-03-04", "00:00"},
		{"  2024-03-04 09:15:00  ", "2024-03-04", "09:15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.date, got.Format("2006-01-02"))
			assert.Equal(t, tt.clock, got.Format("15:04"))
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2024-13-45 10:00", "yesterday"} {
		assert.Nil(t, parseTimestamp(input), input)
	}
}

func TestParseTimestamp_KeepsSourceOffset(t *testing.T) {
	got := parseTimestamp("2024-03-04T23:30:00-05:00")
	require.NotNil(t, got)

	_, offset := got.Zone()
	assert.Equal(t, -5*int(time.Hour/time.Second), offset)
	assert.Equal(t, time.Monday, got.Weekday())
}
