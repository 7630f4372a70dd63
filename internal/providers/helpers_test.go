package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-09-14T08:00:00Z", time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)},
		{"2026-09-14T08:00:00+04:00", time.Date(2026, 9, 14, 8, 0, 0, 0, time.FixedZone("", 4*3600))},
		{"2026-09-14T08:00:00", time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)},
		{"2026-09-14 08:00", time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseTimeUnparseable(t *testing.T) {
	_, err := parseTime("next tuesday")
	assert.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT8H30M", 8*time.Hour + 30*time.Minute},
		{"PT45M", 45 * time.Minute},
		{"PT14H", 14 * time.Hour},
		{"pt2h5m", 2*time.Hour + 5*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseISODuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseISODuration("8h30m")
	assert.Error(t, err)
}

func TestJoinUpper(t *testing.T) {
	assert.Equal(t, "EK,QR", joinUpper([]string{"ek", " qr "}))
}
