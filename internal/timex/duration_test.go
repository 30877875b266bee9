package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var cfg struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"24h","b":1000000000}`), &cfg))

	assert.Equal(t, 24*time.Hour, cfg.A.Duration)
	assert.Equal(t, time.Second, cfg.B.Duration)
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"forever"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-10", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"2025-01-10T18:30", time.Date(2025, 1, 10, 18, 30, 0, 0, time.UTC)},
		{"2025-01-10T18:30:15", time.Date(2025, 1, 10, 18, 30, 15, 0, time.UTC)},
		{"2025-01-10T18:30:15Z", time.Date(2025, 1, 10, 18, 30, 15, 0, time.UTC)},
		{"2025-01-10T20:30:15+02:00", time.Date(2025, 1, 10, 18, 30, 15, 0, time.UTC)},
		{"2025-01-10T18:30:15.250Z", time.Date(2025, 1, 10, 18, 30, 15, 250_000_000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "tomorrow", "2025-13-01", "2025-02-30"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	ts := time.Date(2025, 1, 10, 2, 0, 0, 123_456_789, loc)
	assert.Equal(t, "2025-01-10T00:00:00.123Z", FormatISO(ts))
}
