package scrapers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fda-watch/scrapers"
)

func TestParseDateUnparseableReturnsNil(t *testing.T) {
	log := zap.NewNop()

	cases := []string{"", "   ", "\t\n", "-", "...", "not a date", "TBD"}
	for _, input := range cases {
		assert.Nil(t, scrapers.ParseDate(input, log), "input %q", input)
	}
}

func TestParseDateKnownFormats(t *testing.T) {
	log := zap.NewNop()

	cases := map[string]time.Time{
		"2023-05-01":   time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		"May 1, 2023":  time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		"5/1/2023":     time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		"May 25, 2011": time.Date(2011, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got := scrapers.ParseDate(input, log)
		require.NotNil(t, got, "input %q", input)
		assert.Equal(t, want.Year(), got.Year(), "input %q", input)
		assert.Equal(t, want.Month(), got.Month(), "input %q", input)
		assert.Equal(t, want.Day(), got.Day(), "input %q", input)
	}
}

func TestParseDateTrimsWhitespace(t *testing.T) {
	got := scrapers.ParseDate("  2023-05-01  ", zap.NewNop())
	require.NotNil(t, got)
	assert.Equal(t, 2023, got.Year())
}
