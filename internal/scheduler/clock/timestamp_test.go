package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndRoundTrip(t *testing.T) {
	ts, err := Parse("2013-03-01", "00:00:27")
	require.NoError(t, err)
	assert.Equal(t, "2013-03-01 00:00:27", ts.String())
	date, clockTime := ts.DateTime()
	assert.Equal(t, "2013-03-01", date)
	assert.Equal(t, "00:00:27", clockTime)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("2013-03-01", "not-a-time")
	assert.Error(t, err)
}

func TestOrdering(t *testing.T) {
	a, err := Parse("2013-03-01", "00:00:00")
	require.NoError(t, err)
	b := a.Add(time.Second)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, time.Second, b.Sub(a))
	assert.Equal(t, b, Max(a, b))
	assert.Equal(t, b, Max(b, a))
}

func TestZero(t *testing.T) {
	var ts Timestamp
	assert.True(t, ts.Zero())
	parsed, _ := Parse("2013-03-01", "00:00:00")
	assert.False(t, parsed.Zero())
}
