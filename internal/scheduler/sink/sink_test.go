package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
)

func TestFileSinkFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "utilization.log")
	s, err := NewFileSink(path, Rotation{})
	require.NoError(t, err)

	at, err := clock.Parse("2013-03-01", "00:00:27")
	require.NoError(t, err)
	require.NoError(t, s.Record(Entry{At: at, Queue: record.Export, PoolSize: 40, FreeReal: 16, MinIdleCount: 16}))
	require.NoError(t, s.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2013-03-01 00:00:27 export 40 16 16\n", string(contents))
}

func TestNoopSink(t *testing.T) {
	var s Noop
	assert.NoError(t, s.Record(Entry{}))
	assert.NoError(t, s.Close())
}
