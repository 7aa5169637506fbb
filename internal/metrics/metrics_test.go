package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	m := New()

	m.RecordOperation("add_item", "ok", time.Millisecond)
	m.RecordOperation("add_item", "ok", time.Millisecond)
	m.RecordOperation("add_item", "validation_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("add_item", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("add_item", "validation_error")))
}

func TestRecordSnapshotAndSession(t *testing.T) {
	m := New()

	m.RecordSnapshot(true)
	m.RecordSnapshot(false)
	m.RecordSnapshot(false)
	m.SetSession(3, 12.5)
	m.RecordPersistenceFailure("autosave")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotsUpdated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LineItems))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.TotalDue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("autosave")))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.SetSession(1, 2)

	path := filepath.Join(t.TempDir(), "tally.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tally_session_line_items 1"))
}
