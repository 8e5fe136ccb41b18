package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.GroupsBuilt.WithLabelValues("classic").Inc()
	m.GroupsBuilt.WithLabelValues("classic").Inc()
	m.VariantOverflow.WithLabelValues("classic").Add(3)
	m.DuplicateRejected.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GroupsBuilt.WithLabelValues("classic")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.VariantOverflow.WithLabelValues("classic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateRejected))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.DuplicateRejected.Inc()

	assert.Equal(t, 0.0, testutil.ToFloat64(b.DuplicateRejected))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.LookupNotFound.WithLabelValues("tubi").Inc()

	path := filepath.Join(t.TempDir(), "textfile", "catalog.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `catalog_lookup_not_found_total{mode="tubi"} 1`)

	assert.NoError(t, m.WriteTextfile(""))
}
