package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theflywheel/dhash"
)

func TestCollectorRecordsTableEvents(t *testing.T) {
	c := New()
	tbl := dhash.MustNew(
		dhash.WithPolicy(dhash.Policy{GrowAt: 70, ShrinkBelow: 10, MinBaseSize: 4}),
		dhash.WithObserver(c),
	)

	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		tbl.Insert(k, k)
	}
	_, _ = tbl.Search("a")

	grows := testutil.ToFloat64(c.resizes.WithLabelValues("grow"))
	assert.Greater(t, grows, 0.0)
	assert.Equal(t, float64(tbl.Capacity()), testutil.ToFloat64(c.capacity))
	assert.Equal(t, 2, testutil.CollectAndCount(c.probes), "insert and search series")
}

func TestWriteText(t *testing.T) {
	c := New()
	c.Resized(dhash.ResizeEvent{Grow: true, NewCapacity: 101, Live: 36, Dropped: 2})
	c.Probed(dhash.OpDelete, 3)

	buf := &bytes.Buffer{}
	require.NoError(t, c.WriteText(buf))

	out := buf.String()
	assert.Contains(t, out, `dhash_resizes_total{direction="grow"} 1`)
	assert.Contains(t, out, "dhash_capacity 101")
	assert.Contains(t, out, "dhash_rehashed_entries_total 36")
	assert.Contains(t, out, "dhash_dropped_tombstones_total 2")
	assert.Contains(t, out, `dhash_probe_length_count{op="delete"} 1`)
}
