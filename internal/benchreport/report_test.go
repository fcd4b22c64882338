package benchreport

import (
	"maps"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	s := NewSummary(t.TempDir())
	assert.Equal(t, "local", s.CommitID)
	assert.Equal(t, "dev", s.Branch)

	s.Add(Result{Name: "Insert", Category: "run", Operations: 10, NsPerOp: 12.5,
		Metrics: map[string]float64{"ops_per_sec": 8e7}})

	path := filepath.Join(t.TempDir(), "history", "latest.json")
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
}

func TestGitInfo(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "refs", "heads"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "refs", "heads", "main"), []byte("0123456789abcdef\n"), 0644))

	commit, branch := gitInfo(root)
	assert.Equal(t, "01234567", commit)
	assert.Equal(t, "main", branch)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("fedcba9876543210\n"), 0644))
	commit, branch = gitInfo(root)
	assert.Equal(t, "fedcba98", commit)
	assert.Equal(t, "dev", branch)
}

func TestTimer(t *testing.T) {
	tm := NewTimer(100)
	tm.Record(100, 1000*time.Nanosecond)
	tm.Record(100, 3000*time.Nanosecond)
	tm.Record(0, time.Second) // ignored

	r := tm.Result("Search", "run")
	assert.Equal(t, 200, r.Operations)
	assert.InDelta(t, 20.0, r.NsPerOp, 1e-9)
	assert.InDelta(t, 20.0, r.Metrics["batch_mean_ns"], 1e-9)
	assert.InDelta(t, 10.0, r.Metrics["batch_p50_ns"], 1e-9)
	assert.InDelta(t, 30.0, r.Metrics["batch_p99_ns"], 1e-9)
	assert.Greater(t, r.Metrics["batch_stddev_ns"], 0.0)
	assert.InDelta(t, 5e7, r.Metrics["ops_per_sec"], 1)
}

func TestTimerEmpty(t *testing.T) {
	r := NewTimer(10).Result("Delete", "run")
	assert.Zero(t, r.Operations)
	assert.Empty(t, r.Metrics)
}

func TestFingerprint(t *testing.T) {
	a := map[string]string{"js": "1995", "py": "1991", "C++": "1980"}
	b := maps.Clone(a)

	assert.Equal(t, Fingerprint(maps.All(a)), Fingerprint(maps.All(b)))

	b["py"] = "1990"
	assert.NotEqual(t, Fingerprint(maps.All(a)), Fingerprint(maps.All(b)))

	// moving bytes between key and value changes the fingerprint
	assert.NotEqual(t,
		Fingerprint(maps.All(map[string]string{"ab": "c"})),
		Fingerprint(maps.All(map[string]string{"a": "bc"})))
}
