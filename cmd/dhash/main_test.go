package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theflywheel/dhash/internal/benchreport"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_HANDLER", "text")
	t.Setenv("LOG_LEVEL", "error")

	buf := &bytes.Buffer{}
	app := newApp()
	app.Writer = buf
	err := app.Run(context.Background(), append([]string{"dhash"}, args...))
	return buf.String(), err
}

func TestRunCommand(t *testing.T) {
	out, err := runApp(t, "run", "--words", "300", "--seed", "cli", "--delete-ratio", "0.5", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "Inserted 300 words, deleted 150")
	assert.Contains(t, out, "Fingerprint:")
	assert.Contains(t, out, "dhash_probe_length")
}

func TestRunCommandRejectsBadPolicy(t *testing.T) {
	_, err := runApp(t, "run", "--grow-at", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grow-at")
}

func TestBenchAndCompare(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	current := filepath.Join(dir, "current.json")

	_, err := runApp(t, "bench", "--words", "200", "--seed", "b", "--rounds", "2", "--out", base)
	require.NoError(t, err)

	s, err := benchreport.Load(base)
	require.NoError(t, err)
	assert.Len(t, s.Results, 6)
	assert.Equal(t, "Insert/round1", s.Results[0].Name)

	// comparing a summary with itself finds no regressions
	out, err := runApp(t, "compare", base, base)
	require.NoError(t, err)
	assert.Contains(t, out, "significant: 0")

	slow := *s
	slow.Results = nil
	for _, r := range s.Results {
		r.NsPerOp *= 2
		slow.Results = append(slow.Results, r)
	}
	require.NoError(t, benchreport.Save(current, &slow))

	out, err = runApp(t, "compare", base, current)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "significant performance regressions")
	assert.Contains(t, out, "REGRESSION")
}

func TestCompareNeedsTwoFiles(t *testing.T) {
	_, err := runApp(t, "compare", "only-one.json")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
