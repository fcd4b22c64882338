package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theflywheel/dhash"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, dhash.DefaultPolicy(), cfg.Policy())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhash.yaml")
	content := `
grow-at: 60
shrink-below: 20
min-base-size: 8
words: 500
seed: fixed
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.GrowAt)
	assert.Equal(t, 20, cfg.ShrinkBelow)
	assert.Equal(t, 8, cfg.MinBaseSize)
	assert.Equal(t, 500, cfg.Words)
	assert.Equal(t, "fixed", cfg.Seed)
	// untouched keys keep their defaults
	assert.Equal(t, 12, cfg.MinKeyLen)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhash.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"words": 42, "delete-ratio": 0.5}`), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Words)
	assert.Equal(t, 0.5, cfg.DeleteRatio)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhash.yml")
	require.NoError(t, os.WriteFile(path, []byte("words: 10\ngrow-at: 60\n"), 0644))

	t.Setenv("DHASH_WORDS", "20")
	t.Setenv("DHASH_MIN_BASE_SIZE", "16")
	t.Setenv("DHASH_CONFIG", path)

	cfg, err := Load(path, map[string]any{"min-base-size": 32})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.GrowAt, "file value")
	assert.Equal(t, 20, cfg.Words, "env beats file")
	assert.Equal(t, 32, cfg.MinBaseSize, "overrides beat env")
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("", map[string]any{
		"grow-at":      100,
		"max-key-len":  1,
		"delete-ratio": 2,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dhash.ErrInvalidPolicy))
	assert.Contains(t, err.Error(), "key length range")
	assert.Contains(t, err.Error(), "delete-ratio")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
