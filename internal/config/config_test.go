package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/tspyc/internal/grammar"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{"--input", dir})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Input)
	assert.Equal(t, "./out/", cfg.Output)
	assert.Equal(t, grammar.TS, cfg.Type)
	assert.False(t, cfg.Debug)
	assert.GreaterOrEqual(t, cfg.Cores, 1)
}

func TestLoadRejectsBadType(t *testing.T) {
	dir := t.TempDir()
	_, err := Load([]string{"--input", dir, "--type", "rust"})
	assert.Error(t, err)
}

func TestLoadRejectsMissingInput(t *testing.T) {
	_, err := Load([]string{"--input", filepath.Join(t.TempDir(), "does-not-exist")})
	assert.Error(t, err)
}

func TestLoadJSType(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{"--input", dir, "--type", "js", "--convert_snake_case"})
	require.NoError(t, err)
	assert.Equal(t, grammar.JS, cfg.Type)
	assert.True(t, cfg.ConvertSnakeCase)
}
