package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbrown/metapush/internal/alias"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `
aliases:
  attribute_name:
    - feld
defaults:
  units: meters
merge_unnamed: false
output:
  indent: "    "
  overwrite: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"units": "meters"}, cfg.Defaults)
	assert.False(t, cfg.MergeUnnamedEntities())
	assert.Equal(t, "    ", cfg.Output.Indent)
	assert.True(t, cfg.Output.Overwrite)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "{{nope")
	_, err := Load(dir)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.MergeUnnamedEntities(), "unset policy defaults to merging unnamed entities")
	assert.Empty(t, cfg.Defaults)
}

func TestAliasTable_ExtendsBuiltins(t *testing.T) {
	cfg := &ProjectConfig{
		Aliases: map[string][]string{
			alias.AttributeName: {"feld"},
		},
	}

	table := cfg.AliasTable()
	assert.Equal(t, alias.AttributeName, table.Canonicalize("feld"))
	assert.Equal(t, alias.AttributeName, table.Canonicalize("column"), "built-in spellings survive")
}
