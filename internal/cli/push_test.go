package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildPushConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")

	cfg, _, err := buildPushConfig(templatePath, pushFlagValues{
		content: []string{"columns.csv"},
	})
	require.NoError(t, err)

	assert.Equal(t, templatePath, cfg.TemplatePath)
	assert.Equal(t, []string{"columns.csv"}, cfg.ContentPaths)
	assert.Empty(t, cfg.OutputPath)
	assert.False(t, cfg.Overwrite)
	assert.True(t, cfg.MergeUnnamed, "merge policy defaults to the reference behavior")
	assert.Empty(t, cfg.Defaults)
}

func TestBuildPushConfig_LayersDefaults(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")
	writeFile(t, dir, "metapush.yaml", "defaults:\n  units: feet\n  source: config\n")
	envPath := writeFile(t, dir, "defaults.env", "units=meters\ntype=text\n")

	cfg, _, err := buildPushConfig(templatePath, pushFlagValues{
		content:  []string{"columns.csv"},
		setFiles: []string{envPath},
		set:      []string{"type=double"},
	})
	require.NoError(t, err)

	// metapush.yaml < --set-file < --set
	assert.Equal(t, map[string]string{
		"units":  "meters",
		"type":   "double",
		"source": "config",
	}, cfg.Defaults)
}

func TestBuildPushConfig_ConfigFileSettings(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")
	writeFile(t, dir, "metapush.yaml", "merge_unnamed: false\noutput:\n  overwrite: true\n")

	cfg, projectCfg, err := buildPushConfig(templatePath, pushFlagValues{
		content: []string{"columns.csv"},
	})
	require.NoError(t, err)

	assert.False(t, cfg.MergeUnnamed)
	assert.True(t, cfg.Overwrite, "config-file overwrite applies without the flag")
	assert.NotNil(t, projectCfg)
}

func TestBuildPushConfig_InvalidSetValue(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")

	_, _, err := buildPushConfig(templatePath, pushFlagValues{
		content: []string{"columns.csv"},
		set:     []string{"no-equals"},
	})
	assert.Error(t, err)
}

func TestBuildPushConfig_MissingSetFile(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")

	_, _, err := buildPushConfig(templatePath, pushFlagValues{
		content:  []string{"columns.csv"},
		setFiles: []string{filepath.Join(dir, "missing.env")},
	})
	assert.Error(t, err)
}

func TestBuildPushConfig_BrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, dir, "meta.xml", "<metadata/>")
	writeFile(t, dir, "metapush.yaml", "{{nope")

	_, _, err := buildPushConfig(templatePath, pushFlagValues{
		content: []string{"columns.csv"},
	})
	assert.Error(t, err)
}
