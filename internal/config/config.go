// Package config loads per-project settings from metapush.yaml.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tnbrown/metapush/internal/alias"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// OutputConfig carries default serialization settings.
type OutputConfig struct {
	Indent    string `yaml:"indent,omitempty"`
	Overwrite bool   `yaml:"overwrite,omitempty"`
}

// ProjectConfig is the metapush.yaml shape.
//
// aliases:            extra spellings layered onto the built-in table
// defaults:           field values filled where content sources are silent
// merge_unnamed:      whether records without an identifying field merge
//                     with each other (reference behavior: true)
// output:             serialization defaults
type ProjectConfig struct {
	Aliases      map[string][]string `yaml:"aliases"`
	Defaults     map[string]string   `yaml:"defaults"`
	MergeUnnamed *bool               `yaml:"merge_unnamed"`
	Output       OutputConfig        `yaml:"output"`
}

const ConfigFileName = "metapush.yaml"

// Load reads metapush.yaml from the given directory.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads metapush.yaml, treating an absent file as an empty
// configuration. Other read or parse failures still surface.
func LoadOrDefault(sourcePath string) (*ProjectConfig, error) {
	cfg, err := Load(sourcePath)
	if errors.Is(err, ErrConfigNotFound) {
		return &ProjectConfig{}, nil
	}
	return cfg, err
}

// AliasTable returns the built-in alias table extended with the config's
// extra spellings. Built-in entries register first, so they win ambiguous
// alias lookups; config entries register in sorted canonical order to keep
// resolution deterministic.
func (c *ProjectConfig) AliasTable() *alias.Table {
	t := alias.Default()
	canonicals := make([]string, 0, len(c.Aliases))
	for canonical := range c.Aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	for _, canonical := range canonicals {
		t.Add(canonical, c.Aliases[canonical]...)
	}
	return t
}

// MergeUnnamedEntities reports whether records lacking an identifying field
// should merge with each other. Defaults to true when unset.
func (c *ProjectConfig) MergeUnnamedEntities() bool {
	if c.MergeUnnamed == nil {
		return true
	}
	return *c.MergeUnnamed
}
