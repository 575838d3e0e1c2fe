package params

import (
	"fmt"
	"strings"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/record"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	defaults, err := ParseKeyValuePairs([]string{"units=meters", "type=text"})
//	// Returns: map[string]string{"units": "meters", "type": "text"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("default %q is not in key=value format (example: --set units=meters)", pair)
		}

		if key == "" {
			return nil, fmt.Errorf("default has empty key: %q", pair)
		}

		result[key] = value
	}

	return result, nil
}

// Merge combines default maps with later maps taking precedence. Used to
// layer --set flags over --set-file contents over config-file defaults.
func Merge(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// ApplyDefaults fills absent attribute fields on every entity's attributes
// with the given defaults. Default keys are canonicalized through the alias
// table; a field present on the attribute under any accepted spelling is
// left alone.
func ApplyDefaults(entities []*record.Record, defaults map[string]string, aliases *alias.Table) {
	if len(defaults) == 0 {
		return
	}

	for _, entity := range entities {
		for _, attr := range entity.ChildList(record.AttributesField) {
			for key, value := range defaults {
				canonical := aliases.Canonicalize(key)
				if _, ok := aliases.Get(attr, canonical); !ok {
					attr.Set(canonical, value)
				}
			}
		}
	}
}
