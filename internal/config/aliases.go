package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/schedule-board/internal/schedule"
	"github.com/jonathan/schedule-board/internal/schemas"
)

// AliasOverrides is the on-disk shape of a header alias override file.
type AliasOverrides struct {
	Fields       map[string]string   `json:"fields"`
	DateKeywords map[string][]string `json:"date_keywords"`
}

// LoadAliasOverrides returns the built-in alias tables, merged with the
// overrides file at path when one is given. The file is schema-validated
// before use.
func LoadAliasOverrides(path string) (*schedule.Aliases, error) {
	aliases := schedule.DefaultAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias overrides %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.AliasOverrides(), data); err != nil {
		return nil, fmt.Errorf("invalid alias overrides %s: %w", path, err)
	}

	var overrides AliasOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse alias overrides %s: %w", path, err)
	}

	aliases.Merge(overrides.Fields, overrides.DateKeywords)
	return aliases, nil
}
