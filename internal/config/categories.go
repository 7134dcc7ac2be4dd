package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Category defines one independently deduplicated notification stream:
// a keyword, a target chat and an optional sender classification map.
// Categories are static configuration; they are loaded once at startup
// and never mutated at runtime.
type Category struct {
	Name    string `yaml:"name"`
	Keyword string `yaml:"keyword"`
	// ChatID overrides the default mail chat when non-zero.
	ChatID int64 `yaml:"chat_id,omitempty"`
	// MatchFold makes the keyword match case-insensitive (used by the
	// labeled course stream; the generic streams match exactly).
	MatchFold bool `yaml:"match_fold,omitempty"`
	// Classify maps a sender fragment to a human-readable label.
	Classify map[string]string `yaml:"classify,omitempty"`
}

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories parses the YAML category file.
func LoadCategories(path string) ([]Category, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f categoriesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%s: no categories defined", path)
	}
	seen := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		if c.Name == "" || c.Keyword == "" {
			return nil, fmt.Errorf("%s: category needs both name and keyword", path)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%s: duplicate category %q", path, c.Name)
		}
		seen[c.Name] = true
	}
	return f.Categories, nil
}
