package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document structure for replacement seed files,
// which let deployments extend the built-in category tables without
// rebuilding. Unknown categories and malformed entries are skipped the
// same way Parse skips them.
type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
}

type seedCategory struct {
	Category     string            `yaml:"category"`
	Enabled      *bool             `yaml:"enabled,omitempty"`
	Replacements map[string]string `yaml:"replacements"`
}

// LoadSeedFile merges one YAML seed file into the configuration.
// Returns the number of replacement entries applied.
func (c *Config) LoadSeedFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	applied := 0
	for _, entry := range file.Categories {
		cat := Category(entry.Category)
		if !cat.Valid() {
			continue
		}
		rule := c.Rule(cat)
		if entry.Enabled != nil {
			rule.Enabled = *entry.Enabled
		}
		for source, target := range entry.Replacements {
			if source == "" {
				continue
			}
			rule.Replacements = upsertReplacement(rule.Replacements, source, target)
			applied++
		}
		c.Categories[cat] = rule
	}
	c.normalize()
	return applied, nil
}

// LoadSeedDir merges every *.yaml seed file found in dir, in name order.
// A file that fails to parse is logged and skipped; the rest still load.
func (c *Config) LoadSeedDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return 0, fmt.Errorf("list seed files: %w", err)
	}

	total := 0
	for _, file := range files {
		applied, err := c.LoadSeedFile(file)
		if err != nil {
			log.Printf("[config] skipping seed file %s: %v", file, err)
			continue
		}
		total += applied
	}
	return total, nil
}

// FindSeedDir searches the usual locations for a replacement seed
// directory. Returns "" when none exists.
func FindSeedDir() string {
	candidates := []string{
		os.Getenv("UNSMARTEN_SEED_DIR"),
		"./config/seeds",
		"./seeds",
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if entries, err := filepath.Glob(filepath.Join(candidate, "*.yaml")); err == nil && len(entries) > 0 {
			return candidate
		}
	}
	return ""
}
