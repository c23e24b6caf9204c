// Package config holds the typed settings that drive the scrub engine:
// general Unicode/whitespace flags plus per-category replacement rules.
// User-supplied documents are merged over built-in defaults field by field;
// invalid or unknown data never propagates past validation.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Category identifies one group of character replacements.
type Category string

const (
	CategorySmartQuotes Category = "smart_quotes"
	CategoryDashesEm    Category = "dashes_em"
	CategoryDashesEn    Category = "dashes_en"
	CategoryEllipsis    Category = "ellipsis"
	CategoryAngleQuotes Category = "angle_quotes"
	CategoryTrademarks  Category = "trademarks"
	CategoryMath        Category = "math"
	CategoryFractions   Category = "fractions"
	CategoryFootnotes   Category = "footnotes"
	CategoryUnits       Category = "units"
	CategoryCurrency    Category = "currency"
)

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c belongs to the fixed supported set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Categories returns the fixed supported category set in stable order.
// Callers use this to enumerate categories (e.g. "enable all").
func Categories() []Category {
	return []Category{
		CategorySmartQuotes,
		CategoryDashesEm,
		CategoryDashesEn,
		CategoryEllipsis,
		CategoryAngleQuotes,
		CategoryTrademarks,
		CategoryMath,
		CategoryFractions,
		CategoryFootnotes,
		CategoryUnits,
		CategoryCurrency,
	}
}

// CategoryDescriptions provides human-readable descriptions for UI/reports.
var CategoryDescriptions = map[Category]string{
	CategorySmartQuotes: `Smart quotes ("" '' -> straight quotes)`,
	CategoryDashesEm:    "Em dashes (— -> context-aware ASCII)",
	CategoryDashesEn:    "En dashes (– -> -)",
	CategoryEllipsis:    "Ellipsis (… -> ...)",
	CategoryAngleQuotes: "Angle quotes («» -> <<>>)",
	CategoryTrademarks:  "Trademarks (™® -> (TM)(R))",
	CategoryMath:        "Mathematical (≤≥ -> <= >=)",
	CategoryFractions:   "Fractions (½ -> 1/2)",
	CategoryFootnotes:   "Footnotes (†‡ -> * **)",
	CategoryUnits:       "Units (×÷‰ -> * / per thousand)",
	CategoryCurrency:    "Currency (€£¥ -> EUR/GBP/JPY)",
}

// Replacement maps one literal source string to its ASCII rendering.
// No regex semantics; matching is exact.
type Replacement struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Rule is the validated configuration for a single category.
// Replacements are kept longest-source-first so a shorter key can never
// fire inside a longer one.
type Rule struct {
	// Enabled controls whether the category is applied at all.
	Enabled bool `json:"enabled"`
	// Contextual switches the em-dash category to grammar-aware
	// disambiguation. Ignored by every other category.
	Contextual bool `json:"contextual,omitempty"`
	// Replacements is the literal substitution table, longest source first.
	Replacements []Replacement `json:"replacements"`
}

// General holds the category-independent normalization flags.
type General struct {
	// NormalizeUnicode applies NFKD decomposition after category passes.
	NormalizeUnicode bool `json:"normalize_unicode"`
	// RemoveCombiningChars strips combining marks left by decomposition.
	RemoveCombiningChars bool `json:"remove_combining_chars"`
	// RemoveNonASCII drops any residual non-ASCII codepoint. Always the
	// last pass, so category tables get first claim on known characters.
	RemoveNonASCII bool `json:"remove_non_ascii"`
	// NormalizeWhitespace collapses horizontal runs and excess blank lines.
	NormalizeWhitespace bool `json:"normalize_whitespace"`
}

// Config is an immutable snapshot of normalization settings. Build one
// with Default or Parse; do not mutate it after handing it to a scrubber.
type Config struct {
	General    General           `json:"general"`
	Categories map[Category]Rule `json:"character_replacements"`
}

// Default returns the built-in configuration: smart quotes, both dash
// categories (em dashes contextual) and ellipsis enabled, every other
// category present but disabled.
func Default() *Config {
	cfg := &Config{
		General: General{
			NormalizeUnicode:     true,
			RemoveCombiningChars: false,
			RemoveNonASCII:       false,
			NormalizeWhitespace:  false,
		},
		Categories: map[Category]Rule{
			CategorySmartQuotes: {
				Enabled: true,
				Replacements: []Replacement{
					{"“", `"`},
					{"”", `"`},
					{"‘", "'"},
					{"’", "'"},
				},
			},
			CategoryDashesEm: {
				Enabled:    true,
				Contextual: true,
				// The literal table is the non-contextual fallback.
				Replacements: []Replacement{
					{"—", "-"},
				},
			},
			CategoryDashesEn: {
				Enabled: true,
				Replacements: []Replacement{
					{"–", "-"},
				},
			},
			CategoryEllipsis: {
				Enabled: true,
				Replacements: []Replacement{
					{"…", "..."},
				},
			},
			CategoryAngleQuotes: {
				Enabled: false,
				Replacements: []Replacement{
					{"‹", "<"},
					{"›", ">"},
					{"«", "<<"},
					{"»", ">>"},
				},
			},
			CategoryTrademarks: {
				Enabled: false,
				Replacements: []Replacement{
					{"™", "(TM)"},
					{"®", "(R)"},
				},
			},
			CategoryMath: {
				Enabled: false,
				Replacements: []Replacement{
					{"≤", "<="},
					{"≥", ">="},
					{"≠", "!="},
					{"≈", "~"},
					{"±", "+/-"},
				},
			},
			CategoryFractions: {
				Enabled: false,
				Replacements: []Replacement{
					{"¼", "1/4"},
					{"½", "1/2"},
					{"¾", "3/4"},
				},
			},
			CategoryFootnotes: {
				Enabled: false,
				Replacements: []Replacement{
					{"†", "*"},
					{"‡", "**"},
				},
			},
			CategoryUnits: {
				Enabled: false,
				Replacements: []Replacement{
					{"×", "*"},
					{"÷", "/"},
					{"‰", " per thousand"},
					{"‱", " per ten thousand"},
				},
			},
			CategoryCurrency: {
				Enabled: false,
				Replacements: []Replacement{
					{"€", "EUR"},
					{"£", "GBP"},
					{"¥", "JPY"},
					{"¢", "cents"},
				},
			},
		},
	}
	cfg.normalize()
	return cfg
}

// Parse validates a JSON configuration document and merges it over the
// built-in defaults. Fields with the wrong type and unknown categories are
// dropped with the default retained; only a document that fails to parse as
// JSON at all is an error.
func Parse(raw []byte) (*Config, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg := Default()
	cfg.merge(doc)
	cfg.normalize()
	return cfg, nil
}

// merge overlays a decoded document onto cfg, field by field.
func (c *Config) merge(doc map[string]any) {
	if general, ok := doc["general"].(map[string]any); ok {
		if v, ok := general["normalize_unicode"].(bool); ok {
			c.General.NormalizeUnicode = v
		}
		if v, ok := general["remove_combining_chars"].(bool); ok {
			c.General.RemoveCombiningChars = v
		}
		if v, ok := general["remove_non_ascii"].(bool); ok {
			c.General.RemoveNonASCII = v
		}
		if v, ok := general["normalize_whitespace"].(bool); ok {
			c.General.NormalizeWhitespace = v
		}
	}

	categories, ok := doc["character_replacements"].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range categories {
		cat := Category(name)
		if !cat.Valid() {
			continue // unknown categories are ignored, not an error
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		rule := c.Categories[cat]
		if v, ok := entry["enabled"].(bool); ok {
			rule.Enabled = v
		}
		if v, ok := entry["contextual"].(bool); ok {
			rule.Contextual = v
		}
		if repl, ok := entry["replacements"].(map[string]any); ok {
			for source, target := range repl {
				t, ok := target.(string)
				if !ok || source == "" {
					continue // wrong type or empty key, keep default
				}
				rule.Replacements = upsertReplacement(rule.Replacements, source, t)
			}
		}
		c.Categories[cat] = rule
	}
}

// upsertReplacement overrides an existing source entry or appends a new one.
func upsertReplacement(table []Replacement, source, target string) []Replacement {
	for i := range table {
		if table[i].Source == source {
			table[i].Target = target
			return table
		}
	}
	return append(table, Replacement{Source: source, Target: target})
}

// normalize imposes longest-source-first ordering on every category table.
// Ties break lexicographically so the ordering is deterministic.
func (c *Config) normalize() {
	for cat, rule := range c.Categories {
		sort.SliceStable(rule.Replacements, func(i, j int) bool {
			a, b := rule.Replacements[i], rule.Replacements[j]
			if len(a.Source) != len(b.Source) {
				return len(a.Source) > len(b.Source)
			}
			return a.Source < b.Source
		})
		c.Categories[cat] = rule
	}
}

// Rule returns the validated rule for cat, falling back to the built-in
// default when the category is missing from this snapshot.
func (c *Config) Rule(cat Category) Rule {
	if rule, ok := c.Categories[cat]; ok {
		return rule
	}
	return Default().Categories[cat]
}

// Enabled reports whether a category is switched on.
func (c *Config) Enabled(cat Category) bool {
	return c.Rule(cat).Enabled
}

// ContextualDashes reports whether em dashes use grammar-aware
// disambiguation. False when the category itself is disabled.
func (c *Config) ContextualDashes() bool {
	rule := c.Rule(CategoryDashesEm)
	return rule.Enabled && rule.Contextual
}

// EnableAll switches every supported category on, returning c for chaining.
func (c *Config) EnableAll() *Config {
	for _, cat := range Categories() {
		rule := c.Rule(cat)
		rule.Enabled = true
		c.Categories[cat] = rule
	}
	return c
}

// Clone returns a deep copy, so callers can derive a variant configuration
// without touching a snapshot already handed to a scrubber.
func (c *Config) Clone() *Config {
	out := &Config{
		General:    c.General,
		Categories: make(map[Category]Rule, len(c.Categories)),
	}
	for cat, rule := range c.Categories {
		copied := rule
		copied.Replacements = append([]Replacement(nil), rule.Replacements...)
		out.Categories[cat] = copied
	}
	return out
}

// Fingerprint returns a stable digest of the validated configuration.
// Two snapshots with identical effective settings share a fingerprint,
// which makes scrub results safely cacheable per configuration.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "general:%t,%t,%t,%t;",
		c.General.NormalizeUnicode,
		c.General.RemoveCombiningChars,
		c.General.RemoveNonASCII,
		c.General.NormalizeWhitespace)
	for _, cat := range Categories() {
		rule := c.Rule(cat)
		fmt.Fprintf(h, "%s:%t,%t;", cat, rule.Enabled, rule.Contextual)
		for _, r := range rule.Replacements {
			fmt.Fprintf(h, "%q=%q;", r.Source, r.Target)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
