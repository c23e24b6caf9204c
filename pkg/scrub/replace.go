package scrub

import (
	"strings"

	"github.com/unsmarten/unsmarten/pkg/config"
)

// compiledRule is an immutable substitution table built once per scrubber
// from the validated configuration. Application never mutates it, which is
// what makes repeated scrubbing a no-op per category.
type compiledRule struct {
	category config.Category
	entries  []config.Replacement // longest source first, from validation
}

// compileRule validates a category table. A malformed entry (empty source,
// or a target that re-introduces its own source and would re-fire on the
// next run) poisons the whole category: callers skip it and record the
// skip in the result.
func compileRule(cat config.Category, rule config.Rule) (*compiledRule, bool) {
	for _, entry := range rule.Replacements {
		if entry.Source == "" {
			return nil, false
		}
		if strings.Contains(entry.Target, entry.Source) {
			return nil, false
		}
	}
	return &compiledRule{category: cat, entries: rule.Replacements}, true
}

// apply substitutes every table entry in text, longest source first at
// each position so a shorter key never fires inside a longer one.
// Returns the new buffer and the exact number of substitutions.
func (r *compiledRule) apply(text string) (string, int) {
	if len(r.entries) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	count := 0
	i := 0
	for i < len(text) {
		matched := false
		for _, entry := range r.entries {
			if strings.HasPrefix(text[i:], entry.Source) {
				b.WriteString(entry.Target)
				i += len(entry.Source)
				count++
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(text[i])
			i++
		}
	}
	if count == 0 {
		return text, 0
	}
	return b.String(), count
}
