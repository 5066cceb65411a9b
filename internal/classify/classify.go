// Package classify maps free text to tags through keyword tables.
//
// The clustering and ordering stages never match keywords themselves; they
// ask a Classifier, so the tables can change without touching the algorithms.
package classify

import (
	"strings"
)

// Classifier maps text to a set of tags.
type Classifier interface {
	// Tags returns the tags matching text, in rule order, without duplicates.
	Tags(text string) []string
}

// Rule assigns Tag to any text matching one of Keywords.
type Rule struct {
	Tag      string   `json:"tag" yaml:"tag" mapstructure:"tag"`
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// MatchMode controls how a keyword is compared to text.
type MatchMode int

const (
	// MatchWordPrefix matches a keyword at the start of any word,
	// so "config" matches "Configuration" but "ui" does not match "build".
	MatchWordPrefix MatchMode = iota
	// MatchExact matches when the whole trimmed text equals the keyword.
	MatchExact
)

// KeywordClassifier is a Classifier built from an ordered rule table.
// Matching is case-insensitive.
type KeywordClassifier struct {
	rules []Rule
	mode  MatchMode
}

// Option configures a KeywordClassifier.
type Option func(*KeywordClassifier)

// WithMatchMode sets the keyword matching mode.
func WithMatchMode(mode MatchMode) Option {
	return func(c *KeywordClassifier) {
		c.mode = mode
	}
}

// NewKeywordClassifier creates a classifier over rules.
func NewKeywordClassifier(rules []Rule, opts ...Option) *KeywordClassifier {
	c := &KeywordClassifier{mode: MatchWordPrefix}
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		c.rules = append(c.rules, Rule{Tag: r.Tag, Keywords: kw})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns a copy of the rule table.
func (c *KeywordClassifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Tags implements Classifier.
func (c *KeywordClassifier) Tags(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	seen := make(map[string]bool)
	for _, r := range c.rules {
		if seen[r.Tag] {
			continue
		}
		for _, k := range r.Keywords {
			if c.match(lower, k) {
				tags = append(tags, r.Tag)
				seen[r.Tag] = true
				break
			}
		}
	}
	return tags
}

// Has reports whether text carries tag.
func Has(c Classifier, text, tag string) bool {
	for _, t := range c.Tags(text) {
		if t == tag {
			return true
		}
	}
	return false
}

func (c *KeywordClassifier) match(lower, keyword string) bool {
	if c.mode == MatchExact {
		return strings.TrimSpace(lower) == keyword
	}
	return ContainsWordPrefix(lower, keyword)
}

// ContainsWordPrefix reports whether keyword occurs in text starting at a
// word boundary. Both arguments must already be lower-cased.
func ContainsWordPrefix(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	for from := 0; from <= len(text)-len(keyword); {
		i := strings.Index(text[from:], keyword)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 || !isWordByte(text[i-1]) {
			return true
		}
		from = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
