// Package hints infers the files a task is likely to touch.
package hints

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/classify"
)

var (
	// "in `handlers.py`" style mentions
	quotedFilePattern = regexp.MustCompile("(?i)\\bin\\s+`([^`\\s]+\\.[A-Za-z0-9]+)`")

	// bare file-like tokens such as admin_handlers.py or web/styles.css
	bareFilePattern = regexp.MustCompile(`(?i)\b([A-Za-z0-9_][A-Za-z0-9_/-]*\.(?:py|go|js|jsx|ts|tsx|css|scss|html|sql|md|json|ya?ml|toml))\b`)
)

// Extractor derives file hints from a task. All steps add to the result;
// none of them excludes another.
type Extractor struct {
	modules  []moduleMatcher
	category classify.Classifier
	prefix   classify.Classifier
}

type moduleMatcher struct {
	file    string
	pattern *regexp.Regexp
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModules replaces the module vocabulary. A hit on module "auth" adds "auth.py".
func WithModules(modules []string) Option {
	return func(e *Extractor) {
		e.modules = compileModules(modules)
	}
}

// WithCategoryClassifier replaces the category -> files classifier.
func WithCategoryClassifier(c classify.Classifier) Option {
	return func(e *Extractor) {
		e.category = c
	}
}

// WithPrefixClassifier replaces the id prefix -> files classifier.
func WithPrefixClassifier(c classify.Classifier) Option {
	return func(e *Extractor) {
		e.prefix = c
	}
}

// NewExtractor creates an extractor with the default tables.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		modules:  compileModules(classify.ModuleVocabulary()),
		category: classify.NewKeywordClassifier(classify.CategoryFileRules()),
		prefix:   classify.NewKeywordClassifier(classify.PrefixFileRules(), classify.WithMatchMode(classify.MatchExact)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func compileModules(modules []string) []moduleMatcher {
	out := make([]moduleMatcher, 0, len(modules))
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		out = append(out, moduleMatcher{
			file:    m + ".py",
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(m) + `\b`),
		})
	}
	return out
}

// Extract returns the files task likely modifies. The task is not modified.
func (e *Extractor) Extract(task backlog.Task) Set {
	files := NewSet()

	for _, f := range task.FilesLikelyModified {
		files.Add(strings.TrimSpace(f))
	}

	text := task.Text()
	addMentions(files, text)

	for _, m := range e.modules {
		if m.pattern.MatchString(text) {
			files.Add(m.file)
		}
	}

	for _, criterion := range task.AcceptanceCriteria {
		addMentions(files, criterion)
	}

	if task.Category != "" && e.category != nil {
		for _, f := range e.category.Tags(task.Category) {
			files.Add(f)
		}
	}

	if e.prefix != nil && strings.Contains(task.ID, "-") {
		for _, f := range e.prefix.Tags(task.Prefix()) {
			files.Add(f)
		}
	}

	return files
}

func addMentions(files Set, text string) {
	for _, m := range quotedFilePattern.FindAllStringSubmatch(text, -1) {
		files.Add(m[1])
	}
	for _, m := range bareFilePattern.FindAllStringSubmatch(text, -1) {
		files.Add(m[1])
	}
}

// Cache memoizes hints per task id for one run.
type Cache struct {
	extractor *Extractor
	byID      map[string]Set
}

// NewCache creates an empty cache over extractor.
func NewCache(extractor *Extractor) *Cache {
	return &Cache{extractor: extractor, byID: make(map[string]Set)}
}

// Get returns the hints for task, extracting them on first use.
func (c *Cache) Get(task backlog.Task) Set {
	if s, ok := c.byID[task.ID]; ok {
		return s
	}
	s := c.extractor.Extract(task)
	c.byID[task.ID] = s
	return s
}

// Lookup returns the cached hints for an id, if any.
func (c *Cache) Lookup(id string) (Set, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Warm extracts hints for every task.
func (c *Cache) Warm(tasks []backlog.Task) {
	for _, t := range tasks {
		c.Get(t)
	}
}

// Len returns the number of cached tasks.
func (c *Cache) Len() int {
	return len(c.byID)
}
