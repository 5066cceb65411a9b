// Package priority flattens ordered clusters into the section-labelled
// priority list stored in the backlog document.
package priority

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
)

// DefaultHeaderFormat renders section headers. {title} and {prefix} are
// replaced with the section's values.
const DefaultHeaderFormat = "=== {title} ({prefix}) ==="

// entrySeparator joins id and title in list entries.
const entrySeparator = " - "

// Section is a canonical id prefix with its display title.
type Section struct {
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	Title  string `json:"title" yaml:"title" mapstructure:"title"`
}

// DefaultSections is the canonical domain order.
func DefaultSections() []Section {
	return []Section{
		{Prefix: "SEC", Title: "Security"},
		{Prefix: "AC", Title: "Admin & Access Control"},
		{Prefix: "ONB", Title: "Onboarding"},
		{Prefix: "CORE", Title: "Core Features"},
		{Prefix: "DB", Title: "Data & Storage"},
		{Prefix: "API", Title: "API & Services"},
		{Prefix: "INT", Title: "Integrations"},
		{Prefix: "PERF", Title: "Performance"},
		{Prefix: "UI", Title: "UI & Polish"},
		{Prefix: "DOC", Title: "Documentation"},
	}
}

// Serializer renders priority lists.
type Serializer struct {
	sections     []Section
	headerFormat string
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithSections replaces the canonical section order.
func WithSections(sections []Section) Option {
	return func(s *Serializer) {
		s.sections = append([]Section(nil), sections...)
	}
}

// WithHeaderFormat replaces the header template.
func WithHeaderFormat(format string) Option {
	return func(s *Serializer) {
		if format != "" {
			s.headerFormat = format
		}
	}
}

// NewSerializer creates a serializer with the default sections and header.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{
		sections:     DefaultSections(),
		headerFormat: DefaultHeaderFormat,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Header renders the header line for a section.
func (s *Serializer) Header(sec Section) string {
	return strings.NewReplacer("{title}", sec.Title, "{prefix}", sec.Prefix).Replace(s.headerFormat)
}

// Entry renders the list line for a task.
func Entry(t backlog.Task) string {
	return t.ID + entrySeparator + t.Title
}

// ParseEntry splits a list line into id and title at the first separator,
// so ids may hold spaces but not " - ". Lines in the default header shape
// and lines without the separator return false.
func ParseEntry(line string) (id, title string, ok bool) {
	if strings.HasPrefix(line, "=== ") && strings.HasSuffix(line, " ===") {
		return "", "", false
	}
	id, title, ok = strings.Cut(line, entrySeparator)
	if !ok || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return id, title, true
}

// Serialize buckets the tasks of the ordered clusters by id prefix. For
// every canonical section with tasks it emits the header and one entry per
// task in cluster order; remaining prefixes follow in lexical order with
// the prefix as title. Output depends only on the input, so serializing the
// same clusters twice gives identical lists.
func (s *Serializer) Serialize(clusters []cluster.Cluster) []string {
	buckets := make(map[string][]backlog.Task)
	for _, c := range clusters {
		for _, t := range c.Tasks {
			p := t.Prefix()
			buckets[p] = append(buckets[p], t)
		}
	}

	var out []string
	emit := func(sec Section) {
		tasks := buckets[sec.Prefix]
		if len(tasks) == 0 {
			return
		}
		out = append(out, s.Header(sec))
		for _, t := range tasks {
			out = append(out, Entry(t))
		}
		delete(buckets, sec.Prefix)
	}

	for _, sec := range s.sections {
		emit(sec)
	}

	rest := make([]string, 0, len(buckets))
	for p := range buckets {
		rest = append(rest, p)
	}
	sort.Strings(rest)
	for _, p := range rest {
		emit(Section{Prefix: p, Title: p})
	}

	if out == nil {
		out = []string{}
	}
	return out
}

// Apply serializes clusters into the document's priority list, leaving
// every other field alone, and returns the previous list.
func (s *Serializer) Apply(doc *backlog.Document, clusters []cluster.Cluster) []string {
	previous := doc.PriorityList
	doc.SetPriorityList(s.Serialize(clusters))
	return previous
}
