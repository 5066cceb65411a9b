package backlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Top-level document keys read by the engine. Every other key is carried
// through untouched.
const (
	KeyTasks        = "tasks"
	KeyPriorityList = "priority_list"
	KeyDependencies = "dependencies"
)

// Format is the on-disk encoding of a backlog document.
type Format string

// Supported document formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// field is one top-level key of the document in its original encoding.
type field struct {
	key  string
	raw  json.RawMessage
	node *yaml.Node
}

// Document is a parsed backlog document. Only the task list and the
// priority list are interpreted; other fields round-trip verbatim.
type Document struct {
	// Tasks holds every entry of the tasks list in document order,
	// including entries Sanitize would reject.
	Tasks []Task

	// PriorityList is the flat, section-labelled ordering.
	PriorityList []string

	// Dependencies is the optional external dependency map.
	Dependencies DependencyMap

	format   Format
	fields   []field
	rawTasks []json.RawMessage
	taskNode *yaml.Node
	added    []Task
}

// NewDocument creates an empty document in the given format.
func NewDocument(format Format) *Document {
	return &Document{format: format}
}

// Format returns the encoding the document was read from.
func (d *Document) Format() Format {
	return d.format
}

// SetPriorityList replaces the priority list. No other field changes.
func (d *Document) SetPriorityList(list []string) {
	d.PriorityList = append([]string(nil), list...)
}

// AppendTask adds a task to the end of the task list.
func (d *Document) AppendTask(t Task) {
	d.Tasks = append(d.Tasks, t)
	d.added = append(d.added, t)
}

// Has reports whether the document already contains a task with the given ID.
func (d *Document) Has(id string) bool {
	for _, t := range d.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Parse decodes a document in the given format.
func Parse(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// Marshal encodes the document in its original format.
func (d *Document) Marshal() ([]byte, error) {
	switch d.format {
	case FormatJSON:
		return d.marshalJSON()
	case FormatYAML:
		return d.marshalYAML()
	default:
		return nil, fmt.Errorf("unsupported document format %q", d.format)
	}
}

func parseJSON(data []byte) (*Document, error) {
	doc := NewDocument(FormatJSON)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("document must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read %q: %w", key, err)
		}
		doc.fields = append(doc.fields, field{key: key, raw: raw})

		switch key {
		case KeyTasks:
			if err := json.Unmarshal(raw, &doc.rawTasks); err != nil {
				return nil, fmt.Errorf("%q must be a list: %w", key, err)
			}
			doc.Tasks = make([]Task, len(doc.rawTasks))
			for i, entry := range doc.rawTasks {
				// Entries that are not task objects stay as zero tasks and
				// are reported by Sanitize.
				_ = json.Unmarshal(entry, &doc.Tasks[i])
			}
		case KeyPriorityList:
			if err := json.Unmarshal(raw, &doc.PriorityList); err != nil {
				return nil, fmt.Errorf("%q must be a list of strings: %w", key, err)
			}
		case KeyDependencies:
			if err := json.Unmarshal(raw, &doc.Dependencies); err != nil {
				return nil, fmt.Errorf("%q must map task ids to id lists: %w", key, err)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read document end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after document")
	}
	return doc, nil
}

func (d *Document) marshalJSON() ([]byte, error) {
	tasks := make([]json.RawMessage, 0, len(d.rawTasks)+len(d.added))
	tasks = append(tasks, d.rawTasks...)
	for _, t := range d.added {
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("marshal task %s: %w", t.ID, err)
		}
		tasks = append(tasks, raw)
	}

	replace := map[string]any{
		KeyTasks:        tasks,
		KeyPriorityList: nonNil(d.PriorityList),
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(d.fields)+2)
	write := func(key string, value []byte) error {
		if len(written) > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		written[key] = true
		return nil
	}

	for _, f := range d.fields {
		value := []byte(f.raw)
		if v, ok := replace[f.key]; ok {
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("marshal %q: %w", f.key, err)
			}
			value = encoded
		}
		if err := write(f.key, value); err != nil {
			return nil, err
		}
	}
	for _, key := range []string{KeyTasks, KeyPriorityList} {
		if written[key] {
			continue
		}
		encoded, err := json.Marshal(replace[key])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", key, err)
		}
		if err := write(key, encoded); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	var compact, out bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("compact document: %w", err)
	}
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func parseYAML(data []byte) (*Document, error) {
	doc := NewDocument(FormatYAML)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return doc, nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document must be a YAML mapping")
	}

	mapping := root.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i].Value, mapping.Content[i+1]
		doc.fields = append(doc.fields, field{key: key, node: value})

		switch key {
		case KeyTasks:
			if value.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%q must be a list", key)
			}
			doc.taskNode = value
			doc.Tasks = make([]Task, len(value.Content))
			for j, entry := range value.Content {
				_ = entry.Decode(&doc.Tasks[j])
			}
		case KeyPriorityList:
			if err := value.Decode(&doc.PriorityList); err != nil {
				return nil, fmt.Errorf("%q must be a list of strings: %w", key, err)
			}
		case KeyDependencies:
			if err := value.Decode(&doc.Dependencies); err != nil {
				return nil, fmt.Errorf("%q must map task ids to id lists: %w", key, err)
			}
		}
	}
	return doc, nil
}

func (d *Document) marshalYAML() ([]byte, error) {
	tasks := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if d.taskNode != nil {
		tasks.Content = append(tasks.Content, d.taskNode.Content...)
	}
	for _, t := range d.added {
		var n yaml.Node
		if err := n.Encode(t); err != nil {
			return nil, fmt.Errorf("encode task %s: %w", t.ID, err)
		}
		tasks.Content = append(tasks.Content, &n)
	}

	var priority yaml.Node
	if err := priority.Encode(nonNil(d.PriorityList)); err != nil {
		return nil, fmt.Errorf("encode %q: %w", KeyPriorityList, err)
	}

	replace := map[string]*yaml.Node{
		KeyTasks:        tasks,
		KeyPriorityList: &priority,
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	written := make(map[string]bool, len(d.fields)+2)
	add := func(key string, value *yaml.Node) {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
		written[key] = true
	}
	for _, f := range d.fields {
		if n, ok := replace[f.key]; ok {
			add(f.key, n)
			continue
		}
		add(f.key, f.node)
	}
	for _, key := range []string{KeyTasks, KeyPriorityList} {
		if !written[key] {
			add(key, replace[key])
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
