package hints

import "sort"

// Set is a set of file names. An empty set means "no file signal". A nil
// Set reads as empty, but Add needs a set from NewSet.
type Set map[string]struct{}

// NewSet creates a set holding files.
func NewSet(files ...string) Set {
	s := make(Set, len(files))
	for _, f := range files {
		s.Add(f)
	}
	return s
}

// Add inserts a file name, ignoring empty names.
func (s Set) Add(file string) {
	if file != "" {
		s[file] = struct{}{}
	}
}

// Has reports whether file is in the set.
func (s Set) Has(file string) bool {
	_, ok := s[file]
	return ok
}

// Len returns the number of files.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the files in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for f := range small {
		if large.Has(f) {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
