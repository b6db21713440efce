package hierarchy

import "sort"

// NameSet is a set of node names.
type NameSet map[string]struct{}

// Add inserts a name into the set.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Contains reports whether the set holds the given name.
func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Values returns the names in sorted order.
func (s NameSet) Values() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
