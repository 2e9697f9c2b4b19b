// Package catalog holds the built-in schemas the CLI knows by name: a list
// of project entries and a self-referential command tree with its help
// navigation.
package catalog

import (
	"sort"

	"github.com/reoring/goshape"
)

var registry = map[string]*goshape.Schema{
	"entries":  Entries,
	"commands": Commands,
}

// Lookup returns the schema registered under name.
func Lookup(name string) (*goshape.Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns the registered schema names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
