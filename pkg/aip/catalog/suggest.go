package catalog

import (
	"github.com/sahilm/fuzzy"

	"github.com/provide-io/aipman/pkg/aip"
)

// Suggest returns up to limit catalog names that fuzzily match name, best
// match first.
func Suggest(pkgs []aip.Package, name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]bool, len(pkgs))
	names := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		if !seen[pkg.Name] {
			seen[pkg.Name] = true
			names = append(names, pkg.Name)
		}
	}

	matches := fuzzy.Find(name, names)
	suggestions := make([]string, 0, limit)
	for _, m := range matches {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}
