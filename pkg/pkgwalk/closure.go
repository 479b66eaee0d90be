package pkgwalk

import (
	"path/filepath"
	"slices"
)

// Closure returns the install directories of names and of every package
// they transitively depend on, in first-discovered pre-order. Each
// directory ends in a path separator so callers can use it as a prefix.
//
// Packages are visited at most once by name. Each dependency is resolved
// relative to the directory of the package that declares it. Packages that
// cannot be resolved or whose manifest cannot be read are skipped.
func (r Resolver) Closure(names []string, root string) []string {
	w := walker{r: r, visited: make(map[string]bool)}
	for _, name := range names {
		w.visit(name, root)
	}
	return w.dirs
}

type walker struct {
	r       Resolver
	visited map[string]bool
	dirs    []string
}

func (w *walker) visit(name, from string) {
	if w.visited[name] {
		return
	}
	w.visited[name] = true

	dir, err := w.r.Resolve(name, from)
	if err != nil {
		return
	}
	prefix := dir + string(filepath.Separator)
	if slices.Contains(w.dirs, prefix) {
		return
	}
	w.dirs = append(w.dirs, prefix)

	m, err := w.r.ReadManifest(dir)
	if err != nil {
		return
	}
	for _, dep := range m.Dependencies.Names() {
		w.visit(dep, dir)
	}
}
