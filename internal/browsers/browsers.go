// Package browsers reads a project's browserslist configuration.
//
// Sources, checked from the project directory up to the filesystem root
// with the nearest directory winning:
//
//   - .browserslistrc
//   - browserslist
//   - the "browserslist" field of package.json
//
// The returned targets are browserslist queries, not resolved browser
// versions; downstream tools (swc, lightningcss) evaluate them.
package browsers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const defaultsSection = "defaults"

var configFiles = []string{".browserslistrc", "browserslist"}

// Load returns the queries for the development or production environment.
// It reports false when no configuration exists or it cannot be read; the
// error is returned alongside for logging only.
func Load(fsys afero.Fs, dir string, development bool) ([]string, bool, error) {
	env := "production"
	if development {
		env = "development"
	}

	sections, err := find(fsys, filepath.Clean(dir))
	if err != nil {
		return nil, false, err
	}
	if sections == nil {
		return nil, false, nil
	}
	if q, ok := sections[env]; ok && len(q) > 0 {
		return q, true, nil
	}
	if q, ok := sections[defaultsSection]; ok && len(q) > 0 {
		return q, true, nil
	}
	return nil, false, nil
}

// ParseQueries splits a comma separated query string, dropping blanks.
func ParseQueries(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if q := strings.TrimSpace(part); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func find(fsys afero.Fs, dir string) (map[string][]string, error) {
	for {
		sections, err := readDir(fsys, dir)
		if err != nil || sections != nil {
			return sections, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func readDir(fsys afero.Fs, dir string) (map[string][]string, error) {
	var found map[string][]string
	var source string

	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			continue
		}
		found = parseConfig(string(data))
		source = path
		break
	}

	pkgPath := filepath.Join(dir, "package.json")
	if data, err := afero.ReadFile(fsys, pkgPath); err == nil {
		fromPkg, ok, err := parsePackageField(data)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", pkgPath, err)
		}
		if ok {
			if found != nil {
				return nil, fmt.Errorf("%s contains both %s and a browserslist field in package.json", dir, filepath.Base(source))
			}
			found = fromPkg
		}
	}
	return found, nil
}

// parseConfig reads the .browserslistrc format: one or more queries per
// line, # comments, and [env] section headers that may name several
// environments.
func parseConfig(text string) map[string][]string {
	out := map[string][]string{}
	current := []string{defaultsSection}

	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.Fields(line[1 : len(line)-1])
			for _, env := range current {
				if _, ok := out[env]; !ok {
					out[env] = nil
				}
			}
			continue
		}
		for _, env := range current {
			out[env] = append(out[env], ParseQueries(line)...)
		}
	}
	return out
}

func parsePackageField(data []byte) (map[string][]string, bool, error) {
	var pkg struct {
		Browserslist json.RawMessage `json:"browserslist"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, false, err
	}
	if len(pkg.Browserslist) == 0 || string(pkg.Browserslist) == "null" {
		return nil, false, nil
	}

	var asString string
	if err := json.Unmarshal(pkg.Browserslist, &asString); err == nil {
		return map[string][]string{defaultsSection: ParseQueries(asString)}, true, nil
	}
	var asList []string
	if err := json.Unmarshal(pkg.Browserslist, &asList); err == nil {
		return map[string][]string{defaultsSection: splitAll(asList)}, true, nil
	}

	var asEnv map[string]json.RawMessage
	if err := json.Unmarshal(pkg.Browserslist, &asEnv); err != nil {
		return nil, false, fmt.Errorf("browserslist field: %w", err)
	}
	out := make(map[string][]string, len(asEnv))
	for env, raw := range asEnv {
		if err := json.Unmarshal(raw, &asString); err == nil {
			out[env] = ParseQueries(asString)
			continue
		}
		if err := json.Unmarshal(raw, &asList); err != nil {
			return nil, false, fmt.Errorf("browserslist.%s: %w", env, err)
		}
		out[env] = splitAll(asList)
	}
	return out, true, nil
}

func splitAll(queries []string) []string {
	var out []string
	for _, q := range queries {
		out = append(out, ParseQueries(q)...)
	}
	return out
}
