// Package envsource snapshots the environment variables the configuration
// pipeline reads, so no component looks at process state directly.
package envsource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Variable names read by the pipeline.
const (
	NodeEnvVar = "NODE_ENV"
	PortVar    = "PORT"
	AnalyzeVar = "ANALYZE"
)

// PublicPrefixes mark variables that are inlined into client bundles.
var PublicPrefixes = []string{"PUBLIC_", "NEXT_PUBLIC_"}

// DefaultDotenvFile is loaded when dotenv is enabled without explicit paths.
const DefaultDotenvFile = ".env"

// Env is an immutable snapshot of environment variables.
type Env struct {
	vars map[string]string
}

// FromOS snapshots os.Environ.
func FromOS() Env {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	return Env{vars: vars}
}

// FromMap builds an Env from m. The map is copied.
func FromMap(m map[string]string) Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Env{vars: vars}
}

// Lookup returns the value of key and whether it is set.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key or "".
func (e Env) Get(key string) string {
	return e.vars[key]
}

// NodeEnv returns NODE_ENV.
func (e Env) NodeEnv() string {
	return e.Get(NodeEnvVar)
}

// Development reports whether NODE_ENV is "development".
func (e Env) Development() bool {
	return e.NodeEnv() == "development"
}

// Analyze reports whether ANALYZE is "true".
func (e Env) Analyze() bool {
	return e.Get(AnalyzeVar) == "true"
}

// Port returns PORT when it holds a valid TCP port number.
func (e Env) Port() (int, bool) {
	raw, ok := e.Lookup(PortVar)
	if !ok || raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 65535 {
		return 0, false
	}
	return n, true
}

// PublicVars returns every variable whose name starts with one of
// PublicPrefixes, keyed by name, with the value encoded as a JavaScript
// string literal.
func (e Env) PublicVars() map[string]string {
	out := make(map[string]string)
	for k, v := range e.vars {
		if !isPublic(k) {
			continue
		}
		out[k] = Quote(v)
	}
	return out
}

// PublicNames returns the sorted names of the public variables.
func (e Env) PublicNames() []string {
	var names []string
	for k := range e.vars {
		if isPublic(k) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func isPublic(name string) bool {
	for _, p := range PublicPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Quote encodes s as a JSON string without HTML escaping, which is also a
// valid JavaScript string literal.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// WithDotenv returns a copy of e extended with the variables of the given
// dotenv files, relative to dir. Variables already set, in e or in an
// earlier file, keep their value. Missing files are skipped. With no paths
// DefaultDotenvFile is read.
func (e Env) WithDotenv(fsys afero.Fs, dir string, paths []string) (Env, error) {
	if len(paths) == 0 {
		paths = []string{DefaultDotenvFile}
	}
	out := FromMap(e.vars)
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		f, err := fsys.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Env{}, fmt.Errorf("open dotenv file: %w", err)
		}
		parsed, err := godotenv.Parse(f)
		_ = f.Close()
		if err != nil {
			return Env{}, fmt.Errorf("parse dotenv file %s: %w", p, err)
		}
		for k, v := range parsed {
			if _, exists := out.vars[k]; !exists {
				out.vars[k] = v
			}
		}
	}
	return out, nil
}
