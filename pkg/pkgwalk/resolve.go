// Package pkgwalk resolves installed npm packages on disk and walks their
// dependency graphs.
package pkgwalk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	nodeModules  = "node_modules"
	manifestName = "package.json"
)

// ErrNotFound is returned when a package cannot be resolved.
var ErrNotFound = errors.New("package not found")

// Manifest is the subset of package.json the walker reads.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Dependencies Dependencies `json:"dependencies"`
}

// Resolver finds packages with Node's node_modules lookup: starting at a
// directory and moving to each parent, it checks
// <dir>/node_modules/<name>/package.json.
type Resolver struct {
	Fs afero.Fs
}

// NewResolver returns a Resolver reading from fsys.
func NewResolver(fsys afero.Fs) Resolver {
	return Resolver{Fs: fsys}
}

// Resolve returns the install directory of name as seen from fromDir.
// Symlinked installs, as laid out by pnpm, resolve to their target
// directory when the filesystem can read links.
func (r Resolver) Resolve(name, fromDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("resolve package: empty name")
	}
	dir := filepath.Clean(fromDir)
	for {
		if filepath.Base(dir) != nodeModules {
			candidate := filepath.Join(dir, nodeModules, filepath.FromSlash(name))
			if r.isFile(filepath.Join(candidate, manifestName)) {
				return r.realPath(candidate), nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("resolve %s from %s: %w", name, fromDir, ErrNotFound)
}

// ReadManifest reads <dir>/package.json.
func (r Resolver) ReadManifest(dir string) (*Manifest, error) {
	data, err := afero.ReadFile(r.Fs, filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, manifestName), err)
	}
	return &m, nil
}

func (r Resolver) isFile(path string) bool {
	info, err := r.Fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&fs.ModeType == 0
}

// maxLinkHops bounds symlink chains the same way the kernel's ELOOP does.
const maxLinkHops = 255

// realPath resolves every symlink in path. Filesystems that cannot read
// links return path unchanged.
func (r Resolver) realPath(path string) string {
	if _, ok := r.Fs.(*afero.OsFs); ok {
		if real, err := filepath.EvalSymlinks(path); err == nil {
			return real
		}
		return path
	}
	lstater, ok := r.Fs.(afero.Lstater)
	if !ok {
		return path
	}
	reader, ok := r.Fs.(afero.LinkReader)
	if !ok {
		return path
	}

	root := filepath.VolumeName(path) + string(filepath.Separator)
	resolved := root
	pending := splitPath(path)
	for hops := 0; len(pending) > 0; {
		next := filepath.Join(resolved, pending[0])
		pending = pending[1:]

		info, lstatCalled, err := lstater.LstatIfPossible(next)
		if err != nil || !lstatCalled || info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}
		if hops++; hops > maxLinkHops {
			return path
		}
		target, err := reader.ReadlinkIfPossible(next)
		if err != nil {
			return path
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(resolved, target)
		}
		resolved = root
		pending = append(splitPath(target), pending...)
	}
	return resolved
}

func splitPath(path string) []string {
	path = filepath.Clean(path)
	path = path[len(filepath.VolumeName(path)):]
	var parts []string
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
