package guard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/afero"
)

// InstallCommandVar overrides the detected install command. The value is
// split like a shell command line and the package names are appended.
const InstallCommandVar = "WEBPACK_INSTALL_COMMAND"

// Manager is an npm-compatible package manager.
type Manager string

// Known package managers.
const (
	NPM  Manager = "npm"
	PNPM Manager = "pnpm"
	Yarn Manager = "yarn"
	Bun  Manager = "bun"
)

var lockfiles = []struct {
	name    string
	manager Manager
}{
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"package-lock.json", NPM},
}

// DetectManager finds the package manager from the nearest lockfile at or
// above dir. It defaults to npm.
func DetectManager(fsys afero.Fs, dir string) Manager {
	dir = filepath.Clean(dir)
	for {
		for _, lf := range lockfiles {
			if ok, _ := afero.Exists(fsys, filepath.Join(dir, lf.name)); ok {
				return lf.manager
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return NPM
		}
		dir = parent
	}
}

// Args returns the argv that adds packages with m.
func (m Manager) Args(packages []string, dev bool) []string {
	var args []string
	switch m {
	case NPM:
		args = []string{"npm", "install"}
		if dev {
			args = append(args, "--save-dev")
		}
	default:
		args = []string{string(m), "add"}
		if dev {
			args = append(args, "-D")
		}
	}
	return append(args, packages...)
}

// CommandInstaller runs the package manager as a subprocess.
type CommandInstaller struct {
	Fs afero.Fs
	// Override replaces the detected command when set, e.g. "pnpm add -w".
	Override string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Command returns the argv Install would run.
func (c *CommandInstaller) Command(dir string, packages []string, dev bool) ([]string, error) {
	if strings.TrimSpace(c.Override) != "" {
		args, err := shellwords.Parse(c.Override)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", InstallCommandVar, err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%s is empty", InstallCommandVar)
		}
		return append(args, packages...), nil
	}
	return DetectManager(c.Fs, dir).Args(packages, dev), nil
}

// Install runs the install command in dir.
func (c *CommandInstaller) Install(ctx context.Context, dir string, packages []string, dev bool) error {
	argv, err := c.Command(dir, packages, dev)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d: %s", argv[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
