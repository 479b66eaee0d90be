// Package guard makes sure optional npm packages a feature needs are
// installed before the feature's loaders are added.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/corespeed-io/webpack/pkg/pkgwalk"
)

// ErrMissingPackages matches every *MissingPackagesError.
var ErrMissingPackages = errors.New("missing required packages")

// MissingPackagesError names the packages that are not installed.
type MissingPackagesError struct {
	Packages []string
}

func (e *MissingPackagesError) Error() string {
	return fmt.Sprintf("missing required packages: %s. Please ensure all required packages are installed.",
		strings.Join(e.Packages, ", "))
}

// Is lets errors.Is match against ErrMissingPackages.
func (e *MissingPackagesError) Is(target error) bool {
	return target == ErrMissingPackages
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string, initial bool) (bool, error)
}

// Installer installs packages into the project at dir.
type Installer interface {
	Install(ctx context.Context, dir string, packages []string, dev bool) error
}

// Guard resolves packages and, when some are missing, either fails or asks
// to install them.
type Guard struct {
	Resolver pkgwalk.Resolver
	// Unattended fails fast on missing packages without prompting.
	Unattended bool
	// Strict fails when the user declines installation. Otherwise the
	// pipeline continues and the build reports the missing loader later.
	Strict    bool
	Prompter  Prompter
	Installer Installer
	Logger    *log.Logger
}

// Missing returns the packages of pkgs that cannot be resolved from dir,
// without duplicates and in input order.
func (g *Guard) Missing(pkgs []string, dir string) []string {
	var missing []string
	seen := make(map[string]bool, len(pkgs))
	for _, name := range pkgs {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, err := g.Resolver.Resolve(name, dir); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// Ensure returns nil when every package resolves. Otherwise, unattended
// runs fail with a *MissingPackagesError and install nothing; interactive
// runs prompt and install on consent.
func (g *Guard) Ensure(ctx context.Context, pkgs []string, dir string, dev bool) error {
	logger := g.logger()

	missing := g.Missing(pkgs, dir)
	if len(missing) == 0 {
		return nil
	}
	logger.Debug("optional packages missing", "packages", missing)

	if g.Unattended || g.Prompter == nil {
		return &MissingPackagesError{Packages: missing}
	}

	msg := fmt.Sprintf("The following packages are required but not installed: %s. Do you want to install them now?",
		strings.Join(missing, ", "))
	ok, err := g.Prompter.Confirm(ctx, msg, true)
	if err != nil {
		return fmt.Errorf("confirm install: %w", err)
	}
	if !ok {
		if g.Strict {
			return &MissingPackagesError{Packages: missing}
		}
		logger.Warn("continuing without required packages", "packages", missing)
		return nil
	}

	if g.Installer == nil {
		return &MissingPackagesError{Packages: missing}
	}
	logger.Info("installing packages", "packages", missing, "dev", dev)
	if err := g.Installer.Install(ctx, dir, missing, dev); err != nil {
		return fmt.Errorf("install %s: %w", strings.Join(missing, ", "), err)
	}
	return nil
}

func (g *Guard) logger() *log.Logger {
	if g.Logger == nil {
		return log.New(io.Discard)
	}
	return g.Logger
}
