// Package webpack composes a webpack configuration tree from a small set of
// options.
//
// Create resolves the options against the environment, derives filename
// templates, browser targets and swc options, and then runs the
// configuration blocks in a fixed order over a copy of the caller's base
// tree. Values already present in the base tree win over every default.
package webpack

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/corespeed-io/webpack/internal/blocks"
	"github.com/corespeed-io/webpack/internal/browsers"
	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/internal/guard"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/pkgwalk"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
)

type config struct {
	fs         afero.Fs
	env        *envsource.Env
	logger     *log.Logger
	prompter   guard.Prompter
	installer  guard.Installer
	ports      blocks.PortAllocator
	prober     portfinder.Prober
	unattended *bool
	strict     bool
}

// Option configures Create.
type Option func(*config)

// WithFs sets the filesystem used for package, browserslist and dotenv
// lookups. The default is the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(c *config) { c.fs = fsys }
}

// WithEnv sets the environment snapshot. The default is os.Environ.
func WithEnv(vars map[string]string) Option {
	return func(c *config) {
		env := envsource.FromMap(vars)
		c.env = &env
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithPrompter sets how install consent is asked for.
func WithPrompter(p guard.Prompter) Option {
	return func(c *config) { c.prompter = p }
}

// WithInstaller sets how missing packages are installed.
func WithInstaller(i guard.Installer) Option {
	return func(c *config) { c.installer = i }
}

// WithPorts replaces dev server port allocation.
func WithPorts(alloc func(ctx context.Context, req portfinder.Request) (int, error)) Option {
	return func(c *config) { c.ports = alloc }
}

// WithProber sets the port prober used by the default allocator.
func WithProber(p portfinder.Prober) Option {
	return func(c *config) { c.prober = p }
}

// WithUnattended overrides CI and terminal detection. Unattended runs fail
// on missing packages instead of prompting.
func WithUnattended(unattended bool) Option {
	return func(c *config) { c.unattended = &unattended }
}

// WithStrict makes declining an install prompt fail the run.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// Create returns the configuration tree for opts, built on top of base.
// base is not modified; it may be nil. On failure no tree is returned.
func Create(ctx context.Context, opts options.Options, base tree.Tree, optFns ...Option) (tree.Tree, error) {
	cfg := config{}
	for _, fn := range optFns {
		fn(&cfg)
	}
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	env := envsource.FromOS()
	if cfg.env != nil {
		env = *cfg.env
	}
	logger := cfg.logger

	c, env, err := resolve(opts, env, cfg.fs, logger)
	if err != nil {
		return nil, err
	}

	resolver := pkgwalk.NewResolver(cfg.fs)

	supported, ok, err := browsers.Load(cfg.fs, c.Cwd, c.Development)
	if err != nil {
		logger.Debug("browserslist unavailable", "err", err)
	} else if !ok {
		logger.Debug("no browserslist config", "dir", c.Cwd)
	}

	coreJS, err := derive.CoreJSVersion(resolver, c.Cwd)
	if err != nil {
		logger.Debug("core-js version unavailable", "err", err)
	}

	bc := derive.New(c, derive.Inputs{
		Browsers:      supported,
		CoreJSVersion: coreJS,
		NodeEnv:       env.NodeEnv(),
		PublicVars:    env.PublicVars(),
	})

	g := &guard.Guard{
		Resolver:  resolver,
		Strict:    cfg.strict,
		Prompter:  cfg.prompter,
		Installer: cfg.installer,
		Logger:    logger,
	}
	if cfg.unattended != nil {
		g.Unattended = *cfg.unattended
	} else {
		g.Unattended = guard.DetectUnattended(env, os.Stdin)
	}
	if g.Prompter == nil {
		g.Prompter = guard.TeaPrompter{In: os.Stdin, Out: os.Stderr}
	}
	if g.Installer == nil {
		g.Installer = &guard.CommandInstaller{
			Fs:       cfg.fs,
			Override: env.Get(guard.InstallCommandVar),
			Stdout:   os.Stderr,
			Stderr:   os.Stderr,
		}
	}

	deps := &blocks.Deps{
		Resolver: resolver,
		Guard:    g,
		Ports:    cfg.allocator(),
		Logger:   logger,
	}

	return pipeline.NewExecutor(logger).Run(ctx, blocks.Default(c, bc, deps), base)
}

// resolve builds the Context. When dotenv is enabled the dotenv files are
// merged into env and the options are resolved again, since the files may
// set NODE_ENV, PORT or ANALYZE.
func resolve(opts options.Options, env envsource.Env, fsys afero.Fs, logger *log.Logger) (*options.Context, envsource.Env, error) {
	c, err := options.Resolve(opts, env)
	if err != nil {
		return nil, env, err
	}
	if !c.Dotenv.Enabled {
		return c, env, nil
	}

	withDotenv, err := env.WithDotenv(fsys, c.Cwd, c.Dotenv.Paths)
	if err != nil {
		return nil, env, err
	}
	logger.Debug("dotenv loaded", "public", withDotenv.PublicNames())
	c, err = options.Resolve(opts, withDotenv)
	if err != nil {
		return nil, env, err
	}
	return c, withDotenv, nil
}

func (c config) allocator() blocks.PortAllocator {
	if c.ports != nil {
		return c.ports
	}
	var popts []portfinder.Option
	if c.prober != nil {
		popts = append(popts, portfinder.WithProber(c.prober))
	}
	return func(ctx context.Context, req portfinder.Request) (int, error) {
		return portfinder.Allocate(ctx, req, popts...)
	}
}
