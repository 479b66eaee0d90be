// webpack-config prints the webpack configuration tree composed from a
// project's options.
//
// Usage:
//
//	webpack-config [flags]                  compose and print the tree
//	webpack-config port [flags]             print a free dev server port
//	webpack-config framework-paths [pkg...] print framework package dirs
//
// Options are read from the first webpack.config.{yaml,yml,toml,hcl,json}
// in the working directory unless --config names a file. Flags override
// the file; the file overrides NODE_ENV, PORT and ANALYZE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/internal/version"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pkgwalk"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
	"github.com/corespeed-io/webpack/webpack"
)

const name = "webpack-config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what the subcommands share. Tests replace fs, env and the
// webpack options.
type app struct {
	fs     afero.Fs
	env    map[string]string
	stdout io.Writer
	stderr io.Writer
	extra  []webpack.Option
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{fs: afero.NewOsFs(), stdout: stdout, stderr: stderr}
	return a.run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "port":
			return a.runPort(ctx, args[1:])
		case "framework-paths":
			return a.runFrameworkPaths(args[1:])
		}
	}
	return a.runCompose(ctx, args)
}

func (a *app) runCompose(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	configFlag := fs.String("config", "", "Options file (default: discovered in --cwd)")
	baseFlag := fs.String("base", "", "Base configuration tree file (YAML or JSON)")
	formatFlag := fs.String("format", "json", "Output format: json, yaml, tree")
	modeFlag := fs.String("mode", "", "Override mode: development, production")
	cwdFlag := fs.String("cwd", "", "Project directory (default: working directory)")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	strictFlag := fs.Bool("strict", false, "Fail when a prompted install is declined")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(a.stdout, "%s version %s\n", name, version.Version)
		fmt.Fprintf(a.stdout, "Commit: %s\n", version.CommitHash)
		fmt.Fprintf(a.stdout, "Built: %s\n", version.BuildDate)
		return 0
	}

	render, ok := renderers[*formatFlag]
	if !ok {
		fmt.Fprintf(a.stderr, "%s: unknown format %q\n", name, *formatFlag)
		return 2
	}
	logger, err := newLogger(a.stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 2
	}

	cwd, err := a.cwd(*cwdFlag)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 1
	}
	opts, err := a.loadOptions(cwd, *configFlag, logger)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 1
	}
	switch *modeFlag {
	case "":
	case "development", "production":
		opts.Development = options.Bool(*modeFlag == "development")
	default:
		fmt.Fprintf(a.stderr, "%s: unknown mode %q\n", name, *modeFlag)
		return 2
	}

	base, err := a.loadBase(*baseFlag)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 1
	}

	wopts := append([]webpack.Option{
		webpack.WithFs(a.fs),
		webpack.WithLogger(logger),
		webpack.WithStrict(*strictFlag),
	}, a.extra...)
	if a.env != nil {
		wopts = append(wopts, webpack.WithEnv(a.env))
	}

	out, err := webpack.Create(ctx, opts, base, wopts...)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 1
	}
	if err := render(a.stdout, out); err != nil {
		fmt.Fprintf(a.stderr, "%s: render: %v\n", name, err)
		return 1
	}
	return 0
}

func (a *app) runPort(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet(name+" port", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	portFlag := fs.Int("port", 0, "Preferred port (default: PORT or 3000)")
	portsFlag := fs.String("ports", "", "Comma separated candidate ports")
	rangeFlag := fs.String("range", "", "Inclusive port range, e.g. 8000-8100")
	hostFlag := fs.String("host", "", "Address to probe (default: all interfaces)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	req := portfinder.Request{Port: *portFlag, Host: *hostFlag}
	if req.Port == 0 {
		if p, ok := a.environ().Port(); ok {
			req.Port = p
		}
	}
	var err error
	if req.Ports, err = parsePorts(*portsFlag); err != nil {
		fmt.Fprintf(a.stderr, "%s: --ports: %v\n", name, err)
		return 2
	}
	if req.Range, err = parseRange(*rangeFlag); err != nil {
		fmt.Fprintf(a.stderr, "%s: --range: %v\n", name, err)
		return 2
	}

	port, err := portfinder.Allocate(ctx, req)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		if errors.Is(err, portfinder.ErrExhausted) {
			return 3
		}
		return 1
	}
	fmt.Fprintln(a.stdout, port)
	return 0
}

func (a *app) runFrameworkPaths(args []string) int {
	fs := flag.NewFlagSet(name+" framework-paths", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	cwdFlag := fs.String("cwd", "", "Project directory (default: working directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cwd, err := a.cwd(*cwdFlag)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return 1
	}

	pkgs := fs.Args()
	if len(pkgs) == 0 {
		pkgs = options.DefaultFrameworkPackages
	}
	for _, dir := range pkgwalk.NewResolver(a.fs).Closure(pkgs, cwd) {
		fmt.Fprintln(a.stdout, dir)
	}
	return 0
}

func (a *app) environ() envsource.Env {
	if a.env != nil {
		return envsource.FromMap(a.env)
	}
	return envsource.FromOS()
}

func (a *app) cwd(flagValue string) (string, error) {
	if flagValue == "" {
		return os.Getwd()
	}
	return filepath.Abs(flagValue)
}

func (a *app) loadOptions(cwd, path string, logger *log.Logger) (options.Options, error) {
	if path == "" {
		path = options.Discover(a.fs, cwd)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if path == "" {
		logger.Debug("no options file", "dir", cwd)
		return options.Options{Cwd: cwd}, nil
	}

	logger.Debug("loading options", "file", path)
	opts, err := options.LoadFile(a.fs, path)
	if err != nil {
		return options.Options{}, err
	}
	if opts.Cwd == "" {
		opts.Cwd = cwd
	} else if !filepath.IsAbs(opts.Cwd) {
		opts.Cwd = filepath.Join(filepath.Dir(path), opts.Cwd)
	}
	return opts, nil
}

func (a *app) loadBase(path string) (tree.Tree, error) {
	if path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read base tree: %w", err)
	}
	var base map[string]any
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse base tree %s: %w", path, err)
	}
	return tree.Tree(base), nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{Level: lvl, Prefix: name}), nil
}

func parsePorts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ports []int
	for _, part := range strings.Split(s, ",") {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func parseRange(s string) (*portfinder.Range, error) {
	if s == "" {
		return nil, nil
	}
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("want FROM-TO, got %q", s)
	}
	f, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return nil, err
	}
	t, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return nil, err
	}
	return &portfinder.Range{From: f, To: t}, nil
}
