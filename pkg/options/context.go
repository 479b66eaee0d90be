package options

import (
	"slices"

	"github.com/corespeed-io/webpack/internal/browsers"
	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Defaults applied by Resolve.
const (
	DefaultPublicDir         = "./public"
	DefaultHTMLTemplatePath  = "./src/index.html"
	DefaultFilenamePrefix    = "/_assets/static/"
	DefaultDevtoolDev        = "eval-source-map"
	DefaultDevtoolProd       = "hidden-source-map"
	DefaultCrossOriginLoader = "anonymous"
)

// DefaultFrameworkPackages are grouped into the "framework" chunk.
var DefaultFrameworkPackages = []string{"react", "react-dom", "wouter", "react-router", "react-router-dom"}

// Context is the fully resolved, read-only view of Options. Blocks receive
// it by pointer and must not modify it; Resolve copies every slice and map
// it takes from the caller.
type Context struct {
	Cwd              string
	Development      bool
	SPA              bool
	PublicDir        string
	Entry            any
	HTMLTemplatePath string
	Output           OutputContext
	Sourcemap        Sourcemap
	DevServerPort    portfinder.Request
	Externals        map[string]any

	TopLevelFrameworkPackages []string

	BuiltinCSS    bool
	PostCSS       bool
	SVGR          bool
	ReactCompiler Toggle
	Analyze       Toggle
	Plugins       []any
	Dotenv        Dotenv
	// Browserslists overrides the project's browserslist config when non-nil.
	Browserslists []string

	LodashTreeShaking       bool
	DropConsoleInProduction bool
}

// OutputContext is the resolved output section.
type OutputContext struct {
	Path                     string
	Library                  any
	FilenameContainChunkName bool
	FilenamePrefix           string
	CrossOriginLoading       any
}

// Devtool returns the devtool for the active mode.
func (c *Context) Devtool() any {
	if c.Development {
		return c.Sourcemap.Development
	}
	return c.Sourcemap.Production
}

// Resolve validates opts and fills every unset field from env or the
// built-in defaults.
func Resolve(opts Options, env envsource.Env) (*Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Context{
		Cwd:                     opts.Cwd,
		Development:             boolOr(opts.Development, env.Development()),
		SPA:                     boolOr(opts.SPA, true),
		PublicDir:               stringOr(opts.PublicDir, DefaultPublicDir),
		HTMLTemplatePath:        stringOr(opts.HTMLTemplatePath, DefaultHTMLTemplatePath),
		BuiltinCSS:              boolOr(opts.BuiltinCSS, false),
		PostCSS:                 boolOr(opts.PostCSS, false),
		SVGR:                    boolOr(opts.SVGR, false),
		LodashTreeShaking:       boolOr(opts.LodashTreeShaking, false),
		DropConsoleInProduction: boolOr(opts.DropConsoleInProduction, false),
		Dotenv:                  Dotenv{Enabled: true},
	}

	c.Output = OutputContext{
		Path:                     opts.Output.Path,
		FilenameContainChunkName: boolOr(opts.Output.FilenameContainChunkName, false),
		FilenamePrefix:           stringOr(opts.Output.FilenamePrefix, DefaultFilenamePrefix),
		CrossOriginLoading:       opts.Output.CrossOriginLoading,
	}
	if c.Output.CrossOriginLoading == nil {
		c.Output.CrossOriginLoading = DefaultCrossOriginLoader
	}

	c.Sourcemap = Sourcemap{Development: opts.Sourcemap.Development, Production: opts.Sourcemap.Production}
	if c.Sourcemap.Development == nil {
		c.Sourcemap.Development = DefaultDevtoolDev
	}
	if c.Sourcemap.Production == nil {
		c.Sourcemap.Production = DefaultDevtoolProd
	}

	c.DevServerPort = portfinder.Request{Port: portfinder.DefaultPort, Ports: slices.Clone(opts.DevServerPort.Ports)}
	if port, ok := env.Port(); ok {
		c.DevServerPort.Port = port
	}
	if opts.DevServerPort.FallbackPort != nil {
		c.DevServerPort.Port = *opts.DevServerPort.FallbackPort
	}
	if r := opts.DevServerPort.PortRange; len(r) == 2 {
		c.DevServerPort.Range = &portfinder.Range{From: r[0], To: r[1]}
	}

	c.TopLevelFrameworkPackages = slices.Clone(DefaultFrameworkPackages)
	if opts.TopLevelFrameworkPackages != nil {
		c.TopLevelFrameworkPackages = slices.Clone(opts.TopLevelFrameworkPackages)
	}

	if opts.ReactCompiler != nil {
		c.ReactCompiler = copyToggle(*opts.ReactCompiler)
	}
	c.Analyze = Toggle{Enabled: env.Analyze()}
	if opts.Analyze != nil {
		c.Analyze = copyToggle(*opts.Analyze)
	}
	if opts.Dotenv != nil {
		c.Dotenv = Dotenv{Enabled: opts.Dotenv.Enabled, Paths: slices.Clone(opts.Dotenv.Paths)}
	}
	queries := opts.Browserslists
	if queries == nil {
		queries = opts.Browserlists
	}
	if queries != nil {
		for _, q := range queries {
			c.Browserslists = append(c.Browserslists, browsers.ParseQueries(q)...)
		}
	}

	c.Entry = tree.CopyValue(opts.Entry)
	c.Output.Library = tree.CopyValue(opts.Output.Library)
	c.Externals = map[string]any{}
	if opts.Externals != nil {
		c.Externals = tree.CopyValue(opts.Externals).(map[string]any)
	}
	for _, p := range opts.Plugins {
		c.Plugins = append(c.Plugins, asPlugin(tree.CopyValue(p)))
	}

	return c, nil
}

// asPlugin turns {"plugin": name, "options": {...}} entries read from a
// config file into tree.Plugin values. Anything else is kept as is.
func asPlugin(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	name, ok := m["plugin"].(string)
	if !ok || name == "" {
		return v
	}
	return tree.NewPlugin(name, m["options"])
}

func copyToggle(t Toggle) Toggle {
	out := Toggle{Enabled: t.Enabled}
	if t.Options != nil {
		out.Options = tree.CopyValue(t.Options).(map[string]any)
	}
	return out
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
