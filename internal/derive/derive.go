// Package derive computes the values blocks share that follow from the
// resolved options: output filename templates, browser targets and swc
// loader options.
package derive

import (
	"maps"
	"slices"
	"strings"

	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// FallbackBrowserQuery is given to swc when no browser targets are known.
const FallbackBrowserQuery = "defaults, chrome > 70, edge >= 79, firefox esr, safari >= 11, not dead, not ie > 0, not ie_mob > 0, not OperaMini all"

// BlockContext is computed once per pipeline run and read by every block.
type BlockContext struct {
	JSFilename    string
	CSSFilename   string
	AssetFilename string

	// SupportedBrowsers is nil when no browserslist config was found.
	SupportedBrowsers []string
	// CSSTargets is the browserslist override, else SupportedBrowsers.
	CSSTargets []string

	SWCJavaScript tree.Tree
	SWCTypeScript tree.Tree

	// CoreJSVersion is "" when core-js is not installed.
	CoreJSVersion string

	// NodeEnv is the NODE_ENV value seen after dotenv loading.
	NodeEnv string
	// PublicVars maps public variable names to JavaScript string literals.
	PublicVars map[string]string
}

// Inputs are the I/O results New needs.
type Inputs struct {
	// Browsers are the queries from the project's browserslist config.
	Browsers      []string
	CoreJSVersion string
	NodeEnv       string
	PublicVars    map[string]string
}

// New builds the BlockContext for c.
func New(c *options.Context, in Inputs) *BlockContext {
	js, css, asset := Filenames(c.Output.FilenamePrefix, c.Development, c.Output.FilenameContainChunkName)

	supported := slices.Clone(in.Browsers)
	if c.Browserslists != nil {
		supported = slices.Clone(c.Browserslists)
	}

	return &BlockContext{
		JSFilename:        js,
		CSSFilename:       css,
		AssetFilename:     asset,
		SupportedBrowsers: supported,
		CSSTargets:        slices.Clone(supported),
		SWCJavaScript:     SWCOptions(c.Development, false, supported, in.CoreJSVersion),
		SWCTypeScript:     SWCOptions(c.Development, true, supported, in.CoreJSVersion),
		CoreJSVersion:     in.CoreJSVersion,
		NodeEnv:           in.NodeEnv,
		PublicVars:        maps.Clone(in.PublicVars),
	}
}

// NormalizePrefix strips leading slashes and ensures exactly one trailing
// slash. A prefix made only of slashes becomes "".
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// Filenames returns the js, css and asset filename templates.
// Development builds use readable names; production builds use content
// hashes, prefixed with the chunk name when withChunkName is set.
func Filenames(prefix string, development, withChunkName bool) (js, css, asset string) {
	p := NormalizePrefix(prefix)
	if development {
		return p + "js/[name].js", p + "css/[name].css", p + "assets/[name].[hash][ext][query]"
	}
	chunk := ""
	if withChunkName {
		chunk = "[name]."
	}
	return p + "js/" + chunk + "[contenthash].js",
		p + "css/" + chunk + "[contenthash].css",
		p + "assets/" + chunk + "[hash][ext][query]"
}

// SWCOptions returns swc-loader options for JavaScript or TypeScript
// sources.
func SWCOptions(development, typescript bool, browsers []string, coreJS string) tree.Tree {
	parser := map[string]any{"syntax": "ecmascript", "jsx": true, "importAttributes": true}
	if typescript {
		parser = map[string]any{"syntax": "typescript", "tsx": true}
	}

	nodeEnv := `"production"`
	if development {
		nodeEnv = `"development"`
	}

	var targets any = FallbackBrowserQuery
	if len(browsers) > 0 {
		list := make([]any, len(browsers))
		for i, b := range browsers {
			list[i] = b
		}
		targets = list
	}

	env := map[string]any{
		"targets":          targets,
		"mode":             "usage",
		"loose":            false,
		"shippedProposals": false,
	}
	if coreJS != "" {
		env["coreJs"] = coreJS
	}

	return tree.Tree{
		"jsc": map[string]any{
			"parser":          parser,
			"externalHelpers": true,
			"loose":           false,
			"transform": map[string]any{
				"react": map[string]any{
					"runtime":     "automatic",
					"refresh":     development,
					"development": development,
				},
				"optimizer": map[string]any{
					"simplify": true,
					"globals": map[string]any{
						"envs": map[string]any{"NODE_ENV": nodeEnv},
					},
				},
			},
		},
		"env": env,
	}
}
