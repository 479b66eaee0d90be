package blocks

import (
	"context"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Loader package names.
const (
	SWCLoader            = "swc-loader"
	CSSLoader            = "css-loader"
	MiniCSSExtractLoader = "mini-css-extract-plugin/dist/loader.js"
	PostCSSLoader        = "postcss-loader"
	LightningCSSLoader   = "lightningcss-loader"
	SVGRLoader           = "@svgr/webpack"
	ReactCompilerLoader  = "react-compiler-webpack/dist/react-compiler-loader.js"
)

// Packages the loaders block checks for before adding rules.
var (
	transpilerPackages    = []string{"core-js", "@swc/helpers"}
	postcssPackages       = []string{"postcss", "postcss-loader"}
	svgrPackages          = []string{"@svgr/webpack"}
	reactCompilerPackages = []string{"babel-plugin-react-compiler"}
)

var (
	likeCSS        = tree.Regexp(`\.(css|scss|sass)$`)
	nodeModulesDir = tree.Regexp(`node_modules`)
)

// Loaders registers module rules for CSS, SVG, assets and scripts. Rules
// are added in a fixed order; first-match groups merge into one.
func Loaders(c *options.Context, bc *derive.BlockContext, d *Deps) pipeline.Step {
	return func(ctx context.Context, t tree.Tree) (tree.Tree, error) {
		if err := d.ensure(ctx, transpilerPackages, c.Cwd, false); err != nil {
			return nil, err
		}

		var rules []tree.Rule

		// url() references inside stylesheets
		rules = append(rules, tree.OneOf(tree.Rule{
			"issuer": likeCSS,
			"exclude": []any{
				tree.Regexp(`\.(js|mjs|jsx|ts|tsx)$`),
				tree.Regexp(`\.html$`),
				tree.Regexp(`\.json$`),
				tree.Regexp(`\.webpack\[[^\]]+]$`),
			},
			"type": "asset/resource",
		}))

		if c.PostCSS {
			if err := d.ensure(ctx, postcssPackages, c.Cwd, true); err != nil {
				return nil, err
			}
		}
		if !c.BuiltinCSS || c.PostCSS {
			rules = append(rules, cssRule(c, bc))
		}

		if c.SVGR {
			if err := d.ensure(ctx, svgrPackages, c.Cwd, true); err != nil {
				return nil, err
			}
			rules = append(rules,
				tree.Rule{
					"test":          tree.RegexpI(`\.svg$`),
					"type":          "asset",
					"resourceQuery": tree.Regexp(`url`),
				},
				tree.Rule{
					"test":          tree.RegexpI(`\.svg$`),
					"issuer":        tree.Regexp(`\.[jt]sx?$`),
					"resourceQuery": map[string]any{"not": []any{tree.Regexp(`url`)}},
					"use": []any{
						tree.Loader(SWCLoader, cloneOptions(bc.SWCTypeScript)),
						tree.Loader(SVGRLoader, map[string]any{"babel": false}),
					},
				},
			)
		}

		rules = append(rules, tree.OneOf(
			tree.Rule{
				"test": tree.RegexpI(`\.(woff|woff2|eot|ttf|otf)$`),
				"type": "asset/resource",
			},
			tree.Rule{
				"test":      tree.Regexp(`assets\/`),
				"type":      "asset/resource",
				"generator": map[string]any{"filename": "_assets/[hash][ext][query]"},
			},
		))

		if c.ReactCompiler.Enabled {
			if err := d.ensure(ctx, reactCompilerPackages, c.Cwd, true); err != nil {
				return nil, err
			}
		}
		rules = append(rules,
			scriptRule(c, tree.Regexp(`\.[cm]?tsx?$`), bc.SWCTypeScript),
			scriptRule(c, tree.Regexp(`\.[cm]?jsx?$`), bc.SWCJavaScript),
		)

		for _, r := range rules {
			if err := tree.AddRule(t, r); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
}

func cssRule(c *options.Context, bc *derive.BlockContext) tree.Rule {
	var use []any
	if !c.BuiltinCSS {
		use = append(use, tree.Loader(MiniCSSExtractLoader, nil), tree.Loader(CSSLoader, nil))
	}
	if c.PostCSS {
		use = append(use, tree.Loader(PostCSSLoader, nil))
	}
	lightning := map[string]any{"implementation": "lightningcss"}
	if bc.CSSTargets != nil {
		lightning["targets"] = stringsToList(bc.CSSTargets)
	}
	use = append(use, tree.Loader(LightningCSSLoader, lightning))

	return tree.Rule{"test": tree.Regexp(`\.css$`), "use": use}
}

func scriptRule(c *options.Context, test tree.Pattern, swc tree.Tree) tree.Rule {
	use := []any{tree.Loader(SWCLoader, cloneOptions(swc))}
	if c.ReactCompiler.Enabled {
		opts := map[string]any{}
		for k, v := range c.ReactCompiler.Options {
			opts[k] = v
		}
		use = append(use, tree.Loader(ReactCompilerLoader, opts))
	}
	return tree.Rule{
		"test":    test,
		"exclude": []any{nodeModulesDir},
		"use":     use,
	}
}

// cloneOptions copies a shared options tree so rules never alias each
// other.
func cloneOptions(t tree.Tree) map[string]any {
	return map[string]any(t.Clone())
}

func stringsToList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func (d *Deps) ensure(ctx context.Context, pkgs []string, dir string, dev bool) error {
	if d == nil || d.Guard == nil {
		return nil
	}
	return d.Guard.Ensure(ctx, pkgs, dir, dev)
}
