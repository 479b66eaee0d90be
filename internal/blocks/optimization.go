package blocks

import (
	"context"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Minimizer plugin names.
const (
	TerserPlugin          = "TerserPlugin"
	LightningCSSMinPlugin = "LightningCssMinifyPlugin"
	SWCMinify             = "swcMinify"
)

// Optimization forces the optimization flags the pipeline owns and appends
// the script and stylesheet minimizers.
func Optimization(c *options.Context, bc *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		opt, err := t.Object("optimization")
		if err != nil {
			return nil, err
		}

		opt.Set("emitOnErrors", !c.Development)
		opt.Set("checkWasmTypes", false)
		// DefinePlugin carries NODE_ENV.
		opt.Set("nodeEnv", false)

		terser := tree.NewPlugin(TerserPlugin, map[string]any{
			"minify": SWCMinify,
			"terserOptions": map[string]any{
				"compress": map[string]any{
					"ecma":         2018,
					"comparisons":  false,
					"inline":       2,
					"drop_console": !c.Development && c.DropConsoleInProduction,
				},
				"mangle": map[string]any{"safari10": true},
				"format": map[string]any{
					"ecma":       2018,
					"safari10":   true,
					"comments":   false,
					"ascii_only": true,
				},
			},
		})

		lightning := map[string]any{"implementation": "lightningcss"}
		if bc.CSSTargets != nil {
			lightning["targets"] = stringsToList(bc.CSSTargets)
		}

		if err := opt.AppendList("minimizer", terser, tree.NewPlugin(LightningCSSMinPlugin, lightning)); err != nil {
			return nil, within(err, "optimization")
		}
		return t, nil
	}
}
