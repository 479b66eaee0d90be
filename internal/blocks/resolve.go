package blocks

import (
	"context"
	"slices"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// TsconfigPathsPlugin maps tsconfig "paths" onto module resolution.
const TsconfigPathsPlugin = "TsconfigPathsPlugin"

// Resolution defaults.
var (
	Extensions     = []string{".ts", ".tsx", ".jsx", ".mjs", ".cjs", ".js", ".json"}
	ConditionNames = []string{"import", "module", "require", "default"}
)

// Resolve fills module resolution settings and appends the tsconfig paths
// plugin.
func Resolve(c *options.Context, _ *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		res, err := t.Object("resolve")
		if err != nil {
			return nil, err
		}

		res.SetDefault("extensions", stringsToList(Extensions))
		res.SetDefault("cache", true)
		res.SetDefault("unsafeCache", false)
		res.SetDefault("conditionNames", stringsToList(ConditionNames))

		if c.LodashTreeShaking {
			alias, err := res.Object("alias")
			if err != nil {
				return nil, within(err, "resolve")
			}
			alias.SetDefault("lodash", "lodash-es")
		}

		// The plugin cannot read resolve.extensions and needs its own copy.
		exts := Extensions
		if list, ok := tree.AsList(res["extensions"]); ok {
			exts = exts[:0:0]
			for _, e := range list {
				if s, ok := e.(string); ok {
					exts = append(exts, s)
				}
			}
		}
		plugin := tree.NewPlugin(TsconfigPathsPlugin, map[string]any{
			"extensions": stringsToList(slices.Clone(exts)),
		})
		if err := res.AppendList("plugins", plugin); err != nil {
			return nil, within(err, "resolve")
		}
		return t, nil
	}
}
