package blocks

import (
	"context"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Base fills mode, entry and experiments.
func Base(c *options.Context, _ *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		mode := "production"
		if c.Development {
			mode = "development"
		}
		t.SetDefault("mode", mode)
		if c.Entry != nil {
			t.SetDefault("entry", c.Entry)
		}

		exp, err := t.Object("experiments")
		if err != nil {
			return nil, err
		}
		exp.SetDefault("css", c.BuiltinCSS)
		exp.SetDefault("cacheUnaffected", true)
		return t, nil
	}
}

// Sourcemap fills devtool for the active mode.
func Sourcemap(c *options.Context, _ *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		t.SetDefault("devtool", c.Devtool())
		return t, nil
	}
}

// External normalizes externals into a list and appends the configured
// externals object unless it is empty or already in the list.
func External(c *options.Context, _ *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		var list []any
		if t.Has("externals") {
			if existing, ok := tree.AsList(t["externals"]); ok {
				list = append(list, existing...)
			} else {
				list = append(list, t["externals"])
			}
		}

		if len(c.Externals) > 0 && !containsEqual(list, c.Externals) {
			list = append(list, map[string]any(tree.Tree(c.Externals).Clone()))
		}

		if list != nil {
			t.Set("externals", list)
		}
		return t, nil
	}
}

func containsEqual(list []any, v any) bool {
	for _, item := range list {
		if obj, ok := tree.AsObject(item); ok && tree.Equal(map[string]any(obj), v) {
			return true
		}
	}
	return false
}
