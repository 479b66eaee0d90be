package blocks

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Split chunk settings forced on an object-valued splitChunks.
const (
	MaxInitialRequests = 25
	MinChunkSize       = 20000
	FrameworkPriority  = 40
	RuntimeChunkName   = "webpack"
)

// FrameworkTest is the cacheGroups.framework test: a module belongs to the
// framework chunk when its resource path starts with one of Prefixes.
// Prefixes are in match-priority order.
type FrameworkTest struct {
	Prefixes []string
}

// Match reports whether resource lies inside one of the framework
// package directories. An empty resource never matches.
func (f FrameworkTest) Match(resource string) bool {
	if resource == "" {
		return false
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(resource, p) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the test as {"resourceStartsWith": [...]}.
func (f FrameworkTest) MarshalJSON() ([]byte, error) {
	prefixes := f.Prefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	return json.Marshal(map[string][]string{"resourceStartsWith": prefixes})
}

// MarshalYAML renders the test the same way MarshalJSON does.
func (f FrameworkTest) MarshalYAML() (any, error) {
	prefixes := f.Prefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	return map[string][]string{"resourceStartsWith": prefixes}, nil
}

// SplitChunks sets the runtime chunk and the framework cache group. An
// explicit splitChunks: false is left alone.
func SplitChunks(c *options.Context, _ *derive.BlockContext, d *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		opt, err := t.Object("optimization")
		if err != nil {
			return nil, err
		}

		if rc, ok := opt["runtimeChunk"].(string); ok && rc == "single" {
			opt.Set("runtimeChunk", map[string]any{"name": RuntimeChunkName})
		} else {
			opt.SetDefault("runtimeChunk", map[string]any{"name": RuntimeChunkName})
		}

		opt.SetDefault("splitChunks", map[string]any{})
		sc, ok := opt.ObjectIfPresent("splitChunks")
		if !ok {
			return t, nil
		}
		sc.Set("maxInitialRequests", MaxInitialRequests)
		sc.Set("minSize", MinChunkSize)

		groups, err := sc.Object("cacheGroups")
		if err != nil {
			return nil, within(err, "optimization", "splitChunks")
		}
		if !groups.Has("framework") {
			paths := d.resolver().Closure(c.TopLevelFrameworkPackages, c.Cwd)
			d.logger().Debug("framework packages", "packages", c.TopLevelFrameworkPackages, "dirs", len(paths))
			groups.Set("framework", map[string]any{
				"chunks":   "all",
				"name":     "framework",
				"test":     FrameworkTest{Prefixes: paths},
				"priority": FrameworkPriority,
				"enforce":  true,
			})
		}
		return t, nil
	}
}
