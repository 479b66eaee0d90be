package blocks

import (
	"context"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Hash settings forced on output.
const (
	HashFunction           = "xxhash64"
	HashDigestLength       = 16
	HotUpdateChunkFilename = "[id].[fullhash].hot-update.js"
	HotUpdateMainFilename  = "[fullhash].[runtime].hot-update.json"
)

// Output fills output paths and filenames and forces the hashing fields.
func Output(c *options.Context, bc *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		out, err := t.Object("output")
		if err != nil {
			return nil, err
		}

		out.Set("asyncChunks", true)
		out.Set("hashFunction", HashFunction)
		out.Set("hashDigestLength", HashDigestLength)
		out.Set("hotUpdateChunkFilename", HotUpdateChunkFilename)
		out.Set("hotUpdateMainFilename", HotUpdateMainFilename)

		out.SetDefault("crossOriginLoading", c.Output.CrossOriginLoading)
		if c.Output.Path != "" {
			out.SetDefault("path", c.Output.Path)
		}
		if c.Output.Library != nil {
			out.SetDefault("library", c.Output.Library)
		}
		out.SetDefault("filename", bc.JSFilename)
		out.SetDefault("chunkFilename", bc.JSFilename)
		out.SetDefault("cssFilename", bc.CSSFilename)
		out.SetDefault("cssChunkFilename", bc.CSSFilename)
		out.SetDefault("assetModuleFilename", bc.AssetFilename)
		return t, nil
	}
}
