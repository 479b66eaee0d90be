package blocks

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// Plugin constructor names.
const (
	CleanPlugin          = "CleanWebpackPlugin"
	ProgressPlugin       = "WebpackBar"
	ReactRefreshPlugin   = "ReactRefreshPlugin"
	MiniCSSExtractPlugin = "MiniCssExtractPlugin"
	DefinePlugin         = "DefinePlugin"
	CopyPlugin           = "CopyWebpackPlugin"
	HTMLPlugin           = "HtmlWebpackPlugin"
	AnalyzerPlugin       = "BundleAnalyzerPlugin"
)

// Plugins appends the synthesized plugins followed by the caller's plugins.
func Plugins(c *options.Context, bc *derive.BlockContext, _ *Deps) pipeline.Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		var ps []any
		if c.Development {
			ps = append(ps, tree.NewPlugin(ReactRefreshPlugin, nil))
		} else {
			ps = append(ps, tree.NewPlugin(CleanPlugin, nil), tree.NewPlugin(ProgressPlugin, nil))
		}

		if !c.BuiltinCSS {
			ps = append(ps, tree.NewPlugin(MiniCSSExtractPlugin, map[string]any{"filename": bc.CSSFilename}))
		}

		defs, err := Definitions(c, bc)
		if err != nil {
			return nil, err
		}
		ps = append(ps,
			tree.NewPlugin(DefinePlugin, defs),
			tree.NewPlugin(CopyPlugin, map[string]any{
				"patterns": []any{map[string]any{
					"from":             c.PublicDir,
					"to":               ".",
					"noErrorOnMissing": true,
				}},
			}),
		)

		if c.HTMLTemplatePath != "" {
			ps = append(ps, tree.NewPlugin(HTMLPlugin, map[string]any{"template": c.HTMLTemplatePath}))
		}
		if c.Analyze.Enabled {
			opts := map[string]any{"analyzerMode": "static"}
			if c.Analyze.Options != nil {
				opts = map[string]any{}
				for k, v := range c.Analyze.Options {
					opts[k] = v
				}
			}
			ps = append(ps, tree.NewPlugin(AnalyzerPlugin, opts))
		}

		ps = append(ps, c.Plugins...)
		if err := t.AppendList("plugins", ps...); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Definitions returns the compile-time substitutions for DefinePlugin.
// Every value is JavaScript source text.
func Definitions(c *options.Context, bc *derive.BlockContext) (map[string]any, error) {
	nodeEnv := bc.NodeEnv
	if nodeEnv == "" {
		nodeEnv = "production"
		if c.Development {
			nodeEnv = "development"
		}
	}

	defs := map[string]any{
		"process.env.NODE_ENV": envsource.Quote(nodeEnv),
		"import.meta.env.DEV":  strconv.FormatBool(c.Development),
		"import.meta.env.PROD": strconv.FormatBool(!c.Development),
		"typeof window":        envsource.Quote("object"),
	}

	public := make(map[string]json.RawMessage, len(bc.PublicVars))
	for name, literal := range bc.PublicVars {
		public[name] = json.RawMessage(literal)
		defs["process.env."+name] = literal
	}
	obj, err := marshalNoEscape(public)
	if err != nil {
		return nil, err
	}
	defs["process.env"] = obj
	return defs, nil
}

func marshalNoEscape(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
