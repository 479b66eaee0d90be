package derive

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pkgwalk"
)

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"assets":           "assets/",
		"/assets/":         "assets/",
		"/assets":          "assets/",
		"assets//":         "assets/",
		"/_assets/static/": "_assets/static/",
		"//cdn/static":     "cdn/static/",
		"":                 "",
		"/":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePrefix(in), in)
	}
}

func TestFilenames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dev       bool
		chunkName bool
		want      [3]string
	}{
		{
			name: "development",
			dev:  true,
			want: [3]string{"s/js/[name].js", "s/css/[name].css", "s/assets/[name].[hash][ext][query]"},
		},
		{
			name: "production",
			want: [3]string{"s/js/[contenthash].js", "s/css/[contenthash].css", "s/assets/[hash][ext][query]"},
		},
		{
			name:      "production with chunk name",
			chunkName: true,
			want:      [3]string{"s/js/[name].[contenthash].js", "s/css/[name].[contenthash].css", "s/assets/[name].[hash][ext][query]"},
		},
		{
			name:      "development ignores chunk name",
			dev:       true,
			chunkName: true,
			want:      [3]string{"s/js/[name].js", "s/css/[name].css", "s/assets/[name].[hash][ext][query]"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			js, css, asset := Filenames("/s", tt.dev, tt.chunkName)
			assert.Equal(t, tt.want, [3]string{js, css, asset})
		})
	}
}

func TestSWCOptions_Dialects(t *testing.T) {
	t.Parallel()

	ts := SWCOptions(true, true, nil, "3.38")
	parser, ok := ts.Get("jsc", "parser")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"syntax": "typescript", "tsx": true}, parser)

	js := SWCOptions(false, false, []string{"chrome 120"}, "")
	parser, ok = js.Get("jsc", "parser")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"syntax": "ecmascript", "jsx": true, "importAttributes": true}, parser)
}

func TestSWCOptions_FollowsMode(t *testing.T) {
	t.Parallel()

	dev := SWCOptions(true, false, nil, "3.38")
	refresh, _ := dev.Get("jsc", "transform", "react", "refresh")
	assert.Equal(t, true, refresh)
	nodeEnv, _ := dev.Get("jsc", "transform", "optimizer", "globals", "envs", "NODE_ENV")
	assert.Equal(t, `"development"`, nodeEnv)
	targets, _ := dev.Get("env", "targets")
	assert.Equal(t, FallbackBrowserQuery, targets)
	coreJS, _ := dev.Get("env", "coreJs")
	assert.Equal(t, "3.38", coreJS)

	prod := SWCOptions(false, false, []string{"chrome 120", "safari 17"}, "")
	nodeEnv, _ = prod.Get("jsc", "transform", "optimizer", "globals", "envs", "NODE_ENV")
	assert.Equal(t, `"production"`, nodeEnv)
	targets, _ = prod.Get("env", "targets")
	assert.Equal(t, []any{"chrome 120", "safari 17"}, targets)
	_, ok := prod.Get("env", "coreJs")
	assert.False(t, ok)
}

func TestNew_PrefersBrowserslistOverride(t *testing.T) {
	t.Parallel()

	c, err := options.Resolve(options.Options{
		Cwd:           "/app",
		Development:   options.Bool(false),
		Browserslists: options.StringList{"chrome 100"},
		Output:        options.Output{FilenamePrefix: options.String("static")},
	}, envsource.FromMap(nil))
	require.NoError(t, err)

	bc := New(c, Inputs{
		Browsers:      []string{"ie 11"},
		CoreJSVersion: "3.38",
		NodeEnv:       "production",
		PublicVars:    map[string]string{"PUBLIC_A": `"1"`},
	})

	assert.Equal(t, "static/js/[contenthash].js", bc.JSFilename)
	assert.Equal(t, []string{"chrome 100"}, bc.SupportedBrowsers)
	assert.Equal(t, []string{"chrome 100"}, bc.CSSTargets)
	assert.Equal(t, "3.38", bc.CoreJSVersion)
	assert.Equal(t, map[string]string{"PUBLIC_A": `"1"`}, bc.PublicVars)
	targets, _ := bc.SWCTypeScript.Get("env", "targets")
	assert.Equal(t, []any{"chrome 100"}, targets)
}

func TestNew_LeavesBrowsersUndefined_When_NoneFound(t *testing.T) {
	t.Parallel()

	c, err := options.Resolve(options.Options{Cwd: "/app"}, envsource.FromMap(nil))
	require.NoError(t, err)

	bc := New(c, Inputs{})
	assert.Nil(t, bc.SupportedBrowsers)
	assert.Nil(t, bc.CSSTargets)
	assert.Equal(t, "_assets/static/css/[contenthash].css", bc.CSSFilename)
}

func TestCoreJSVersion(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/node_modules/core-js/package.json", []byte(`{"name":"core-js","version":"3.38.1"}`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/bad/node_modules/core-js/package.json", []byte(`{"name":"core-js","version":"latest"}`), 0o644))

	r := pkgwalk.NewResolver(fsys)
	v, err := CoreJSVersion(r, "/app/src")
	require.NoError(t, err)
	assert.Equal(t, "3.38", v)

	_, err = CoreJSVersion(r, "/bad")
	assert.Error(t, err)

	_, err = CoreJSVersion(r, "/none")
	assert.ErrorIs(t, err, pkgwalk.ErrNotFound)
}
