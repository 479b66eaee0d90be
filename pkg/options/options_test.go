package options

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corespeed-io/webpack/internal/envsource"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
)

func TestResolve_AppliesDefaults(t *testing.T) {
	t.Parallel()

	c, err := Resolve(Options{Cwd: "/app"}, envsource.FromMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/app", c.Cwd)
	assert.False(t, c.Development)
	assert.True(t, c.SPA)
	assert.Equal(t, "./public", c.PublicDir)
	assert.Equal(t, "./src/index.html", c.HTMLTemplatePath)
	assert.Equal(t, "/_assets/static/", c.Output.FilenamePrefix)
	assert.False(t, c.Output.FilenameContainChunkName)
	assert.Equal(t, "anonymous", c.Output.CrossOriginLoading)
	assert.Equal(t, "eval-source-map", c.Sourcemap.Development)
	assert.Equal(t, "hidden-source-map", c.Sourcemap.Production)
	assert.Equal(t, portfinder.Request{Port: 3000}, c.DevServerPort)
	assert.Equal(t, map[string]any{}, c.Externals)
	assert.Equal(t, DefaultFrameworkPackages, c.TopLevelFrameworkPackages)
	assert.False(t, c.Analyze.Enabled)
	assert.False(t, c.ReactCompiler.Enabled)
	assert.True(t, c.Dotenv.Enabled)
	assert.Nil(t, c.Browserslists)
	assert.Equal(t, "hidden-source-map", c.Devtool())
}

func TestResolve_ReadsEnvironment(t *testing.T) {
	t.Parallel()

	env := envsource.FromMap(map[string]string{"NODE_ENV": "development", "PORT": "4100", "ANALYZE": "true"})
	c, err := Resolve(Options{Cwd: "/app"}, env)
	require.NoError(t, err)

	assert.True(t, c.Development)
	assert.Equal(t, 4100, c.DevServerPort.Port)
	assert.True(t, c.Analyze.Enabled)
	assert.Equal(t, "eval-source-map", c.Devtool())
}

func TestResolve_OptionsBeatEnvironment(t *testing.T) {
	t.Parallel()

	env := envsource.FromMap(map[string]string{"NODE_ENV": "development", "PORT": "4100", "ANALYZE": "true"})
	c, err := Resolve(Options{
		Cwd:           "/app",
		Development:   Bool(false),
		Analyze:       Off(),
		DevServerPort: DevServerPort{FallbackPort: Int(5000), Ports: []int{5001}, PortRange: []int{6000, 6010}},
	}, env)
	require.NoError(t, err)

	assert.False(t, c.Development)
	assert.False(t, c.Analyze.Enabled)
	assert.Equal(t, portfinder.Request{
		Port:  5000,
		Ports: []int{5001},
		Range: &portfinder.Range{From: 6000, To: 6010},
	}, c.DevServerPort)
}

func TestResolve_KeepsExplicitFalsyValues(t *testing.T) {
	t.Parallel()

	c, err := Resolve(Options{
		Cwd:                       "/app",
		SPA:                       Bool(false),
		HTMLTemplatePath:          String(""),
		Sourcemap:                 Sourcemap{Production: false},
		Output:                    Output{CrossOriginLoading: false, FilenamePrefix: String("")},
		TopLevelFrameworkPackages: []string{},
	}, envsource.FromMap(nil))
	require.NoError(t, err)

	assert.False(t, c.SPA)
	assert.Equal(t, "", c.HTMLTemplatePath)
	assert.Equal(t, false, c.Sourcemap.Production)
	assert.Equal(t, false, c.Output.CrossOriginLoading)
	assert.Equal(t, "", c.Output.FilenamePrefix)
	assert.Empty(t, c.TopLevelFrameworkPackages)
}

func TestResolve_CopiesCallerCollections(t *testing.T) {
	t.Parallel()

	externals := map[string]any{"jquery": "jQuery", "nested": map[string]any{"a": "b"}}
	frameworks := []string{"react"}
	opts := Options{Cwd: "/app", Externals: externals, TopLevelFrameworkPackages: frameworks}

	c, err := Resolve(opts, envsource.FromMap(nil))
	require.NoError(t, err)

	externals["jquery"] = "$"
	externals["nested"].(map[string]any)["a"] = "c"
	frameworks[0] = "vue"

	assert.Equal(t, "jQuery", c.Externals["jquery"])
	assert.Equal(t, map[string]any{"a": "b"}, c.Externals["nested"])
	assert.Equal(t, []string{"react"}, c.TopLevelFrameworkPackages)
}

func TestResolve_ConvertsPluginEntries(t *testing.T) {
	t.Parallel()

	custom := tree.NewPlugin("Custom", nil)
	c, err := Resolve(Options{Cwd: "/app", Plugins: []any{
		map[string]any{"plugin": "SentryPlugin", "options": map[string]any{"org": "acme"}},
		custom,
	}}, envsource.FromMap(nil))
	require.NoError(t, err)

	assert.Equal(t, []any{
		tree.NewPlugin("SentryPlugin", map[string]any{"org": "acme"}),
		custom,
	}, c.Plugins)
}

type sentryPlugin struct {
	org  string
	opts map[string]any
}

func TestResolve_KeepsOpaqueValues(t *testing.T) {
	t.Parallel()

	plugin := sentryPlugin{org: "acme", opts: map[string]any{"release": "1.0"}}
	library := &sentryPlugin{org: "lib"}
	c, err := Resolve(Options{
		Cwd:           "/app",
		Plugins:       []any{plugin},
		Entry:         map[string]any{"main": plugin},
		Output:        Output{Library: library},
		ReactCompiler: With(map[string]any{"target": plugin}),
	}, envsource.FromMap(nil))
	require.NoError(t, err)

	assert.Equal(t, []any{plugin}, c.Plugins)
	assert.Equal(t, plugin, c.Entry.(map[string]any)["main"])
	assert.Same(t, library, c.Output.Library)
	assert.Equal(t, plugin, c.ReactCompiler.Options["target"])
}

func TestResolve_SplitsBrowserslistOverride(t *testing.T) {
	t.Parallel()

	c, err := Resolve(Options{Cwd: "/app", Browserslists: StringList{"> 1%, not dead", "safari >= 15"}}, envsource.FromMap(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"> 1%", "not dead", "safari >= 15"}, c.Browserslists)
}

func TestResolve_Errors_When_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Options{
		DevServerPort: DevServerPort{FallbackPort: Int(70000), PortRange: []int{9000, 8000}},
		Sourcemap:     Sourcemap{Development: true},
	}, envsource.FromMap(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
	assert.Contains(t, err.Error(), "cwd is required")
	assert.Contains(t, err.Error(), "inverted")
}

func TestValidate_RejectsRelativeCwd(t *testing.T) {
	t.Parallel()

	err := Options{Cwd: "app"}.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestToggle_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var opts Options
	require.NoError(t, json.Unmarshal([]byte(`{"analyze":{"analyzerMode":"server"},"reactCompiler":true}`), &opts))
	assert.Equal(t, With(map[string]any{"analyzerMode": "server"}), opts.Analyze)
	assert.Equal(t, On(), opts.ReactCompiler)

	var bad Toggle
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &bad))
}

func TestDotenv_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var d Dotenv
	require.NoError(t, json.Unmarshal([]byte(`{"path":".env.local"}`), &d))
	assert.Equal(t, Dotenv{Enabled: true, Paths: []string{".env.local"}}, d)

	require.NoError(t, json.Unmarshal([]byte(`false`), &d))
	assert.Equal(t, Dotenv{}, d)

	b, err := json.Marshal(Dotenv{Enabled: true, Paths: []string{"a", "b"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":["a","b"]}`, string(b))
}

func TestResolve_AcceptsBrowserlistsSpelling(t *testing.T) {
	t.Parallel()

	c, err := Resolve(Options{Cwd: "/app", Browserlists: StringList{"chrome >= 100"}}, envsource.FromMap(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"chrome >= 100"}, c.Browserslists)

	c, err = Resolve(Options{
		Cwd:           "/app",
		Browserslists: StringList{"safari >= 15"},
		Browserlists:  StringList{"chrome >= 100"},
	}, envsource.FromMap(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"safari >= 15"}, c.Browserslists)
}
