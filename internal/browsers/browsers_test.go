package browsers

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsRcFileSections(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	rc := `# shared
> 0.5%, last 2 versions
not dead

[development]
last 1 chrome version
last 1 firefox version

[production staging]
defaults
`
	require.NoError(t, afero.WriteFile(fsys, "/app/.browserslistrc", []byte(rc), 0o644))

	dev, ok, err := Load(fsys, "/app", true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"last 1 chrome version", "last 1 firefox version"}, dev)

	prod, ok, err := Load(fsys, "/app", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"defaults"}, prod)
}

func TestLoad_FallsBackToDefaultsSection(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/browserslist", []byte("chrome > 70\nsafari >= 11\n"), 0o644))

	got, ok, err := Load(fsys, "/app/src/pages", true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"chrome > 70", "safari >= 11"}, got)
}

func TestLoad_ReadsPackageJSONField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pkg  string
		dev  bool
		want []string
	}{
		{name: "string", pkg: `{"browserslist":"> 1%, not dead"}`, want: []string{"> 1%", "not dead"}},
		{name: "list", pkg: `{"browserslist":["> 1%","not dead"]}`, want: []string{"> 1%", "not dead"}},
		{
			name: "env object",
			pkg:  `{"browserslist":{"production":["> 1%"],"development":"last 1 chrome version"}}`,
			dev:  true,
			want: []string{"last 1 chrome version"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/app/package.json", []byte(tt.pkg), 0o644))

			got, ok, err := Load(fsys, "/app", tt.dev)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NearestDirectoryWins(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/repo/.browserslistrc", []byte("ie 11"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/repo/apps/web/package.json", []byte(`{"browserslist":["chrome 120"]}`), 0o644))

	got, ok, err := Load(fsys, "/repo/apps/web", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"chrome 120"}, got)
}

func TestLoad_Absent_When_NoConfig(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/package.json", []byte(`{"name":"app"}`), 0o644))

	got, ok, err := Load(fsys, "/app", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoad_Absent_When_EnvSectionMissingAndNoDefaults(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/.browserslistrc", []byte("[production]\n> 1%\n"), 0o644))

	_, ok, err := Load(fsys, "/app", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_Errors_When_ConfigIsAmbiguous(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/.browserslistrc", []byte("> 1%"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/app/package.json", []byte(`{"browserslist":["> 2%"]}`), 0o644))

	_, ok, err := Load(fsys, "/app", false)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestLoad_Errors_When_PackageJSONBroken(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/app/package.json", []byte(`{`), 0o644))

	_, ok, err := Load(fsys, "/app", false)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestParseQueries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b c", "d"}, ParseQueries(" a, b c ,,d "))
	assert.Nil(t, ParseQueries("  "))
}
