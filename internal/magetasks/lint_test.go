package magetasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnformatted(t *testing.T) {
	var err error
	out := capture(t, func() { err = unformatted("") })
	assert.NoError(t, err)
	assert.Empty(t, out)

	out = capture(t, func() { err = unformatted("pkg/tree/tree.go\ncmd/webpack-config/main.go\n") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 file(s) need formatting")
	assert.Contains(t, err.Error(), "pkg/tree/tree.go, cmd/webpack-config/main.go")
	assert.Contains(t, out, "not formatted: pkg/tree/tree.go")
}
