package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corespeed-io/webpack/pkg/tree"
)

func fill(key string, v any) Step {
	return func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		t.SetDefault(key, v)
		return t, nil
	}
}

func TestExecutor_Run_AppliesStagesInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	record := func(name string) Stage {
		return Stage{Name: name, Run: func(_ context.Context, t tree.Tree) (tree.Tree, error) {
			order = append(order, name)
			return t, t.AppendList("trace", name)
		}}
	}

	out, err := NewExecutor(nil).Run(context.Background(), []Stage{record("a"), record("b"), record("c")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []any{"a", "b", "c"}, out["trace"])
}

func TestExecutor_Run_DoesNotModifyBase(t *testing.T) {
	t.Parallel()

	base := tree.Tree{"output": map[string]any{"path": "/dist"}}
	stages := []Stage{{Name: "output", Run: func(_ context.Context, t tree.Tree) (tree.Tree, error) {
		out, err := t.Object("output")
		if err != nil {
			return nil, err
		}
		out.SetDefault("filename", "[name].js")
		return t, nil
	}}}

	out, err := NewExecutor(nil).Run(context.Background(), stages, base)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"path": "/dist"}, base["output"])
	assert.Equal(t, map[string]any{"path": "/dist", "filename": "[name].js"}, out["output"])
}

func TestExecutor_Run_StopsOnFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var ranAfter bool
	stages := []Stage{
		{Name: "base", Run: fill("mode", "production")},
		{Name: "external", Run: func(context.Context, tree.Tree) (tree.Tree, error) { return nil, boom }},
		{Name: "output", Run: func(_ context.Context, t tree.Tree) (tree.Tree, error) {
			ranAfter = true
			return t, nil
		}},
	}

	out, err := NewExecutor(nil).Run(context.Background(), stages, tree.New())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.False(t, ranAfter)
	assert.ErrorIs(t, err, boom)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "external", se.Stage)
	assert.Equal(t, "external block: boom", err.Error())
}

func TestExecutor_Run_RejectsNilTree(t *testing.T) {
	t.Parallel()

	stages := []Stage{{Name: "broken", Run: func(context.Context, tree.Tree) (tree.Tree, error) { return nil, nil }}}
	_, err := NewExecutor(nil).Run(context.Background(), stages, nil)
	assert.ErrorIs(t, err, ErrNilTree)
}

func TestExecutor_Run_Errors_When_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(nil).Run(ctx, []Stage{{Name: "base", Run: fill("mode", "x")}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_Run_IsIdempotentForFilledFields(t *testing.T) {
	t.Parallel()

	stages := []Stage{
		{Name: "base", Run: fill("mode", "production")},
		{Name: "sourcemap", Run: fill("devtool", "hidden-source-map")},
	}
	exec := NewExecutor(nil)

	first, err := exec.Run(context.Background(), stages, tree.Tree{"devtool": false})
	require.NoError(t, err)
	second, err := exec.Run(context.Background(), stages, first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, false, second["devtool"])
}

func TestExecutor_Run_LogsEachBlock(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	_, err := NewExecutor(logger).Run(context.Background(), []Stage{{Name: "base", Run: fill("mode", "x")}}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "block applied")
	assert.Contains(t, buf.String(), "block=base")
}
