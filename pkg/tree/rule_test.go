package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRule_MergesFirstMatchGroups_InCallOrder(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, AddRule(tr, OneOf(Rule{"type": "a"}, Rule{"type": "b"})))
	require.NoError(t, AddRule(tr, OneOf(Rule{"type": "c"})))

	groups := FirstMatchGroups(tr)
	require.Len(t, groups, 1)
	want := []any{
		map[string]any{"type": "a"},
		map[string]any{"type": "b"},
		map[string]any{"type": "c"},
	}
	assert.Empty(t, cmp.Diff(want, groups[0]["oneOf"]))
}

func TestAddRule_AppendsPlainRules(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, AddRule(tr, Rule{"test": Regexp(`\.css$`)}))
	require.NoError(t, AddRule(tr, OneOf(Rule{"type": "asset"})))
	require.NoError(t, AddRule(tr, Rule{"test": Regexp(`\.tsx?$`)}))

	rules, ok := tr.Get("module", "rules")
	require.True(t, ok)
	assert.Len(t, rules, 3)
	assert.Len(t, FirstMatchGroups(tr), 1)
}

func TestAddRule_ExtendsCallerGroup(t *testing.T) {
	t.Parallel()

	tr := Tree{"module": map[string]any{"rules": []any{
		map[string]any{"test": "x"},
		map[string]any{"oneOf": []any{map[string]any{"type": "caller"}}},
	}}}
	require.NoError(t, AddRule(tr, OneOf(Rule{"type": "block"})))

	groups := FirstMatchGroups(tr)
	require.Len(t, groups, 1)
	assert.Equal(t, []any{
		map[string]any{"type": "caller"},
		map[string]any{"type": "block"},
	}, groups[0]["oneOf"])
}

func TestAddRule_TreatsOneOfWithCriteriaAsPlainRule(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, AddRule(tr, OneOf(Rule{"type": "a"})))
	require.NoError(t, AddRule(tr, Rule{
		"test":  Regexp(`\.svg$`),
		"oneOf": []any{map[string]any{"type": "b"}},
	}))

	rules, _ := tr.Get("module", "rules")
	assert.Len(t, rules, 2)
	assert.Len(t, FirstMatchGroups(tr), 1)
}

func TestAddRule_Errors_When_RulesIsNotAList(t *testing.T) {
	t.Parallel()

	tr := Tree{"module": map[string]any{"rules": "nope"}}
	err := AddRule(tr, Rule{"test": "x"})
	require.ErrorIs(t, err, ErrShape)
	assert.Contains(t, err.Error(), "module.rules")
}

func TestAddRule_Errors_When_ModuleIsNotAnObject(t *testing.T) {
	t.Parallel()

	err := AddRule(Tree{"module": []any{}}, Rule{"test": "x"})
	assert.ErrorIs(t, err, ErrShape)
}
