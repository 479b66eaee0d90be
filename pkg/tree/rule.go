package tree

import "errors"

// Rule is one entry of module.rules.
type Rule map[string]any

// matchKeys are the rule properties that restrict which modules a rule
// applies to. A rule carrying any of them is not a bare first-match group.
var matchKeys = []string{
	"test", "include", "exclude", "resource", "resourceQuery",
	"resourceFragment", "realResource", "issuer", "issuerLayer", "compiler",
	"dependency", "descriptionData", "layer", "mimetype", "scheme", "with",
	"assert",
}

// OneOf returns a first-match group over the given sub-rules.
func OneOf(rules ...Rule) Rule {
	list := make([]any, len(rules))
	for i, r := range rules {
		list[i] = map[string]any(r)
	}
	return Rule{"oneOf": list}
}

// IsFirstMatchGroup reports whether r holds an ordered oneOf list and no
// matching criteria of its own.
func (r Rule) IsFirstMatchGroup() bool {
	return isFirstMatchGroup(Tree(r))
}

func isFirstMatchGroup(t Tree) bool {
	if !t.Has("oneOf") {
		return false
	}
	if _, ok := AsList(t["oneOf"]); !ok {
		return false
	}
	for _, k := range matchKeys {
		if t.Has(k) {
			return false
		}
	}
	return true
}

// AddRule registers rule under module.rules. A first-match group is merged
// into the existing top-level group when one exists, appending its sub-rules
// after the ones already there. Any other rule is appended as a new entry.
func AddRule(t Tree, rule Rule) error {
	module, err := t.Object("module")
	if err != nil {
		return err
	}
	rules, err := module.List("rules")
	if err != nil {
		var se *ShapeError
		if errors.As(err, &se) {
			return se.Within("module")
		}
		return err
	}

	if rule.IsFirstMatchGroup() {
		if group, ok := findFirstMatchGroup(rules); ok {
			subs, _ := AsList(rule["oneOf"])
			existing, _ := AsList(group["oneOf"])
			group["oneOf"] = append(existing, subs...)
			return nil
		}
	}

	module["rules"] = append(rules, map[string]any(rule))
	return nil
}

// FirstMatchGroups returns every top-level first-match group in module.rules.
func FirstMatchGroups(t Tree) []Tree {
	module, ok := t.ObjectIfPresent("module")
	if !ok {
		return nil
	}
	rules, ok := AsList(module["rules"])
	if !ok {
		return nil
	}
	var groups []Tree
	for _, r := range rules {
		if obj, ok := AsObject(r); ok && isFirstMatchGroup(obj) {
			groups = append(groups, obj)
		}
	}
	return groups
}

func findFirstMatchGroup(rules []any) (Tree, bool) {
	for _, r := range rules {
		if obj, ok := AsObject(r); ok && isFirstMatchGroup(obj) {
			return obj, true
		}
	}
	return nil, false
}
