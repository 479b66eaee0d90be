package tree

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Tree is a webpack configuration object. Nested objects are stored as
// map[string]any and lists as []any.
type Tree map[string]any

// New returns an empty tree.
func New() Tree {
	return Tree{}
}

// Has reports whether key is present.
func (t Tree) Has(key string) bool {
	v, ok := t[key]
	return ok && v != nil
}

// Set stores v under key unconditionally.
func (t Tree) Set(key string, v any) {
	t[key] = v
}

// SetDefault stores v under key only when key is absent. It reports whether
// the value was written.
func (t Tree) SetDefault(key string, v any) bool {
	if t.Has(key) {
		return false
	}
	t[key] = v
	return true
}

// Object returns the nested object stored under key, creating an empty one
// when the key is absent. The returned Tree aliases the stored map, so
// writes through it land in t.
func (t Tree) Object(key string) (Tree, error) {
	if !t.Has(key) {
		m := map[string]any{}
		t[key] = m
		return Tree(m), nil
	}
	obj, ok := AsObject(t[key])
	if !ok {
		return nil, &ShapeError{Path: key, Want: "object", Got: t[key]}
	}
	// Store the plain map form so later lookups see one representation.
	t[key] = map[string]any(obj)
	return obj, nil
}

// ObjectIfPresent returns the nested object under key when key holds an
// object. It reports false when the key is absent or holds something else.
func (t Tree) ObjectIfPresent(key string) (Tree, bool) {
	if !t.Has(key) {
		return nil, false
	}
	return AsObject(t[key])
}

// AppendList appends items to the list stored under key, creating the list
// when the key is absent.
func (t Tree) AppendList(key string, items ...any) error {
	list, err := t.List(key)
	if err != nil {
		return err
	}
	t[key] = append(list, items...)
	return nil
}

// List returns the list stored under key as []any, creating an empty list
// when absent. Typed slices such as []string are converted in place.
func (t Tree) List(key string) ([]any, error) {
	if !t.Has(key) {
		list := []any{}
		t[key] = list
		return list, nil
	}
	list, ok := AsList(t[key])
	if !ok {
		return nil, &ShapeError{Path: key, Want: "list", Got: t[key]}
	}
	t[key] = list
	return list, nil
}

// Get walks path through nested objects and returns the value found there.
// It reports false when any segment is absent or not an object.
func (t Tree) Get(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := t
	for i, key := range path {
		if !cur.Has(key) {
			return nil, false
		}
		if i == len(path)-1 {
			return cur[key], true
		}
		next, ok := AsObject(cur[key])
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Clone returns a copy of t in which every object and list of the tree is
// duplicated. Other values, such as plugin instances supplied by the
// caller, are shared with t and never copied field by field.
func (t Tree) Clone() Tree {
	if t == nil {
		return New()
	}
	return Tree(copyObject(t))
}

// CopyValue copies v the way Clone copies tree values: map[string]any,
// Tree, Rule and []any containers are duplicated recursively, Plugin
// options are copied, and every other value is returned as is.
func CopyValue(v any) any {
	switch x := v.(type) {
	case Tree:
		if x == nil {
			return x
		}
		return Tree(copyObject(x))
	case Rule:
		if x == nil {
			return x
		}
		return Rule(copyObject(x))
	case map[string]any:
		if x == nil {
			return x
		}
		return copyObject(x)
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = CopyValue(item)
		}
		return out
	case Plugin:
		x.Options = CopyValue(x.Options)
		return x
	default:
		return v
	}
}

func copyObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

// AsObject converts v to a Tree when it is an object.
func AsObject(v any) (Tree, bool) {
	switch o := v.(type) {
	case Tree:
		return o, o != nil
	case map[string]any:
		return Tree(o), o != nil
	case Rule:
		return Tree(o), o != nil
	default:
		return nil, false
	}
}

// AsList converts v to []any when it is a slice. Typed slices are copied
// into a new []any.
func AsList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Equal reports whether two tree values are deeply equal. Empty and nil
// collections compare equal. Unexported fields of opaque values take part
// in the comparison.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty(), cmp.Exporter(func(reflect.Type) bool { return true }))
}

// ShapeError reports a tree value whose type does not fit the merge a block
// needs to perform, such as a string where an object is expected.
type ShapeError struct {
	Path string
	Want string
	Got  any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("configuration %s: expected %s, got %T", e.Path, e.Want, e.Got)
}

// Is lets errors.Is match any ShapeError against ErrShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// Within prefixes the error path with parent segments.
func (e *ShapeError) Within(parents ...string) *ShapeError {
	return &ShapeError{
		Path: strings.Join(append(parents, e.Path), "."),
		Want: e.Want,
		Got:  e.Got,
	}
}
