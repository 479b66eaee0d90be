package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/xlab/treeprint"
	"gopkg.in/yaml.v3"

	"github.com/corespeed-io/webpack/pkg/tree"
)

type renderer func(w io.Writer, t tree.Tree) error

var renderers = map[string]renderer{
	"json": renderJSON,
	"yaml": renderYAML,
	"tree": renderTree,
}

func renderJSON(w io.Writer, t tree.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any(t))
}

func renderYAML(w io.Writer, t tree.Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(t)); err != nil {
		return err
	}
	return enc.Close()
}

// renderTree prints objects and lists as branches and everything else as
// "key: value" leaves. Plugins show as a branch named after the plugin.
func renderTree(w io.Writer, t tree.Tree) error {
	root := treeprint.NewWithRoot("webpack")
	addObject(root, map[string]any(t))
	_, err := io.WriteString(w, root.String())
	return err
}

func addObject(branch treeprint.Tree, obj map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		addValue(branch, k, obj[k])
	}
}

func addValue(branch treeprint.Tree, label string, v any) {
	if obj, ok := tree.AsObject(v); ok {
		addObject(branch.AddBranch(label), map[string]any(obj))
		return
	}
	switch x := v.(type) {
	case tree.Plugin:
		b := branch.AddBranch(fmt.Sprintf("%s: %s", label, x.Name))
		if x.Options != nil {
			addValue(b, "options", x.Options)
		}
		return
	case fmt.Stringer:
		branch.AddNode(fmt.Sprintf("%s: %s", label, x))
		return
	case string:
		branch.AddNode(fmt.Sprintf("%s: %q", label, x))
		return
	}
	if list, ok := tree.AsList(v); ok {
		b := branch.AddBranch(fmt.Sprintf("%s [%d]", label, len(list)))
		for i, item := range list {
			addValue(b, fmt.Sprintf("%d", i), item)
		}
		return
	}
	branch.AddNode(fmt.Sprintf("%s: %v", label, v))
}
