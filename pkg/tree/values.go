package tree

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrShape matches every *ShapeError.
var ErrShape = errors.New("unexpected configuration shape")

// Pattern is a JavaScript regular expression literal carried through the
// tree verbatim. It renders as /source/flags.
type Pattern struct {
	Source string
	Flags  string
}

// Regexp builds a Pattern without flags.
func Regexp(source string) Pattern {
	return Pattern{Source: source}
}

// RegexpI builds a case-insensitive Pattern.
func RegexpI(source string) Pattern {
	return Pattern{Source: source, Flags: "i"}
}

func (p Pattern) String() string {
	return "/" + p.Source + "/" + p.Flags
}

// MarshalJSON renders the literal as a JSON string.
func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// MarshalYAML renders the literal as a YAML string.
func (p Pattern) MarshalYAML() (any, error) {
	return p.String(), nil
}

// ParsePattern reads a /source/flags literal. Strings without the
// surrounding slashes are taken as a bare source.
func ParsePattern(s string) Pattern {
	if len(s) >= 2 && strings.HasPrefix(s, "/") {
		if i := strings.LastIndex(s, "/"); i > 0 {
			return Pattern{Source: s[1:i], Flags: s[i+1:]}
		}
	}
	return Pattern{Source: s}
}

// Plugin is an opaque webpack plugin instance: the constructor name and the
// options it is created with.
type Plugin struct {
	Name    string `json:"plugin" yaml:"plugin"`
	Options any    `json:"options,omitempty" yaml:"options,omitempty"`
}

// NewPlugin returns a Plugin with the given options.
func NewPlugin(name string, options any) Plugin {
	return Plugin{Name: name, Options: options}
}

// Loader returns a rule "use" entry for the named loader package.
func Loader(name string, options any) map[string]any {
	entry := map[string]any{"loader": name}
	if options != nil {
		entry["options"] = options
	}
	return entry
}
