// Package options defines the caller-facing options record and resolves it,
// together with the environment, into an immutable Context.
//
// # Precedence
//
// Each field is resolved in this order (highest first):
//
//  1. The value set in Options (from Go code, a config file, or CLI flags)
//  2. Environment variables (NODE_ENV, PORT, ANALYZE)
//  3. Built-in defaults
package options

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Options is the input record. Pointer and nil-able fields distinguish
// "not set" from an explicit zero value.
type Options struct {
	// Cwd resolves relative paths and locates node_modules. Required.
	Cwd         string `json:"cwd,omitempty"`
	Development *bool  `json:"development,omitempty"`
	// SPA enables devServer.historyApiFallback.
	SPA       *bool   `json:"spa,omitempty"`
	PublicDir *string `json:"publicDir,omitempty"`
	Entry     any     `json:"entry,omitempty"`
	// HTMLTemplatePath feeds HtmlWebpackPlugin. An explicit "" disables it.
	HTMLTemplatePath *string       `json:"htmlTemplatePath,omitempty"`
	Output           Output        `json:"output,omitempty"`
	Sourcemap        Sourcemap     `json:"sourcemap,omitempty"`
	DevServerPort    DevServerPort `json:"devServerPort,omitempty"`
	// Externals accepts the object form of webpack externals only.
	Externals                 map[string]any `json:"externals,omitempty"`
	TopLevelFrameworkPackages []string       `json:"topLevelFrameworkPackages,omitempty"`
	BuiltinCSS                *bool          `json:"webpackExperimentalBuiltinCssSupport,omitempty"`
	PostCSS                   *bool          `json:"postcss,omitempty"`
	SVGR                      *bool          `json:"svgr,omitempty"`
	ReactCompiler             *Toggle        `json:"reactCompiler,omitempty"`
	Analyze                   *Toggle        `json:"analyze,omitempty"`
	// Plugins are appended after the synthesized plugins.
	Plugins                 []any      `json:"plugins,omitempty"`
	Dotenv                  *Dotenv    `json:"dotenv,omitempty"`
	Browserslists           StringList `json:"browserslists,omitempty"`
	// Browserlists is the spelling older config files use. Browserslists
	// wins when both are set.
	Browserlists            StringList `json:"browserlists,omitempty"`
	LodashTreeShaking       *bool      `json:"lodashTreeShaking,omitempty"`
	DropConsoleInProduction *bool      `json:"dropConsoleInProduction,omitempty"`
}

// Output configures output.* fields.
type Output struct {
	Path                     string  `json:"path,omitempty"`
	Library                  any     `json:"library,omitempty"`
	FilenameContainChunkName *bool   `json:"filenameContainChunkName,omitempty"`
	FilenamePrefix           *string `json:"filenamePrefix,omitempty"`
	// CrossOriginLoading is "anonymous", "use-credentials" or false.
	CrossOriginLoading any `json:"crossOriginLoading,omitempty"`
}

// Sourcemap holds the devtool value per mode. A value is a devtool string
// or false.
type Sourcemap struct {
	Development any `json:"development,omitempty"`
	Production  any `json:"production,omitempty"`
}

// DevServerPort configures port allocation.
type DevServerPort struct {
	FallbackPort *int  `json:"fallbackPort,omitempty"`
	Ports        []int `json:"ports,omitempty"`
	// PortRange is an inclusive [from, to] pair.
	PortRange []int `json:"portRange,omitempty"`
}

// Toggle is an option that is either a boolean or an options object,
// where an object implies enabled.
type Toggle struct {
	Enabled bool
	Options map[string]any
}

// On returns an enabled Toggle with no options.
func On() *Toggle { return &Toggle{Enabled: true} }

// Off returns a disabled Toggle.
func Off() *Toggle { return &Toggle{} }

// With returns an enabled Toggle carrying opts.
func With(opts map[string]any) *Toggle { return &Toggle{Enabled: true, Options: opts} }

// UnmarshalJSON accepts true, false or an object.
func (t *Toggle) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Toggle{Enabled: b}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("expected boolean or object: %w", err)
	}
	*t = Toggle{Enabled: true, Options: m}
	return nil
}

// MarshalJSON writes the options object when present, else the boolean.
func (t Toggle) MarshalJSON() ([]byte, error) {
	if t.Enabled && t.Options != nil {
		return json.Marshal(t.Options)
	}
	return json.Marshal(t.Enabled)
}

// Dotenv selects whether and which .env files are loaded.
type Dotenv struct {
	Enabled bool
	Paths   []string
}

// UnmarshalJSON accepts a boolean or {"path": string | [string]}.
func (d *Dotenv) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*d = Dotenv{Enabled: b}
		return nil
	}
	var obj struct {
		Path StringList `json:"path"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected boolean or object: %w", err)
	}
	*d = Dotenv{Enabled: true, Paths: obj.Path}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (d Dotenv) MarshalJSON() ([]byte, error) {
	if d.Enabled && len(d.Paths) > 0 {
		return json.Marshal(map[string]any{"path": d.Paths})
	}
	return json.Marshal(d.Enabled)
}

// StringList decodes from a single string or a list of strings.
type StringList []string

// UnmarshalJSON accepts "a" or ["a", "b"].
func (s *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = many
	return nil
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
