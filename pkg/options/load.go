package options

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "webpack-options.schema.json"

// Format is a config file syntax.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// ConfigFileNames are searched, in order, by Discover.
var ConfigFileNames = []string{
	"webpack.config.yaml",
	"webpack.config.yml",
	"webpack.config.toml",
	"webpack.config.hcl",
	"webpack.config.json",
}

// ErrUnknownFormat is returned for unrecognized file extensions.
var ErrUnknownFormat = errors.New("unknown config file format")

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load options schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// FormatOf maps a file name to its Format by extension, ignoring case.
func FormatOf(path string) (Format, error) {
	ext := cases.Fold().String(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Discover returns the first of ConfigFileNames present in dir, or "" when
// none exists.
func Discover(fsys afero.Fs, dir string) string {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fsys, p); ok {
			return p
		}
	}
	return ""
}

// LoadFile reads and decodes an options file. The format follows the file
// extension.
func LoadFile(fsys afero.Fs, path string) (Options, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Options{}, err
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Options{}, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return Options{}, fmt.Errorf("read config file: %w", err)
	}
	opts, err := Parse(format, data, path)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Parse decodes data in the given format, validates it against the options
// schema, and decodes it into Options. filename is used in diagnostics.
func Parse(format Format, data []byte, filename string) (Options, error) {
	doc, err := toJSON(format, data, filename)
	if err != nil {
		return Options{}, err
	}

	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return Options{}, fmt.Errorf("decode %s document: %w", format, err)
	}
	s, err := compiledSchema()
	if err != nil {
		return Options{}, err
	}
	if err := s.Validate(generic); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var opts Options
	if err := json.Unmarshal(doc, &opts); err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// toJSON converts any supported format into a JSON document.
func toJSON(format Format, data []byte, filename string) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			var v any
			return nil, fmt.Errorf("parse json: %w", json.Unmarshal(data, &v))
		}
		return data, nil
	case FormatYAML:
		var v map[string]any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if v == nil {
			v = map[string]any{}
		}
		return json.Marshal(v)
	case FormatTOML:
		var v map[string]any
		if _, err := toml.Decode(string(data), &v); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		return json.Marshal(v)
	case FormatHCL:
		return hclToJSON(data, filename)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// hclToJSON reads top-level attributes only. Objects are written with HCL
// object syntax: output = { filenamePrefix = "/static/" }.
func hclToJSON(data []byte, filename string) ([]byte, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl: %w", diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl: %w", diags)
	}

	out := make(map[string]json.RawMessage, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate %s: %w", name, diags)
		}
		raw, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = raw
	}
	return json.Marshal(out)
}
