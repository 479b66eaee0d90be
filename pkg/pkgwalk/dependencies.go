package pkgwalk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Dependencies is the "dependencies" object of a manifest, keeping the key
// order of the file.
type Dependencies []Dependency

// Dependency is one name/range pair.
type Dependency struct {
	Name  string
	Range string
}

// Names returns the dependency names in file order.
func (d Dependencies) Names() []string {
	names := make([]string, len(d))
	for i, dep := range d {
		names[i] = dep.Name
	}
	return names
}

// UnmarshalJSON reads the object token by token so the order survives.
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dependencies: expected object")
	}
	var out Dependencies
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dependencies: expected string key")
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		rng, _ := val.(string)
		out = append(out, Dependency{Name: key, Range: rng})
	}
	*d = out
	return nil
}
