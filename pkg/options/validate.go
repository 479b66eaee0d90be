package options

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalid matches every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid options")

// Validate checks the fields Resolve cannot default. All problems are
// reported together.
func (o Options) Validate() error {
	var result *multierror.Error

	if o.Cwd == "" {
		result = multierror.Append(result, fmt.Errorf("%w: cwd is required", ErrInvalid))
	} else if !filepath.IsAbs(o.Cwd) {
		result = multierror.Append(result, fmt.Errorf("%w: cwd %q must be an absolute path", ErrInvalid, o.Cwd))
	}

	if p := o.DevServerPort.FallbackPort; p != nil && !validPort(*p) {
		result = multierror.Append(result, fmt.Errorf("%w: devServerPort.fallbackPort %d out of range", ErrInvalid, *p))
	}
	for i, p := range o.DevServerPort.Ports {
		if !validPort(p) {
			result = multierror.Append(result, fmt.Errorf("%w: devServerPort.ports[%d] %d out of range", ErrInvalid, i, p))
		}
	}
	if r := o.DevServerPort.PortRange; r != nil {
		switch {
		case len(r) != 2:
			result = multierror.Append(result, fmt.Errorf("%w: devServerPort.portRange needs exactly two ports", ErrInvalid))
		case !validPort(r[0]) || !validPort(r[1]):
			result = multierror.Append(result, fmt.Errorf("%w: devServerPort.portRange %v out of range", ErrInvalid, r))
		case r[0] > r[1]:
			result = multierror.Append(result, fmt.Errorf("%w: devServerPort.portRange %v is inverted", ErrInvalid, r))
		}
	}

	if !validDevtool(o.Sourcemap.Development) {
		result = multierror.Append(result, fmt.Errorf("%w: sourcemap.development must be a string or false", ErrInvalid))
	}
	if !validDevtool(o.Sourcemap.Production) {
		result = multierror.Append(result, fmt.Errorf("%w: sourcemap.production must be a string or false", ErrInvalid))
	}

	switch v := o.Output.CrossOriginLoading.(type) {
	case nil:
	case bool:
		if v {
			result = multierror.Append(result, fmt.Errorf("%w: output.crossOriginLoading cannot be true", ErrInvalid))
		}
	case string:
		if v != "anonymous" && v != "use-credentials" {
			result = multierror.Append(result, fmt.Errorf("%w: output.crossOriginLoading %q is not anonymous or use-credentials", ErrInvalid, v))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%w: output.crossOriginLoading has type %T", ErrInvalid, v))
	}

	for i, name := range o.TopLevelFrameworkPackages {
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("%w: topLevelFrameworkPackages[%d] is empty", ErrInvalid, i))
		}
	}

	return result.ErrorOrNil()
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func validDevtool(v any) bool {
	switch d := v.(type) {
	case nil, string:
		return true
	case bool:
		return !d
	default:
		return false
	}
}
