package magetasks

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs every linter and reports all failures together. Linters
// that are not installed are skipped.
func LintAll() error {
	var result *multierror.Error

	if err := LintFormat(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := LintVet(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := LintStaticcheck(); err != nil && !IsCommandNotFound(err) {
		result = multierror.Append(result, err)
	}
	if err := LintGolangci(); err != nil && !IsCommandNotFound(err) {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat checks code formatting. gofmt exits zero even when it lists
// files, so the listing decides.
func LintFormat() error {
	out, err := Output("Go Format", "gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt failed: %w", err)
	}
	return unformatted(out)
}

func unformatted(listing string) error {
	files := strings.Fields(listing)
	if len(files) == 0 {
		return nil
	}
	for _, f := range files {
		PrintWarning("not formatted: " + f)
	}
	return fmt.Errorf("gofmt: %d file(s) need formatting: %s", len(files), strings.Join(files, ", "))
}

// LintVet runs go vet.
func LintVet() error {
	return Run("Go Vet", "go", "vet", "./...")
}

// LintStaticcheck runs staticcheck.
func LintStaticcheck() error {
	if err := Run("Staticcheck", "staticcheck", "./..."); err != nil {
		if IsCommandNotFound(err) {
			PrintWarning("Staticcheck not found (install: go install honnef.co/go/tools/cmd/staticcheck@latest)")
			return err
		}
		return fmt.Errorf("staticcheck failed: %w", err)
	}
	return nil
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return golangci("Golangci-lint")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return golangci("Golangci-lint Fix", "--fix")
}

func golangci(label string, extra ...string) error {
	args := append([]string{"run"}, extra...)
	args = append(args, golangciDisabled, "--timeout=5m", "./...")
	if err := Run(label, "golangci-lint", args...); err != nil {
		if IsCommandNotFound(err) {
			PrintWarning("Golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
			return err
		}
		return fmt.Errorf("golangci-lint failed: %w", err)
	}
	return nil
}
