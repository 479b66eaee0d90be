package magetasks

import (
	"fmt"
)

// QualityCheck runs the linters, the tests and a build. Lint findings are
// reported but do not fail the check.
func QualityCheck() error {
	PrintH1Header("webpack-config Quality Checks")

	if err := LintAll(); err != nil {
		PrintWarning(fmt.Sprintf("Linting issues found: %v", err))
	}
	if err := TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	PrintSuccess("Quality checks complete")
	return nil
}
