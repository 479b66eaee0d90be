package magetasks

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

// IsCommandNotFound checks if the error indicates the command was not found.
// This handles exec.ErrNotFound and platform-specific string fallbacks.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "executable file not found") ||
		strings.Contains(errStr, "no such file or directory")
}

// Run prints label and runs the command with its output streamed to the
// terminal.
func Run(label, name string, args ...string) error {
	PrintInfo(label + ": " + strings.Join(append([]string{name}, args...), " "))
	cmd := exec.Command(name, args...)
	cmd.Stdout = Out
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output prints label, runs the command and returns its standard output.
func Output(label, name string, args ...string) (string, error) {
	PrintInfo(label + ": " + strings.Join(append([]string{name}, args...), " "))
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	return string(out), err
}
