// Package magetasks holds the build, test and lint tasks behind the
// Magefile. Each task prints a section header, runs its commands with the
// output streamed to the terminal, and reports success or failure.
package magetasks
