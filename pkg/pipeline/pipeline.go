// Package pipeline runs an ordered list of configuration stages over a
// webpack configuration tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corespeed-io/webpack/pkg/tree"
)

// ErrNilTree is returned when a stage hands back no tree.
var ErrNilTree = errors.New("stage returned no configuration tree")

// Step transforms a configuration tree. A step may modify and return its
// input or return a new tree.
type Step func(ctx context.Context, t tree.Tree) (tree.Tree, error)

// Stage is a named Step.
type Stage struct {
	Name string
	Run  Step
}

// StageError wraps the failure of a single stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s block: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Executor runs stages one after another.
type Executor struct {
	Logger *log.Logger
}

// NewExecutor returns an Executor logging to logger. A nil logger discards
// output.
func NewExecutor(logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{Logger: logger}
}

// Run deep-copies base and threads the copy through stages in order. The
// caller's base tree is never modified. On the first failing stage Run
// returns a *StageError and no tree.
func (e *Executor) Run(ctx context.Context, stages []Stage, base tree.Tree) (tree.Tree, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cfg := base.Clone()

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: stage.Name, Err: err}
		}

		start := time.Now()
		next, err := stage.Run(ctx, cfg)
		if err != nil {
			logger.Debug("block failed", "block", stage.Name, "err", err)
			return nil, &StageError{Stage: stage.Name, Err: err}
		}
		if next == nil {
			return nil, &StageError{Stage: stage.Name, Err: ErrNilTree}
		}
		logger.Debug("block applied", "block", stage.Name, "duration", time.Since(start))
		cfg = next
	}

	return cfg, nil
}
