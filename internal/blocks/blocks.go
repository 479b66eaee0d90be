// Package blocks holds the configuration blocks the pipeline runs, in the
// order Default returns them.
//
// Every block follows the merge rules of package tree: it fills absent
// fields, extends objects it owns sub-fields of, and appends to lists. The
// few fields the pipeline owns outright (output hashing, optimization
// flags) are forced.
package blocks

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/internal/guard"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/pkgwalk"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// PortAllocator picks the dev server port.
type PortAllocator func(ctx context.Context, req portfinder.Request) (int, error)

// Deps are the collaborators blocks call out to.
type Deps struct {
	Resolver pkgwalk.Resolver
	Guard    *guard.Guard
	Ports    PortAllocator
	Logger   *log.Logger
}

func (d *Deps) logger() *log.Logger {
	if d == nil || d.Logger == nil {
		return log.New(io.Discard)
	}
	return d.Logger
}

func (d *Deps) resolver() pkgwalk.Resolver {
	if d == nil || d.Resolver.Fs == nil {
		return pkgwalk.NewResolver(afero.NewOsFs())
	}
	return d.Resolver
}

// Block builds a pipeline step from the resolved contexts.
type Block func(c *options.Context, bc *derive.BlockContext, d *Deps) pipeline.Step

// Named pairs a block with its stage name.
type Named struct {
	Name  string
	Block Block
}

// Order is the fixed block order. Later blocks read fields earlier ones
// wrote, so it must not be reshuffled.
var Order = []Named{
	{"base", Base},
	{"external", External},
	{"output", Output},
	{"sourcemap", Sourcemap},
	{"devserver", DevServer},
	{"loaders", Loaders},
	{"plugins", Plugins},
	{"optimization", Optimization},
	{"splitChunks", SplitChunks},
	{"resolve", Resolve},
}

// Default returns the stages for every block in Order.
func Default(c *options.Context, bc *derive.BlockContext, d *Deps) []pipeline.Stage {
	stages := make([]pipeline.Stage, len(Order))
	for i, b := range Order {
		stages[i] = pipeline.Stage{Name: b.Name, Run: b.Block(c, bc, d)}
	}
	return stages
}

// within prefixes the path of a shape error raised on a nested object.
func within(err error, parents ...string) error {
	var se *tree.ShapeError
	if errors.As(err, &se) {
		return se.Within(parents...)
	}
	return err
}
