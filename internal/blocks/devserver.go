package blocks

import (
	"context"
	"fmt"

	"github.com/corespeed-io/webpack/internal/derive"
	"github.com/corespeed-io/webpack/pkg/options"
	"github.com/corespeed-io/webpack/pkg/pipeline"
	"github.com/corespeed-io/webpack/pkg/portfinder"
	"github.com/corespeed-io/webpack/pkg/tree"
)

// DevServer fills devServer. A port is allocated only when devServer.port
// is absent. static and client are extended only when they are objects.
func DevServer(c *options.Context, _ *derive.BlockContext, d *Deps) pipeline.Step {
	return func(ctx context.Context, t tree.Tree) (tree.Tree, error) {
		ds, err := t.Object("devServer")
		if err != nil {
			return nil, err
		}

		if !ds.Has("port") {
			alloc := d.ports()
			port, err := alloc(ctx, c.DevServerPort)
			if err != nil {
				return nil, fmt.Errorf("allocate dev server port: %w", err)
			}
			d.logger().Debug("dev server port", "port", port)
			ds.Set("port", port)
		}
		ds.SetDefault("hot", true)
		ds.SetDefault("historyApiFallback", c.SPA)

		ds.SetDefault("static", map[string]any{})
		if static, ok := ds.ObjectIfPresent("static"); ok {
			static.SetDefault("directory", c.PublicDir)
		}

		ds.SetDefault("client", map[string]any{})
		if client, ok := ds.ObjectIfPresent("client"); ok {
			client.SetDefault("overlay", map[string]any{})
			if overlay, ok := client.ObjectIfPresent("overlay"); ok {
				overlay.SetDefault("errors", true)
				overlay.SetDefault("warnings", false)
			}
		}
		return t, nil
	}
}

func (d *Deps) ports() PortAllocator {
	if d == nil || d.Ports == nil {
		return func(ctx context.Context, req portfinder.Request) (int, error) {
			return portfinder.Allocate(ctx, req)
		}
	}
	return d.Ports
}
