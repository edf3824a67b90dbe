package pipeline

import (
	"context"

	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/nodelink"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

// RenderSnapshot renders one format from laid-out geometry. background is
// a hex colour or empty for transparent.
func RenderSnapshot(ctx context.Context, snap ring.Snapshot, format, background, sceneHash string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		svgOpts := []sink.SVGOption{sink.WithPrecision(opts.Precision)}
		if background != "" {
			svgOpts = append(svgOpts, sink.WithBackground(background))
		}
		if opts.Debug {
			svgOpts = append(svgOpts, sink.WithDebug())
		}
		return sink.RenderSVG(snap, svgOpts...)

	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if background != "" {
			c, err := sink.ParseColor(background)
			if err != nil {
				return nil, err
			}
			pngOpts = append(pngOpts, sink.WithPNGBackground(c))
		}
		if opts.Debug {
			pngOpts = append(pngOpts, sink.WithPNGDebug())
		}
		return sink.RenderPNG(snap, pngOpts...)

	case FormatJSON:
		return sink.RenderJSON(snap, sink.WithIndent(), sink.WithSceneHash(sceneHash))

	case FormatDOT:
		return []byte(nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.Debug})), nil

	case FormatGraph:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.Debug}))
	}
	return nil, ValidateFormat(format)
}

// build lays the scene out and returns its snapshot.
func build(s *scene.Scene, opts Options) (ring.Snapshot, error) {
	var buildOpts []scene.BuildOption
	if opts.SkipImages {
		buildOpts = append(buildOpts, scene.WithoutImages())
	}
	c, err := s.Build(buildOpts...)
	if err != nil {
		return ring.Snapshot{}, err
	}
	return c.Snapshot(), nil
}
