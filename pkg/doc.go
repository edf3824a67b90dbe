// Package pkg provides the core libraries for Avatarstack composition avatars.
//
// # Overview
//
// Avatarstack packs up to five images into one square avatar as overlapping
// circles, with a notch cut where each circle meets its neighbour. The pkg
// directory is organized into four areas:
//
//  1. [ring] - Domain logic (slot geometry, composition state, renderers)
//  2. [scene] - Scene files describing a composition
//  3. [pipeline] - Orchestration (scene → layout → render) with caching
//  4. [cache], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	scene.toml / scene.json
//	         ↓
//	    [scene] package (decode, validate, load images)
//	         ↓
//	    [ring] package (composition + [ring/layout] geometry)
//	         ↓
//	    [ring/sink], [ring/nodelink] packages (render a snapshot)
//	         ↓
//	    SVG/PNG/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/avatarstack/pkg/ring/sink"
//	    "github.com/matzehuels/avatarstack/pkg/scene"
//	)
//
//	s, _ := scene.Load("team.toml")
//	c, _ := s.Build()
//	svg, _ := sink.RenderSVG(c.Snapshot())
//
// # Main Packages
//
// [ring/layout] - Pure geometry: shared radius, vertical offset, slot
// centres rotated around the pivot, gap anchors and fit-mode draw bounds.
//
// [ring] - The composition a host view talks to. Keeps up to five slots in
// insertion order, re-lays them out on every change, and forwards host
// visibility and state to its elements.
//
// [ring/sink] - SVG (svgo), PNG (gg) and JSON renderers for a snapshot.
//
// [ring/nodelink] - The notch graph as DOT, rendered by Graphviz.
//
// [pipeline] - Scene rendering shared by the CLI and the HTTP server, with
// per-format artifact caching.
//
// [cache] - File, redis and null caches behind one interface.
//
// [ring]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/ring
// [ring/layout]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/ring/layout
// [ring/sink]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/ring/sink
// [ring/nodelink]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/ring/nodelink
// [scene]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/avatarstack/pkg/buildinfo
package pkg
