// Package nodelink renders a composition as a node-link diagram.
//
// # Overview
//
// Each slot becomes a circular node pinned at its centre and sized to the
// slot diameter. An edge runs from every notched slot to the slot its gap
// is anchored on, which makes the paint order and the ring closure visible
// at a glance. It is mostly a debugging aid for layouts that look wrong.
//
// # Usage
//
//	dot := nodelink.ToDOT(c.Snapshot(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the neato engine, so node positions are kept as given.
package nodelink
