// Package ring manages the elements of a composition avatar: up to five
// images shown as overlapping circles, each separated from its neighbour by
// a notch.
//
// A [Composition] is what a hosting view talks to. It keeps the slots in
// insertion order, re-runs the [layout] engine after every add or remove,
// recomputes draw bounds when the fit policy changes, and forwards
// visibility and state notifications to elements that care:
//
//	c := ring.New(ring.WithHost(view))
//	c.SetFrame(ring.Square(256, 8))
//	c.AddWithID(1, alice)
//	c.Add(bob)
//	c.SetFit(layout.FitStart)
//
// Renderers read an immutable [Snapshot]. Drawing slot i means clipping its
// element to the slot circle and, when the slot has a gap, clearing a circle
// of [Snapshot.NotchRadius] around its anchor; [Snapshot.SlotAt] evaluates
// the same rule for a single point.
//
// This package does no drawing and loads no images.
package ring
