// Package sink renders a [ring.Snapshot] to SVG, PNG, or JSON.
//
// Every renderer paints slots in order. Slot i is clipped to its circle and,
// when it has a gap, a circle of [ring.Snapshot.NotchRadius] around its
// anchor is cut out, so the previous slot shows through a ring of
// background. The element is drawn into the slot's fit bounds.
//
// Elements opt into richer output by implementing [Imager], [Filler],
// [Labeler], or [Linker]. An element implementing none of them is drawn as
// a solid circle from a fixed palette.
//
// # Output Formats
//
//   - [RenderSVG]: vector output built with svgo; images are embedded as
//     PNG data URIs
//   - [RenderPNG]: raster output drawn with gg
//   - [RenderJSON]: the geometry in frame coordinates, for clients that
//     draw themselves
package sink
