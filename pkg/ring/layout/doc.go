// Package layout computes the circle-packing geometry behind a composition
// avatar: up to [MaxSlots] equal circles evenly spaced around a shared pivot
// inside a square content area.
//
// # Algorithm
//
// [Compute] is a pure function of the content size S and the slot count N.
// The shared radius r is chosen per N so the ring of circles fills the square:
//
//	N=1        r = S/2
//	N=2        r = S / (2 + 2·sin(π/4))
//	N=4        r = S/4
//	N=3, N=5   r = S / (2·(2·sin((N−2)·π/(2N)) + 1))
//
// For N=3 and N=5 the packed cluster does not fill the square symmetrically,
// so a vertical offset recenters it. The pivot is (S/2, S/2 + OffsetY).
//
// Slot 0 is seeded at (r, r) for even N and (S/2, r) for odd N. Every other
// slot is the seed rotated clockwise by i·360°/N about the pivot. Centres are
// reported before the vertical offset is applied; a renderer translates by
// (0, OffsetY) when drawing.
//
// # Gaps
//
// Each slot after the first carries a gap anchor at the previous slot's
// centre. With more than two slots the ring is closed by giving slot 0 the
// last slot's centre as well. A renderer punches a circle of radius
// r·(1 + gap) at the anchor out of the slot to separate overlapping
// neighbours.
//
// # Bounds
//
// [Bounds] maps an element's intrinsic size into the slot according to a
// [Fit] policy and rounds the result to an integer [Rect].
package layout
