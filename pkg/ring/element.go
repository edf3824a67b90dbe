package ring

// Element is the client-owned content shown in a slot. The composition only
// reads its intrinsic size; it never owns or releases the underlying image.
//
// Elements are compared by identity (==), so implementations should be
// pointer types.
type Element interface {
	// IntrinsicSize reports the natural size of the content. Non-positive
	// values mean the size is unknown and the content fills the slot.
	IntrinsicSize() (width, height int)
}

// Host receives redraw requests from a composition.
type Host interface {
	Invalidate()
}

// Attacher is implemented by elements that want to know which host
// displays them. Attach is called when the element is added and Detach once
// no slot references it any more.
type Attacher interface {
	Attach(h Host)
	Detach()
}

// Visibler is implemented by elements that track visibility.
// restart asks animated content to start over.
type Visibler interface {
	SetVisible(visible, restart bool) bool
}

// Stater is implemented by elements whose appearance depends on host state
// (pressed, focused, selected, ...).
type Stater interface {
	// SetState applies the state and reports whether the element changed.
	SetState(state []int) bool
	// JumpToCurrentState skips any state transition animation.
	JumpToCurrentState()
}

// HostFunc adapts a function to [Host].
type HostFunc func()

// Invalidate calls f.
func (f HostFunc) Invalidate() { f() }

type nopHost struct{}

func (nopHost) Invalidate() {}
