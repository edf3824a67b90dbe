package ring

import (
	"math"
	"slices"

	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
)

const (
	// MaxSlots is the capacity of a composition.
	MaxSlots = layout.MaxSlots

	// NoID marks a slot added without an identifier.
	NoID = -1

	// DefaultGap is the gap fraction a new composition starts with.
	DefaultGap = 0.25
)

// Slot is one element placed in the ring together with its geometry.
type Slot struct {
	ID        int
	Element   Element
	Center    layout.Point
	Radius    float64
	Bounds    layout.Rect
	HasGap    bool
	GapAnchor layout.Point
}

// Mask returns the inverted clip circle of the slot.
func (s Slot) Mask() layout.Mask {
	return layout.Mask{Circle: layout.Circle{Center: s.Center, Radius: s.Radius}}
}

func (s *Slot) reset() {
	s.Center = layout.Point{}
	s.Radius = 0
	s.HasGap = false
	s.GapAnchor = layout.Point{}
}

// Composition holds up to [MaxSlots] elements and keeps their ring geometry
// current. Every structural change lays out all slots again.
//
// A Composition is not safe for concurrent use.
type Composition struct {
	slots   []*Slot
	host    Host
	fit     layout.Fit
	gap     float64
	frame   Frame
	size    float64
	radius  float64
	offsetY float64
	visible bool
	state   []int
}

// Option configures a [Composition].
type Option func(*Composition)

// WithHost sets the host notified when the composition needs redrawing.
func WithHost(h Host) Option {
	return func(c *Composition) {
		if h != nil {
			c.host = h
		}
	}
}

// WithFit sets the initial fit policy.
func WithFit(f layout.Fit) Option {
	return func(c *Composition) {
		if f.Valid() {
			c.fit = f
		}
	}
}

// WithGap sets the initial gap fraction, clamped to [0, 1].
func WithGap(g float64) Option {
	return func(c *Composition) {
		if !math.IsNaN(g) {
			c.gap = clampGap(g)
		}
	}
}

// New creates an empty composition with zero content size.
func New(opts ...Option) *Composition {
	c := &Composition{
		host:    nopHost{},
		fit:     layout.DefaultFit,
		gap:     DefaultGap,
		visible: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func clampGap(g float64) float64 { return max(0, min(g, 1)) }

// Len returns the number of elements.
func (c *Composition) Len() int { return len(c.slots) }

// Fit returns the current fit policy.
func (c *Composition) Fit() layout.Fit { return c.fit }

// Gap returns the current gap fraction.
func (c *Composition) Gap() float64 { return c.gap }

// Radius returns the shared slot radius of the last layout.
func (c *Composition) Radius() float64 { return c.radius }

// OffsetY returns the vertical cluster offset of the last layout.
func (c *Composition) OffsetY() float64 { return c.offsetY }

// ContentSize returns the side of the square content area.
func (c *Composition) ContentSize() float64 { return c.size }

// SlotDiameter returns the slot diameter rounded to whole pixels.
func (c *Composition) SlotDiameter() int { return int(math.Round(c.radius * 2)) }

// At returns the element at index i. It panics if i is out of range.
func (c *Composition) At(i int) Element {
	c.checkIndex(i)
	return c.slots[i].Element
}

// Slot returns a copy of the slot at index i. It panics if i is out of range.
func (c *Composition) Slot(i int) Slot {
	c.checkIndex(i)
	return *c.slots[i]
}

// FindByID returns the element added under id.
func (c *Composition) FindByID(id int) (Element, bool) {
	if s := c.slotByID(id); s != nil {
		return s.Element, true
	}
	return nil, false
}

// Verify reports whether any slot holds e.
func (c *Composition) Verify(e Element) bool {
	return slices.ContainsFunc(c.slots, func(s *Slot) bool { return s.Element == e })
}

// Add appends e without an identifier. It returns false when the
// composition is full.
func (c *Composition) Add(e Element) bool {
	return c.AddWithID(NoID, e)
}

// AddWithID adds e under id. If a slot with id already exists its element is
// replaced in place and no other slot moves. Otherwise e is appended and the
// ring is laid out again; false is returned, without any change, when the
// composition is full or e is nil.
func (c *Composition) AddWithID(id int, e Element) bool {
	if e == nil {
		return false
	}

	if old := c.slotByID(id); old != nil {
		prev := old.Element
		old.Element = e
		if !c.Verify(prev) {
			detach(prev)
		}
		c.updateBounds(old)
	} else {
		if len(c.slots) >= MaxSlots {
			return false
		}
		c.slots = append(c.slots, &Slot{ID: id, Element: e})
		c.layout()
	}

	if a, ok := e.(Attacher); ok {
		a.Attach(c.host)
	}
	if v, ok := e.(Visibler); ok {
		v.SetVisible(c.visible, true)
	}
	if s, ok := e.(Stater); ok && c.state != nil {
		s.SetState(c.state)
	}
	c.host.Invalidate()
	return true
}

// Remove removes every slot holding e.
func (c *Composition) Remove(e Element) {
	for i := len(c.slots) - 1; i >= 0; i-- {
		if c.slots[i].Element == e {
			c.RemoveAt(i)
		}
	}
}

// RemoveByID removes the slot added under id and returns its element.
func (c *Composition) RemoveByID(id int) (Element, bool) {
	if id == NoID {
		return nil, false
	}
	for i, s := range c.slots {
		if s.ID == id {
			return c.RemoveAt(i), true
		}
	}
	return nil, false
}

// RemoveAt removes the slot at index i and returns its element.
// It panics if i is out of range.
func (c *Composition) RemoveAt(i int) Element {
	c.checkIndex(i)
	e := c.slots[i].Element
	c.slots = slices.Delete(c.slots, i, i+1)
	if !c.Verify(e) {
		detach(e)
	}
	c.layout()
	return e
}

// Clear removes all elements.
func (c *Composition) Clear() {
	if len(c.slots) == 0 {
		return
	}
	for _, s := range c.slots {
		detach(s.Element)
	}
	c.slots = nil
	c.layout()
}

// SetFit changes the fit policy and recomputes every slot's bounds.
// Setting the current policy, or an undefined one, does nothing.
func (c *Composition) SetFit(f layout.Fit) {
	if f == c.fit || !f.Valid() {
		return
	}
	c.fit = f
	for _, s := range c.slots {
		c.updateBounds(s)
	}
	c.host.Invalidate()
}

// SetGap sets the gap fraction, clamped to [0, 1]. NaN is ignored.
func (c *Composition) SetGap(g float64) {
	if math.IsNaN(g) {
		return
	}
	g = clampGap(g)
	if g != c.gap {
		c.gap = g
		c.host.Invalidate()
	}
}

// SetContentSize lays the ring out in a square of side size with no
// padding. Hosts call it whenever the content area changes.
func (c *Composition) SetContentSize(size float64) {
	c.frame = Frame{}
	c.size = size
	c.layout()
}

// SetFrame lays the ring out in the content square of f.
func (c *Composition) SetFrame(f Frame) {
	c.frame = f
	c.size = f.ContentSize()
	c.layout()
}

// SetVisible forwards host visibility to every element.
func (c *Composition) SetVisible(visible bool) {
	c.visible = visible
	for _, s := range c.slots {
		if v, ok := s.Element.(Visibler); ok {
			v.SetVisible(visible, false)
		}
	}
}

// SetState forwards host state to every stateful element and invalidates
// when any of them changed.
func (c *Composition) SetState(state []int) {
	c.state = slices.Clone(state)
	changed := false
	for _, s := range c.slots {
		if st, ok := s.Element.(Stater); ok && st.SetState(c.state) {
			changed = true
		}
	}
	if changed {
		c.host.Invalidate()
	}
}

// JumpToCurrentState forwards to every stateful element.
func (c *Composition) JumpToCurrentState() {
	for _, s := range c.slots {
		if st, ok := s.Element.(Stater); ok {
			st.JumpToCurrentState()
		}
	}
}

// InvalidateElement requests a redraw on behalf of e. It reports false, and
// does nothing, when e is not part of the composition.
func (c *Composition) InvalidateElement(e Element) bool {
	if !c.Verify(e) {
		return false
	}
	c.host.Invalidate()
	return true
}

func (c *Composition) slotByID(id int) *Slot {
	if id == NoID {
		return nil
	}
	for _, s := range c.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (c *Composition) checkIndex(i int) {
	if i < 0 || i >= len(c.slots) {
		panic(apperr.New(apperr.ErrCodeIndexOutOfRange, "index %d out of range [0, %d)", i, len(c.slots)))
	}
}

func (c *Composition) layout() {
	g := layout.Compute(c.size, len(c.slots))
	c.radius = g.Radius
	c.offsetY = g.OffsetY
	for i, s := range c.slots {
		s.reset()
		if g.Radius > 0 {
			gs := g.Slots[i]
			s.Center = gs.Center
			s.Radius = g.Radius
			s.HasGap = gs.HasGap
			s.GapAnchor = gs.GapAnchor
		}
		c.updateBounds(s)
	}
	c.host.Invalidate()
}

func (c *Composition) updateBounds(s *Slot) {
	w, h := s.Element.IntrinsicSize()
	s.Bounds = layout.Bounds(s.Center, c.radius, w, h, c.fit)
}

func detach(e Element) {
	if a, ok := e.(Attacher); ok {
		a.Detach()
	}
}
