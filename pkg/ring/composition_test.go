package ring

import (
	"math"
	"slices"
	"testing"

	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
)

type fakeElement struct {
	name      string
	w, h      int
	host      Host
	attaches  int
	detaches  int
	visible   bool
	restarted bool
	state     []int
	jumps     int
}

func (e *fakeElement) IntrinsicSize() (int, int) { return e.w, e.h }
func (e *fakeElement) Attach(h Host)             { e.host = h; e.attaches++ }
func (e *fakeElement) Detach()                   { e.host = nil; e.detaches++ }
func (e *fakeElement) JumpToCurrentState()       { e.jumps++ }

func (e *fakeElement) SetVisible(visible, restart bool) bool {
	changed := e.visible != visible
	e.visible = visible
	e.restarted = restart
	return changed
}

func (e *fakeElement) SetState(state []int) bool {
	if slices.Equal(e.state, state) {
		return false
	}
	e.state = slices.Clone(state)
	return true
}

type countingHost struct{ n int }

func (h *countingHost) Invalidate() { h.n++ }

func elems(n int) []*fakeElement {
	out := make([]*fakeElement, n)
	for i := range out {
		out[i] = &fakeElement{name: string(rune('a' + i))}
	}
	return out
}

func newSized(t *testing.T, n int) (*Composition, []*fakeElement) {
	t.Helper()
	c := New()
	c.SetContentSize(100)
	es := elems(n)
	for _, e := range es {
		if !c.Add(e) {
			t.Fatalf("Add(%s) = false", e.name)
		}
	}
	return c, es
}

func TestAddLaysOutAll(t *testing.T) {
	for n := 1; n <= MaxSlots; n++ {
		c, _ := newSized(t, n)
		want := layout.Compute(100, n)

		if c.Len() != n {
			t.Fatalf("Len() = %d, want %d", c.Len(), n)
		}
		if c.Radius() != want.Radius || c.OffsetY() != want.OffsetY {
			t.Errorf("n=%d: radius/offset = %v/%v, want %v/%v", n, c.Radius(), c.OffsetY(), want.Radius, want.OffsetY)
		}
		for i := range n {
			s := c.Slot(i)
			if s.Radius != want.Radius {
				t.Errorf("n=%d slot %d radius = %v, want shared %v", n, i, s.Radius, want.Radius)
			}
			if s.Center != want.Slots[i].Center || s.HasGap != want.Slots[i].HasGap || s.GapAnchor != want.Slots[i].GapAnchor {
				t.Errorf("n=%d slot %d geometry = %+v, want %+v", n, i, s, want.Slots[i])
			}
		}
	}
}

func TestAddBeyondCapacity(t *testing.T) {
	c := New()
	c.SetContentSize(100)
	for i := range MaxSlots {
		c.AddWithID(i, &fakeElement{})
	}
	before := c.Snapshot()

	extra := &fakeElement{}
	if c.AddWithID(99, extra) {
		t.Fatal("adding a sixth element should fail")
	}
	if c.Add(extra) {
		t.Fatal("adding a sixth element without id should fail")
	}
	if extra.attaches != 0 {
		t.Error("rejected element should not be attached")
	}

	after := c.Snapshot()
	if len(after.Slots) != MaxSlots {
		t.Fatalf("Len() = %d, want %d", len(after.Slots), MaxSlots)
	}
	for i := range after.Slots {
		if after.Slots[i] != before.Slots[i] {
			t.Errorf("slot %d changed: %+v -> %+v", i, before.Slots[i], after.Slots[i])
		}
	}
}

func TestAddFullReplacesExistingID(t *testing.T) {
	c := New()
	c.SetContentSize(100)
	for i := range MaxSlots {
		c.AddWithID(i, &fakeElement{})
	}
	repl := &fakeElement{}
	if !c.AddWithID(2, repl) {
		t.Fatal("replacing by id should succeed when full")
	}
	if c.At(2) != repl {
		t.Error("slot 2 should hold the replacement")
	}
}

func TestAddReplaceInPlace(t *testing.T) {
	c := New()
	c.SetContentSize(200)
	a, b, d := &fakeElement{}, &fakeElement{}, &fakeElement{}
	c.AddWithID(1, a)
	c.AddWithID(2, b)
	c.AddWithID(3, d)
	before := c.Snapshot()

	repl := &fakeElement{w: 300, h: 100}
	if !c.AddWithID(2, repl) {
		t.Fatal("AddWithID(existing) = false")
	}

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.At(1) != repl {
		t.Error("replacement should keep slot order")
	}
	if b.detaches != 1 {
		t.Errorf("replaced element detaches = %d, want 1", b.detaches)
	}
	if repl.attaches != 1 {
		t.Errorf("replacement attaches = %d, want 1", repl.attaches)
	}

	after := c.Snapshot()
	for i := range after.Slots {
		if after.Slots[i].Center != before.Slots[i].Center || after.Slots[i].Radius != before.Slots[i].Radius {
			t.Errorf("slot %d moved after replace", i)
		}
		if i != 1 && after.Slots[i] != before.Slots[i] {
			t.Errorf("slot %d changed after replacing slot 1", i)
		}
	}
	if after.Slots[1].Bounds == before.Slots[1].Bounds {
		t.Error("replaced slot should get bounds for the new intrinsic size")
	}
}

func TestReplaceWithElementHeldElsewhere(t *testing.T) {
	c := New()
	shared := &fakeElement{}
	c.AddWithID(1, shared)
	c.AddWithID(2, shared)
	c.AddWithID(1, &fakeElement{})

	if shared.detaches != 0 {
		t.Error("element still held by another slot must not be detached")
	}
}

func TestAddNil(t *testing.T) {
	c := New()
	if c.Add(nil) {
		t.Error("Add(nil) should fail")
	}
	if c.Len() != 0 {
		t.Error("Add(nil) should not change the composition")
	}
}

func TestRemove(t *testing.T) {
	c, es := newSized(t, 4)
	dup := es[1]
	c.Add(dup)

	c.Remove(dup)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.Verify(dup) {
		t.Error("all slots holding the element should be removed")
	}
	if dup.detaches != 1 {
		t.Errorf("detaches = %d, want 1", dup.detaches)
	}
	want := layout.Compute(100, 3)
	for i := range 3 {
		if c.Slot(i).Center != want.Slots[i].Center {
			t.Errorf("slot %d not re-laid out", i)
		}
	}
	if c.At(0) != es[0] || c.At(1) != es[2] || c.At(2) != es[3] {
		t.Error("remaining slots should keep their order")
	}
}

func TestRemoveByID(t *testing.T) {
	c := New()
	c.SetContentSize(100)
	a, b := &fakeElement{}, &fakeElement{}
	c.AddWithID(7, a)
	c.Add(b)

	if e, ok := c.RemoveByID(NoID); ok || e != nil {
		t.Error("RemoveByID(NoID) should remove nothing")
	}
	if e, ok := c.RemoveByID(42); ok || e != nil {
		t.Error("RemoveByID(unknown) should remove nothing")
	}

	e, ok := c.RemoveByID(7)
	if !ok || e != a {
		t.Fatalf("RemoveByID(7) = %v, %v, want a, true", e, ok)
	}
	if c.Len() != 1 || c.At(0) != b {
		t.Error("b should remain as the only slot")
	}
	if _, ok := c.FindByID(7); ok {
		t.Error("FindByID(7) should miss after removal")
	}
	if c.Radius() != 50 {
		t.Errorf("Radius() = %v, want 50 after relayout", c.Radius())
	}
}

func TestRemoveAtPanics(t *testing.T) {
	c, _ := newSized(t, 2)

	for _, i := range []int{-1, 2} {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !apperr.Is(err, apperr.ErrCodeIndexOutOfRange) {
					t.Errorf("RemoveAt(%d) panic = %v, want INDEX_OUT_OF_RANGE", i, r)
				}
			}()
			c.RemoveAt(i)
		}()
	}
	if c.Len() != 2 {
		t.Error("failed RemoveAt should not change the composition")
	}
}

func TestAtPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(0) on empty composition should panic")
		}
	}()
	New().At(0)
}

func TestClearThenAdd(t *testing.T) {
	c, es := newSized(t, 5)
	c.Clear()

	if c.Len() != 0 || c.Radius() != 0 || c.OffsetY() != 0 {
		t.Fatalf("after Clear: len=%d radius=%v offset=%v", c.Len(), c.Radius(), c.OffsetY())
	}
	for _, e := range es {
		if e.detaches != 1 {
			t.Errorf("%s detaches = %d, want 1", e.name, e.detaches)
		}
	}

	e := &fakeElement{}
	c.Add(e)

	fresh := New()
	fresh.SetContentSize(100)
	fresh.Add(&fakeElement{})

	if got, want := c.Slot(0), fresh.Slot(0); got.Center != want.Center || got.Radius != want.Radius || got.Bounds != want.Bounds {
		t.Errorf("after Clear+Add slot = %+v, want %+v", got, want)
	}
	if c.OffsetY() != fresh.OffsetY() {
		t.Error("Clear should leave no residual offset")
	}
}

func TestClearEmptyDoesNotInvalidate(t *testing.T) {
	h := &countingHost{}
	c := New(WithHost(h))
	c.Clear()
	if h.n != 0 {
		t.Errorf("Clear on empty invalidated %d times", h.n)
	}
}

func TestSetFit(t *testing.T) {
	h := &countingHost{}
	c := New(WithHost(h))
	c.SetContentSize(100)
	c.Add(&fakeElement{w: 200, h: 100})
	c.Add(&fakeElement{w: 100, h: 200})
	before := c.Snapshot()

	h.n = 0
	c.SetFit(layout.DefaultFit)
	if h.n != 0 {
		t.Error("setting the same fit should not invalidate")
	}
	if after := c.Snapshot(); !slices.Equal(after.Slots, before.Slots) {
		t.Error("setting the same fit should not change geometry")
	}

	c.SetFit(layout.FitStart)
	if h.n != 1 {
		t.Errorf("invalidations = %d, want 1", h.n)
	}
	if c.Fit() != layout.FitStart {
		t.Errorf("Fit() = %v, want start", c.Fit())
	}
	after := c.Snapshot()
	for i := range after.Slots {
		if after.Slots[i].Center != before.Slots[i].Center || after.Slots[i].Radius != before.Slots[i].Radius {
			t.Errorf("slot %d moved on fit change", i)
		}
		if after.Slots[i].Bounds == before.Slots[i].Bounds {
			t.Errorf("slot %d bounds not recomputed", i)
		}
	}

	c.SetFit(layout.Fit(42))
	if c.Fit() != layout.FitStart {
		t.Error("undefined fit should be ignored")
	}
}

func TestSetFitWithoutLayout(t *testing.T) {
	c := New()
	c.Add(&fakeElement{w: 3, h: 1})
	c.SetFit(layout.FitEnd)
	if b := c.Slot(0).Bounds; b != (layout.Rect{}) {
		t.Errorf("bounds = %+v, want empty with zero radius", b)
	}
}

func TestSetGapClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{2, 1},
		{0.5, 0.5},
		{0, 0},
		{1, 1},
	}

	for _, tt := range tests {
		c := New()
		c.SetGap(tt.in)
		if c.Gap() != tt.want {
			t.Errorf("SetGap(%v): Gap() = %v, want %v", tt.in, c.Gap(), tt.want)
		}
	}

	c := New()
	c.SetGap(math.NaN())
	if c.Gap() != DefaultGap {
		t.Errorf("NaN gap should be ignored, got %v", c.Gap())
	}
}

func TestSetGapInvalidatesOnChange(t *testing.T) {
	h := &countingHost{}
	c := New(WithHost(h))
	c.SetGap(DefaultGap)
	if h.n != 0 {
		t.Error("unchanged gap should not invalidate")
	}
	c.SetGap(5)
	c.SetGap(1)
	if h.n != 1 {
		t.Errorf("invalidations = %d, want 1", h.n)
	}
}

func TestZeroContentSize(t *testing.T) {
	c, _ := newSized(t, 3)
	c.SetContentSize(0)

	if c.Radius() != 0 || c.OffsetY() != 0 || c.SlotDiameter() != 0 {
		t.Errorf("radius=%v offset=%v diameter=%d, want zeros", c.Radius(), c.OffsetY(), c.SlotDiameter())
	}
	for i := range c.Len() {
		s := c.Slot(i)
		if s.Center != (layout.Point{}) || s.HasGap || s.Bounds != (layout.Rect{}) {
			t.Errorf("slot %d = %+v, want zero geometry", i, s)
		}
	}
}

func TestSlotDiameter(t *testing.T) {
	c, _ := newSized(t, 2)
	want := int(math.Round(2 * 100 / (2 + 2*math.Sin(math.Pi/4))))
	if c.SlotDiameter() != want {
		t.Errorf("SlotDiameter() = %d, want %d", c.SlotDiameter(), want)
	}
}

func TestSetFrame(t *testing.T) {
	c := New()
	c.Add(&fakeElement{})
	c.SetFrame(Frame{Width: 300, Height: 200, Padding: Insets{10, 20, 10, 20}})

	if c.ContentSize() != 160 {
		t.Fatalf("ContentSize() = %v, want 160", c.ContentSize())
	}
	if c.Radius() != 80 {
		t.Errorf("Radius() = %v, want 80", c.Radius())
	}
	o := c.Snapshot().Origin()
	if o.X != 10+(280-160)/2 || o.Y != 20 {
		t.Errorf("Origin() = %+v, want (70, 20)", o)
	}
}

func TestObserverPassThrough(t *testing.T) {
	h := &countingHost{}
	c := New(WithHost(h))
	e := &fakeElement{}
	c.Add(e)

	if e.host != Host(h) || !e.visible || !e.restarted {
		t.Errorf("added element: host=%v visible=%v restarted=%v", e.host, e.visible, e.restarted)
	}

	c.SetVisible(false)
	if e.visible || e.restarted {
		t.Error("SetVisible(false) should hide without restart")
	}

	h.n = 0
	c.SetState([]int{1, 2})
	if !slices.Equal(e.state, []int{1, 2}) || h.n != 1 {
		t.Errorf("state=%v invalidations=%d", e.state, h.n)
	}
	c.SetState([]int{1, 2})
	if h.n != 1 {
		t.Error("unchanged state should not invalidate")
	}

	late := &fakeElement{}
	c.Add(late)
	if late.visible || !slices.Equal(late.state, []int{1, 2}) {
		t.Error("late element should receive current visibility and state")
	}

	c.JumpToCurrentState()
	if e.jumps != 1 || late.jumps != 1 {
		t.Error("JumpToCurrentState should reach every element")
	}

	h.n = 0
	if !c.InvalidateElement(e) || h.n != 1 {
		t.Error("InvalidateElement(held) should invalidate")
	}
	if c.InvalidateElement(&fakeElement{}) || h.n != 1 {
		t.Error("InvalidateElement(foreign) should do nothing")
	}
}

func TestHostFunc(t *testing.T) {
	calls := 0
	c := New(WithHost(HostFunc(func() { calls++ })))
	c.Add(&fakeElement{})
	if calls == 0 {
		t.Error("HostFunc should be invalidated on add")
	}
}

func TestOptions(t *testing.T) {
	c := New(WithFit(layout.FitEnd), WithGap(3), WithHost(nil))
	if c.Fit() != layout.FitEnd || c.Gap() != 1 {
		t.Errorf("fit=%v gap=%v", c.Fit(), c.Gap())
	}
	c.Add(&fakeElement{})
}
