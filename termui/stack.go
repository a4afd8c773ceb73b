package termui

import (
	"slices"
	"sync"
	"time"

	"github.com/joeycumines/go-uilayer"
)

// Stack implements [uilayer.Container]. The last inserted widget is the
// top of the stack.
type Stack struct {
	id         uilayer.LayerID
	widgets    []uilayer.Widget
	transition time.Duration
	mu         sync.Mutex
}

var _ uilayer.Container = (*Stack)(nil)

// NewStack returns an empty stack for the given layer.
func NewStack(id uilayer.LayerID) *Stack {
	return &Stack{id: id, transition: DefaultTransition}
}

// DefaultTransition is the transition duration of a new [Stack].
const DefaultTransition = 250 * time.Millisecond

// ID returns the layer the stack was created for.
func (x *Stack) ID() uilayer.LayerID {
	return x.id
}

// Insert implements [uilayer.Container]. Inserting a widget already in the
// stack moves it to the top.
func (x *Stack) Insert(widget uilayer.Widget) {
	if widget == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.widgets = slices.DeleteFunc(x.widgets, func(w uilayer.Widget) bool { return w == widget })
	x.widgets = append(x.widgets, widget)
}

// Remove implements [uilayer.Container].
func (x *Stack) Remove(widget uilayer.Widget) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.widgets = slices.DeleteFunc(x.widgets, func(w uilayer.Widget) bool { return w == widget })
}

// SetTransitionDuration implements [uilayer.Container].
func (x *Stack) SetTransitionDuration(d time.Duration) {
	x.mu.Lock()
	x.transition = d
	x.mu.Unlock()
}

// TransitionDuration returns the configured transition duration.
func (x *Stack) TransitionDuration() time.Duration {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.transition
}

// Widgets returns a copy of the stack, bottom first.
func (x *Stack) Widgets() []uilayer.Widget {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.widgets)
}

// Top returns the top widget, or nil.
func (x *Stack) Top() uilayer.Widget {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(x.widgets) == 0 {
		return nil
	}
	return x.widgets[len(x.widgets)-1]
}

func (x *Stack) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.widgets)
}
