package termui

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joeycumines/go-uilayer"
)

// Root implements [uilayer.RootLayout], holding one [Stack] per layer, in
// the order given to [Screen.NewRoot].
type Root struct {
	player   *Player
	stacks   []*Stack
	z        int
	mu       sync.Mutex
	attached bool
}

var _ uilayer.RootLayout = (*Root)(nil)

// Player returns the player the root was created for.
func (x *Root) Player() *Player {
	return x.player
}

// Stack returns the stack for id, or nil.
func (x *Root) Stack(id uilayer.LayerID) *Stack {
	for _, s := range x.stacks {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// Stacks returns every stack, bottom layer first.
func (x *Root) Stacks() []*Stack {
	return append([]*Stack(nil), x.stacks...)
}

// Register registers every stack of the root with layout. Registration
// continues past failures, which are joined.
func (x *Root) Register(layout *uilayer.Layout) error {
	var errs []error
	for _, s := range x.stacks {
		if err := layout.RegisterLayer(s.ID(), s); err != nil {
			errs = append(errs, fmt.Errorf(`termui: register %s: %w`, s.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// AttachToPlayerViewport implements [uilayer.RootLayout].
func (x *Root) AttachToPlayerViewport(zOrder int) {
	x.mu.Lock()
	x.attached = true
	x.z = zOrder
	x.mu.Unlock()
}

// DetachFromViewport implements [uilayer.RootLayout].
func (x *Root) DetachFromViewport() {
	x.mu.Lock()
	x.attached = false
	x.mu.Unlock()
}

// Attached reports whether the root is attached, and at what z-order.
func (x *Root) Attached() (zOrder int, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.z, x.attached
}

// Focus returns the top widget of the highest non-empty layer, or nil.
func (x *Root) Focus() uilayer.Widget {
	for i := len(x.stacks) - 1; i >= 0; i-- {
		if w := x.stacks[i].Top(); w != nil {
			return w
		}
	}
	return nil
}
