package termui

import (
	"sync"

	"github.com/google/uuid"
	"github.com/joeycumines/go-uilayer"
)

// Player implements [uilayer.Player].
type Player struct {
	input *InputFilter
	name  string
	mu    sync.Mutex
	id    uuid.UUID
	gone  bool
}

var _ uilayer.Player = (*Player)(nil)

// NewPlayer returns a valid player with an attached [InputFilter].
func NewPlayer(name string) *Player {
	return &Player{
		id:    uuid.New(),
		name:  name,
		input: NewInputFilter(),
	}
}

// ID returns the unique identity of the player.
func (x *Player) ID() uuid.UUID {
	return x.id
}

// Name returns the display name of the player.
func (x *Player) Name() string {
	return x.name
}

// String implements [fmt.Stringer], and is used to identify the player in
// logs.
func (x *Player) String() string {
	return x.name
}

// Valid implements [uilayer.Player].
func (x *Player) Valid() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return !x.gone
}

// Input implements [uilayer.Player].
func (x *Player) Input() uilayer.InputControl {
	if f := x.Filter(); f != nil {
		return f
	}
	return nil
}

// Filter returns the attached input filter, or nil.
func (x *Player) Filter() *InputFilter {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.input
}

// AttachInput replaces the input filter, which may be nil.
func (x *Player) AttachInput(f *InputFilter) {
	x.mu.Lock()
	x.input = f
	x.mu.Unlock()
}

// DetachInput removes and returns the input filter.
func (x *Player) DetachInput() *InputFilter {
	x.mu.Lock()
	defer x.mu.Unlock()
	f := x.input
	x.input = nil
	return f
}

// Destroy invalidates the player. The input filter is retained, so tokens
// issued against it may still be released.
func (x *Player) Destroy() {
	x.mu.Lock()
	x.gone = true
	x.mu.Unlock()
}
