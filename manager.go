package uilayer

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

type (
	// LayoutFactory creates the primary layout for a player.
	LayoutFactory interface {
		NewLayout(player Player) (*Layout, error)
	}

	// LayoutFactoryFunc implements [LayoutFactory].
	LayoutFactoryFunc func(player Player) (*Layout, error)

	// LayoutManager owns the mapping from player to primary layout.
	//
	// Per player, the lifecycle is: absent, created (on first add), attached
	// (to the player's viewport), then absent again (on destroy). Removing a
	// player detaches its layout, but retains it, so that UI state survives
	// split-screen and temporary removal.
	//
	// LayoutManager is not safe for concurrent use.
	LayoutManager struct {
		factory LayoutFactory
		opts    *options
		entries map[Player]*layoutEntry
		order   []Player
		active  bool
	}

	layoutEntry struct {
		layout   *Layout
		attached bool
	}
)

var _ LayoutFactory = LayoutFactoryFunc(nil)

// NewLayout implements [LayoutFactory].
func (x LayoutFactoryFunc) NewLayout(player Player) (*Layout, error) {
	return x(player)
}

// NewLayoutManager constructs a new manager, using factory to create each
// player's layout. Relevant options are [WithLogger], [WithZOrder],
// [WithOnAttached], [WithOnDetached], and [WithOnReleased].
func NewLayoutManager(factory LayoutFactory, opts ...Option) (*LayoutManager, error) {
	if factory == nil {
		return nil, fmt.Errorf(`%w: layout factory must not be nil`, ErrInvalidArgument)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &LayoutManager{
		factory: factory,
		opts:    cfg,
		entries: make(map[Player]*layoutEntry),
		active:  true,
	}, nil
}

// NotifyPlayerAdded ensures player has a layout, attached to its viewport.
// If the layout is already attached, this logs and is a no-op. If creating
// the layout fails, an error is logged, and the player is left without one.
func (x *LayoutManager) NotifyPlayerAdded(player Player) {
	if player == nil {
		x.opts.logger.Err().
			Log(`uilayer: player added ignored: nil player`)
		return
	}

	if entry := x.entries[player]; entry != nil {
		if entry.attached {
			withPlayer(x.opts.logger.Info(), player).
				Limit().
				Log(`uilayer: player added ignored: layout already attached`)
			return
		}
		x.attach(player, entry)
		return
	}

	layout, err := x.factory.NewLayout(player)
	if err == nil && layout == nil {
		err = ErrUnavailable
	}
	if err != nil {
		withPlayer(x.opts.logger.Err(), player).
			Err(err).
			Log(`uilayer: player added: failed to create layout`)
		return
	}

	entry := &layoutEntry{layout: layout}
	x.entries[player] = entry
	x.order = append(x.order, player)

	withPlayer(x.opts.logger.Debug(), player).
		Log(`uilayer: layout created`)

	x.attach(player, entry)
}

// NotifyPlayerRemoved detaches the player's layout from its viewport, if
// attached. The layout itself is retained.
func (x *LayoutManager) NotifyPlayerRemoved(player Player) {
	if entry := x.entries[player]; entry != nil {
		x.detach(player, entry)
	}
}

// NotifyPlayerDestroyed detaches the player's layout (if attached), closes
// it, canceling any in-flight pushes, forgets it, and then calls the
// released hook with the outgoing layout.
func (x *LayoutManager) NotifyPlayerDestroyed(player Player) {
	entry := x.entries[player]
	if entry == nil {
		return
	}

	x.detach(player, entry)

	delete(x.entries, player)
	for i, p := range x.order {
		if p == player {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}

	entry.layout.Close()

	withPlayer(x.opts.logger.Debug(), player).
		Log(`uilayer: layout released`)

	if x.opts.onReleased != nil {
		x.opts.onReleased(player, entry.layout)
	}
}

// Layout returns the layout of player, or nil.
func (x *LayoutManager) Layout(player Player) *Layout {
	if entry := x.entries[player]; entry != nil {
		return entry.layout
	}
	return nil
}

// Attached reports whether the layout of player is attached to its viewport.
func (x *LayoutManager) Attached(player Player) bool {
	entry := x.entries[player]
	return entry != nil && entry.attached
}

// Players returns every player with a layout, in the order they were added.
func (x *LayoutManager) Players() []Player {
	return append([]Player(nil), x.order...)
}

// switchOut detaches every layout, leaving them retained, and stops
// attaching layouts until switchIn.
func (x *LayoutManager) switchOut() {
	if !x.active {
		return
	}
	for _, player := range x.order {
		x.detach(player, x.entries[player])
	}
	x.active = false
}

// switchIn resumes attaching layouts. Retained layouts stay detached until
// their players are next added.
func (x *LayoutManager) switchIn() {
	x.active = true
}

func (x *LayoutManager) attach(player Player, entry *layoutEntry) {
	if entry.attached {
		return
	}
	if !x.active {
		withPlayer(x.opts.logger.Debug(), player).
			Log(`uilayer: attach deferred: manager switched out`)
		return
	}
	entry.layout.Root().AttachToPlayerViewport(x.opts.zOrder)
	entry.attached = true
	x.logEntry(x.opts.logger.Debug(), player).
		Log(`uilayer: layout attached`)
	if x.opts.onAttached != nil {
		x.opts.onAttached(player, entry.layout)
	}
}

func (x *LayoutManager) detach(player Player, entry *layoutEntry) {
	if !entry.attached {
		return
	}
	entry.layout.Root().DetachFromViewport()
	entry.attached = false
	x.logEntry(x.opts.logger.Debug(), player).
		Log(`uilayer: layout detached`)
	if x.opts.onDetached != nil {
		x.opts.onDetached(player, entry.layout)
	}
}

func (x *LayoutManager) logEntry(b *logiface.Builder[logiface.Event], player Player) *logiface.Builder[logiface.Event] {
	return withPlayer(b, player).Int(`z`, x.opts.zOrder)
}
