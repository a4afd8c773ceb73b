package uilayer

import (
	"fmt"
	"slices"
)

// ManagerFactory creates the [LayoutManager] used by a [Subsystem].
type ManagerFactory func(sub *Subsystem) (*LayoutManager, error)

// Subsystem is the caller-facing entry point. It owns the active
// [LayoutManager], forwarding player lifecycle notifications to it, and
// exposes push/pop/suspend functions that locate the right [Layout] for a
// player.
//
// Subsystem is not safe for concurrent use.
type Subsystem struct {
	factory ManagerFactory
	opts    *options
	manager *LayoutManager
	players []*knownPlayer
	// switched out managers, kept until their layouts are released
	retired []*LayoutManager
}

type knownPlayer struct {
	player  Player
	removed bool
}

// NewSubsystem constructs a subsystem, which creates its manager using
// factory on [Subsystem.Initialize]. A nil factory is accepted, and results
// in an inert subsystem, which logs an error on initialization.
// [WithLoop], [WithToolkit], and [WithStreamer] are required.
func NewSubsystem(factory ManagerFactory, opts ...Option) (*Subsystem, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.requireRuntime(); err != nil {
		return nil, err
	}
	return &Subsystem{
		factory: factory,
		opts:    cfg,
	}, nil
}

// Initialize creates the layout manager and switches to it. It is a no-op if
// a manager is already active. On failure, an error is logged, and the
// subsystem is left without a manager.
func (x *Subsystem) Initialize() {
	if x.manager != nil {
		x.opts.logger.Info().
			Log(`uilayer: subsystem initialize ignored: manager already present`)
		return
	}
	if x.factory == nil {
		x.opts.logger.Err().
			Log(`uilayer: subsystem misconfigured: no manager factory, skipping initialize`)
		return
	}
	manager, err := x.factory(x)
	if err == nil && manager == nil {
		err = ErrNoManager
	}
	if err != nil {
		x.opts.logger.Err().
			Err(err).
			Log(`uilayer: subsystem failed to create manager, skipping initialize`)
		x.SwitchManager(nil)
		return
	}
	x.opts.logger.Info().
		Log(`uilayer: subsystem initialized`)
	x.SwitchManager(manager)
}

// Deinitialize switches out the active manager, detaching every layout.
func (x *Subsystem) Deinitialize() {
	x.SwitchManager(nil)
}

// SwitchManager replaces the active manager. The old manager (if any) is
// switched out, detaching all of its layouts, which it retains. The new
// manager (if any) is switched in, and notified of every known player that
// has not been removed since it was last added.
//
// Players destroyed while a manager is switched out are still released by
// that manager.
func (x *Subsystem) SwitchManager(manager *LayoutManager) {
	old := x.manager
	if old == manager {
		return
	}
	x.opts.logger.Info().
		Bool(`old`, old != nil).
		Bool(`new`, manager != nil).
		Log(`uilayer: switching layout manager`)
	if old != nil {
		old.switchOut()
		if len(old.entries) != 0 {
			x.retired = append(x.retired, old)
		}
	}
	x.manager = manager
	if manager != nil {
		x.retired = slices.DeleteFunc(x.retired, func(m *LayoutManager) bool { return m == manager })
		manager.switchIn()
		for _, known := range x.players {
			if !known.removed && known.player.Valid() {
				manager.NotifyPlayerAdded(known.player)
			}
		}
	}
}

// Manager returns the active manager, or nil.
func (x *Subsystem) Manager() *LayoutManager {
	return x.manager
}

// SuspendRegistry returns the registry used by [Subsystem.SuspendInput].
// Layout factories should pass it to [NewLayout] via [WithSuspendRegistry].
func (x *Subsystem) SuspendRegistry() *SuspendRegistry {
	return x.opts.suspender
}

// Options returns the options the subsystem was configured with, for use by
// layout factories, and may be extended with additional options.
func (x *Subsystem) Options(extra ...Option) []Option {
	opts := []Option{
		WithLoop(x.opts.loop),
		WithToolkit(x.opts.toolkit),
		WithStreamer(x.opts.streamer),
		WithSuspendRegistry(x.opts.suspender),
		WithLogger(x.opts.logger),
		WithDesignTime(x.opts.designTime),
		WithPriority(x.opts.priority),
	}
	return append(opts, extra...)
}

// NotifyPlayerAdded records player as known, and forwards to the manager.
func (x *Subsystem) NotifyPlayerAdded(player Player) {
	if player == nil {
		x.opts.logger.Err().
			Log(`uilayer: player added ignored: nil player`)
		return
	}
	withPlayer(x.opts.logger.Info(), player).
		Log(`uilayer: player added`)
	if known := x.known(player); known != nil {
		known.removed = false
	} else {
		x.players = append(x.players, &knownPlayer{player: player})
	}
	if x.manager != nil {
		x.manager.NotifyPlayerAdded(player)
	}
}

// NotifyPlayerRemoved marks player as removed, and forwards to the manager.
// Its layout stays detached, across manager switches, until the player is
// next added. Nil players are ignored.
func (x *Subsystem) NotifyPlayerRemoved(player Player) {
	if player == nil {
		return
	}
	withPlayer(x.opts.logger.Info(), player).
		Log(`uilayer: player removed`)
	if known := x.known(player); known != nil {
		known.removed = true
	}
	if x.manager != nil {
		x.manager.NotifyPlayerRemoved(player)
	}
}

// NotifyPlayerDestroyed forgets player, and forwards to the manager, and to
// any switched out manager still holding layouts. Nil players are ignored.
func (x *Subsystem) NotifyPlayerDestroyed(player Player) {
	if player == nil {
		return
	}
	withPlayer(x.opts.logger.Info(), player).
		Log(`uilayer: player destroyed`)
	x.players = slices.DeleteFunc(x.players, func(known *knownPlayer) bool { return known.player == player })
	if x.manager != nil {
		x.manager.NotifyPlayerDestroyed(player)
	}
	x.retired = slices.DeleteFunc(x.retired, func(m *LayoutManager) bool {
		m.NotifyPlayerDestroyed(player)
		return len(m.entries) == 0
	})
}

// RefreshPlayer re-registers a player that may already be known, e.g. on
// controller re-possession, by removing then re-adding it. The player's
// layout is retained.
func (x *Subsystem) RefreshPlayer(player Player) {
	if player == nil {
		x.opts.logger.Err().
			Log(`uilayer: refresh player ignored: nil player`)
		return
	}
	x.NotifyPlayerRemoved(player)
	x.NotifyPlayerAdded(player)
}

// Layout returns the layout of player, or nil.
func (x *Subsystem) Layout(player Player) *Layout {
	if x.manager == nil || player == nil {
		return nil
	}
	return x.manager.Layout(player)
}

// SuspendInput suppresses all input for player, see [SuspendRegistry.Suspend].
func (x *Subsystem) SuspendInput(player Player, reason string) SuspendToken {
	return x.opts.suspender.Suspend(player, reason)
}

// ResumeInput releases a token, see [SuspendRegistry.Resume].
func (x *Subsystem) ResumeInput(player Player, token SuspendToken) {
	if token.IsNone() {
		withPlayer(x.opts.logger.Warning(), player).
			Log(`uilayer: resume input ignored: none token`)
		return
	}
	x.opts.suspender.Resume(player, token)
}

// PushContentToLayer synchronously resolves ref, and pushes a widget of that
// class onto layer, in the layout of player. The configured streamer must
// implement [SyncResolver].
func (x *Subsystem) PushContentToLayer(player Player, layer LayerID, ref SoftClassRef) (Widget, error) {
	var err error
	switch {
	case player == nil:
		err = fmt.Errorf(`%w: nil player`, ErrInvalidArgument)
	case !layer.Valid():
		err = fmt.Errorf(`%w: layer id %q`, ErrInvalidArgument, layer)
	case ref.IsNull():
		err = fmt.Errorf(`%w: null widget class reference`, ErrInvalidArgument)
	}
	if err != nil {
		x.opts.logger.Err().
			Err(err).
			Log(`uilayer: push content to layer failed`)
		return nil, err
	}

	layout := x.Layout(player)
	if layout == nil {
		withPlayer(x.opts.logger.Warning(), player).
			Str(`layer`, string(layer)).
			Log(`uilayer: push content to layer failed: no layout for player`)
		return nil, fmt.Errorf(`%w: no layout for player`, ErrUnavailable)
	}

	resolver, ok := x.opts.streamer.(SyncResolver)
	if !ok {
		return nil, fmt.Errorf(`%w: streamer does not support synchronous resolve`, ErrUnavailable)
	}
	class, err := resolver.ResolveNow(ref)
	if err == nil && class == nil {
		err = ErrUnavailable
	}
	if err != nil {
		withPlayer(x.opts.logger.Warning(), player).
			Str(`class`, ref.Path).
			Err(err).
			Log(`uilayer: push content to layer failed: class did not resolve`)
		return nil, fmt.Errorf(`uilayer: resolve %q: %w`, ref.Path, err)
	}

	widget := layout.PushWidget(layer, class, nil)
	if widget == nil {
		return nil, fmt.Errorf(`%w: widget not pushed to layer %q`, ErrUnavailable, layer)
	}
	return widget, nil
}

// PushStreamedContentToLayer starts an asynchronous push to the layout of
// player. It returns an error only for invalid arguments. If the player has
// no layout, the returned operation resolves to [PushCanceled].
func (x *Subsystem) PushStreamedContentToLayer(player Player, req PushRequest) (*PushOperation, error) {
	err := req.validate()
	if err == nil && player == nil {
		err = fmt.Errorf(`%w: nil player`, ErrInvalidArgument)
	}
	if err != nil {
		x.opts.logger.Err().
			Err(err).
			Log(`uilayer: push streamed content to layer failed`)
		return nil, err
	}

	layout := x.Layout(player)
	if layout == nil {
		withPlayer(x.opts.logger.Warning(), player).
			Str(`layer`, string(req.Layer)).
			Str(`class`, req.Class.Path).
			Log(`uilayer: push canceled: no layout for player`)
		return canceledPushOperation(req, player, x.opts), nil
	}

	return layout.PushWidgetAsync(req)
}

// PopContentFromLayer removes widget from the layout of its owning player,
// returning false if it could not be found.
func (x *Subsystem) PopContentFromLayer(widget Widget) bool {
	if widget == nil {
		x.opts.logger.Err().
			Log(`uilayer: pop content from layer failed: nil widget`)
		return false
	}
	player := widget.OwningPlayer()
	layout := x.Layout(player)
	if layout == nil {
		withPlayer(x.opts.logger.Warning(), player).
			Log(`uilayer: pop content from layer ignored: no layout for owning player`)
		return false
	}
	return layout.FindAndRemoveWidget(widget)
}

func (x *Subsystem) known(player Player) *knownPlayer {
	for _, known := range x.players {
		if known.player == player {
			return known
		}
	}
	return nil
}
