package uilayer

import (
	"time"
)

type (
	// Loop models the single logical thread that owns all UI state.
	// Implementations must run submitted tasks sequentially, in order.
	// The *eventloop.Loop type from github.com/joeycumines/go-eventloop
	// satisfies this interface.
	Loop interface {
		// Submit schedules task to run on the loop. It returns an error if
		// the loop can no longer accept tasks.
		Submit(task func()) error
	}

	// Player models a local player. Implementations are used as map keys,
	// and must therefore be comparable (typically a pointer).
	Player interface {
		// Valid reports whether the player still exists.
		Valid() bool
		// Input returns the input-control surface of the player, or nil if
		// the player currently has none.
		Input() InputControl
	}

	// InputControl is the input-control collaborator of a player.
	InputControl interface {
		// SetChannelSuppressed suppresses or releases a single input
		// channel, on behalf of token. A channel is expected to remain
		// suppressed while at least one token suppresses it.
		SetChannelSuppressed(channel InputChannel, token SuspendToken, suppressed bool)
	}

	// WidgetClass is a resolved, instantiable widget class.
	WidgetClass interface {
		Name() string
	}

	// Widget is a widget instance, created by a [Toolkit].
	// Implementations must be comparable (typically a pointer).
	Widget interface {
		// OwningPlayer returns the player the widget was created for, which
		// may be nil.
		OwningPlayer() Player
	}

	// Toolkit is the widget-toolkit collaborator.
	Toolkit interface {
		// InstantiateWidget creates a new widget of the given class, owned
		// by owner (which may be nil). It returns nil on failure.
		InstantiateWidget(class WidgetClass, owner Player) Widget
	}

	// Container is a single layer's stack of widgets.
	Container interface {
		Insert(widget Widget)
		Remove(widget Widget)
		SetTransitionDuration(d time.Duration)
	}

	// RootLayout is the toolkit-side root of a [Layout].
	RootLayout interface {
		AttachToPlayerViewport(zOrder int)
		DetachFromViewport()
	}

	// AsyncHandle is a single in-flight resolve, as returned by a
	// [Streamer]. Callbacks must be invoked on the [Loop], and must never be
	// invoked synchronously from RequestResolve or the Bind methods.
	AsyncHandle interface {
		// BindOnResolved registers the completion callback. The class may
		// be nil, if the reference did not resolve to a usable class.
		BindOnResolved(fn func(class WidgetClass))
		// BindOnCanceled registers the cancellation callback.
		BindOnCanceled(fn func())
		// Cancel requests early termination of the resolve.
		Cancel()
	}

	// Streamer is the asset-streaming collaborator.
	Streamer interface {
		RequestResolve(ref SoftClassRef, priority Priority) AsyncHandle
	}

	// SyncResolver may optionally be implemented by a [Streamer], to support
	// blocking resolution, see [Subsystem.PushContentToLayer].
	SyncResolver interface {
		ResolveNow(ref SoftClassRef) (WidgetClass, error)
	}

	// SoftClassRef is a deferred reference to a widget class, which must be
	// resolved before it may be instantiated.
	SoftClassRef struct {
		Path string
	}

	// Priority is the priority of a resolve request.
	Priority int

	// InputChannel identifies a category of input that may be suppressed.
	InputChannel int
)

const (
	// PriorityNormal is the default resolve priority.
	PriorityNormal Priority = iota
	// PriorityHigh should be used for user-blocking resolves.
	PriorityHigh
)

const (
	// ChannelPointerKeyboard is mouse and keyboard input.
	ChannelPointerKeyboard InputChannel = iota
	// ChannelGamepad is gamepad input.
	ChannelGamepad
	// ChannelTouch is touch input.
	ChannelTouch
)

// InputChannels returns every recognized input channel, in a stable order.
func InputChannels() []InputChannel {
	return []InputChannel{ChannelPointerKeyboard, ChannelGamepad, ChannelTouch}
}

// String implements [fmt.Stringer].
func (x InputChannel) String() string {
	switch x {
	case ChannelPointerKeyboard:
		return `pointer-keyboard`
	case ChannelGamepad:
		return `gamepad`
	case ChannelTouch:
		return `touch`
	default:
		return `unknown`
	}
}

// IsNull reports whether the reference is unset.
func (x SoftClassRef) IsNull() bool {
	return x.Path == ``
}

// String implements [fmt.Stringer].
func (x SoftClassRef) String() string {
	return x.Path
}

// String implements [fmt.Stringer].
func (x Priority) String() string {
	switch x {
	case PriorityNormal:
		return `normal`
	case PriorityHigh:
		return `high`
	default:
		return `unknown`
	}
}
