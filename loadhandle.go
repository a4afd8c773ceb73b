package uilayer

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// LoadState is the state of a [LoadHandle].
type LoadState int32

const (
	// LoadPending indicates the resolve is in flight.
	LoadPending LoadState = iota
	// LoadCompleted indicates the resolve succeeded. Terminal.
	LoadCompleted
	// LoadCanceled indicates the resolve was canceled, or failed. Terminal.
	LoadCanceled
)

// String implements [fmt.Stringer].
func (x LoadState) String() string {
	switch x {
	case LoadPending:
		return `pending`
	case LoadCompleted:
		return `completed`
	case LoadCanceled:
		return `canceled`
	default:
		return `unknown`
	}
}

type (
	// Loader opens [LoadHandle] values. The zero value is usable, but every
	// request made with a nil Streamer is canceled.
	Loader struct {
		// Streamer performs the resolve.
		Streamer Streamer
		// Loop is used to deliver cancellation asynchronously. If nil, or
		// if submission fails, cancellation is delivered inline.
		Loop Loop
		// Logger is optional.
		Logger *logiface.Logger[logiface.Event]
	}

	// LoadHandle wraps a single asynchronous resolve of a [SoftClassRef].
	//
	// Exactly one of the completion or cancellation callbacks fires, exactly
	// once, always asynchronously relative to [Loader.Request] and
	// [LoadHandle.Cancel]. The first transition out of [LoadPending] wins,
	// and every later transition is ignored. A reference that resolves to a
	// nil class is treated as canceled.
	//
	// The handle owns its continuation state. It is kept alive by the
	// underlying [AsyncHandle] until it fires, regardless of whether its
	// initiator still exists.
	//
	// Cancel and State may be called from any goroutine. The Bind methods,
	// and all callbacks, belong to the loop.
	LoadHandle struct {
		loop       Loop
		inner      AsyncHandle
		logger     *logiface.Logger[logiface.Event]
		class      WidgetClass
		onComplete func(class WidgetClass)
		onCancel   func()
		ref        SoftClassRef
		state      atomic.Int32
		delivered  bool
	}
)

// Request begins resolving ref, returning immediately.
func (x *Loader) Request(ref SoftClassRef, priority Priority) *LoadHandle {
	h := &LoadHandle{
		loop:   x.Loop,
		logger: x.Logger,
		ref:    ref,
	}

	var inner AsyncHandle
	switch {
	case ref.IsNull():
		x.Logger.Warning().
			Log(`uilayer: load canceled: null class reference`)
	case x.Streamer == nil:
		x.Logger.Err().
			Str(`class`, ref.Path).
			Log(`uilayer: load canceled: no streamer`)
	default:
		inner = x.Streamer.RequestResolve(ref, priority)
		if inner == nil {
			x.Logger.Warning().
				Str(`class`, ref.Path).
				Log(`uilayer: load canceled: streamer returned no handle`)
		}
	}

	if inner == nil {
		h.state.Store(int32(LoadCanceled))
		h.deliverAsync()
		return h
	}

	h.inner = inner
	inner.BindOnResolved(h.resolved)
	inner.BindOnCanceled(h.canceled)

	return h
}

// BindCompletion registers the callback fired if the resolve completes with
// a usable class. If the handle has already delivered its completion, fn is
// called immediately.
func (x *LoadHandle) BindCompletion(fn func(class WidgetClass)) {
	x.onComplete = fn
	if x.delivered && x.State() == LoadCompleted {
		x.fireCompletion()
	}
}

// BindCancellation registers the callback fired if the resolve is canceled,
// or fails. If the handle has already delivered its cancellation, fn is
// called immediately.
func (x *LoadHandle) BindCancellation(fn func()) {
	x.onCancel = fn
	if x.delivered && x.State() == LoadCanceled {
		x.fireCancellation()
	}
}

// Cancel requests early termination. If the handle is still pending, it
// transitions to [LoadCanceled] immediately, and the cancellation callback
// fires asynchronously. Otherwise, it is a no-op. Safe to call repeatedly.
func (x *LoadHandle) Cancel() {
	if !x.state.CompareAndSwap(int32(LoadPending), int32(LoadCanceled)) {
		return
	}
	x.logger.Debug().
		Str(`class`, x.ref.Path).
		Log(`uilayer: load canceled`)
	if x.inner != nil {
		x.inner.Cancel()
	}
	x.deliverAsync()
}

// State returns the current state.
func (x *LoadHandle) State() LoadState {
	return LoadState(x.state.Load())
}

// Done reports whether the handle has left [LoadPending].
func (x *LoadHandle) Done() bool {
	return x.State() != LoadPending
}

// Ref returns the reference being resolved.
func (x *LoadHandle) Ref() SoftClassRef {
	return x.ref
}

// Class returns the resolved class, which is nil unless [LoadCompleted].
func (x *LoadHandle) Class() WidgetClass {
	if x.State() != LoadCompleted {
		return nil
	}
	return x.class
}

// resolved is bound to the underlying handle, and runs on the loop.
func (x *LoadHandle) resolved(class WidgetClass) {
	if class == nil {
		if x.state.CompareAndSwap(int32(LoadPending), int32(LoadCanceled)) {
			x.logger.Warning().
				Str(`class`, x.ref.Path).
				Log(`uilayer: load canceled: reference did not resolve to a widget class`)
			x.deliver()
		}
		return
	}
	if x.state.CompareAndSwap(int32(LoadPending), int32(LoadCompleted)) {
		x.class = class
		x.deliver()
	}
}

// canceled is bound to the underlying handle, and runs on the loop.
func (x *LoadHandle) canceled() {
	if x.state.CompareAndSwap(int32(LoadPending), int32(LoadCanceled)) {
		x.deliver()
	}
}

func (x *LoadHandle) deliverAsync() {
	if x.loop != nil {
		err := x.loop.Submit(x.deliver)
		if err == nil {
			return
		}
		x.logger.Warning().
			Err(err).
			Str(`class`, x.ref.Path).
			Log(`uilayer: loop rejected cancellation, delivering inline`)
	}
	x.deliver()
}

// deliver fires the callback matching the terminal state, at most once.
func (x *LoadHandle) deliver() {
	if x.delivered {
		return
	}
	x.delivered = true
	switch x.State() {
	case LoadCompleted:
		x.fireCompletion()
	case LoadCanceled:
		x.fireCancellation()
	}
}

func (x *LoadHandle) fireCompletion() {
	if fn := x.onComplete; fn != nil {
		x.onComplete = nil
		x.onCancel = nil
		fn(x.class)
	}
}

func (x *LoadHandle) fireCancellation() {
	if fn := x.onCancel; fn != nil {
		x.onComplete = nil
		x.onCancel = nil
		fn()
	}
}
