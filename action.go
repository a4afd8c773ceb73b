package uilayer

import (
	"fmt"
)

type (
	// PushToLayerAction is a one-shot, callback-driven wrapper around
	// [Subsystem.PushStreamedContentToLayer]. Configure the callbacks, then
	// call Activate.
	PushToLayerAction struct {
		// OnInitialize is called with the new widget, before it is pushed.
		OnInitialize func(widget Widget)
		// OnAfterPush is called with the widget, after it was pushed.
		OnAfterPush func(widget Widget)
		// OnCanceled is called if the push failed, or was canceled.
		OnCanceled func()

		sub    *Subsystem
		player Player
		op     *PushOperation
		req    PushRequest
	}

	// CreateWidgetAction asynchronously resolves a widget class, and
	// instantiates it for a player, without pushing it to any layer.
	// Configure the callbacks, then call Activate.
	CreateWidgetAction struct {
		// OnComplete is called with the new widget, which may be nil if the
		// toolkit failed to instantiate it.
		OnComplete func(widget Widget)
		// OnCanceled is called if the resolve failed, or was canceled.
		OnCanceled func()

		sub     *Subsystem
		player  Player
		handle  *LoadHandle
		ref     SoftClassRef
		token   SuspendToken
		suspend bool
	}
)

// PushToLayer validates the arguments, returning an action that pushes a
// widget of class ref onto layer, in the layout of player, once activated.
func (x *Subsystem) PushToLayer(player Player, layer LayerID, ref SoftClassRef, suspendInput bool) (*PushToLayerAction, error) {
	req := PushRequest{
		Layer:        layer,
		Class:        ref,
		SuspendInput: suspendInput,
	}
	err := req.validate()
	if err == nil && (player == nil || !player.Valid()) {
		err = fmt.Errorf(`%w: invalid player`, ErrInvalidArgument)
	}
	if err != nil {
		x.opts.logger.Err().
			Err(err).
			Log(`uilayer: push to layer action not created`)
		return nil, err
	}
	return &PushToLayerAction{
		sub:    x,
		player: player,
		req:    req,
	}, nil
}

// Activate starts the push. Calls after the first are ignored.
func (x *PushToLayerAction) Activate() {
	if x.op != nil {
		return
	}
	req := x.req
	req.OnEvent = x.dispatch
	// arguments were validated by PushToLayer, and a player without a layout
	// yields a canceled operation
	x.op, _ = x.sub.PushStreamedContentToLayer(x.player, req)
}

// Cancel cancels the push, if activated and still in flight.
func (x *PushToLayerAction) Cancel() {
	if x.op != nil {
		x.op.Cancel()
	}
}

// Operation returns the underlying operation, which is nil until activated.
func (x *PushToLayerAction) Operation() *PushOperation {
	return x.op
}

func (x *PushToLayerAction) dispatch(event PushEvent) {
	switch event.State {
	case PushInitialize:
		if x.OnInitialize != nil {
			x.OnInitialize(event.Widget)
		}
	case PushAfterPush:
		if x.OnAfterPush != nil {
			x.OnAfterPush(event.Widget)
		}
	case PushCanceled:
		if x.OnCanceled != nil {
			x.OnCanceled()
		}
	}
}

// CreateWidgetAsync validates the arguments, returning an action that
// resolves ref at high priority, then instantiates it for player, once
// activated. If suspendInput is set, input is suspended until the resolve
// finishes.
func (x *Subsystem) CreateWidgetAsync(player Player, ref SoftClassRef, suspendInput bool) (*CreateWidgetAction, error) {
	var err error
	switch {
	case ref.IsNull():
		err = fmt.Errorf(`%w: null widget class reference`, ErrInvalidArgument)
	case player == nil || !player.Valid():
		err = fmt.Errorf(`%w: invalid owning player`, ErrInvalidArgument)
	}
	if err != nil {
		x.opts.logger.Err().
			Err(err).
			Log(`uilayer: create widget action not created`)
		return nil, err
	}
	return &CreateWidgetAction{
		sub:     x,
		player:  player,
		ref:     ref,
		suspend: suspendInput,
	}, nil
}

// Activate starts the resolve. Calls after the first are ignored.
func (x *CreateWidgetAction) Activate() {
	if x.handle != nil {
		return
	}
	if x.suspend {
		x.token = x.sub.opts.suspender.Suspend(x.player, SuspendReasonCreateWidget)
	}
	x.handle = x.sub.opts.loader().Request(x.ref, PriorityHigh)
	x.handle.BindCompletion(x.completed)
	x.handle.BindCancellation(x.canceled)
}

// Cancel cancels the resolve, if activated and still in flight.
func (x *CreateWidgetAction) Cancel() {
	if x.handle != nil {
		x.handle.Cancel()
	}
}

// Token returns the token input was suspended with, if any.
func (x *CreateWidgetAction) Token() SuspendToken {
	return x.token
}

func (x *CreateWidgetAction) completed(class WidgetClass) {
	x.resume()
	// re-resolve the owner, which may no longer be valid
	var owner Player
	if x.player.Valid() {
		owner = x.player
	}
	widget := x.sub.opts.toolkit.InstantiateWidget(class, owner)
	if x.OnComplete != nil {
		x.OnComplete(widget)
	}
}

func (x *CreateWidgetAction) canceled() {
	x.resume()
	if x.OnCanceled != nil {
		x.OnCanceled()
	}
}

func (x *CreateWidgetAction) resume() {
	if !x.token.IsNone() {
		x.sub.opts.suspender.Resume(x.player, x.token)
	}
}
