package uilayer

import (
	"fmt"
	"weak"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
)

// PushState tags a [PushEvent].
type PushState int

const (
	// PushInitialize is emitted with the new widget before it is inserted
	// into its layer, allowing callers to configure it.
	PushInitialize PushState = iota
	// PushAfterPush is emitted with the widget once it has been inserted.
	// Terminal.
	PushAfterPush
	// PushCanceled is emitted, with a nil widget, if the push failed or was
	// canceled. Terminal.
	PushCanceled
)

// String implements [fmt.Stringer].
func (x PushState) String() string {
	switch x {
	case PushInitialize:
		return `Initialize`
	case PushAfterPush:
		return `AfterPush`
	case PushCanceled:
		return `Canceled`
	default:
		return `Unknown`
	}
}

// OpState is the state of a [PushOperation].
type OpState int

const (
	// OpCreated is the state of an operation that has not yet started.
	OpCreated OpState = iota
	// OpSuspending is set while input is being suspended for the push.
	OpSuspending
	// OpLoading is set while the widget class is being resolved.
	OpLoading
	// OpInitializing is set while the widget is instantiated and initialized.
	OpInitializing
	// OpPushed is terminal.
	OpPushed
	// OpCanceled is terminal.
	OpCanceled
)

// String implements [fmt.Stringer].
func (x OpState) String() string {
	switch x {
	case OpCreated:
		return `Created`
	case OpSuspending:
		return `Suspending`
	case OpLoading:
		return `Loading`
	case OpInitializing:
		return `Initializing`
	case OpPushed:
		return `Pushed`
	case OpCanceled:
		return `Canceled`
	default:
		return `Unknown`
	}
}

type (
	// PushEvent is a state change notification of a [PushOperation].
	PushEvent struct {
		// Widget is nil for [PushCanceled].
		Widget Widget
		State  PushState
	}

	// PushRequest describes an asynchronous push, see
	// [Layout.PushWidgetAsync].
	PushRequest struct {
		// OnEvent receives every [PushEvent], in order: either
		// [PushInitialize] then [PushAfterPush], or just [PushCanceled].
		// Optional.
		OnEvent func(event PushEvent)
		// Class is the widget class to resolve and instantiate. Required.
		Class SoftClassRef
		// Layer is the target layer. Required.
		Layer LayerID
		// Priority overrides the default resolve priority, if non-nil.
		Priority *Priority
		// SuspendInput suppresses all input of the player, from the start
		// of the push until the class is resolved (or the push canceled).
		SuspendInput bool
	}

	// PushOperation is a single asynchronous push: suspend input (optional),
	// resolve the widget class, instantiate and initialize the widget,
	// insert it into its layer, then notify. Input is always resumed
	// exactly once, on the first transition out of [OpLoading], before any
	// terminal event is emitted.
	//
	// The operation holds its layout weakly. If the layout no longer exists
	// when the class resolves, the operation is canceled.
	PushOperation struct {
		layout    weak.Pointer[Layout]
		player    Player
		suspender *SuspendRegistry
		handle    *LoadHandle
		logger    *logiface.Logger[logiface.Event]
		onEvent   func(event PushEvent)
		class     SoftClassRef
		layer     LayerID
		token     SuspendToken
		id        uuid.UUID
		state     OpState
		resumed   bool
	}
)

// validate checks the request, without mutating any state.
func (x *PushRequest) validate() error {
	switch {
	case !x.Layer.Valid():
		return fmt.Errorf(`%w: layer id %q`, ErrInvalidArgument, x.Layer)
	case x.Class.IsNull():
		return fmt.Errorf(`%w: null widget class reference`, ErrInvalidArgument)
	}
	return nil
}

// PushWidgetAsync starts an asynchronous push. It returns an error only if
// the request is invalid, in which case no operation was started. All other
// failures, e.g. the layer not existing, are reported via [PushCanceled].
func (x *Layout) PushWidgetAsync(req PushRequest) (*PushOperation, error) {
	if err := req.validate(); err != nil {
		x.logEvent(x.opts.logger.Err()).
			Err(err).
			Log(`uilayer: push widget async failed`)
		return nil, err
	}

	op := newPushOperation(req, x.player, x.opts)

	if x.closed {
		x.logEvent(op.log(x.opts.logger.Warning())).
			Log(`uilayer: push canceled: layout closed`)
		op.cancelDetached(x.opts.loop)
		return op, nil
	}

	op.layout = weak.Make(x)
	x.pending[op] = struct{}{}

	if req.SuspendInput {
		op.state = OpSuspending
		op.token = op.suspender.Suspend(x.player, SuspendReasonPush)
	}

	priority := x.opts.priority
	if req.Priority != nil {
		priority = *req.Priority
	}

	op.state = OpLoading
	op.handle = x.opts.loader().Request(req.Class, priority)
	op.handle.BindCompletion(op.loaded)
	op.handle.BindCancellation(op.canceled)

	x.logEvent(op.log(x.opts.logger.Debug())).
		Bool(`suspend`, req.SuspendInput).
		Str(`token`, op.token.String()).
		Log(`uilayer: push started`)

	return op, nil
}

// canceledPushOperation returns an operation that resolves to
// [PushCanceled] without touching any layout, for callers that could not
// find one.
func canceledPushOperation(req PushRequest, player Player, opts *options) *PushOperation {
	op := newPushOperation(req, player, opts)
	op.cancelDetached(opts.loop)
	return op
}

func newPushOperation(req PushRequest, player Player, opts *options) *PushOperation {
	return &PushOperation{
		id:        uuid.New(),
		player:    player,
		suspender: opts.suspender,
		logger:    opts.logger,
		onEvent:   req.OnEvent,
		class:     req.Class,
		layer:     req.Layer,
		state:     OpCreated,
	}
}

// ID uniquely identifies the operation, for correlation.
func (x *PushOperation) ID() uuid.UUID {
	return x.id
}

// Layer returns the target layer.
func (x *PushOperation) Layer() LayerID {
	return x.layer
}

// Class returns the widget class reference being pushed.
func (x *PushOperation) Class() SoftClassRef {
	return x.class
}

// State returns the current state.
func (x *PushOperation) State() OpState {
	return x.state
}

// Token returns the token input was suspended with, which is the none token
// if input was not suspended.
func (x *PushOperation) Token() SuspendToken {
	return x.token
}

// Done reports whether the operation has reached a terminal state.
func (x *PushOperation) Done() bool {
	return x.state == OpPushed || x.state == OpCanceled
}

// Cancel cancels the operation, if it has not yet resolved its class. The
// [PushCanceled] event is emitted asynchronously. Safe to call repeatedly,
// including after the operation has finished.
func (x *PushOperation) Cancel() {
	if x.Done() || x.handle == nil {
		return
	}
	x.handle.Cancel()
}

// cancelDetached finishes an operation that never started loading.
func (x *PushOperation) cancelDetached(loop Loop) {
	x.state = OpCanceled
	emit := func() { x.emit(PushEvent{State: PushCanceled}) }
	if loop == nil || loop.Submit(emit) != nil {
		emit()
	}
}

// loaded is the completion continuation.
func (x *PushOperation) loaded(class WidgetClass) {
	x.resume()

	layout := x.layout.Value()
	if layout == nil {
		x.log(x.logger.Warning()).
			Log(`uilayer: push canceled: layout no longer exists`)
		x.finish(nil)
		return
	}
	delete(layout.pending, x)

	x.state = OpInitializing
	widget := layout.pushWidget(x.layer, class, func(widget Widget) {
		x.emit(PushEvent{State: PushInitialize, Widget: widget})
	})
	if widget == nil {
		layout.logEvent(x.log(x.logger.Warning())).
			Log(`uilayer: push canceled: widget not inserted`)
	}
	x.finish(widget)
}

// canceled is the cancellation continuation.
func (x *PushOperation) canceled() {
	x.resume()
	if layout := x.layout.Value(); layout != nil {
		delete(layout.pending, x)
	}
	x.log(x.logger.Debug()).
		Log(`uilayer: push canceled`)
	x.finish(nil)
}

func (x *PushOperation) resume() {
	if x.resumed {
		return
	}
	x.resumed = true
	if !x.token.IsNone() {
		x.suspender.Resume(x.player, x.token)
	}
}

func (x *PushOperation) finish(widget Widget) {
	if widget == nil {
		x.state = OpCanceled
		x.emit(PushEvent{State: PushCanceled})
		return
	}
	x.state = OpPushed
	x.log(x.logger.Debug()).
		Log(`uilayer: push complete`)
	x.emit(PushEvent{State: PushAfterPush, Widget: widget})
}

func (x *PushOperation) emit(event PushEvent) {
	if x.onEvent != nil {
		x.onEvent(event)
	}
}

func (x *PushOperation) log(b *logiface.Builder[logiface.Event]) *logiface.Builder[logiface.Event] {
	return b.
		Str(`op`, x.id.String()).
		Str(`layer`, string(x.layer)).
		Str(`class`, x.class.Path)
}
