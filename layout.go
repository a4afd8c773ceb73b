package uilayer

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// Layout is the primary layout of a single player: the root UI container,
// hosting all of that player's layers. It doubles as the layer registry,
// mapping each [LayerID] to the [Container] that implements it.
//
// Layout is not safe for concurrent use, see the package documentation.
type Layout struct {
	root    RootLayout
	player  Player
	opts    *options
	layers  map[LayerID]Container
	widgets map[Widget]LayerID
	pending map[*PushOperation]struct{}
	order   []LayerID
	closed  bool
}

// NewLayout constructs a layout for player, backed by root.
// [WithLoop], [WithToolkit], and [WithStreamer] are required.
func NewLayout(root RootLayout, player Player, opts ...Option) (*Layout, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.requireRuntime(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf(`%w: root layout must not be nil`, ErrInvalidArgument)
	}
	return &Layout{
		root:    root,
		player:  player,
		opts:    cfg,
		layers:  make(map[LayerID]Container),
		widgets: make(map[Widget]LayerID),
		pending: make(map[*PushOperation]struct{}),
	}, nil
}

// Root returns the toolkit-side root of the layout.
func (x *Layout) Root() RootLayout {
	return x.root
}

// Player returns the player the layout belongs to.
func (x *Layout) Player() Player {
	return x.player
}

// SuspendRegistry returns the registry used to suspend input for pushes.
func (x *Layout) SuspendRegistry() *SuspendRegistry {
	return x.opts.suspender
}

// RegisterLayer registers container as the implementation of layer id, and
// configures it for immediate (zero duration) transitions, so stacked pushes
// do not visually stall.
//
// Invalid arguments and duplicate registrations are logged, return an error,
// and leave the layout unchanged. Registration in a design-time context is
// silently skipped, returning nil.
func (x *Layout) RegisterLayer(id LayerID, container Container) error {
	if x.opts.isDesignTime() {
		return nil
	}

	var err error
	switch {
	case x.closed:
		err = ErrClosed
	case !id.Valid():
		err = fmt.Errorf(`%w: layer id %q`, ErrInvalidArgument, id)
	case container == nil:
		err = fmt.Errorf(`%w: nil container`, ErrInvalidArgument)
	case x.layers[id] != nil:
		err = ErrDuplicateLayer
	}
	if err != nil {
		x.logEvent(x.opts.logger.Err()).
			Str(`layer`, string(id)).
			Err(err).
			Log(`uilayer: register layer failed`)
		return err
	}

	container.SetTransitionDuration(0 * time.Second)
	x.layers[id] = container
	x.order = append(x.order, id)

	x.logEvent(x.opts.logger.Debug()).
		Str(`layer`, string(id)).
		Log(`uilayer: layer registered`)

	return nil
}

// Layer returns the container registered for id, or nil.
// It panics if id is not valid, which is a programming error.
func (x *Layout) Layer(id LayerID) Container {
	if !id.Valid() {
		panic(fmt.Errorf(`uilayer: layer lookup with invalid layer id %q`, id))
	}
	return x.layers[id]
}

// Layers returns the registered layer ids, in registration order.
func (x *Layout) Layers() []LayerID {
	return append([]LayerID(nil), x.order...)
}

// RemoveWidget removes widget from layer id. Invalid arguments are logged as
// errors. If the layer does not exist, a warning is logged, and the call is
// a no-op, as this is expected during teardown.
func (x *Layout) RemoveWidget(id LayerID, widget Widget) {
	if !id.Valid() || widget == nil {
		x.logEvent(x.opts.logger.Err()).
			Str(`layer`, string(id)).
			Bool(`widget`, widget != nil).
			Log(`uilayer: remove widget failed: invalid argument`)
		return
	}
	container := x.layers[id]
	if container == nil {
		x.logEvent(x.opts.logger.Warning()).
			Limit().
			Str(`layer`, string(id)).
			Log(`uilayer: remove widget ignored: no such layer`)
		return
	}
	container.Remove(widget)
	if x.widgets[widget] == id {
		delete(x.widgets, widget)
	}
}

// FindAndRemoveWidget removes widget from whichever layer it was pushed to,
// returning false if the widget was not pushed via this layout.
func (x *Layout) FindAndRemoveWidget(widget Widget) bool {
	if widget == nil {
		return false
	}
	id, ok := x.widgets[widget]
	if !ok {
		return false
	}
	x.RemoveWidget(id, widget)
	return true
}

// LayerOf returns the layer widget was pushed to, if any.
func (x *Layout) LayerOf(widget Widget) (LayerID, bool) {
	id, ok := x.widgets[widget]
	return id, ok
}

// PushWidget synchronously instantiates class, owned by the layout's player,
// runs init (if non-nil) on the new widget, then inserts it into layer id.
// It returns nil if the arguments are invalid, the layer does not exist, or
// the toolkit fails to instantiate the widget.
func (x *Layout) PushWidget(id LayerID, class WidgetClass, init func(widget Widget)) Widget {
	if !id.Valid() || class == nil {
		x.logEvent(x.opts.logger.Err()).
			Str(`layer`, string(id)).
			Bool(`class`, class != nil).
			Log(`uilayer: push widget failed: invalid argument`)
		return nil
	}
	return x.pushWidget(id, class, init)
}

func (x *Layout) pushWidget(id LayerID, class WidgetClass, init func(widget Widget)) Widget {
	if x.closed {
		x.logEvent(x.opts.logger.Warning()).
			Str(`layer`, string(id)).
			Str(`class`, class.Name()).
			Log(`uilayer: push widget failed: layout closed`)
		return nil
	}

	container := x.layers[id]
	if container == nil {
		x.logEvent(x.opts.logger.Warning()).
			Limit().
			Str(`layer`, string(id)).
			Str(`class`, class.Name()).
			Log(`uilayer: push widget failed: no such layer`)
		return nil
	}

	var owner Player
	if x.player != nil && x.player.Valid() {
		owner = x.player
	}
	widget := x.opts.toolkit.InstantiateWidget(class, owner)
	if widget == nil {
		x.logEvent(x.opts.logger.Warning()).
			Str(`layer`, string(id)).
			Str(`class`, class.Name()).
			Log(`uilayer: push widget failed: instantiation failed`)
		return nil
	}

	if init != nil {
		init(widget)
	}

	container.Insert(widget)
	x.widgets[widget] = id

	return widget
}

// Pending returns the number of asynchronous pushes in flight.
func (x *Layout) Pending() int {
	return len(x.pending)
}

// Closed reports whether [Layout.Close] has been called.
func (x *Layout) Closed() bool {
	return x.closed
}

// Close tears down the layout, canceling every in-flight push. Later pushes
// resolve to [PushCanceled], and later registrations fail. Registered
// layers, and the widgets in them, are left as-is. Safe to call repeatedly.
func (x *Layout) Close() {
	if x.closed {
		return
	}
	x.closed = true
	ops := make([]*PushOperation, 0, len(x.pending))
	for op := range x.pending {
		ops = append(ops, op)
	}
	for _, op := range ops {
		op.Cancel()
	}
	x.logEvent(x.opts.logger.Debug()).
		Int(`canceled`, len(ops)).
		Log(`uilayer: layout closed`)
}

func (x *Layout) logEvent(b *logiface.Builder[logiface.Event]) *logiface.Builder[logiface.Event] {
	return withPlayer(b, x.player)
}
