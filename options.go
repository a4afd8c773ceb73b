package uilayer

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// DefaultZOrder is the viewport z-order layouts are attached at, unless
// configured otherwise, see [WithZOrder].
const DefaultZOrder = 1000

// options holds the configuration shared by [NewLayout], [NewLayoutManager],
// and [NewSubsystem]. Each constructor validates only what it uses.
type options struct {
	loop       Loop
	toolkit    Toolkit
	streamer   Streamer
	suspender  *SuspendRegistry
	logger     *logiface.Logger[logiface.Event]
	designTime func() bool
	onAttached LayoutHook
	onDetached LayoutHook
	onReleased LayoutHook
	zOrder     int
	priority   Priority
}

// LayoutHook is notified of [LayoutManager] lifecycle events.
type LayoutHook func(player Player, layout *Layout)

// Option configures a [Layout], [LayoutManager], or [Subsystem].
type Option interface {
	applyOption(*options) error
}

// optionImpl implements [Option] via a closure.
type optionImpl struct {
	fn func(*options) error
}

func (o *optionImpl) applyOption(opts *options) error {
	return o.fn(opts)
}

// WithLoop configures the loop that all callbacks are delivered on.
// The loop must not be nil.
func WithLoop(loop Loop) Option {
	return &optionImpl{fn: func(opts *options) error {
		if loop == nil {
			return errors.New(`uilayer: loop must not be nil`)
		}
		opts.loop = loop
		return nil
	}}
}

// WithToolkit configures the widget toolkit used to instantiate widgets.
// The toolkit must not be nil.
func WithToolkit(toolkit Toolkit) Option {
	return &optionImpl{fn: func(opts *options) error {
		if toolkit == nil {
			return errors.New(`uilayer: toolkit must not be nil`)
		}
		opts.toolkit = toolkit
		return nil
	}}
}

// WithStreamer configures the streamer used to resolve [SoftClassRef]
// values. The streamer must not be nil.
func WithStreamer(streamer Streamer) Option {
	return &optionImpl{fn: func(opts *options) error {
		if streamer == nil {
			return errors.New(`uilayer: streamer must not be nil`)
		}
		opts.streamer = streamer
		return nil
	}}
}

// WithSuspendRegistry configures the registry used to suspend input. If not
// set, a new registry, using the configured logger, is used.
func WithSuspendRegistry(registry *SuspendRegistry) Option {
	return &optionImpl{fn: func(opts *options) error {
		if registry == nil {
			return errors.New(`uilayer: suspend registry must not be nil`)
		}
		opts.suspender = registry
		return nil
	}}
}

// WithLogger configures the logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithDesignTime configures a predicate reporting whether the host is in a
// non-interactive preview context, during which layer registration is
// silently skipped. A nil predicate is equivalent to one returning false.
func WithDesignTime(fn func() bool) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.designTime = fn
		return nil
	}}
}

// WithZOrder configures the viewport z-order layouts are attached at.
func WithZOrder(zOrder int) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.zOrder = zOrder
		return nil
	}}
}

// WithPriority configures the default priority of asynchronous pushes.
func WithPriority(priority Priority) Option {
	return &optionImpl{fn: func(opts *options) error {
		if priority != PriorityNormal && priority != PriorityHigh {
			return errors.New(`uilayer: unknown priority`)
		}
		opts.priority = priority
		return nil
	}}
}

// WithOnAttached configures a hook, called after a layout is attached to its
// player's viewport.
func WithOnAttached(hook LayoutHook) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.onAttached = hook
		return nil
	}}
}

// WithOnDetached configures a hook, called after a layout is detached from
// its player's viewport.
func WithOnDetached(hook LayoutHook) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.onDetached = hook
		return nil
	}}
}

// WithOnReleased configures a hook, called with the outgoing layout when its
// player is destroyed, so that owners may release any references to it.
func WithOnReleased(hook LayoutHook) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.onReleased = hook
		return nil
	}}
}

// resolveOptions applies the given options to a default [options].
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		zOrder: DefaultZOrder,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.suspender == nil {
		cfg.suspender = NewSuspendRegistry(cfg.logger)
	}
	return cfg, nil
}

// requireRuntime validates the options needed to drive pushes.
func (x *options) requireRuntime() error {
	switch {
	case x.loop == nil:
		return errors.New(`uilayer: loop must be provided via WithLoop`)
	case x.toolkit == nil:
		return errors.New(`uilayer: toolkit must be provided via WithToolkit`)
	case x.streamer == nil:
		return errors.New(`uilayer: streamer must be provided via WithStreamer`)
	}
	return nil
}

func (x *options) isDesignTime() bool {
	return x.designTime != nil && x.designTime()
}

func (x *options) loader() *Loader {
	return &Loader{
		Streamer: x.streamer,
		Loop:     x.loop,
		Logger:   x.logger,
	}
}
