package streaming

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultMaxConcurrent is the default bound on resolves in flight.
const DefaultMaxConcurrent = 4

type managerOptions struct {
	logger        *logiface.Logger[logiface.Event]
	rates         map[time.Duration]int
	maxConcurrent int64
	noBypass      bool
}

// Option configures a [Manager].
type Option interface {
	applyOption(*managerOptions) error
}

type optionImpl struct {
	fn func(*managerOptions) error
}

func (o *optionImpl) applyOption(opts *managerOptions) error {
	return o.fn(opts)
}

// WithLogger configures the logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{fn: func(opts *managerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMaxConcurrent bounds the number of normal priority resolves in flight.
// It must be positive.
func WithMaxConcurrent(n int) Option {
	return &optionImpl{fn: func(opts *managerOptions) error {
		if n <= 0 {
			return errors.New(`streaming: max concurrent must be positive`)
		}
		opts.maxConcurrent = int64(n)
		return nil
	}}
}

// WithRateLimits limits how often each path may be resolved, using sliding
// windows, as per github.com/joeycumines/go-catrate. Requests over the limit
// are delayed, not rejected. A nil or empty map disables rate limiting.
// Invalid rates cause [New] to fail.
func WithRateLimits(rates map[time.Duration]int) Option {
	return &optionImpl{fn: func(opts *managerOptions) error {
		opts.rates = rates
		return nil
	}}
}

// WithHighPriorityBypass configures whether high priority requests bypass
// the concurrency bound, which they do by default.
func WithHighPriorityBypass(bypass bool) Option {
	return &optionImpl{fn: func(opts *managerOptions) error {
		opts.noBypass = !bypass
		return nil
	}}
}

func resolveOptions(opts []Option) (*managerOptions, error) {
	cfg := &managerOptions{
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
