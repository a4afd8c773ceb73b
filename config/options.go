package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/go-uilayer/streaming"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Options returns the core options described by the configuration. The
// runtime collaborators (loop, toolkit, streamer) are not included.
func (x Config) Options(logger *logiface.Logger[logiface.Event]) ([]uilayer.Option, error) {
	priority, err := x.Priority()
	if err != nil {
		return nil, err
	}
	return []uilayer.Option{
		uilayer.WithLogger(logger),
		uilayer.WithZOrder(x.Layout.ZOrder),
		uilayer.WithPriority(priority),
	}, nil
}

// StreamingOptions returns the options for [streaming.New].
func (x Config) StreamingOptions(logger *logiface.Logger[logiface.Event]) []streaming.Option {
	return []streaming.Option{
		streaming.WithLogger(logger),
		streaming.WithMaxConcurrent(x.Streaming.MaxConcurrent),
		streaming.WithRateLimits(Rates(x.Streaming.RateLimits)),
		streaming.WithHighPriorityBypass(x.Streaming.HighPriorityBypass),
	}
}

// ParseLevel parses a syslog keyword, as per [logiface.Level.String], also
// accepting "error", "warn", and "none".
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case `disabled`, `none`:
		return logiface.LevelDisabled, nil
	case `emerg`:
		return logiface.LevelEmergency, nil
	case `alert`:
		return logiface.LevelAlert, nil
	case `crit`:
		return logiface.LevelCritical, nil
	case `err`, `error`:
		return logiface.LevelError, nil
	case `warning`, `warn`:
		return logiface.LevelWarning, nil
	case `notice`:
		return logiface.LevelNotice, nil
	case `info`, ``:
		return logiface.LevelInformational, nil
	case `debug`:
		return logiface.LevelDebug, nil
	case `trace`:
		return logiface.LevelTrace, nil
	default:
		return logiface.LevelDisabled, fmt.Errorf(`config: log.level: unknown level %q`, s)
	}
}

// NewLogger builds a JSON lines logger writing to w, throttling
// [logiface.Builder.Limit] events per the configured rate limits.
func NewLogger(cfg LogConfig, w io.Writer) (logger *logiface.Logger[logiface.Event], err error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := []logiface.Option[*stumpy.Event]{
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	}
	if rates := Rates(cfg.RateLimits); rates != nil {
		opts = append(opts, stumpy.L.WithCategoryRateLimits(rates))
	}
	defer func() {
		if r := recover(); r != nil {
			logger, err = nil, fmt.Errorf(`config: log.rate_limits: %v`, r)
		}
	}()
	return stumpy.L.New(opts...).Logger(), nil
}
