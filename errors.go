package uilayer

import (
	"errors"
)

var (
	// ErrInvalidArgument indicates a nil or invalid layer id, widget class,
	// or player, passed to a public entry point. Operations that return it
	// were not started, and did not mutate any state.
	ErrInvalidArgument = errors.New(`uilayer: invalid argument`)

	// ErrDuplicateLayer indicates an attempt to register a layer id that is
	// already registered. The existing registration is preserved.
	ErrDuplicateLayer = errors.New(`uilayer: layer already registered`)

	// ErrUnavailable indicates a required collaborator is unavailable, e.g.
	// no layout exists for a player.
	ErrUnavailable = errors.New(`uilayer: unavailable`)

	// ErrNoManager indicates the [Subsystem] has no active [LayoutManager].
	ErrNoManager = errors.New(`uilayer: no layout manager`)

	// ErrClosed indicates the target has been closed.
	ErrClosed = errors.New(`uilayer: closed`)
)
