// Package termui implements the player, input-control and widget-toolkit
// collaborators of package uilayer, rendered as text using lipgloss.
//
// A [Screen] owns one [Root] per player. Each root holds a [Stack] per
// layer, which is registered with the player's [uilayer.Layout] via
// [Root.Register]. Rendering composes every attached root by z-order.
//
// Types in this package are safe for concurrent use, though are typically
// only accessed on the loop that owns the layouts.
package termui
