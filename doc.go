// Package uilayer manages a per-player, layered UI stack on top of an
// abstract widget toolkit.
//
// A [Layout] is the root UI container owned by one local player. It hosts a
// fixed set of named layers (HUD, menu, modal, etc.), each backed by a
// [Container]. Content is pushed onto layers either synchronously, from an
// already resolved [WidgetClass], or asynchronously, from a [SoftClassRef]
// that must first be resolved by a [Streamer]. Asynchronous pushes are
// represented by a [PushOperation], which may be canceled at any point.
//
// # Architecture
//
// The package is built from the following pieces, leaf first:
//
//   - [SuspendRegistry] issues process-unique [SuspendToken] values and
//     tracks which input channels are suppressed on behalf of each token.
//   - [LoadHandle] wraps a single asynchronous resolve, guaranteeing that
//     exactly one of its completion or cancellation callbacks fires.
//   - [Layout] is the layer registry, plus the push state machine.
//   - [LayoutManager] owns the mapping from player to layout, keeping it in
//     sync with viewport attach/detach and player add/remove/destroy.
//   - [Subsystem] owns the active [LayoutManager], and exposes the
//     caller-facing push/pop/suspend functions and the async actions.
//
// # Thread Safety
//
// Everything in this package, other than [SuspendRegistry] and the state
// transitions of [LoadHandle], is expected to be used from a single logical
// thread: the UI/main thread, modeled by [Loop]. The only genuine
// concurrency is the resolve performed by the [Streamer], which must deliver
// its results back onto the loop (e.g. via [Loop.Submit]) before invoking any
// callback. The *eventloop.Loop type from github.com/joeycumines/go-eventloop
// satisfies [Loop].
//
// # Failure Model
//
// Runtime failures never cross the public boundary as errors. A failed
// asynchronous push always resolves to a [PushCanceled] event, input
// suspended on behalf of a push is always resumed before any terminal event
// fires, and unavailable collaborators are logged and degrade to no-ops.
// Errors are returned only for invalid arguments and invalid options.
//
// # Usage
//
//	layout, err := uilayer.NewLayout(root, player,
//		uilayer.WithLoop(loop),
//		uilayer.WithToolkit(toolkit),
//		uilayer.WithStreamer(streamer),
//	)
//	if err != nil {
//		return err
//	}
//	_ = layout.RegisterLayer(uilayer.LayerModal, modalStack)
//
//	op, err := layout.PushWidgetAsync(uilayer.PushRequest{
//		Layer:        uilayer.LayerModal,
//		Class:        uilayer.SoftClassRef{Path: "/ui/confirm"},
//		SuspendInput: true,
//		OnEvent: func(ev uilayer.PushEvent) {
//			// PushInitialize, then PushAfterPush, or PushCanceled
//		},
//	})
package uilayer
