// Package streaming implements the asset-streaming collaborator of
// github.com/joeycumines/go-uilayer: it resolves [uilayer.SoftClassRef]
// values off the loop, then delivers the results back onto it.
//
// Resolution is delegated to a [Resolver], such as a [Catalog] loaded from a
// TOML file. Concurrent requests for the same path share a single resolve,
// the number of resolves in flight is bounded, and requests for a path may
// be rate limited.
package streaming
