// Package proxi provides lazy-loading value holders for Go.
//
// A value holder is a proxy that stands in for an expensive-to-construct
// instance and defers its construction until the first interaction. This
// repository offers two surfaces over the same core:
//
//   - dynamic: a reflection-backed interception surface (Get/Set/Has/Delete/
//     Invoke and friends) usable with any struct type
//   - generated: typed, compile-time checked wrappers produced by proxygen
//
// Initialization is driven by a caller-supplied callback that writes the
// wrapped instance on first use and clears itself; failures stay retryable
// and faults propagate unchanged.
//
// Package proxi See subpackages:
//   - proxy: the value-holder core (state machine, descriptors, factory)
//   - cmd/proxygen: the typed-surface code generator
//   - examples/*: runnable examples for each surface
package proxi
