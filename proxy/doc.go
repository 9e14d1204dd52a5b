// Package proxy provides lazy-loading value-holder proxies for Go.
//
// A Proxy[T] stands in for an expensive-to-construct instance of T and
// defers its construction until first use. Every interaction with the proxy
// (method invocation, property read/write, existence check, deletion,
// cloning, serialization) first runs the initialization state machine:
// if the wrapped instance is absent, a caller-supplied Initializer is
// invoked to produce it, then the interaction proceeds against the wrapped
// instance. No other control path exists.
//
// The package intentionally supports two ways of consuming the surface:
//
//   - Dynamic: Proxy[T]'s Get/Set/Has/Delete/Invoke entry points, driven by
//     a per-type Descriptor built via reflection and cached in a Registry.
//     Best when proxied types vary at runtime or codegen is unwanted.
//
//   - Generated: cmd/proxygen emits one typed wrapper per wrapped type from
//     a shared template. The wrapper forwards through the same state machine
//     but exposes the wrapped type's exact signatures, with real parameter
//     names in initializer bindings.
//
// Initializer contract
//
// The callback receives a write slot for the wrapped instance, the proxy
// itself, the triggering operation's name, and its parameter bindings. It
// writes the slot and returns true on success, and is responsible for
// clearing the proxy's initializer itself via SetInitializer(nil). The
// protocol never clears it, which is what makes both one-shot and
// retry-on-failure initializers expressible under one contract.
//
// Concurrency
//
// A proxy performs no internal locking; callers serialize access to a given
// proxy externally. The only lock in the package guards the cross-type
// descriptor cache, which is construction-time only.
//
// Import
//
//	"github.com/sghaida/proxi/proxy"
package proxy
