// Command proxygen generates typed proxies for lazy-loading value holders
//
// proxygen is the code-generation collaborator of the proxy package. It emits
// one typed proxy per wrapped type from a shared template, so calling code
// gets the wrapped type's exact signatures while every interaction still
// funnels through the proxy package's initialization state machine:
//
//   - You write a tiny *.proxygen.yaml (or .json) spec next to your type.
//   - You add a //go:generate ... directive in the owner Go file.
//   - proxygen generates a wrapper with:
//       - New<Proxy>(factory, initializer) construction
//       - typed forwarding methods for every exported method
//       - Get<Field>/Set<Field> accessors for every exported field
//       - Has/Delete/Clone/Serialize and Restore<Proxy> passthroughs
//       - real parameter names in initializer bindings (reflection alone
//         cannot recover them; the generator reads them from your source)
//
// There is no runtime dependency on the generator; generated files import
// only the proxy package.
//
// When to use generated proxies
//
// Use proxygen when you want:
//
//   - The wrapped type's exact signatures on the proxy surface.
//   - Compile-time breakage when the wrapped type changes.
//   - Declared parameter names in initializer parameter mappings.
//
// Stick with the dynamic Proxy[T] surface when proxied types vary at
// runtime or codegen is unwanted per repo/tooling policy.
//
// Spec format (*.proxygen.yaml)
//
// Minimal example:
//
//	type: Mailer
//	proxyName: MailerProxy   # optional, defaults to <type>Proxy
//	package: mail            # optional, defaults to the owner package
//	source: .                # optional, defaults to the output directory
//	skip: [Backing]          # optional members to omit from the typed surface
//
// JSON specs with the same keys are accepted by file extension.
//
// Typical go:generate usage
//
// Put this in the owner Go file (same package directory as the spec):
//
//	//go:generate go run github.com/sghaida/proxi/cmd/proxygen generate --spec ./mailer.proxygen.yaml --out ./mailer_proxy.gen.go
//
// Then:
//
//	go generate ./...
//
// Generator configuration
//
// An optional .proxygen.yaml in the working directory (or -config <file>)
// tunes the output:
//
//	core_import: github.com/sghaida/proxi/proxy   # override the core import
//	header_note: "run go generate ./... to refresh" # extra header comment
//
// Generated API (summary)
//
//   - New<Proxy>(f *proxy.Factory, init proxy.Initializer[T]) (*<Proxy>, error)
//   - Restore<Proxy>(f *proxy.Factory, data []byte) (*<Proxy>, error)
//   - <Method>(typed args) (typed results, error): guard failures surface
//     through the error result, merged with the method's own error when it
//     already returns one
//   - Get<Field>() (T, error) / Set<Field>(T) error
//   - Has(name) (bool, error), Delete(name) error
//   - Clone() (*<Proxy>, error), Serialize() ([]byte, error)
//   - SetInitializer / Initializer / Wrapped / State passthroughs
package main
