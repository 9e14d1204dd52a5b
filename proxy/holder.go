// proxy/holder.go holds the value-holder core: the initialization state
// machine and the interception surface every interaction funnels through.
//
// Design goals:
//   - Lightweight: two reference slots per proxy, no locking, no retries.
//   - Explicit interception: callers reach the wrapped instance only through
//     Get/Set/Has/Delete/Invoke and friends, never through direct fields.
//   - Safe defaults: broken initializer contracts surface as typed errors.
//   - Test-friendly: every failure mode is a distinct error type or sentinel.
//
// Notes on performance:
//   - The initialized success path is a nil check followed by a descriptor
//     lookup and one reflect operation.
//   - Error paths avoid fmt.Errorf so failure handling stays inexpensive in
//     benchmarks and control flow.
package proxy

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

var (
	// ErrNilProxy is returned when an interception entry point is called on
	// a nil proxy.
	ErrNilProxy = errors.New("proxy: nil proxy")

	// ErrNilFactory is returned when Create or Restore is called with a nil
	// factory.
	ErrNilFactory = errors.New("proxy: nil factory")

	// ErrNilInitializer is returned by Create when no initializer callback
	// is supplied. Proxies always start life with one; disabling
	// initialization later is done via SetInitializer(nil).
	ErrNilInitializer = errors.New("proxy: nil initializer")
)

// InitializationFailedError is returned when the initializer callback was
// invoked and signalled failure (returned false), or signalled success
// without writing the wrapped slot.
//
// The proxy stays uninitialized, so a later interaction retries as long as
// the callback did not clear itself.
type InitializationFailedError struct{ Op string }

// Error implements the error interface.
func (e InitializationFailedError) Error() string {
	// Example: proxy: initialization failed for operation "isset"
	return "proxy: initialization failed for operation " + strconv.Quote(e.Op)
}

// UninitializedProxyError is returned when an interaction runs against a
// proxy whose initializer was cleared before any successful initialization.
//
// This state is terminal: no path to a wrapped instance remains, so the
// owning application holds a wiring bug.
type UninitializedProxyError struct{ Op string }

// Error implements the error interface.
func (e UninitializedProxyError) Error() string {
	// Example: proxy: uninitialized proxy has no initializer (operation "get")
	return "proxy: uninitialized proxy has no initializer (operation " + strconv.Quote(e.Op) + ")"
}

// UnknownMemberError is returned when the wrapped type has no member with
// the requested name.
type UnknownMemberError struct {
	Type string
	Name string
}

// Error implements the error interface.
func (e UnknownMemberError) Error() string {
	// Example: proxy: type "Report" has no member "Pages"
	return "proxy: type " + strconv.Quote(e.Type) + " has no member " + strconv.Quote(e.Name)
}

// MemberKindError is returned when a member exists but is of the wrong kind
// for the operation (e.g. invoking a field, or reading a method as a
// property).
type MemberKindError struct {
	Type string
	Name string
	Want MemberKind
	Got  MemberKind
}

// Error implements the error interface.
func (e MemberKindError) Error() string {
	// Example: proxy: member "Title" of "Report" is a field, not a method
	return "proxy: member " + strconv.Quote(e.Name) + " of " + strconv.Quote(e.Type) +
		" is a " + e.Got.String() + ", not a " + e.Want.String()
}

// ArityError is returned when Invoke receives the wrong number of arguments.
type ArityError struct {
	Method   string
	Want     int
	Got      int
	Variadic bool
}

// Error implements the error interface.
func (e ArityError) Error() string {
	// Example: proxy: method "Send" expects 2 arguments, got 1
	msg := "proxy: method " + strconv.Quote(e.Method) + " expects "
	if e.Variadic {
		msg += "at least "
	}
	return msg + strconv.Itoa(e.Want) + " arguments, got " + strconv.Itoa(e.Got)
}

// ArgumentTypeError is returned when an Invoke argument is not assignable to
// the corresponding method parameter.
type ArgumentTypeError struct {
	Method string
	Param  string
	Want   string
	Got    string
}

// Error implements the error interface.
func (e ArgumentTypeError) Error() string {
	// Example: proxy: argument "to" of "Send" wants string, got int
	return "proxy: argument " + strconv.Quote(e.Param) + " of " + strconv.Quote(e.Method) +
		" wants " + e.Want + ", got " + e.Got
}

// ValueTypeError is returned when Set receives a value not assignable to the
// target field.
type ValueTypeError struct {
	Field string
	Want  string
	Got   string
}

// Error implements the error interface.
func (e ValueTypeError) Error() string {
	// Example: proxy: field "Title" wants string, got int
	return "proxy: field " + strconv.Quote(e.Field) + " wants " + e.Want + ", got " + e.Got
}

// State describes where a proxy sits in its lifecycle.
type State uint8

const (
	// StateUninitialized means the wrapped slot is empty and an initializer
	// is installed. Every interaction from here runs the initializer first.
	StateUninitialized State = iota

	// StateInitialized means the wrapped instance is present. The protocol
	// step degrades to a cheap presence check.
	StateInitialized

	// StateInert means both slots are empty: the initializer was cleared
	// before ever succeeding. Terminal; every interaction fails.
	StateInert
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateInert:
		return "inert"
	default:
		return "unknown"
	}
}

// Initializer produces the wrapped instance on first use.
//
// wrapped is the write slot for the real instance; the callback writes it on
// success. p is the proxy being initialized, handed in so the callback can
// clear itself (p.SetInitializer(nil)) or inspect state. op is the name of
// the triggering operation and params its argument bindings.
//
// Contract: the callback is responsible for clearing the proxy's initializer
// before returning true; the protocol never clears it automatically. Leaving
// it installed after success is harmless (wrapped presence always wins) but
// leaving it installed after a false return is the retry mechanism.
//
// A non-nil error is an initializer-internal fault and propagates unchanged
// to the caller of the triggering interaction.
type Initializer[T any] func(wrapped **T, p *Proxy[T], op string, params Params) (bool, error)

// Proxy is a lazy-loading value holder standing in for an instance of T.
//
// It holds two reference slots: the wrapped instance (absent until first
// successful initialization) and the initializer callback. Both are mutated
// only by the factory at construction, by the callback itself, or by
// explicit SetInitializer calls.
//
// A proxy has its own identity, distinct from the wrapped instance; calling
// code reaches the wrapped value only through the interception surface.
//
// Proxies are not safe for concurrent use; callers in multi-goroutine
// programs must serialize access to a given proxy externally.
type Proxy[T any] struct {
	wrapped *T
	init    Initializer[T]
	desc    *Descriptor
	log     *zap.Logger
}

// ensure runs the initialization state machine for the triggering operation.
//
// It is invoked before every intercepted interaction:
//  1. wrapped present → no-op.
//  2. initializer present → invoke it; success transitions to initialized,
//     failure aborts the triggering interaction.
//  3. neither present → the proxy is inert, a terminal error.
func (p *Proxy[T]) ensure(op string, params Params) error {
	if p == nil {
		return ErrNilProxy
	}
	if p.wrapped != nil {
		return nil
	}
	if p.init != nil {
		// Initialization side effects must be observable before the
		// forwarded operation's own side effects, so log first.
		p.log.Debug("initializing wrapped instance",
			zap.String("type", p.desc.TypeName()),
			zap.String("op", op),
			zap.Strings("params", params.Names()),
		)
		ok, err := p.init(&p.wrapped, p, op, params)
		if err != nil {
			return err
		}
		if !ok {
			return InitializationFailedError{Op: op}
		}
		if p.wrapped == nil {
			// Success signalled without writing the slot: contract breach.
			return InitializationFailedError{Op: op}
		}
		return nil
	}
	return UninitializedProxyError{Op: op}
}

// Get reads property name from the wrapped instance, initializing it first
// if needed. The initializer receives an empty parameter mapping.
func (p *Proxy[T]) Get(name string) (any, error) {
	if err := p.ensure(OpGet, nil); err != nil {
		return nil, err
	}
	m, err := p.fieldMember(name)
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(p.wrapped).Elem().Field(m.index).Interface(), nil
}

// Set writes property name on the wrapped instance, initializing it first if
// needed. The initializer receives {"value": value}.
func (p *Proxy[T]) Set(name string, value any) error {
	if err := p.ensure(OpSet, Params{{Name: "value", Value: value}}); err != nil {
		return err
	}
	m, err := p.fieldMember(name)
	if err != nil {
		return err
	}
	field := reflect.ValueOf(p.wrapped).Elem().Field(m.index)
	if value == nil {
		if !nilable(field.Kind()) {
			return ValueTypeError{Field: name, Want: field.Type().String(), Got: "nil"}
		}
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(field.Type()) {
		return ValueTypeError{Field: name, Want: field.Type().String(), Got: rv.Type().String()}
	}
	field.Set(rv)
	return nil
}

// Has reports whether the wrapped instance has a member with the given name,
// initializing it first if needed. The initializer receives {"name": name}.
//
// The guard is evaluated unconditionally for its side effect; the membership
// answer is always computed against the wrapped type afterwards, never
// short-circuited by the guard.
func (p *Proxy[T]) Has(name string) (bool, error) {
	if err := p.ensure(OpHas, Params{{Name: "name", Value: name}}); err != nil {
		return false, err
	}
	return p.desc.Has(name), nil
}

// Delete removes property name on the wrapped instance, initializing it
// first if needed. The initializer receives {"name": name}.
//
// Go structs have no removable fields, so deletion resets the field to its
// zero value.
func (p *Proxy[T]) Delete(name string) error {
	if err := p.ensure(OpDelete, Params{{Name: "name", Value: name}}); err != nil {
		return err
	}
	m, err := p.fieldMember(name)
	if err != nil {
		return err
	}
	field := reflect.ValueOf(p.wrapped).Elem().Field(m.index)
	field.Set(reflect.Zero(field.Type()))
	return nil
}

// Invoke calls method name on the wrapped instance, initializing it first if
// needed. The initializer receives the call's arguments bound to the
// method's declared parameter names (or arg0..argN when the descriptor
// carries no names), and the method name as the operation.
//
// The returned slice holds the method's results in order; Invoke's own error
// covers only guard and binding failures, never the semantics of the
// forwarded call.
func (p *Proxy[T]) Invoke(name string, args ...any) ([]any, error) {
	if p == nil {
		return nil, ErrNilProxy
	}
	m, known := p.desc.Member(name)
	if err := p.ensure(name, bindArgs(m, known, args)); err != nil {
		return nil, err
	}
	if !known {
		return nil, UnknownMemberError{Type: p.desc.TypeName(), Name: name}
	}
	if m.Kind != MethodMember {
		return nil, MemberKindError{Type: p.desc.TypeName(), Name: name, Want: MethodMember, Got: m.Kind}
	}

	mv := reflect.ValueOf(p.wrapped).Method(m.index)
	mt := mv.Type()

	if mt.IsVariadic() {
		if len(args) < mt.NumIn()-1 {
			return nil, ArityError{Method: name, Want: mt.NumIn() - 1, Got: len(args), Variadic: true}
		}
	} else if len(args) != mt.NumIn() {
		return nil, ArityError{Method: name, Want: mt.NumIn(), Got: len(args)}
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var want reflect.Type
		if mt.IsVariadic() && i >= mt.NumIn()-1 {
			want = mt.In(mt.NumIn() - 1).Elem()
		} else {
			want = mt.In(i)
		}
		if a == nil {
			if !nilable(want.Kind()) {
				return nil, ArgumentTypeError{Method: name, Param: m.paramName(i), Want: want.String(), Got: "nil"}
			}
			in[i] = reflect.Zero(want)
			continue
		}
		rv := reflect.ValueOf(a)
		if !rv.Type().AssignableTo(want) {
			return nil, ArgumentTypeError{Method: name, Param: m.paramName(i), Want: want.String(), Got: rv.Type().String()}
		}
		in[i] = rv
	}

	out := mv.Call(in)
	results := make([]any, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, nil
}

// Clone initializes the proxy if needed, then returns a new proxy wrapping a
// shallow copy of the wrapped instance. The clone is already initialized and
// carries no initializer.
func (p *Proxy[T]) Clone() (*Proxy[T], error) {
	if err := p.ensure(OpClone, nil); err != nil {
		return nil, err
	}
	cp := *p.wrapped
	return &Proxy[T]{wrapped: &cp, desc: p.desc, log: p.log}, nil
}

// Serialize initializes the proxy if needed, then returns the JSON encoding
// of the wrapped instance's state. Proxy bookkeeping (the initializer slot)
// is never part of the persisted form; use Restore to rebuild a proxy from
// the output.
func (p *Proxy[T]) Serialize() ([]byte, error) {
	if err := p.ensure(OpSerialize, nil); err != nil {
		return nil, err
	}
	return json.Marshal(p.wrapped)
}

// SetInitializer installs a new initializer callback, or disables further
// initialization when called with nil.
//
// Callable at any time, including from within the currently running
// initializer. Installing a callback while the wrapped instance is present
// never re-triggers initialization: wrapped presence always wins.
func (p *Proxy[T]) SetInitializer(init Initializer[T]) {
	if p == nil {
		return
	}
	p.init = init
}

// Initializer returns the currently installed initializer callback, or nil.
func (p *Proxy[T]) Initializer() Initializer[T] {
	if p == nil {
		return nil
	}
	return p.init
}

// Wrapped returns the current wrapped instance, or nil while uninitialized.
//
// It never triggers initialization; collaborators use it to inspect proxy
// state without side effects.
func (p *Proxy[T]) Wrapped() *T {
	if p == nil {
		return nil
	}
	return p.wrapped
}

// State returns the proxy's lifecycle state.
func (p *Proxy[T]) State() State {
	switch {
	case p == nil:
		return StateInert
	case p.wrapped != nil:
		return StateInitialized
	case p.init != nil:
		return StateUninitialized
	default:
		return StateInert
	}
}

// fieldMember resolves name to a field member or the matching typed error.
func (p *Proxy[T]) fieldMember(name string) (Member, error) {
	m, ok := p.desc.Member(name)
	if !ok {
		return Member{}, UnknownMemberError{Type: p.desc.TypeName(), Name: name}
	}
	if m.Kind != FieldMember {
		return Member{}, MemberKindError{Type: p.desc.TypeName(), Name: name, Want: FieldMember, Got: m.Kind}
	}
	return m, nil
}

// bindArgs builds the initializer parameter mapping for a method call.
//
// Declared parameter names from the descriptor win; positions without a name
// fall back to arg0..argN. When the member is unknown the guard still runs
// (the forwarded call fails afterwards), so all positions use the fallback.
func bindArgs(m Member, known bool, args []any) Params {
	if len(args) == 0 {
		return nil
	}
	ps := make(Params, len(args))
	for i, a := range args {
		name := "arg" + strconv.Itoa(i)
		if known && i < len(m.ParamNames) && m.ParamNames[i] != "" {
			name = m.ParamNames[i]
		}
		ps[i] = Param{Name: name, Value: a}
	}
	return ps
}

// nilable reports whether a reflect kind can hold an untyped nil.
func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
