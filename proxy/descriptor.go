package proxy

import (
	"errors"
	"reflect"
	"strconv"
)

// ErrNotStruct is returned when a descriptor is requested for a type whose
// underlying kind is not a struct. Value holders wrap struct instances.
var ErrNotStruct = errors.New("proxy: wrapped type is not a struct")

// MemberKind distinguishes the two member shapes a wrapped type exposes.
type MemberKind uint8

const (
	// FieldMember is an exported struct field, reachable via Get/Set/Delete.
	FieldMember MemberKind = iota

	// MethodMember is an exported method of *T, reachable via Invoke.
	MethodMember
)

// String returns a human-readable kind name.
func (k MemberKind) String() string {
	switch k {
	case FieldMember:
		return "field"
	case MethodMember:
		return "method"
	default:
		return "unknown"
	}
}

// Member describes one entry of a wrapped type's public surface.
type Member struct {
	// Name is the exported field or method name.
	Name string

	// Kind is FieldMember or MethodMember.
	Kind MemberKind

	// Type is the field type for fields, the method's func type (receiver
	// included) for methods.
	Type reflect.Type

	// ParamNames holds the declared parameter names of a method. Reflection
	// cannot recover declared names, so descriptors built via Describe leave
	// this empty and parameter bindings fall back to arg0..argN; generated
	// code and WithParamNames supply the real names.
	ParamNames []string

	// index is the field index within the struct, or the method index
	// within *T's method set.
	index int
}

// paramName returns the binding name for parameter position i.
func (m Member) paramName(i int) string {
	if i < len(m.ParamNames) && m.ParamNames[i] != "" {
		return m.ParamNames[i]
	}
	return "arg" + strconv.Itoa(i)
}

// Descriptor is the capability surface of a wrapped type: its exported
// fields and the exported method set of the pointer type, built once per
// type and shared by every proxy wrapping it.
//
// Descriptors are effectively immutable after construction; WithParamNames
// is the only mutation point and is meant for composition time.
type Descriptor struct {
	typ     reflect.Type
	members map[string]Member
	order   []string
}

// Describe builds the descriptor for T.
//
// Prefer resolving descriptors through a Registry (as the factory does) so
// the reflection walk happens once per type.
func Describe[T any]() (*Descriptor, error) {
	return describeType(reflect.TypeOf((*T)(nil)).Elem())
}

// describeType walks t's exported surface.
//
// Reflection panics (unexported shenanigans, weird types) are converted into
// errors so callers never have to recover themselves.
func describeType(t reflect.Type) (d *Descriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d = nil
			err = describePanicError(rec)
		}
	}()

	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	d = &Descriptor{typ: t, members: make(map[string]Member)}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		d.add(Member{Name: f.Name, Kind: FieldMember, Type: f.Type, index: i})
	}

	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		d.add(Member{Name: m.Name, Kind: MethodMember, Type: m.Type, index: i})
	}

	return d, nil
}

// add registers a member, preserving discovery order.
func (d *Descriptor) add(m Member) {
	d.members[m.Name] = m
	d.order = append(d.order, m.Name)
}

// TypeName returns the wrapped type's name.
func (d *Descriptor) TypeName() string {
	if d == nil || d.typ == nil {
		return ""
	}
	return d.typ.Name()
}

// Type returns the wrapped type.
func (d *Descriptor) Type() reflect.Type {
	if d == nil {
		return nil
	}
	return d.typ
}

// Has reports whether the wrapped type has a member with the given name.
func (d *Descriptor) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.members[name]
	return ok
}

// Member returns the named member.
//
// ok is false when the wrapped type has no such member.
func (d *Descriptor) Member(name string) (Member, bool) {
	if d == nil {
		return Member{}, false
	}
	m, ok := d.members[name]
	return m, ok
}

// Members returns all members in discovery order (fields first, then
// methods, each in declaration order).
func (d *Descriptor) Members() []Member {
	if d == nil {
		return nil
	}
	out := make([]Member, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.members[name])
	}
	return out
}

// WithParamNames records the declared parameter names of a method so that
// initializer bindings use real names instead of the argN fallback.
//
// It panics on an unknown method or a name-count mismatch; both are
// composition-time programmer errors.
func (d *Descriptor) WithParamNames(method string, names ...string) *Descriptor {
	m, ok := d.members[method]
	if !ok {
		panic(UnknownMemberError{Type: d.TypeName(), Name: method})
	}
	if m.Kind != MethodMember {
		panic(MemberKindError{Type: d.TypeName(), Name: method, Want: MethodMember, Got: m.Kind})
	}
	// m.Type includes the receiver as the first input.
	if want := m.Type.NumIn() - 1; len(names) != want {
		panic(ArityError{Method: method, Want: want, Got: len(names), Variadic: m.Type.IsVariadic()})
	}
	m.ParamNames = append([]string(nil), names...)
	d.members[method] = m
	return d
}
