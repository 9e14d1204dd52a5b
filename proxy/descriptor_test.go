package proxy

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// widget exercises the discovery rules: exported/unexported fields,
// embedding, and value/pointer receivers.
type widget struct {
	Name   string
	Weight float64

	hidden string

	base
}

type base struct{ ID int }

func (w widget) Label() string          { return w.Name }
func (w *widget) Resize(factor float64) { w.Weight *= factor }
func (w *widget) tag() string           { return w.hidden }

//
// -----------------------------------------------------------------------------
// Describe
// -----------------------------------------------------------------------------

// TestDescribe_DiscoversExportedSurface verifies fields and the pointer
// method set are discovered, and unexported or embedded members are not.
func TestDescribe_DiscoversExportedSurface(t *testing.T) {
	t.Parallel()

	d, err := Describe[widget]()
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "widget", d.TypeName())

	for _, name := range []string{"Name", "Weight", "Label", "Resize"} {
		assert.True(t, d.Has(name), name)
	}
	assert.False(t, d.Has("hidden"))
	assert.False(t, d.Has("tag"))
	assert.False(t, d.Has("base"))

	name, ok := d.Member("Name")
	require.True(t, ok)
	assert.Equal(t, FieldMember, name.Kind)
	assert.Equal(t, reflect.TypeOf(""), name.Type)

	resize, ok := d.Member("Resize")
	require.True(t, ok)
	assert.Equal(t, MethodMember, resize.Kind)
}

// TestDescribe_MemberOrder verifies fields come first in declaration order,
// then methods.
func TestDescribe_MemberOrder(t *testing.T) {
	t.Parallel()

	d, err := Describe[widget]()
	require.NoError(t, err)

	var names []string
	for _, m := range d.Members() {
		names = append(names, m.Name)
	}
	// Method set of *widget is sorted by name, per reflect.
	assert.Equal(t, []string{"Name", "Weight", "Label", "Resize"}, names)
}

// TestDescribe_NonStruct verifies non-struct types are rejected.
func TestDescribe_NonStruct(t *testing.T) {
	t.Parallel()

	_, err := describeType(reflect.TypeOf(42))
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = describeType(nil)
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = Describe[int]()
	require.ErrorIs(t, err, ErrNotStruct)
}

//
// -----------------------------------------------------------------------------
// Parameter names
// -----------------------------------------------------------------------------

// TestParamName_Fallback verifies the argN fallback and declared-name
// precedence.
func TestParamName_Fallback(t *testing.T) {
	t.Parallel()

	m := Member{Name: "Resize", Kind: MethodMember}
	assert.Equal(t, "arg0", m.paramName(0))
	assert.Equal(t, "arg3", m.paramName(3))

	m.ParamNames = []string{"factor"}
	assert.Equal(t, "factor", m.paramName(0))
	assert.Equal(t, "arg1", m.paramName(1))
}

// TestWithParamNames verifies name installation and the panics guarding
// misuse.
func TestWithParamNames(t *testing.T) {
	t.Parallel()

	d, err := Describe[widget]()
	require.NoError(t, err)

	ret := d.WithParamNames("Resize", "factor")
	require.Same(t, d, ret)

	m, ok := d.Member("Resize")
	require.True(t, ok)
	assert.Equal(t, []string{"factor"}, m.ParamNames)

	assert.PanicsWithValue(t, UnknownMemberError{Type: "widget", Name: "Nope"}, func() {
		d.WithParamNames("Nope", "x")
	})
	assert.PanicsWithValue(t, MemberKindError{Type: "widget", Name: "Name", Want: MethodMember, Got: FieldMember}, func() {
		d.WithParamNames("Name", "x")
	})
	assert.PanicsWithValue(t, ArityError{Method: "Resize", Want: 1, Got: 2}, func() {
		d.WithParamNames("Resize", "a", "b")
	})
}
