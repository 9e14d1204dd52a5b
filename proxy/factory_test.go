package proxy_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sghaida/proxi/proxy"
)

//
// -----------------------------------------------------------------------------
// NewFactory / Create
// -----------------------------------------------------------------------------

// TestNewFactory_Defaults verifies the zero config yields a working factory
// with a private registry.
func TestNewFactory_Defaults(t *testing.T) {
	t.Parallel()

	f := proxy.NewFactory(proxy.Config{})
	require.NotNil(t, f)
	require.NotNil(t, f.Registry())
}

// TestCreate_StartsUninitialized verifies the factory's output shape.
func TestCreate_StartsUninitialized(t *testing.T) {
	t.Parallel()

	f := proxy.NewFactory(proxy.Config{})

	var c capture
	p, err := proxy.Create(f, oneShot(newReport(), &c))
	require.NoError(t, err)

	assert.Equal(t, proxy.StateUninitialized, p.State())
	assert.Nil(t, p.Wrapped())
	assert.NotNil(t, p.Initializer())
	assert.Equal(t, 0, c.count)
}

// TestCreate_Guards verifies the nil-factory and nil-initializer errors.
func TestCreate_Guards(t *testing.T) {
	t.Parallel()

	_, err := proxy.Create[Report](nil, nil)
	require.ErrorIs(t, err, proxy.ErrNilFactory)

	f := proxy.NewFactory(proxy.Config{})
	_, err = proxy.Create[Report](f, nil)
	require.ErrorIs(t, err, proxy.ErrNilInitializer)
}

// TestCreate_NonStructType verifies descriptor build failures surface from
// Create.
func TestCreate_NonStructType(t *testing.T) {
	t.Parallel()

	f := proxy.NewFactory(proxy.Config{})
	_, err := proxy.Create(f, func(**int, *proxy.Proxy[int], string, proxy.Params) (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, proxy.ErrNotStruct)
}

// TestCreate_SharedRegistry verifies proxies for the same type share one
// descriptor through the configured registry.
func TestCreate_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := proxy.NewRegistry()
	f1 := proxy.NewFactory(proxy.Config{Registry: reg})
	f2 := proxy.NewFactory(proxy.Config{Registry: reg})

	var c capture
	_, err := proxy.Create(f1, oneShot(newReport(), &c))
	require.NoError(t, err)
	_, err = proxy.Create(f2, oneShot(newReport(), &c))
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Len())

	d, ok := reg.Get(reflect.TypeOf((*Report)(nil)).Elem())
	require.True(t, ok)
	assert.Equal(t, "Report", d.TypeName())
}

//
// -----------------------------------------------------------------------------
// Logging
// -----------------------------------------------------------------------------

// TestLogging_InitializationEvent verifies lifecycle events reach the
// configured logger with the triggering operation attached.
func TestLogging_InitializationEvent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	f := proxy.NewFactory(proxy.Config{Logger: zap.New(core)})

	var c capture
	p, err := proxy.Create(f, oneShot(newReport(), &c))
	require.NoError(t, err)

	_, err = p.Has("Pages")
	require.NoError(t, err)

	entries := logs.FilterMessage("initializing wrapped instance").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Report", fields["type"])
	assert.Equal(t, proxy.OpHas, fields["op"])
}

//
// -----------------------------------------------------------------------------
// Restore
// -----------------------------------------------------------------------------

// TestRestore_Guards verifies nil-factory and malformed payload handling.
func TestRestore_Guards(t *testing.T) {
	t.Parallel()

	_, err := proxy.Restore[Report](nil, nil)
	require.ErrorIs(t, err, proxy.ErrNilFactory)

	f := proxy.NewFactory(proxy.Config{})
	_, err = proxy.Restore[Report](f, []byte(`{"Title":`))
	require.Error(t, err)
}
