package proxy

import (
	"encoding/json"
	"reflect"

	"go.uber.org/zap"
)

// Config carries the factory's collaborators.
//
// It is passed explicitly at construction; there is no ambient or global
// wiring anywhere in the package.
type Config struct {
	// Logger receives proxy lifecycle events at debug level. Nil means no
	// logging (a nop logger is substituted).
	Logger *zap.Logger

	// Registry is the descriptor cache shared by the factory's proxies.
	// Nil means the factory owns a private one.
	Registry *Registry
}

// Factory is the only supported construction path for proxies; application
// code never hand-assembles a Proxy.
type Factory struct {
	log *zap.Logger
	reg *Registry
}

// NewFactory builds a factory from the given configuration.
func NewFactory(cfg Config) *Factory {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	return &Factory{log: log, reg: reg}
}

// Registry returns the factory's descriptor cache.
func (f *Factory) Registry() *Registry {
	if f == nil {
		return nil
	}
	return f.reg
}

// Create produces a proxy for T in the uninitialized state.
//
// init must be non-nil: a proxy is born with an initializer; disabling
// initialization is done later via SetInitializer(nil).
func Create[T any](f *Factory, init Initializer[T]) (*Proxy[T], error) {
	if f == nil {
		return nil, ErrNilFactory
	}
	if init == nil {
		return nil, ErrNilInitializer
	}
	desc, err := f.reg.DescriptorFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	f.log.Debug("proxy created", zap.String("type", desc.TypeName()))
	return &Proxy[T]{init: init, desc: desc, log: f.log}, nil
}

// Restore rebuilds a proxy from the persisted form produced by Serialize.
//
// It bypasses the initializer protocol entirely: the result is already
// initialized and carries no initializer, and no callback is ever invoked.
func Restore[T any](f *Factory, data []byte) (*Proxy[T], error) {
	if f == nil {
		return nil, ErrNilFactory
	}
	desc, err := f.reg.DescriptorFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	f.log.Debug("proxy restored", zap.String("type", desc.TypeName()))
	return &Proxy[T]{wrapped: &v, desc: desc, log: f.log}, nil
}
