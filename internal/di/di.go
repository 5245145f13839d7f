// Package di provides a small lazily-resolving service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by key.
type ServiceRegistry interface {
	Get(key string) any
}

// Container registers instances and factories. Factories run once, on first Get.
type Container interface {
	ServiceRegistry
	Register(key string, instance any)
	RegisterFactory(key string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]func(ServiceRegistry) any
	resolving map[string]bool
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
		resolving: make(map[string]bool),
	}
}

func (c *container) Register(key string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[key] = instance
}

func (c *container) RegisterFactory(key string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[key] = factory
}

// Get returns the service for key, building it from its factory if needed.
// Panics on unknown keys and on dependency cycles.
func (c *container) Get(key string) any {
	c.mu.Lock()
	if inst, ok := c.instances[key]; ok {
		c.mu.Unlock()
		return inst
	}
	factory, ok := c.factories[key]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", key))
	}
	if c.resolving[key] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: dependency cycle resolving %q", key))
	}
	c.resolving[key] = true
	c.mu.Unlock()

	// factory may call Get for its own dependencies
	inst := factory(c)

	c.mu.Lock()
	delete(c.resolving, key)
	if existing, ok := c.instances[key]; ok {
		inst = existing
	} else {
		c.instances[key] = inst
	}
	c.mu.Unlock()

	return inst
}

// Token is a typed service key.
type Token[T any] struct {
	key string
}

// NewToken creates a typed token for key.
func NewToken[T any](key string) Token[T] {
	return Token[T]{key: key}
}

// Key returns the underlying registry key.
func (t Token[T]) Key() string {
	return t.key
}

// RegisterToken registers a typed factory under the token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.key, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service. A factory that returned nil yields the zero T.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	raw := sr.Get(token.key)
	if raw == nil {
		var zero T
		return zero
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", token.key))
	}
	return v
}
