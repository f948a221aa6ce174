package service

import (
	"sync"

	"github.com/google/uuid"
)

// coleccion is the keyed, ordered in-memory list behind every reference data
// service. It does not persist: owners snapshot it after each mutation.
type coleccion[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(*T) *string
}

func nuevaColeccion[T any](id func(*T) *string) *coleccion[T] {
	return &coleccion[T]{id: id}
}

func (c *coleccion[T]) reemplazar(items []T) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.mu.Unlock()
}

func (c *coleccion[T]) listar() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.items...)
}

func (c *coleccion[T]) filtrar(ok func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for _, it := range c.items {
		if ok(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *coleccion[T]) obtener(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if *c.id(&c.items[i]) == id {
			return c.items[i], nil
		}
	}
	var zero T
	return zero, ErrNoEncontrado
}

func (c *coleccion[T]) buscar(ok func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if ok(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// agregar assigns a fresh ID and appends. unico, when non-nil, rejects the
// item if any existing entry collides with it.
func (c *coleccion[T]) agregar(it T, unico func(a, b T) bool) (T, []T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if unico != nil {
		for _, ex := range c.items {
			if unico(ex, it) {
				return it, nil, ErrDuplicado
			}
		}
	}
	*c.id(&it) = uuid.NewString()
	c.items = append(c.items, it)
	return it, append([]T{}, c.items...), nil
}

// actualizar applies fn to the entry with id. The ID itself cannot change.
func (c *coleccion[T]) actualizar(id string, fn func(*T), unico func(a, b T) bool) (T, []T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if *c.id(&c.items[i]) != id {
			continue
		}
		nuevo := c.items[i]
		fn(&nuevo)
		*c.id(&nuevo) = id
		if unico != nil {
			for j, ex := range c.items {
				if j != i && unico(ex, nuevo) {
					return nuevo, nil, ErrDuplicado
				}
			}
		}
		c.items[i] = nuevo
		return nuevo, append([]T{}, c.items...), nil
	}
	var zero T
	return zero, nil, ErrNoEncontrado
}

func (c *coleccion[T]) eliminar(id string) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if *c.id(&c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return append([]T{}, c.items...), nil
		}
	}
	return nil, ErrNoEncontrado
}
