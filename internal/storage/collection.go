package storage

import (
	"context"
	"fmt"
	"sync"
)

// Collection is a typed list stored under a single key. Load-modify-save
// sequences are serialised per collection.
type Collection[T any] struct {
	store Store
	key   string
	id    func(T) string
	mu    sync.Mutex
}

func NewCollection[T any](store Store, key string, id func(T) string) *Collection[T] {
	return &Collection[T]{store: store, key: key, id: id}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// All returns every item, or an empty slice when the key was never saved.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	items := []T{}
	if _, err := c.store.Load(ctx, c.key, &items); err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Update loads the collection, applies fn and saves the result atomically with
// respect to other calls on c. Nothing is saved when fn fails.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, c.key, updated); err != nil {
		return nil, fmt.Errorf("save %s: %w", c.key, err)
	}
	return updated, nil
}

func (c *Collection[T]) Append(ctx context.Context, items ...T) error {
	_, err := c.Update(ctx, func(cur []T) ([]T, error) {
		return append(cur, items...), nil
	})
	return err
}

func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	_, err := c.Update(ctx, func([]T) ([]T, error) { return items, nil })
	return err
}

// Find returns the item with the given ID.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	for _, it := range items {
		if c.id(it) == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
}

// Modify replaces the item with the given ID by fn's result.
func (c *Collection[T]) Modify(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var out T
	_, err := c.Update(ctx, func(items []T) ([]T, error) {
		for i, it := range items {
			if c.id(it) != id {
				continue
			}
			next, err := fn(it)
			if err != nil {
				return nil, err
			}
			items[i] = next
			out = next
			return items, nil
		}
		return nil, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
	})
	return out, err
}

// Delete removes the item with the given ID.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, err := c.Update(ctx, func(items []T) ([]T, error) {
		for i, it := range items {
			if c.id(it) == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
	})
	return err
}
