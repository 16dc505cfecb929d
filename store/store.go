// Package store persists the per-category item collections behind the gallery.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidhant-sriv/gallery-api/models"
)

// ItemStore is the category item store used by the HTTP layer and the CLI.
type ItemStore interface {
	Categories() []models.Category
	Category(name string) (models.Category, error)
	List(ctx context.Context, category string) ([]models.Item, error)
	Append(ctx context.Context, category, filename string) (models.Item, error)
	Remove(ctx context.Context, category string, ids []string) error
}

// registry holds the configured categories and one lock per category. Every
// read-modify-write cycle runs with that category's lock held.
type registry struct {
	order  []models.Category
	byName map[string]models.Category
	locks  map[string]*sync.Mutex
}

func newRegistry(cats []models.Category) *registry {
	r := &registry{
		order:  append([]models.Category(nil), cats...),
		byName: make(map[string]models.Category, len(cats)),
		locks:  make(map[string]*sync.Mutex, len(cats)),
	}
	for _, c := range cats {
		r.byName[c.Name] = c
		r.locks[c.Name] = &sync.Mutex{}
	}
	return r
}

func (r *registry) Categories() []models.Category {
	return append([]models.Category(nil), r.order...)
}

func (r *registry) Category(name string) (models.Category, error) {
	c, ok := r.byName[name]
	if !ok {
		return models.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// lock acquires the category lock and returns its release func.
func (r *registry) lock(name string) func() {
	mu := r.locks[name]
	mu.Lock()
	return mu.Unlock
}
