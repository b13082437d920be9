package cache

import (
	"context"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// RepositoryOption configures the cached repositories
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	writeThrough bool
}

// WithWriteThrough toggles caching the saved snapshot after commit. Turn it
// off when the invalidation listener runs in process: its eviction follows
// the write immediately and the entry would never be read.
func WithWriteThrough(enabled bool) RepositoryOption {
	return func(o *repositoryOptions) {
		o.writeThrough = enabled
	}
}

func newRepositoryOptions(opts []RepositoryOption) repositoryOptions {
	o := repositoryOptions{writeThrough: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// writeThrough caches snap once the ambient transaction commits, or right
// away when there is none. A rolled back transaction never reaches the cache.
func writeThrough[T any](ctx context.Context, aside *Aside[T], key string, snap T) {
	if shared.RegisterAfterCommit(ctx, func(hookCtx context.Context) {
		aside.Set(hookCtx, key, snap)
	}) {
		return
	}
	aside.Set(ctx, key, snap)
}

// CachedTenantRepository decorates a TenantRepository with cache-aside reads
// and post-commit write-through.
//
// Reads inside a transaction bypass the cache: a command must see the row it
// is about to update, not a snapshot that may lag behind it.
type CachedTenantRepository struct {
	next  identity.TenantRepository
	aside *Aside[TenantSnapshot]
	opts  repositoryOptions
}

// NewCachedTenantRepository creates the decorator
func NewCachedTenantRepository(next identity.TenantRepository, aside *Aside[TenantSnapshot], opts ...RepositoryOption) *CachedTenantRepository {
	return &CachedTenantRepository{next: next, aside: aside, opts: newRepositoryOptions(opts)}
}

// FindByID serves from cache when possible
func (r *CachedTenantRepository) FindByID(ctx context.Context, id string) (*identity.Tenant, error) {
	if shared.InTransaction(ctx) {
		return r.next.FindByID(ctx, id)
	}
	snap, err := r.aside.Load(ctx, TenantCacheKey(id), func(ctx context.Context) (TenantSnapshot, error) {
		t, err := r.next.FindByID(ctx, id)
		if err != nil {
			return TenantSnapshot{}, err
		}
		return NewTenantSnapshot(t), nil
	})
	if err != nil {
		return nil, err
	}
	return snap.ToDomain(), nil
}

// Save persists t, then refreshes the cached snapshot after commit
func (r *CachedTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	if err := r.next.Save(ctx, t); err != nil {
		return err
	}
	if r.opts.writeThrough {
		writeThrough(ctx, r.aside, TenantCacheKey(t.ID), NewTenantSnapshot(t))
	}
	return nil
}

var _ identity.TenantRepository = (*CachedTenantRepository)(nil)

// CachedInventoryItemRepository decorates an InventoryItemRepository the same way
type CachedInventoryItemRepository struct {
	next  inventory.InventoryItemRepository
	aside *Aside[InventoryItemSnapshot]
	opts  repositoryOptions
}

// NewCachedInventoryItemRepository creates the decorator
func NewCachedInventoryItemRepository(next inventory.InventoryItemRepository, aside *Aside[InventoryItemSnapshot], opts ...RepositoryOption) *CachedInventoryItemRepository {
	return &CachedInventoryItemRepository{next: next, aside: aside, opts: newRepositoryOptions(opts)}
}

// FindByID serves from cache when possible
func (r *CachedInventoryItemRepository) FindByID(ctx context.Context, tenantID, id string) (*inventory.InventoryItem, error) {
	if shared.InTransaction(ctx) {
		return r.next.FindByID(ctx, tenantID, id)
	}
	snap, err := r.aside.Load(ctx, InventoryItemCacheKey(tenantID, id), func(ctx context.Context) (InventoryItemSnapshot, error) {
		item, err := r.next.FindByID(ctx, tenantID, id)
		if err != nil {
			return InventoryItemSnapshot{}, err
		}
		return NewInventoryItemSnapshot(item), nil
	})
	if err != nil {
		return nil, err
	}
	return snap.ToDomain(), nil
}

// Save persists item, then refreshes the cached snapshot after commit
func (r *CachedInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	if err := r.next.Save(ctx, item); err != nil {
		return err
	}
	if r.opts.writeThrough {
		writeThrough(ctx, r.aside, InventoryItemCacheKey(item.TenantID, item.ID), NewInventoryItemSnapshot(item))
	}
	return nil
}

var _ inventory.InventoryItemRepository = (*CachedInventoryItemRepository)(nil)
