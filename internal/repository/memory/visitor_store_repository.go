package memory

import (
	"sync"
	"time"

	"finance-dashboard/internal/store"

	"github.com/patrickmn/go-cache"
)

// StoreFactory builds the store for a visitor seen for the first time.
type StoreFactory func(visitorID string) *store.Store

// VisitorStoreRepository keeps one analysis store per browser visitor in
// memory. Entries expire after the TTL unless the visitor keeps browsing.
type VisitorStoreRepository struct {
	cache   *cache.Cache
	ttl     time.Duration
	factory StoreFactory
	mu      sync.Mutex
}

func NewVisitorStoreRepository(ttl, cleanupInterval time.Duration, factory StoreFactory) *VisitorStoreRepository {
	return &VisitorStoreRepository{
		cache:   cache.New(ttl, cleanupInterval),
		ttl:     ttl,
		factory: factory,
	}
}

// GetOrCreate returns the visitor's store and refreshes its expiry.
func (r *VisitorStoreRepository) GetOrCreate(visitorID string) *store.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(visitorID); found {
		s := x.(*store.Store)
		r.cache.Set(visitorID, s, cache.DefaultExpiration)
		return s
	}
	s := r.factory(visitorID)
	r.cache.Set(visitorID, s, cache.DefaultExpiration)
	return s
}

func (r *VisitorStoreRepository) Get(visitorID string) (*store.Store, bool) {
	if x, found := r.cache.Get(visitorID); found {
		return x.(*store.Store), true
	}
	return nil, false
}

func (r *VisitorStoreRepository) Delete(visitorID string) {
	r.cache.Delete(visitorID)
}

func (r *VisitorStoreRepository) Count() int {
	return r.cache.ItemCount()
}
