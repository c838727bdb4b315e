package store

import (
	"context"
	"sync"
	"time"
)

// Registry hands out one Store per session, creating and rehydrating it on
// first use. Stores left idle can be dropped with Sweep or Run; preferences
// survive in the persister and are rehydrated on the next Get.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*entry
	factory PersisterFactory
	opts    []Option
	onOpen  func()
	onClose func()
	now     func() time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// NewRegistry builds stores with a persister from factory and the given options
func NewRegistry(factory PersisterFactory, opts ...Option) *Registry {
	return &Registry{
		stores:  make(map[string]*entry),
		factory: factory,
		opts:    opts,
		now:     time.Now,
	}
}

// OnOpen registers a callback run whenever a new session store is created
func (r *Registry) OnOpen(fn func()) {
	r.mu.Lock()
	r.onOpen = fn
	r.mu.Unlock()
}

// OnClose registers a callback run whenever an idle store is dropped
func (r *Registry) OnClose(fn func()) {
	r.mu.Lock()
	r.onClose = fn
	r.mu.Unlock()
}

// Get returns the store of session and marks it used
func (r *Registry) Get(ctx context.Context, session string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.stores[session]; ok {
		e.lastUsed = r.now()
		return e.store
	}
	var p Persister
	if r.factory != nil {
		p = r.factory(RecordName(session))
	}
	s := New(ctx, p, r.opts...)
	r.stores[session] = &entry{store: s, lastUsed: r.now()}
	if r.onOpen != nil {
		r.onOpen()
	}
	return s
}

// Sweep drops every store not used since cutoff and returns how many went
func (r *Registry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for session, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			delete(r.stores, session)
			dropped++
			if r.onClose != nil {
				r.onClose()
			}
		}
	}
	return dropped
}

// Run sweeps stores idle for longer than idle every interval until ctx is
// cancelled
func (r *Registry) Run(ctx context.Context, idle, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(r.now().Add(-idle))
		}
	}
}

// Len is the number of loaded sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
