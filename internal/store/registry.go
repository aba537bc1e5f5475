package store

import (
	"sync"
	"time"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/session"
)

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per session id.
type Registry struct {
	mu      sync.Mutex
	api     *apiclient.Client
	opts    Options
	entries map[string]*entry
}

func NewRegistry(api *apiclient.Client, opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		api:     api,
		opts:    opts,
		entries: make(map[string]*entry),
	}
}

// For returns the session's Store, creating it with a client bound to the
// session token on first use.
func (r *Registry) For(sess *session.Session) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	if e, ok := r.entries[sess.ID]; ok {
		e.lastSeen = now
		return e.store
	}

	st := New(r.api.WithToken(sess.Token), sess.User, r.opts)
	r.entries[sess.ID] = &entry{store: st, lastSeen: now}
	r.opts.Metrics.SetActiveStores(len(r.entries))
	return st
}

// Drop forgets a session's Store, e.g. on logout.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	r.opts.Metrics.SetActiveStores(len(r.entries))
}

// PruneIdle drops stores unused for longer than maxIdle and returns how many went.
func (r *Registry) PruneIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.opts.Now().Add(-maxIdle)
	n := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	r.opts.Metrics.SetActiveStores(len(r.entries))
	return n
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
