package aspa

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// SocketID identifies the RTR cache session a binding belongs to. Opaque
// to this package; the caller assigns it (e.g. a TCP connection handle or
// RTR session index) and must keep it stable for the session's lifetime.
type SocketID uint32

// Binding is a (socket_id, store) pair held by a Table. socket_id values
// are unique within a table; a binding is created on first update from
// that socket and destroyed when the socket disconnects.
type Binding struct {
	SocketID SocketID

	// store is published via atomic.Pointer so swap-in updates publish
	// with a single pointer write and readers never block on it. The
	// in-place updater instead mutates *Store's records slice under mu,
	// which is why in-place readers may observe an intermediate state.
	store atomic.Pointer[Store]
	mu    sync.RWMutex
}

func newBinding(id SocketID) *Binding {
	b := &Binding{SocketID: id}
	b.store.Store(NewStore())
	return b
}

// Store returns the binding's current store. Safe for concurrent use with
// swap-in updates; for in-place updates, callers that need a consistent
// snapshot should use WithReadLock.
func (b *Binding) Store() *Store {
	return b.store.Load()
}

// WithReadLock runs fn while holding the binding's read lock, giving a
// consistent view against in-place mutation. Swap-in updates do not need
// it (the pointer swap is already atomic), but taking it is harmless.
func (b *Binding) WithReadLock(fn func(*Store)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.store.Load())
}

// registry is the socket registry (C2): an unordered, concurrency-safe
// collection of bindings, one per live RTR cache session.
type registry struct {
	bindings *xsync.Map[SocketID, *Binding]
}

func newRegistry() *registry {
	return &registry{bindings: xsync.NewMap[SocketID, *Binding]()}
}

// bindOrGet returns the existing binding for id, or creates an empty one.
func (r *registry) bindOrGet(id SocketID) *Binding {
	b, _ := r.bindings.LoadOrStore(id, newBinding(id))
	return b
}

// get returns the binding for id, if any.
func (r *registry) get(id SocketID) (*Binding, bool) {
	return r.bindings.Load(id)
}

// unbind removes the binding for id and returns it (so the caller can emit
// per-record "removed" notifications), or false if it did not exist.
func (r *registry) unbind(id SocketID) (*Binding, bool) {
	return r.bindings.LoadAndDelete(id)
}

// rangeBindings calls fn for every live binding. fn must not mutate the
// registry (no bind/unbind).
func (r *registry) rangeBindings(fn func(*Binding) bool) {
	r.bindings.Range(func(_ SocketID, b *Binding) bool {
		return fn(b)
	})
}

func (r *registry) len() int {
	return r.bindings.Size()
}
