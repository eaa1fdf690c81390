package aspa

import (
	"sync"

	"github.com/rs/zerolog"
)

// UpdateMode selects which updater (swap-in or in-place) a Table uses to
// apply batches. It is a construction-time parameter, never a
// process-global switch.
type UpdateMode int

const (
	SwapIn UpdateMode = iota
	InPlace
)

func (m UpdateMode) String() string {
	if m == InPlace {
		return "in-place"
	}
	return "swap-in"
}

// NotifyKind distinguishes an "added" from a "removed" record notification.
type NotifyKind int

const (
	NotifyAdded NotifyKind = iota
	NotifyRemoved
)

func (k NotifyKind) String() string {
	if k == NotifyRemoved {
		return "removed"
	}
	return "added"
}

// Listener receives per-record add/remove notifications. Listeners must
// not re-enter the table (no bind/unbind, no Apply) from inside the
// callback.
type Listener func(rec Record, kind NotifyKind, socket SocketID)

// TableOptions are construction-time parameters, set once via NewTable,
// deliberately avoiding any process-wide mutable configuration.
type TableOptions struct {
	// Mode selects the updater Apply dispatches to.
	Mode UpdateMode

	// NotifyNoOps, when true, makes swap-in's ApplyUpdate emit a paired
	// add+remove notification for operations the normalizer marked
	// IsNoOp. Default false.
	NotifyNoOps bool

	// Logger receives structured diagnostics. Defaults to a disabled
	// logger (zerolog.Nop()) if unset, matching core.StageBase's
	// embedded zerolog.Logger idiom.
	Logger zerolog.Logger
}

// Table is the set of socket bindings plus a notification fan-out.
// Readers resolve a customer ASN by scanning all bindings.
type Table struct {
	zerolog.Logger

	opts TableOptions
	reg  *registry

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewTable constructs an empty table with the given options.
func NewTable(opts TableOptions) *Table {
	t := &Table{
		opts:   opts,
		reg:    newRegistry(),
		Logger: opts.Logger,
	}
	return t
}

// OnNotify registers a listener for per-record add/remove notifications.
// Not safe to call concurrently with Apply from the same goroutine group
// that also calls it mid-update; intended for setup time.
func (t *Table) OnNotify(l Listener) {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *Table) notify(rec Record, kind NotifyKind, socket SocketID) {
	t.listenersMu.RLock()
	ls := t.listeners
	t.listenersMu.RUnlock()
	for _, l := range ls {
		l(rec, kind, socket)
	}
}

// Binding returns the binding for socket, if any.
func (t *Table) Binding(socket SocketID) (*Binding, bool) {
	return t.reg.get(socket)
}

// Bindings returns a snapshot slice of all live bindings.
func (t *Table) Bindings() []*Binding {
	out := make([]*Binding, 0, t.reg.len())
	t.reg.rangeBindings(func(b *Binding) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Unbind removes the binding for socket (e.g. on session disconnect) and
// notifies listeners of every record it held as "removed". Returns false
// if the socket had no binding.
func (t *Table) Unbind(socket SocketID) bool {
	b, ok := t.reg.unbind(socket)
	if !ok {
		return false
	}
	for _, rec := range b.Store().Records() {
		t.notify(rec, NotifyRemoved, socket)
	}
	return true
}

// Apply normalizes and applies ops as a single atomic batch against the
// binding for socket, creating the binding if this is its first update.
// It dispatches to the swap-in or in-place updater per t.opts.Mode.
//
// On swap-in failure, the binding is left untouched (the new store is
// simply discarded) — there is nothing for the caller to undo. On
// in-place failure, Apply itself calls UndoUpdate to roll back the
// operations already applied. In in-place mode Apply calls UpdateCleanup
// on ops whether or not the batch succeeded.
func (t *Table) Apply(socket SocketID, ops []Operation) error {
	switch t.opts.Mode {
	case InPlace:
		failedOp, err := t.Update(socket, ops)
		if err != nil {
			t.UndoUpdate(socket, ops, failedOp)
			UpdateCleanup(ops)
			return err
		}
		UpdateCleanup(ops)
		return nil
	default:
		h, err := t.ComputeUpdate(socket, ops)
		if err != nil {
			t.FinishUpdate(h)
			return err
		}
		t.ApplyUpdate(h)
		t.FinishUpdate(h)
		return nil
	}
}

// SrcReplace transfers the store bound to socket in src to dst, freeing
// dst's prior binding for socket if any. Notifications: if notifyDst,
// every record held by dst's prior binding (if it had one) is announced
// "removed" and every record in the transferred store is announced
// "added" to dst's listeners; if notifySrc, every record removed from src
// is announced "removed" to src's listeners. The swap is atomic with
// respect to readers of both tables: dst publishes its new binding (by
// replacing the registry entry), and src's entry is deleted, in one call
// with no intervening reader-visible half-state for either table's
// bindOrGet/get path.
func SrcReplace(dst, src *Table, socket SocketID, notifyDst, notifySrc bool) error {
	if dst == nil || src == nil {
		return ErrInvalidArgument
	}

	srcBinding, ok := src.reg.unbind(socket)
	if !ok {
		srcBinding = newBinding(socket)
	}

	prevDst, hadPrevDst := dst.reg.get(socket)

	newDst := newBinding(socket)
	newDst.store.Store(srcBinding.Store())
	dst.reg.bindings.Store(socket, newDst)

	if notifyDst {
		if hadPrevDst {
			for _, rec := range prevDst.Store().Records() {
				dst.notify(rec, NotifyRemoved, socket)
			}
		}
		for _, rec := range newDst.Store().Records() {
			dst.notify(rec, NotifyAdded, socket)
		}
	}
	if notifySrc {
		for _, rec := range srcBinding.Store().Records() {
			src.notify(rec, NotifyRemoved, socket)
		}
	}
	return nil
}
