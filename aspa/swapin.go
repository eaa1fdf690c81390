package aspa

import "fmt"

// UpdateHandle is the swap-in protocol's three-phase state. It lives from
// ComputeUpdate through FinishUpdate. The handle is the only thing holding
// a reference to newStore until it is either published (ApplyUpdate) or
// discarded (FinishUpdate). It takes no lock on the target binding:
// another update of the same binding may run between ComputeUpdate and
// ApplyUpdate, and ApplyUpdate then replaces that update's store with
// newStore.
type UpdateHandle struct {
	table    *Table
	socket   SocketID
	binding  *Binding
	ops      []Operation
	newStore *Store

	failedOp *Operation
	err      error
	applied  bool
}

// ComputeUpdate normalizes ops and merges them with the binding's current
// store into a freshly allocated replacement store, without mutating the
// live binding:
//
//  1. normalize(ops) — stable sort + no-op/duplicate annotation.
//  2. merge pass over (existing records, non-no-op ops) in ascending
//     customer-ASN order, applying the six cases of the merge table.
//
// On error, the returned handle's FailedOperation is set (it is nil when
// the table itself is nil) and the caller
// must still call FinishUpdate to release it; no partial store is ever
// made visible to readers.
func (t *Table) ComputeUpdate(socket SocketID, ops []Operation) (*UpdateHandle, error) {
	h := &UpdateHandle{table: t, socket: socket, ops: ops}

	if t == nil {
		return h, ErrInvalidArgument
	}

	h.binding = t.reg.bindOrGet(socket)
	current := h.binding.Store()

	if failedIndex, err := normalize(ops); err != nil {
		h.err = err
		h.failedOp = findByIndex(ops, failedIndex)
		return h, err
	}

	target := NewStore()
	existing := current.Records()
	ei := 0
	for i := range ops {
		op := ops[i]
		if op.IsNoOp {
			continue
		}
		for ei < len(existing) && existing[ei].CustomerASN < op.Record.CustomerASN {
			target.records = append(target.records, existing[ei])
			ei++
		}

		switch {
		case ei < len(existing) && existing[ei].CustomerASN == op.Record.CustomerASN:
			if op.Kind == Add {
				// case 1: Add of an ASN already present in the store.
				h.err = fmt.Errorf("%w: customer ASN %d already present", ErrDuplicateRecord, op.Record.CustomerASN)
				h.failedOp = &ops[i]
				return h, h.err
			}
			// Remove: drop the existing record, advance past it.
			ei++

		default:
			if op.Kind == Remove {
				// case 3: Remove of an ASN not present in the store.
				h.err = fmt.Errorf("%w: customer ASN %d not present", ErrRecordNotFound, op.Record.CustomerASN)
				h.failedOp = &ops[i]
				return h, h.err
			}
			target.records = append(target.records, op.Record.clone())
		}
	}
	for ; ei < len(existing); ei++ {
		target.records = append(target.records, existing[ei])
	}

	h.newStore = target
	return h, nil
}

// ApplyUpdate atomically replaces the binding's store pointer with the
// handle's computed store. The previous store becomes unreachable once
// in-flight readers that already loaded it finish (Go's GC handles this;
// there is no explicit "drain" step to implement). Per the resolved Open
// Question in DESIGN.md, the swap happens before notifications are sent,
// so any listener that queries the table observes the post-update state.
func (t *Table) ApplyUpdate(h *UpdateHandle) {
	if h == nil || h.err != nil || h.applied {
		return
	}
	h.binding.store.Store(h.newStore)
	h.applied = true

	t.Debug().Str("socket", fmt.Sprint(h.socket)).Int("records", h.newStore.Len()).Msg("aspa: swap-in published")

	for _, op := range h.ops {
		if op.IsNoOp && !t.opts.NotifyNoOps {
			continue
		}
		kind := NotifyAdded
		if op.Kind == Remove {
			kind = NotifyRemoved
		}
		t.notify(op.Record, kind, h.socket)
	}
}

// FinishUpdate releases the handle by clearing its references to the
// computed store and the binding. The caller calls it once per handle,
// whether or not ApplyUpdate was called, and whether ComputeUpdate
// succeeded or failed. There is no manual memory to free in Go; this
// exists to preserve the three-phase protocol shape. It does not check
// whether the handle is used again afterwards.
func (t *Table) FinishUpdate(h *UpdateHandle) {
	if h == nil {
		return
	}
	h.newStore = nil
	h.binding = nil
}

// FailedOperation returns the operation ComputeUpdate failed on, or nil
// on success.
func (h *UpdateHandle) FailedOperation() *Operation { return h.failedOp }

func findByIndex(ops []Operation, index int) *Operation {
	for i := range ops {
		if ops[i].Index == index {
			return &ops[i]
		}
	}
	return nil
}
