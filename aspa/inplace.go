package aspa

import "fmt"

// Update applies ops directly to the binding's live store, in order,
// stopping at the first failure. It returns the failed operation (nil on
// success) and its error:
//
//   - Add: binary-search insertion point; if the customer ASN is already
//     present, fail ErrDuplicateRecord. Otherwise insert.
//   - Remove: binary-search; if absent, fail ErrRecordNotFound. Otherwise
//     remove — ownership of the removed record's provider slice transfers
//     into the operation's Record field, so UndoUpdate can reinsert it
//     without the caller keeping a side log.
//
// Operations after a failure are not attempted; the failing operation is
// not applied. The caller must call UndoUpdate (recommended) to restore
// the pre-Update state, then UpdateCleanup either way.
func (t *Table) Update(socket SocketID, ops []Operation) (*Operation, error) {
	if t == nil {
		return nil, ErrInvalidArgument
	}

	b := t.reg.bindOrGet(socket)
	b.mu.Lock()
	defer b.mu.Unlock()

	if failedIndex, err := normalize(ops); err != nil {
		return findByIndex(ops, failedIndex), annotateFailed(err, ops, failedIndex)
	}

	store := b.Store()
	for i := range ops {
		op := &ops[i]
		if op.IsNoOp {
			continue
		}

		switch op.Kind {
		case Add:
			_, idx, found := store.Lookup(op.Record.CustomerASN)
			if found {
				err := fmt.Errorf("%w: customer ASN %d already present", ErrDuplicateRecord, op.Record.CustomerASN)
				t.Warn().Uint32("customer_asn", op.Record.CustomerASN).Msg("aspa: in-place add rejected, duplicate")
				return op, annotateOp(err, op)
			}
			store.InsertAt(idx, op.Record.clone())
			t.notify(op.Record, NotifyAdded, socket)

		case Remove:
			_, idx, found := store.Lookup(op.Record.CustomerASN)
			if !found {
				err := fmt.Errorf("%w: customer ASN %d not present", ErrRecordNotFound, op.Record.CustomerASN)
				t.Warn().Uint32("customer_asn", op.Record.CustomerASN).Msg("aspa: in-place remove rejected, not found")
				return op, annotateOp(err, op)
			}
			removed := store.RemoveAt(idx)
			op.Record = removed
			t.notify(removed, NotifyRemoved, socket)
		}
	}

	return nil, nil
}

// UndoUpdate reverses a batch that failed at failedOp (as returned by
// Update), walking operations from position 0 up to (but not including)
// failedOp and reversing each applied one: Add -> Remove, Remove -> Add,
// reusing the provider sequences Update stored back into Remove operation
// slots. If failedOp is nil, the whole batch is reversed. If Update
// rejected the batch during normalization, nothing was applied and nothing
// is reversed. After it
// returns, the store is bitwise equivalent to its pre-Update snapshot
// (testable property 4).
func (t *Table) UndoUpdate(socket SocketID, ops []Operation, failedOp *Operation) error {
	b, ok := t.reg.get(socket)
	if !ok {
		return ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	store := b.Store()

	limit := len(ops)
	if failedOp != nil {
		for i := range ops {
			if ops[i].Index == failedOp.Index {
				limit = i
				break
			}
		}
	}

	// A normalize failure is either a Remove carrying providers (a Remove
	// that fails during application never holds any) or the second of two
	// same-kind operations on one customer ASN (normalize never lets such a
	// pair reach application). None of the batch was applied.
	if failedOp != nil && limit < len(ops) {
		if failedOp.Kind == Remove && len(failedOp.Record.Providers) > 0 {
			return nil
		}
		if limit > 0 && ops[limit-1].Kind == failedOp.Kind && ops[limit-1].Record.CustomerASN == failedOp.Record.CustomerASN {
			return nil
		}
	}

	// Reverse in LIFO order: a Remove-then-Add pair for the same customer
	// ASN (a valid, non-no-op batch) must have its Add undone before its
	// Remove is undone, or the Remove's reinsertion would collide with
	// the still-present Add result.
	for i := limit - 1; i >= 0; i-- {
		op := ops[i]
		if op.IsNoOp {
			continue
		}
		switch op.Kind {
		case Add:
			if _, idx, found := store.Lookup(op.Record.CustomerASN); found {
				store.RemoveAt(idx)
			}
		case Remove:
			if _, idx, found := store.Lookup(op.Record.CustomerASN); !found {
				store.InsertAt(idx, op.Record)
			}
		}
	}
	return nil
}

// UpdateCleanup releases any provider sequences still owned by operation
// slots after either a successful Update or a completed UndoUpdate.
// Idempotent and safe to call unconditionally. In Go there is no manual
// free; this exists to preserve the three-call protocol shape
// (Update/UndoUpdate/UpdateCleanup) and as the place a caller signals
// "I'm done with this batch".
func UpdateCleanup(ops []Operation) {
	for i := range ops {
		ops[i].Record.Providers = nil
	}
}

func annotateFailed(err error, ops []Operation, failedIndex int) error {
	if op := findByIndex(ops, failedIndex); op != nil {
		return annotateOp(err, op)
	}
	return err
}

func annotateOp(err error, op *Operation) error {
	return fmt.Errorf("operation[%d] (%s customer_asn=%d): %w", op.Index, op.Kind, op.Record.CustomerASN, err)
}
