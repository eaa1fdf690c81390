package aspa

import (
	"cmp"
	"fmt"
	"slices"
)

// Kind distinguishes an Add from a Remove operation.
type Kind int

const (
	Add Kind = iota
	Remove
)

func (k Kind) String() string {
	if k == Remove {
		return "remove"
	}
	return "add"
}

// Operation is one add/remove item out of a cache-response batch. Index is
// the original batch position; normalize() reorders the batch in place but
// preserves Index as a stable tie-breaker and as the "failed operation"
// reference in error returns.
type Operation struct {
	Index    int
	Kind     Kind
	Record   Record
	IsNoOp   bool
}

// newAdd and newRemove are test/adapter conveniences; production callers
// populate Operation directly (e.g. OperationFromPDU in rtr.go).
func newAdd(index int, customerASN uint32, providers ...uint32) Operation {
	return Operation{Index: index, Kind: Add, Record: Record{CustomerASN: customerASN, Providers: providers}}
}

func newRemove(index int, customerASN uint32) Operation {
	return Operation{Index: index, Kind: Remove, Record: Record{CustomerASN: customerASN}}
}

// normalize stable-sorts ops by (CustomerASN, Index), then scans windows of
// equal CustomerASN to detect duplicate Adds, duplicate Removes, and
// Add/Remove no-op pairs. It mutates ops in place and returns the index
// (into the original, pre-sort batch numbering — i.e. Operation.Index) of
// the first offending operation on error.
func normalize(ops []Operation) (failedIndex int, err error) {
	for i := range ops {
		if ops[i].Kind == Remove && len(ops[i].Record.Providers) > 0 {
			return ops[i].Index, fmt.Errorf("%w: remove of customer ASN %d carries a non-empty provider list",
				ErrInvalidArgument, ops[i].Record.CustomerASN)
		}
	}

	slices.SortStableFunc(ops, func(a, b Operation) int {
		if c := cmp.Compare(a.Record.CustomerASN, b.Record.CustomerASN); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	for start := 0; start < len(ops); {
		end := start + 1
		for end < len(ops) && ops[end].Record.CustomerASN == ops[start].Record.CustomerASN {
			end++
		}
		if fi, ferr := normalizeWindow(ops[start:end]); ferr != nil {
			return fi, ferr
		}
		start = end
	}

	return 0, nil
}

// normalizeWindow applies the case-by-case duplicate/no-op rules within a
// single customer-ASN window (already sorted by Index).
func normalizeWindow(win []Operation) (int, error) {
	for i := 0; i+1 < len(win); i++ {
		a, b := win[i], win[i+1]
		switch {
		case a.Kind == Add && b.Kind == Add:
			// case 2: two Adds for the same ASN in one batch.
			return b.Index, fmt.Errorf("%w: two Add operations for customer ASN %d in one batch",
				ErrDuplicateRecord, b.Record.CustomerASN)

		case a.Kind == Remove && b.Kind == Remove:
			// case 4: two Removes for the same ASN in one batch.
			return b.Index, fmt.Errorf("%w: two Remove operations for customer ASN %d in one batch",
				ErrRecordNotFound, b.Record.CustomerASN)

		case a.Kind == Add && b.Kind == Remove:
			// Add immediately followed by Remove: they annihilate.
			win[i].IsNoOp = true
			win[i+1].IsNoOp = true

		case a.Kind == Remove && b.Kind == Add:
			// not a no-op: Remove targets an existing record, Add
			// introduces a fresh one. Pass through unchanged.
		}
	}
	return 0, nil
}
