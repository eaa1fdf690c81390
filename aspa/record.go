// Package aspa implements an in-memory ASPA (Autonomous System Provider
// Authorization) validation table, fed by batched add/remove operations
// from one or more RPKI-to-Router cache sessions.
package aspa

import "sort"

// Record is one ASPA object: a customer ASN plus its ordered set of
// authorized upstream provider ASNs. Provider order is preserved for
// notification fidelity but is not significant for equality.
type Record struct {
	CustomerASN uint32
	Providers   []uint32
}

// HasProvider reports whether asn appears in the record's provider set.
func (r Record) HasProvider(asn uint32) bool {
	for _, p := range r.Providers {
		if p == asn {
			return true
		}
	}
	return false
}

// clone returns a Record with its own copy of the provider slice, so the
// caller's batch and the store never share backing arrays.
func (r Record) clone() Record {
	if r.Providers == nil {
		return r
	}
	out := make([]uint32, len(r.Providers))
	copy(out, r.Providers)
	return Record{CustomerASN: r.CustomerASN, Providers: out}
}

// Store is an ordered sequence of records, strictly ascending by customer
// ASN. A store is owned by exactly one socket binding; indices into it are
// only valid until the next insert/remove.
type Store struct {
	records []Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns the store's records in ascending customer-ASN order.
// The returned slice must not be mutated by the caller.
func (s *Store) Records() []Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Lookup performs a binary search for customer_asn and returns the record,
// its index, and whether it was found.
func (s *Store) Lookup(customerASN uint32) (Record, int, bool) {
	if s == nil {
		return Record{}, 0, false
	}
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].CustomerASN >= customerASN
	})
	if i < len(s.records) && s.records[i].CustomerASN == customerASN {
		return s.records[i], i, true
	}
	return Record{}, i, false
}

// InsertAt inserts rec at index, which the caller must have already
// determined (typically via Lookup) to preserve the ascending invariant.
func (s *Store) InsertAt(index int, rec Record) {
	s.records = append(s.records, Record{})
	copy(s.records[index+1:], s.records[index:])
	s.records[index] = rec
}

// RemoveAt removes and returns the record at index.
func (s *Store) RemoveAt(index int) Record {
	rec := s.records[index]
	s.records = append(s.records[:index], s.records[index+1:]...)
	return rec
}

// clone returns a deep copy of the store, used by tests to snapshot
// pre-update state for undo-idempotence checks.
func (s *Store) clone() *Store {
	if s == nil {
		return NewStore()
	}
	out := &Store{records: make([]Record, len(s.records))}
	for i, r := range s.records {
		out.records[i] = r.clone()
	}
	return out
}

// Equal reports whether two stores hold the same customer ASNs each
// mapped to equal (as sets) provider ASNs. Used to check that swap-in and
// in-place updates converge on the same result.
func (s *Store) Equal(o *Store) bool {
	a, b := s.Records(), o.Records()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].CustomerASN != b[i].CustomerASN {
			return false
		}
		if !sameProviderSet(a[i].Providers, b[i].Providers) {
			return false
		}
	}
	return true
}

func sameProviderSet(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint32]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
