package aspa

// HopResult classifies a single (customer_asn, provider_asn) AS_PATH hop
// against the table's combined attestations.
type HopResult int

const (
	// NoAttestation: no binding holds a record for the customer ASN.
	NoAttestation HopResult = iota
	// NotProviderPlus: at least one binding attests the customer ASN, but
	// none of its provider sets contains the provider ASN.
	NotProviderPlus
	// ProviderPlus: some attesting record's provider set contains the
	// provider ASN.
	ProviderPlus
)

func (r HopResult) String() string {
	switch r {
	case NotProviderPlus:
		return "not-provider+"
	case ProviderPlus:
		return "provider+"
	default:
		return "no-attestation"
	}
}

// CheckHop resolves a (customer_asn, provider_asn) hop over the combined
// stores of every socket binding attached to the table. It cannot fail:
// an unknown customer ASN maps to NoAttestation.
func CheckHop(t *Table, customerASN, providerASN uint32) HopResult {
	if t == nil {
		return NoAttestation
	}

	var attested bool
	result := NoAttestation

	t.reg.rangeBindings(func(b *Binding) bool {
		b.WithReadLock(func(store *Store) {
			rec, _, found := store.Lookup(customerASN)
			if !found {
				return
			}
			attested = true
			if rec.HasProvider(providerASN) {
				result = ProviderPlus
				return
			}
			if result != ProviderPlus {
				result = NotProviderPlus
			}
		})
		return result != ProviderPlus
	})

	if !attested {
		return NoAttestation
	}
	return result
}
