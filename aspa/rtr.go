package aspa

import (
	rtrlib "github.com/bgp/stayrtr/lib"
)

// OperationFromPDU translates one ASPA PDU received over an RTR session
// into an Operation. It performs no session management, parsing, or
// reconnection logic — only field translation — keeping the RTR
// transport itself (session FSM, keepalive) a true external collaborator.
// index should be the PDU's position within the current cache-response
// batch (the RTR session layer tracks this).
//
// Mirrors stages/rpki/rtr.go's handlePrefix, generalized from a single
// (prefix, maxlen, asn) VRP to an ASPA record's (customer ASN, provider
// ASN list).
func OperationFromPDU(index int, pdu *rtrlib.PDUASPA) Operation {
	kind := Add
	if pdu.Flags == rtrlib.FLAG_REMOVED {
		kind = Remove
	}

	providers := make([]uint32, len(pdu.Providers))
	copy(providers, pdu.Providers)

	return Operation{
		Index: index,
		Kind:  kind,
		Record: Record{
			CustomerASN: pdu.CustomerASN,
			Providers:   providers,
		},
	}
}
