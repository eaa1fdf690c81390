package aspa

import (
	"testing"

	rtrlib "github.com/bgp/stayrtr/lib"
	"github.com/stretchr/testify/require"
)

func TestOperationFromPDU(t *testing.T) {
	pdu := &rtrlib.PDUASPA{
		CustomerASN: 100,
		Providers:   []uint32{200, 300},
		Flags:       rtrlib.FLAG_ADDED,
	}

	op := OperationFromPDU(3, pdu)
	require.Equal(t, 3, op.Index)
	require.Equal(t, Add, op.Kind)
	require.Equal(t, uint32(100), op.Record.CustomerASN)
	require.Equal(t, []uint32{200, 300}, op.Record.Providers)

	pdu.Flags = rtrlib.FLAG_REMOVED
	op = OperationFromPDU(4, pdu)
	require.Equal(t, Remove, op.Kind)
}
