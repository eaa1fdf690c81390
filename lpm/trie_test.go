package lpm

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func pfx(s string) netip.Prefix {
	return netip.MustParsePrefix(s)
}

// TestLookupScenario covers scenario S7.
func TestLookupScenario(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.1.0.0/16"))

	got, ok := tr.Lookup(pfx("10.1.2.3/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.1.0.0/16"), got)

	got, ok = tr.Lookup(pfx("10.2.2.2/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/8"), got)

	_, ok = tr.Lookup(pfx("11.0.0.0/32"))
	require.False(t, ok)
}

// TestInsertOutOfOrderReroot verifies that inserting a shorter prefix
// after a longer one on the same path re-parents the longer one
// underneath, since shorter prefixes must sit closer to the root.
func TestInsertOutOfOrderReroot(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.0.0.0/24"))
	tr.Insert(pfx("10.0.0.0/16")) // inserted last, must end up between /8 and /24

	got, ok := tr.Lookup(pfx("10.0.0.1/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/24"), got, "most specific still wins regardless of insertion order")

	got, ok = tr.Lookup(pfx("10.0.1.1/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/16"), got)

	exact, ok := tr.LookupExact(pfx("10.0.0.0/16"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/16"), exact)
}

// TestInsertDivergentSiblings covers two prefixes that share no
// already-inserted common ancestor and are not prefixes of each other —
// an everyday case for a ROA trie (unrelated top-level networks) that
// must not panic, regardless of insertion order.
func TestInsertDivergentSiblings(t *testing.T) {
	tr := New()
	tr.Insert(pfx("1.0.0.0/8"))
	tr.Insert(pfx("2.0.0.0/8"))

	got, ok := tr.Lookup(pfx("1.2.3.4/32"))
	require.True(t, ok)
	require.Equal(t, pfx("1.0.0.0/8"), got)

	got, ok = tr.Lookup(pfx("2.2.3.4/32"))
	require.True(t, ok)
	require.Equal(t, pfx("2.0.0.0/8"), got)

	_, ok = tr.Lookup(pfx("3.0.0.0/32"))
	require.False(t, ok)

	tr2 := New()
	tr2.Insert(pfx("10.0.0.0/16"))
	tr2.Insert(pfx("10.128.0.0/16"))

	got, ok = tr2.Lookup(pfx("10.0.5.5/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/16"), got)

	got, ok = tr2.Lookup(pfx("10.128.5.5/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.128.0.0/16"), got)
}

func TestLookupExact(t *testing.T) {
	tr := New()
	tr.Insert(pfx("192.0.2.0/24"))

	_, ok := tr.LookupExact(pfx("192.0.2.0/25"))
	require.False(t, ok, "a narrower query that was never inserted is not an exact match")

	got, ok := tr.LookupExact(pfx("192.0.2.0/24"))
	require.True(t, ok)
	require.Equal(t, pfx("192.0.2.0/24"), got)
}

func TestRemoveLeaf(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.1.0.0/16"))

	require.True(t, tr.Remove(pfx("10.1.0.0/16")))
	_, ok := tr.Lookup(pfx("10.1.2.3/32"))
	require.True(t, ok) // falls back to /8
	got, _ := tr.Lookup(pfx("10.1.2.3/32"))
	require.Equal(t, pfx("10.0.0.0/8"), got)

	require.False(t, tr.Remove(pfx("10.1.0.0/16")), "removing twice reports absent")
}

func TestRemoveSingleChildPromotion(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.0.0.0/16"))
	tr.Insert(pfx("10.0.0.0/24"))

	require.True(t, tr.Remove(pfx("10.0.0.0/16")))

	// /24 must still be reachable through /8 with /16 gone from the path
	got, ok := tr.Lookup(pfx("10.0.0.1/32"))
	require.True(t, ok)
	require.Equal(t, pfx("10.0.0.0/24"), got)

	_, ok = tr.LookupExact(pfx("10.0.0.0/16"))
	require.False(t, ok)
}

func TestIsLeafAndChildren(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.1.0.0/16"))
	tr.Insert(pfx("10.2.0.0/16"))

	require.False(t, tr.IsLeaf(pfx("10.0.0.0/8")))
	require.True(t, tr.IsLeaf(pfx("10.1.0.0/16")))

	children := tr.Children(pfx("10.0.0.0/8"))
	require.ElementsMatch(t, []netip.Prefix{pfx("10.1.0.0/16"), pfx("10.2.0.0/16")}, children)
}

func TestReinsertIsNoOp(t *testing.T) {
	tr := New()
	tr.Insert(pfx("10.0.0.0/8"))
	tr.Insert(pfx("10.0.0.0/8"))
	require.Equal(t, 1, tr.Len())
}

func TestIPv6(t *testing.T) {
	tr := New()
	tr.Insert(pfx("2001:db8::/32"))
	tr.Insert(pfx("2001:db8:1::/48"))

	got, ok := tr.Lookup(pfx("2001:db8:1::1/128"))
	require.True(t, ok)
	require.Equal(t, pfx("2001:db8:1::/48"), got)

	got, ok = tr.Lookup(pfx("2001:db8:2::1/128"))
	require.True(t, ok)
	require.Equal(t, pfx("2001:db8::/32"), got)
}
