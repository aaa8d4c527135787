package registry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HexSyn0x0/Synaptix/common"
)

// checkSetInvariants asserts that every listed address's recorded
// position matches its true position and that list and index agree on
// membership.
func checkSetInvariants(t *testing.T, s *nodeSet) {
	t.Helper()
	require.Equal(t, len(s.list), len(s.index), "list and index disagree on size")
	for i, addr := range s.list {
		require.Equal(t, uint64(i+1), s.index[addr],
			"recorded position of %s does not match true position", addr)
	}
}

func setAddr(i int) common.Address {
	return common.BytesToAddress([]byte{byte(i >> 8), byte(i)})
}

func TestNodeSetSwapRemove(t *testing.T) {
	s := newNodeSet()
	const n = 8
	for i := 1; i <= n; i++ {
		s.add(setAddr(i))
	}
	checkSetInvariants(t, &s)

	// Remove from the middle: the former last element must take over the
	// removed slot and report its position there.
	victim := setAddr(3)
	oldPos := s.index[victim]
	last := s.list[len(s.list)-1]
	s.remove(victim)

	assert.Equal(t, n-1, s.len())
	assert.False(t, s.contains(victim))
	assert.Equal(t, oldPos, s.index[last], "moved element did not inherit the removed slot")
	checkSetInvariants(t, &s)

	// Remove the last element: nothing is moved.
	tail := s.list[len(s.list)-1]
	s.remove(tail)
	assert.Equal(t, n-2, s.len())
	assert.False(t, s.contains(tail))
	checkSetInvariants(t, &s)
}

func TestNodeSetRemoveSingleton(t *testing.T) {
	s := newNodeSet()
	s.add(setAddr(1))
	s.remove(setAddr(1))
	assert.Equal(t, 0, s.len())
	assert.False(t, s.contains(setAddr(1)))
	checkSetInvariants(t, &s)
}

// TestNodeSetRandomized drives a long random add/remove sequence against
// a reference map and checks the positional invariants after every
// removal.
func TestNodeSetRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5eed))
	s := newNodeSet()
	ref := make(map[common.Address]bool)
	var members []common.Address

	for step := 0; step < 2000; step++ {
		if len(members) == 0 || rng.Intn(2) == 0 {
			addr := setAddr(step)
			s.add(addr)
			ref[addr] = true
			members = append(members, addr)
		} else {
			i := rng.Intn(len(members))
			addr := members[i]
			members[i] = members[len(members)-1]
			members = members[:len(members)-1]
			s.remove(addr)
			delete(ref, addr)
			checkSetInvariants(t, &s)
		}
		require.Equal(t, len(ref), s.len())
	}

	for _, addr := range s.all() {
		assert.True(t, ref[addr], "set enumerates %s which was removed", addr)
	}
	for addr := range ref {
		assert.True(t, s.contains(addr))
	}
}

func TestNodeSetAllReturnsCopy(t *testing.T) {
	s := newNodeSet()
	s.add(setAddr(1))
	s.add(setAddr(2))
	out := s.all()
	out[0] = setAddr(99)
	assert.Equal(t, setAddr(1), s.list[0], "all() leaked the backing array")
}

// Invariant guards are fatal: they signal a prior breach elsewhere.
func TestNodeSetInvariantGuards(t *testing.T) {
	s := newNodeSet()
	s.add(setAddr(1))
	assert.Panics(t, func() { s.remove(setAddr(2)) }, "remove of absent address must panic")
	assert.Panics(t, func() { s.add(setAddr(1)) }, "duplicate add must panic")
}
