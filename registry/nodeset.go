package registry

import (
	"fmt"

	"github.com/HexSyn0x0/Synaptix/common"
)

// nodeSet is the enumerable node set: a dense address sequence plus a
// reverse index from address to 1-based position (0 meaning absent).
//
// Removal is O(1) swap-and-remove: the last element overwrites the
// removed slot and its back-reference is repaired, so enumeration order
// is not registration order. A removal for an address absent from the
// reverse index signals a prior invariant breach and panics.
type nodeSet struct {
	list  []common.Address
	index map[common.Address]uint64
}

func newNodeSet() nodeSet {
	return nodeSet{index: make(map[common.Address]uint64)}
}

func (s *nodeSet) contains(addr common.Address) bool {
	return s.index[addr] != 0
}

func (s *nodeSet) len() int { return len(s.list) }

// add appends addr. The caller must have checked membership; a duplicate
// add would corrupt the reverse index, so it is fatal.
func (s *nodeSet) add(addr common.Address) {
	if s.index[addr] != 0 {
		panic(fmt.Sprintf("nodeSet: duplicate add of %s", addr))
	}
	s.list = append(s.list, addr)
	s.index[addr] = uint64(len(s.list))
}

// remove deletes addr by swapping the last element into its slot.
func (s *nodeSet) remove(addr common.Address) {
	pos := s.index[addr]
	if pos == 0 {
		panic(fmt.Sprintf("nodeSet: remove of absent %s", addr))
	}
	last := uint64(len(s.list))
	if pos != last {
		moved := s.list[last-1]
		s.list[pos-1] = moved
		s.index[moved] = pos
	}
	s.list = s.list[:last-1]
	delete(s.index, addr)
}

// all returns a copy of the dense sequence.
func (s *nodeSet) all() []common.Address {
	out := make([]common.Address, len(s.list))
	copy(out, s.list)
	return out
}
