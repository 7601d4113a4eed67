package types

import (
	"math"
	"strconv"

	"github.com/dolthub/maphash"
)

type (
	// NodeID identifies a node of a tree. IDs are assigned when the tree is
	// built and never reused.
	NodeID int

	// Length is the length of the edge between a node and its parent
	Length = float64
)

// NoNode is the parent of a root
const NoNode NodeID = -1

var nodeIDHasher = maphash.NewHasher[NodeID]()

func (id NodeID) Hash() uint64 { return nodeIDHasher.Hash(id) }
func (id NodeID) Valid() bool  { return id >= 0 }
func (id NodeID) String() string {
	if id == NoNode {
		return "<none>"
	}
	return strconv.Itoa(int(id))
}

var (
	stringHasher = maphash.NewHasher[string]()
	uint64Hasher = maphash.NewHasher[uint64]()
)

// HashString hashes s with the process-wide seed
func HashString(s string) uint64 { return stringHasher.Hash(s) }

// HashLength hashes the bit pattern of a branch length
func HashLength(l Length) uint64 { return uint64Hasher.Hash(math.Float64bits(l)) }

// ValidLength report whether l may be used as a branch length
func ValidLength(l Length) bool {
	return !math.IsNaN(l) && !math.IsInf(l, 0) && l >= 0
}
