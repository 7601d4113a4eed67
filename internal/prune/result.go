package prune

import (
	"github.com/samber/lo"

	. "github.com/ccbhj/pdprune/internal/types"
)

type (
	// Record describes one removed leaf. PDLoss is the total length removed
	// up to and including this leaf.
	Record struct {
		ID     NodeID
		Name   string
		Length Length
		PDLoss Length
	}

	// Result is the outcome of a pruning run, Records are in removal order
	Result struct {
		Records   []Record
		Stop      StopReason
		PDLoss    Length
		Remaining int // leaves left in the tree

		// Next is the shortest pendant edge left in the tree, valid if HasNext
		Next    Candidate
		HasNext bool
	}
)

func (r Record) Hash() uint64 {
	return MixAll(r.ID.Hash(), HashString(r.Name), HashLength(r.Length), HashLength(r.PDLoss))
}

func (r *Result) Len() int { return len(r.Records) }

// Names returns the names of removed leaves in removal order
func (r *Result) Names() []string {
	return lo.Map(r.Records, func(rec Record, _ int) string {
		return rec.Name
	})
}

// Digest hashes the records in order. Digests are only comparable within
// one process.
func (r *Result) Digest() uint64 {
	return MixAll(lo.Map(r.Records, func(rec Record, _ int) uint64 {
		return rec.Hash()
	})...)
}
