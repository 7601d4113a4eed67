package prune

import (
	"github.com/zyedidia/generic/heap"

	"github.com/ccbhj/pdprune/internal/log"
	. "github.com/ccbhj/pdprune/internal/types"
)

type (
	// Candidate is a leaf eligible for removal along with its pendant length
	Candidate struct {
		ID     NodeID
		Length Length
	}

	candidateEntry struct {
		Candidate
		seq uint64
	}

	// CandidateSet keeps the leaves ordered by (Length, ID). Replaced or
	// removed entries stay in the heap until they reach its top, an entry is
	// alive only if its seq matches the one in index.
	CandidateSet struct {
		h     *heap.Heap[candidateEntry]
		index map[NodeID]candidateEntry
		seq   uint64
	}
)

func candidateLess(a, b candidateEntry) bool {
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	return a.ID < b.ID
}

func NewCandidateSet() *CandidateSet {
	return &CandidateSet{
		h:     heap.New[candidateEntry](candidateLess),
		index: make(map[NodeID]candidateEntry),
	}
}

// Insert registers id with length, replacing the length if id is already in the set
func (s *CandidateSet) Insert(id NodeID, length Length) {
	s.seq++
	e := candidateEntry{
		Candidate: Candidate{ID: id, Length: length},
		seq:       s.seq,
	}
	s.index[id] = e
	s.h.Push(e)
}

// Remove discards the candidate of id, returns false if there is none
func (s *CandidateSet) Remove(id NodeID) bool {
	if _, in := s.index[id]; !in {
		return false
	}
	delete(s.index, id)
	if len(s.index) == 0 {
		s.h = heap.New[candidateEntry](candidateLess)
	}
	return true
}

func (s *CandidateSet) Contains(id NodeID) bool {
	_, in := s.index[id]
	return in
}

func (s *CandidateSet) Len() int {
	return len(s.index)
}

// PeekMin returns the candidate with the smallest length, ties broken by
// the smallest id. It returns false if the set is empty.
func (s *CandidateSet) PeekMin() (Candidate, bool) {
	for {
		top, ok := s.h.Peek()
		if !ok {
			log.BugOn(len(s.index) == 0, "%d candidates indexed but heap is empty", len(s.index))
			return Candidate{}, false
		}
		if cur, in := s.index[top.ID]; in && cur.seq == top.seq {
			return top.Candidate, true
		}
		s.h.Pop()
	}
}
