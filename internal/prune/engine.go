// Package prune trims a tree by repeatedly removing the leaf with the
// shortest pendant edge until that edge is longer than a cutoff, and
// records the phylogenetic diversity lost on the way.
package prune

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ccbhj/pdprune/internal/log"
	"github.com/ccbhj/pdprune/internal/phylo"
	. "github.com/ccbhj/pdprune/internal/types"
)

var (
	ErrInvalidCutoff      = errors.New("cutoff must be a positive number")
	ErrInvariantViolation = phylo.ErrInvariantViolation
)

type (
	State      uint8
	StopReason uint8
)

// State
const (
	StateRunning State = iota
	StateStopped
)

// StopReason
const (
	StopNone StopReason = iota
	// StopCutoff means the shortest pendant edge left is longer than the cutoff
	StopCutoff
	// StopExhausted means there is no leaf left to remove
	StopExhausted
	// StopAborted means the tree was found broken
	StopAborted
)

var stateDict = [...]string{"Running", "Stopped"}

func (s State) String() string {
	if int(s) >= len(stateDict) {
		return "Unknown"
	}
	return stateDict[s]
}

var stopReasonDict = [...]string{"None", "Cutoff", "Exhausted", "Aborted"}

func (r StopReason) String() string {
	if int(r) >= len(stopReasonDict) {
		return "Unknown"
	}
	return stopReasonDict[r]
}

// Engine prunes one tree. The tree is modified in place, clone it first if
// the original is still needed. An Engine must not be shared between goroutines.
type Engine struct {
	tree    *phylo.Tree
	cutoff  Length
	cands   *CandidateSet
	state   State
	stop    StopReason
	pdLoss  Length
	records []Record
}

func NewEngine(tree *phylo.Tree, cutoff Length) (*Engine, error) {
	if math.IsNaN(cutoff) || cutoff <= 0 {
		return nil, errors.WithMessagef(ErrInvalidCutoff, "cutoff=%v", cutoff)
	}

	e := &Engine{
		tree:   tree,
		cutoff: cutoff,
		cands:  NewCandidateSet(),
		state:  StateRunning,
	}
	for _, id := range tree.Leaves() {
		l, err := tree.PendantLength(id)
		if err != nil {
			return nil, err
		}
		e.cands.Insert(id, l)
	}
	log.Debug("%d candidates seeded, cutoff=%v", e.cands.Len(), cutoff)
	return e, nil
}

func (e *Engine) State() State           { return e.state }
func (e *Engine) StopReason() StopReason { return e.stop }
func (e *Engine) PDLoss() Length         { return e.pdLoss }
func (e *Engine) Cutoff() Length         { return e.cutoff }

// Tree returns the working tree, pruned as far as the engine went
func (e *Engine) Tree() *phylo.Tree { return e.tree }

func (e *Engine) halt(reason StopReason) {
	e.state = StateStopped
	e.stop = reason
}

// Step removes the leaf with the shortest pendant edge if that edge is not
// longer than the cutoff. It returns false once the engine is stopped.
func (e *Engine) Step() (Record, bool, error) {
	if e.state == StateStopped {
		return Record{}, false, nil
	}

	c, ok := e.cands.PeekMin()
	if !ok {
		e.halt(StopExhausted)
		return Record{}, false, nil
	}
	if c.Length > e.cutoff {
		e.halt(StopCutoff)
		return Record{}, false, nil
	}

	rec, settled, err := e.removeLeaf(c)
	if err == nil && log.IsDebug() {
		err = e.check(settled)
	}
	if err != nil {
		e.halt(StopAborted)
		return Record{}, false, errors.Wrapf(err, "fail to remove leaf %s", c.ID)
	}
	return rec, true, nil
}

// check is run after every step in debug mode. Single-child nodes the
// engine has not reached yet are legal input, only the node where settle
// stopped must not be left with one child.
func (e *Engine) check(settled NodeID) error {
	if err := e.tree.CheckStructure(); err != nil {
		return err
	}
	if !e.tree.IsRoot(settled) && e.tree.NumChildren(settled) == 1 {
		return errors.WithMessagef(ErrInvariantViolation, "node %s is left with one child", settled)
	}
	return nil
}

// removeLeaf removes c and settles the tree above it, it returns the node
// where settling stopped
func (e *Engine) removeLeaf(c Candidate) (Record, NodeID, error) {
	parent, ok := e.tree.ParentOf(c.ID)
	if !ok {
		return Record{}, NoNode, errors.WithMessagef(ErrInvariantViolation, "candidate %s has no parent", c.ID)
	}
	length, err := e.tree.PendantLength(c.ID)
	if err != nil {
		return Record{}, NoNode, err
	}
	log.BugOn(length == c.Length, "candidate %s has length %v, but the tree says %v", c.ID, c.Length, length)

	rec := Record{
		ID:     c.ID,
		Name:   e.tree.Name(c.ID),
		Length: length,
	}
	if err := e.tree.RemoveLeaf(c.ID); err != nil {
		return Record{}, NoNode, err
	}
	e.cands.Remove(c.ID)

	e.pdLoss += length
	rec.PDLoss = e.pdLoss
	e.records = append(e.records, rec)
	log.Debug("removed %s(%s) length=%v pd_loss=%v", rec.ID, rec.Name, rec.Length, rec.PDLoss)

	settled, err := e.settle(parent)
	if err != nil {
		return Record{}, NoNode, err
	}
	return rec, settled, nil
}

// settle restores the shape of the tree above a removed leaf: a parent left
// without children turns into a leaf, a parent left with one child is
// collapsed, and collapsing goes on upward while single-child nodes remain.
func (e *Engine) settle(id NodeID) (NodeID, error) {
	for !e.tree.IsRoot(id) {
		if e.tree.NumChildren(id) == 0 {
			l, err := e.tree.PendantLength(id)
			if err != nil {
				return NoNode, err
			}
			log.Debug("node %s becomes a leaf, length=%v", id, l)
			e.cands.Insert(id, l)
			return id, nil
		}

		gp, ok := e.tree.ParentOf(id)
		if !ok {
			return NoNode, errors.WithMessagef(ErrInvariantViolation, "node %s has no parent", id)
		}
		child, collapsed, err := e.tree.CollapseIfDegenerate(id)
		if err != nil {
			return NoNode, err
		}
		if !collapsed {
			return id, nil
		}
		if e.tree.IsLeaf(child) {
			l, err := e.tree.PendantLength(child)
			if err != nil {
				return NoNode, err
			}
			log.Debug("collapsed %s, leaf %s now has length %v", id, child, l)
			e.cands.Insert(child, l)
		}
		id = gp
	}
	return id, nil
}

// Run steps until the engine stops
func (e *Engine) Run() (*Result, error) {
	for {
		_, ok, err := e.Step()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	log.Debug("stopped by %s after %d removals, pd_loss=%v", e.stop, len(e.records), e.pdLoss)
	return e.Result(), nil
}

// Result reports what has been removed so far
func (e *Engine) Result() *Result {
	res := &Result{
		Records:   append([]Record(nil), e.records...),
		Stop:      e.stop,
		PDLoss:    e.pdLoss,
		Remaining: e.cands.Len(),
	}
	res.Next, res.HasNext = e.cands.PeekMin()
	return res
}

// Prune runs a new Engine on tree, which is modified in place
func Prune(tree *phylo.Tree, cutoff Length) (*Result, error) {
	e, err := NewEngine(tree, cutoff)
	if err != nil {
		return nil, err
	}
	return e.Run()
}
