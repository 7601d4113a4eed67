// Package phylo holds a rooted, edge-weighted tree that can be trimmed leaf
// by leaf. Nodes live in an arena indexed by NodeID; a node refers to its
// parent by id and owns the ordered list of its children's ids.
package phylo

import (
	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	. "github.com/ccbhj/pdprune/internal/types"
)

type Tree struct {
	nodes []*node // indexed by NodeID, nil once a node is removed
	root  NodeID
	nlive int
}

// NewTree creates a tree holding only a root named rootName
func NewTree(rootName string) *Tree {
	root := newNode(0, rootName, 0)
	return &Tree{
		nodes: []*node{root},
		root:  root.id,
		nlive: 1,
	}
}

func (t *Tree) lookup(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(t.nodes) || t.nodes[id] == nil {
		return nil, errors.WithMessagef(ErrUnknownID, "node=%s", id)
	}
	return t.nodes[id], nil
}

// AddChild appends a new node under parent and returns its id
func (t *Tree) AddChild(parent NodeID, name string, length Length) (NodeID, error) {
	p, err := t.lookup(parent)
	if err != nil {
		return NoNode, err
	}
	if !ValidLength(length) {
		return NoNode, errors.WithMessagef(ErrInvalidLength, "node %q has length %v", name, length)
	}

	child := newNode(NodeID(len(t.nodes)), name, length)
	t.nodes = append(t.nodes, child)
	p.addChild(child)
	t.nlive++
	return child.id, nil
}

func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes currently in the tree, root included
func (t *Tree) Len() int { return t.nlive }

func (t *Tree) Contains(id NodeID) bool {
	_, err := t.lookup(id)
	return err == nil
}

func (t *Tree) IsRoot(id NodeID) bool { return id == t.root }

func (t *Tree) IsLeaf(id NodeID) bool {
	n, err := t.lookup(id)
	return err == nil && n.isLeaf()
}

// Name returns the name of node id, or "" if it is not in the tree
func (t *Tree) Name(id NodeID) string {
	n, err := t.lookup(id)
	if err != nil {
		return ""
	}
	return n.name
}

// Length returns the length of the edge above id, 0 for the root or unknown nodes
func (t *Tree) Length(id NodeID) Length {
	n, err := t.lookup(id)
	if err != nil || id == t.root {
		return 0
	}
	return n.length
}

func (t *Tree) NumChildren(id NodeID) int {
	n, err := t.lookup(id)
	if err != nil {
		return 0
	}
	return n.nchild
}

// Children returns the children of id in order
func (t *Tree) Children(id NodeID) []NodeID {
	n, err := t.lookup(id)
	if err != nil {
		return nil
	}
	ret := make([]NodeID, 0, n.nchild)
	n.forEachChild(func(c NodeID) bool {
		ret = append(ret, c)
		return false
	})
	return ret
}

// Leaves returns the ids of all the current non-root leaves in ascending order
func (t *Tree) Leaves() []NodeID {
	ret := make([]NodeID, 0, len(t.nodes)/2+1)
	for _, n := range t.nodes {
		if n != nil && n.id != t.root && n.isLeaf() {
			ret = append(ret, n.id)
		}
	}
	return ret
}

func (t *Tree) NumLeaves() int {
	return lo.CountBy(t.nodes, func(n *node) bool {
		return n != nil && n.id != t.root && n.isLeaf()
	})
}

// PendantLength returns the length of the edge between leaf id and its parent
func (t *Tree) PendantLength(id NodeID) (Length, error) {
	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	if id == t.root || !n.isLeaf() {
		return 0, errors.WithMessagef(ErrNotALeaf, "node=%s", id)
	}
	return n.length, nil
}

// ParentOf returns the parent of id, false if id is the root or not in the tree
func (t *Tree) ParentOf(id NodeID) (NodeID, bool) {
	n, err := t.lookup(id)
	if err != nil || n.parent == NoNode {
		return NoNode, false
	}
	return n.parent, true
}

// RemoveLeaf detaches leaf id from its parent. The parent is left as it is
// even if it has only one child now, see CollapseIfDegenerate.
func (t *Tree) RemoveLeaf(id NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if id == t.root || !n.isLeaf() {
		return errors.WithMessagef(ErrNotALeaf, "cannot remove node %s with %d children", id, n.nchild)
	}

	t.nodes[n.parent].removeChild(n)
	t.nodes[id] = nil
	t.nlive--
	return nil
}

// CollapseIfDegenerate splices out the non-root node id if it has exactly
// one child: the child takes id's place under the grandparent and the two
// edges are merged into one. It returns the child when a collapse happened.
func (t *Tree) CollapseIfDegenerate(id NodeID) (NodeID, bool, error) {
	n, err := t.lookup(id)
	if err != nil {
		return NoNode, false, err
	}
	if id == t.root {
		return NoNode, false, nil
	}

	switch n.nchild {
	case 0:
		return NoNode, false, errors.WithMessagef(ErrInvariantViolation,
			"collapsing node %s which has no child", id)
	case 1:
	default:
		return NoNode, false, nil
	}

	child := t.nodes[n.firstChild()]
	gp := t.nodes[n.parent]
	child.length += n.length
	gp.replaceChild(n, child)

	t.nodes[id] = nil
	t.nlive--
	return child.id, true, nil
}

// TotalLength sums the length of every edge in the tree
func (t *Tree) TotalLength() Length {
	return lo.SumBy(t.nodes, func(n *node) Length {
		if n == nil || n.id == t.root {
			return 0
		}
		return n.length
	})
}

// Clone returns a deep copy of t, node ids are preserved
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make([]*node, len(t.nodes)),
		root:  t.root,
		nlive: t.nlive,
	}
	for i, n := range t.nodes {
		if n != nil {
			c.nodes[i] = newNode(n.id, n.name, n.length)
		}
	}
	for _, n := range t.nodes {
		if n == nil {
			continue
		}
		p := c.nodes[n.id]
		n.forEachChild(func(id NodeID) bool {
			p.addChild(c.nodes[id])
			return false
		})
	}
	return c
}

// Validate checks the structure of t, see CheckStructure, and that no node
// other than the root has exactly one child.
func (t *Tree) Validate() error {
	return t.validate(true)
}

// CheckStructure checks that parent and child links agree, every node is
// reachable from the root and lengths are valid. Single-child nodes are
// allowed.
func (t *Tree) CheckStructure() error {
	return t.validate(false)
}

func (t *Tree) validate(collapsed bool) error {
	root, err := t.lookup(t.root)
	if err != nil {
		return errors.WithMessage(ErrInvariantViolation, "missing root")
	}
	if root.parent != NoNode {
		return errors.WithMessagef(ErrInvariantViolation, "root has parent %s", root.parent)
	}

	var (
		seen  int
		stack = []*node{root}
	)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen++

		if n.id != t.root {
			if !ValidLength(n.length) {
				return errors.WithMessagef(ErrInvariantViolation, "node %s has length %v", n.id, n.length)
			}
			if collapsed && n.nchild == 1 {
				return errors.WithMessagef(ErrInvariantViolation, "node %s has only one child", n.id)
			}
			if n.elem == nil || n.elem.Value != n.id {
				return errors.WithMessagef(ErrInvariantViolation, "node %s is detached from its parent", n.id)
			}
		}

		count := 0
		var bad error
		n.forEachChild(func(id NodeID) bool {
			count++
			c, err := t.lookup(id)
			if err != nil {
				bad = errors.WithMessagef(ErrInvariantViolation, "node %s has dangling child %s", n.id, id)
				return true
			}
			if c.parent != n.id {
				bad = errors.WithMessagef(ErrInvariantViolation,
					"node %s lists child %s whose parent is %s", n.id, id, c.parent)
				return true
			}
			stack = append(stack, c)
			return false
		})
		if bad != nil {
			return bad
		}
		if count != n.nchild {
			return errors.WithMessagef(ErrInvariantViolation,
				"node %s counts %d children but has %d", n.id, n.nchild, count)
		}
	}

	if seen != t.nlive {
		return errors.WithMessagef(ErrInvariantViolation,
			"%d nodes reachable from root, %d in tree", seen, t.nlive)
	}
	return nil
}

type nodeSnapshot struct {
	ID       NodeID
	Parent   NodeID
	Name     string
	Length   Length
	Children []NodeID
}

// Fingerprint hashes the topology, names and lengths of t. Equal trees give
// equal fingerprints across processes.
func (t *Tree) Fingerprint() uint64 {
	snapshot := make([]nodeSnapshot, 0, t.nlive)
	for _, n := range t.nodes {
		if n == nil {
			continue
		}
		snapshot = append(snapshot, nodeSnapshot{
			ID:       n.id,
			Parent:   n.parent,
			Name:     n.name,
			Length:   t.Length(n.id),
			Children: t.Children(n.id),
		})
	}
	ret, err := hashstructure.Hash(snapshot, hashstructure.FormatV2, nil)
	if err != nil {
		panic(err)
	}
	return ret
}
