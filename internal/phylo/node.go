package phylo

import (
	"github.com/zyedidia/generic/list"

	. "github.com/ccbhj/pdprune/internal/types"
)

type (
	node struct {
		id     NodeID
		name   string
		length Length // length of the edge to parent, meaningless for root
		parent NodeID

		children *list.List[NodeID] // ordered as the tree was built
		nchild   int
		elem     *list.Node[NodeID] // where this node sits in parent.children
	}
)

func newNode(id NodeID, name string, length Length) *node {
	return &node{
		id:       id,
		name:     name,
		length:   length,
		parent:   NoNode,
		children: list.New[NodeID](),
	}
}

func (n *node) isLeaf() bool {
	return n.nchild == 0
}

func (n *node) addChild(child *node) {
	n.children.PushBack(child.id)
	child.elem = n.children.Back
	child.parent = n.id
	n.nchild++
}

func (n *node) removeChild(child *node) {
	n.children.Remove(child.elem)
	n.nchild--
	child.elem = nil
	child.parent = NoNode
}

// replaceChild puts `with` at the position of `child` in n's children
func (n *node) replaceChild(child, with *node) {
	elem := child.elem
	elem.Value = with.id
	with.elem = elem
	with.parent = n.id
	child.elem = nil
	child.parent = NoNode
}

func (n *node) forEachChild(fn func(id NodeID) (stop bool)) {
	for p := n.children.Front; p != nil; p = p.Next {
		if fn(p.Value) {
			return
		}
	}
}

func (n *node) firstChild() NodeID {
	if n.children.Front == nil {
		return NoNode
	}
	return n.children.Front.Value
}
