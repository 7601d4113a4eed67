// Package newick reads trees written in the Newick format into phylo trees
// and writes phylo trees back, on top of gotree.
package newick

import (
	"io"
	"strings"

	gonewick "github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
	"github.com/pkg/errors"

	"github.com/ccbhj/pdprune/internal/phylo"
	. "github.com/ccbhj/pdprune/internal/types"
)

var ErrEmptyTree = errors.New("empty tree")

// Parse reads one tree from r
func Parse(r io.Reader) (*phylo.Tree, error) {
	gt, err := gonewick.NewParser(r).Parse()
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse newick")
	}
	return FromGoTree(gt)
}

func ParseString(s string) (*phylo.Tree, error) {
	return Parse(strings.NewReader(s))
}

// FromGoTree copies gt into a new phylo.Tree. Node ids are given in
// pre-order, children keep their Newick order and a missing branch length
// is taken as 0.
func FromGoTree(gt *tree.Tree) (*phylo.Tree, error) {
	if gt == nil || gt.Root() == nil {
		return nil, ErrEmptyTree
	}

	var (
		root = gt.Root()
		t    = phylo.NewTree(root.Name())
	)
	var walk func(cur, prev *tree.Node, id NodeID) error
	walk = func(cur, prev *tree.Node, id NodeID) error {
		edges := cur.Edges()
		for i, next := range cur.Neigh() {
			if next == prev {
				continue
			}
			length := edges[i].Length()
			if length == tree.NIL_LENGTH {
				length = 0
			}
			child, err := t.AddChild(id, next.Name(), length)
			if err != nil {
				return err
			}
			if err := walk(next, cur, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil, t.Root()); err != nil {
		return nil, err
	}
	return t, nil
}

// ToGoTree copies t into a gotree tree
func ToGoTree(t *phylo.Tree) *tree.Tree {
	gt := tree.NewTree()
	var walk func(id NodeID) *tree.Node
	walk = func(id NodeID) *tree.Node {
		gn := gt.NewNode()
		gn.SetName(t.Name(id))
		for _, c := range t.Children(id) {
			e := gt.ConnectNodes(gn, walk(c))
			e.SetLength(t.Length(c))
		}
		return gn
	}
	gt.SetRoot(walk(t.Root()))
	return gt
}

// Format renders t as a Newick string terminated by ';'
func Format(t *phylo.Tree) string {
	return ToGoTree(t).Newick()
}
