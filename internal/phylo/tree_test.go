package phylo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	. "github.com/ccbhj/pdprune/internal/types"
)

// buildExample builds ((A:1,B:2)X:1,(C:5,D:0.5)Y:3)R, ids follow pre-order
func buildExample() (*Tree, map[string]NodeID) {
	ids := make(map[string]NodeID)
	t := NewTree("R")
	add := func(parent NodeID, name string, l Length) NodeID {
		id, err := t.AddChild(parent, name, l)
		Expect(err).Should(BeNil())
		ids[name] = id
		return id
	}
	x := add(t.Root(), "X", 1)
	add(x, "A", 1)
	add(x, "B", 2)
	y := add(t.Root(), "Y", 3)
	add(y, "C", 5)
	add(y, "D", 0.5)
	return t, ids
}

var _ = Describe("Tree", func() {
	var (
		t   *Tree
		ids map[string]NodeID
	)
	BeforeEach(func() {
		t, ids = buildExample()
		Expect(t.Validate()).Should(Succeed())
	})

	Describe("building", func() {
		It("assigns ids in insertion order", func() {
			Expect(t.Root()).Should(Equal(NodeID(0)))
			Expect(ids).Should(Equal(map[string]NodeID{
				"X": 1, "A": 2, "B": 3, "Y": 4, "C": 5, "D": 6,
			}))
			Expect(t.Len()).Should(Equal(7))
			Expect(t.Children(t.Root())).Should(Equal([]NodeID{ids["X"], ids["Y"]}))
		})

		It("rejects invalid lengths", func() {
			_, err := t.AddChild(t.Root(), "E", -1)
			Expect(err).Should(MatchError(ErrInvalidLength))
		})

		It("rejects unknown parents", func() {
			_, err := t.AddChild(NodeID(42), "E", 1)
			Expect(err).Should(MatchError(ErrUnknownID))
		})
	})

	Describe("querying", func() {
		It("lists the leaves in id order", func() {
			Expect(t.Leaves()).Should(Equal([]NodeID{ids["A"], ids["B"], ids["C"], ids["D"]}))
			Expect(t.NumLeaves()).Should(Equal(4))
		})

		It("does not count a lonely root as leaf", func() {
			Expect(NewTree("R").Leaves()).Should(BeEmpty())
		})

		It("returns pendant lengths of leaves only", func() {
			l, err := t.PendantLength(ids["D"])
			Expect(err).Should(BeNil())
			Expect(l).Should(Equal(0.5))

			_, err = t.PendantLength(ids["X"])
			Expect(err).Should(MatchError(ErrNotALeaf))
			_, err = t.PendantLength(NodeID(100))
			Expect(err).Should(MatchError(ErrUnknownID))
		})

		It("returns the parent", func() {
			p, ok := t.ParentOf(ids["A"])
			Expect(ok).Should(BeTrue())
			Expect(p).Should(Equal(ids["X"]))

			_, ok = t.ParentOf(t.Root())
			Expect(ok).Should(BeFalse())
			_, ok = t.ParentOf(NodeID(100))
			Expect(ok).Should(BeFalse())
		})

		It("sums the edges", func() {
			Expect(t.TotalLength()).Should(BeNumerically("~", 12.5, 1e-12))
		})
	})

	Describe("removing a leaf", func() {
		It("detaches the leaf without collapsing", func() {
			Expect(t.RemoveLeaf(ids["D"])).Should(Succeed())
			Expect(t.Contains(ids["D"])).Should(BeFalse())
			Expect(t.NumChildren(ids["Y"])).Should(Equal(1))
			Expect(t.Validate()).Should(MatchError(ErrInvariantViolation))
		})

		It("refuses internal nodes, the root and unknown ids", func() {
			Expect(t.RemoveLeaf(ids["X"])).Should(MatchError(ErrNotALeaf))
			Expect(t.RemoveLeaf(t.Root())).Should(MatchError(ErrNotALeaf))
			Expect(t.RemoveLeaf(NodeID(-3))).Should(MatchError(ErrUnknownID))
		})

		It("refuses to remove twice", func() {
			Expect(t.RemoveLeaf(ids["A"])).Should(Succeed())
			Expect(t.RemoveLeaf(ids["A"])).Should(MatchError(ErrUnknownID))
		})
	})

	Describe("collapsing", func() {
		It("merges the edges of a single-child node", func() {
			Expect(t.RemoveLeaf(ids["D"])).Should(Succeed())
			child, ok, err := t.CollapseIfDegenerate(ids["Y"])
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeTrue())
			Expect(child).Should(Equal(ids["C"]))

			Expect(t.Contains(ids["Y"])).Should(BeFalse())
			l, err := t.PendantLength(ids["C"])
			Expect(err).Should(BeNil())
			Expect(l).Should(Equal(8.0))
			p, _ := t.ParentOf(ids["C"])
			Expect(p).Should(Equal(t.Root()))
			Expect(t.Validate()).Should(Succeed())
		})

		It("keeps the position of the collapsed node", func() {
			Expect(t.RemoveLeaf(ids["A"])).Should(Succeed())
			_, ok, err := t.CollapseIfDegenerate(ids["X"])
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeTrue())
			Expect(t.Children(t.Root())).Should(Equal([]NodeID{ids["B"], ids["Y"]}))
		})

		It("keeps the total length unchanged", func() {
			before := t.TotalLength()
			Expect(t.RemoveLeaf(ids["D"])).Should(Succeed())
			_, _, err := t.CollapseIfDegenerate(ids["Y"])
			Expect(err).Should(BeNil())
			Expect(t.TotalLength()).Should(BeNumerically("~", before-0.5, 1e-12))
		})

		It("does nothing on nodes with several children or on the root", func() {
			_, ok, err := t.CollapseIfDegenerate(ids["X"])
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeFalse())

			Expect(t.RemoveLeaf(ids["A"])).Should(Succeed())
			_, _, err = t.CollapseIfDegenerate(ids["X"])
			Expect(err).Should(BeNil())
			Expect(t.RemoveLeaf(ids["B"])).Should(Succeed())
			Expect(t.NumChildren(t.Root())).Should(Equal(1))
			_, ok, err = t.CollapseIfDegenerate(t.Root())
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeFalse())
		})

		It("reports a childless non-root node as a bug", func() {
			u := NewTree("R")
			a, _ := u.AddChild(u.Root(), "a", 1)
			b, _ := u.AddChild(a, "b", 1)
			Expect(u.RemoveLeaf(b)).Should(Succeed())
			_, _, err := u.CollapseIfDegenerate(a)
			Expect(err).Should(MatchError(ErrInvariantViolation))
		})
	})

	Describe("checking", func() {
		It("accepts single-child nodes in the structure check only", func() {
			u := NewTree("R")
			a, _ := u.AddChild(u.Root(), "a", 1)
			_, _ = u.AddChild(a, "b", 1)
			_, _ = u.AddChild(u.Root(), "c", 1)

			Expect(u.CheckStructure()).Should(Succeed())
			Expect(u.Validate()).Should(MatchError(ErrInvariantViolation))
		})
	})

	Describe("cloning", func() {
		It("copies the tree deeply", func() {
			c := t.Clone()
			Expect(c.Fingerprint()).Should(Equal(t.Fingerprint()))
			Expect(c.Validate()).Should(Succeed())

			Expect(c.RemoveLeaf(ids["A"])).Should(Succeed())
			Expect(t.Contains(ids["A"])).Should(BeTrue())
			Expect(t.NumChildren(ids["X"])).Should(Equal(2))
			Expect(c.Fingerprint()).ShouldNot(Equal(t.Fingerprint()))
		})

		It("preserves child order", func() {
			c := t.Clone()
			lo.ForEach(append(t.Leaves(), t.Root(), ids["X"], ids["Y"]), func(id NodeID, _ int) {
				Expect(c.Children(id)).Should(Equal(t.Children(id)))
				Expect(c.Name(id)).Should(Equal(t.Name(id)))
				Expect(c.Length(id)).Should(Equal(t.Length(id)))
			})
		})
	})

	Describe("fingerprint", func() {
		It("depends on lengths and names", func() {
			u, _ := buildExample()
			Expect(u.Fingerprint()).Should(Equal(t.Fingerprint()))

			v := NewTree("R")
			_, _ = v.AddChild(v.Root(), "A", 1)
			w := NewTree("R")
			_, _ = w.AddChild(w.Root(), "A", 2)
			Expect(v.Fingerprint()).ShouldNot(Equal(w.Fingerprint()))
		})
	})
})
