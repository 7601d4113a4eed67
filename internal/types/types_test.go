package types

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Types", func() {
	It("hashes node ids", func() {
		Expect(NodeID(3).Hash()).Should(Equal(NodeID(3).Hash()))
		Expect(NodeID(3).Hash()).ShouldNot(Equal(NodeID(4).Hash()))
	})

	It("prints node ids", func() {
		Expect(NodeID(12).String()).Should(Equal("12"))
		Expect(NoNode.String()).Should(Equal("<none>"))
		Expect(NoNode.Valid()).Should(BeFalse())
	})

	It("validates lengths", func() {
		Expect(ValidLength(0)).Should(BeTrue())
		Expect(ValidLength(1.5)).Should(BeTrue())
		Expect(ValidLength(-0.1)).Should(BeFalse())
		Expect(ValidLength(math.NaN())).Should(BeFalse())
		Expect(ValidLength(math.Inf(1))).Should(BeFalse())
	})

	It("mixes hashes in order", func() {
		a, b := HashString("a"), HashString("b")
		Expect(MixAll(a, b)).Should(Equal(MixAll(a, b)))
		Expect(MixAll(a, b)).ShouldNot(Equal(MixAll(b, a)))
		Expect(HashLength(0.5)).Should(Equal(HashLength(0.5)))
	})
})
