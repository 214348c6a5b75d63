package types_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

var _ = Describe("Allocator tests", func() {
	var alloc *types.Allocator

	BeforeEach(func() {
		alloc = types.NewAllocator()
	})

	It("allocates majors starting at 1", func() {
		Expect(alloc.NextMajor()).To(Equal(uint32(1)))
		Expect(alloc.NextMajor()).To(Equal(uint32(2)))
		Expect(alloc.NextMajor()).To(Equal(uint32(3)))
	})

	It("allocates filter handles starting at 1 independently of majors", func() {
		alloc.NextMajor()
		alloc.NextMajor()
		Expect(alloc.NextFilterHandle()).To(Equal(uint32(1)))
		Expect(alloc.NextFilterHandle()).To(Equal(uint32(2)))
	})

	It("scopes minors per qdisc", func() {
		q1 := types.NewDisciplineBuilder("htb").Build(alloc)
		q2 := types.NewDisciplineBuilder("htb").Build(alloc)

		Expect(alloc.NextMinor(q1)).To(Equal(uint32(1)))
		Expect(alloc.NextMinor(q1)).To(Equal(uint32(2)))
		Expect(alloc.NextMinor(q2)).To(Equal(uint32(1)))
		Expect(alloc.NextMinor(q1)).To(Equal(uint32(3)))
	})

	It("scopes priorities per parent node", func() {
		q := types.NewDisciplineBuilder("htb").Build(alloc)
		c, err := types.NewDisciplineClassBuilder("htb").WithParent(q).Build(alloc)
		Expect(err).ToNot(HaveOccurred())

		Expect(alloc.NextPriority(q)).To(Equal(uint32(1)))
		Expect(alloc.NextPriority(c)).To(Equal(uint32(1)))
		Expect(alloc.NextPriority(q)).To(Equal(uint32(2)))
	})

	It("starts over with a new allocator", func() {
		alloc.NextMajor()
		alloc.NextFilterHandle()

		fresh := types.NewAllocator()
		Expect(fresh.NextMajor()).To(Equal(uint32(1)))
		Expect(fresh.NextFilterHandle()).To(Equal(uint32(1)))
	})
})
