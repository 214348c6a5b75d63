package types_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

var _ = Describe("Discipline tests", func() {
	var alloc *types.Allocator

	BeforeEach(func() {
		alloc = types.NewAllocator()
	})

	Describe("Creational", func() {
		It("allocates majors in creation order with minor 0", func() {
			for i := 1; i <= 5; i++ {
				q := types.NewDisciplineBuilder("htb").Build(alloc)
				Expect(q.Major).To(Equal(uint32(i)))
				Expect(q.Minor()).To(BeZero())
				Expect(q.IsRoot()).To(BeTrue())
			}
		})

		It("attaches qdisc under a class", func() {
			root := types.NewDisciplineBuilder("htb").Build(alloc)
			c, err := types.NewDisciplineClassBuilder("htb").WithParent(root).Build(alloc)
			Expect(err).ToNot(HaveOccurred())

			q := types.NewDisciplineBuilder("netem").WithParent(c).Build(alloc)
			Expect(q.IsRoot()).To(BeFalse())
			Expect(q.Parent).To(BeIdenticalTo(c))
			Expect(q.Handle()).To(Equal("2:0"))
		})
	})

	Describe("Node Interface", func() {
		It("returns handle as node id", func() {
			alloc.NextMajor()
			q := types.NewDisciplineBuilder("htb").Build(alloc)
			Expect(q.Handle()).To(Equal("2:0"))
			Expect(q.NodeID()).To(Equal("2:0"))
		})
	})

	Describe("CmdLineGenerator", func() {
		DescribeTable("generates expected command line args",
			func(name string, params types.Params, expected []string) {
				q := types.NewDisciplineBuilder(name).WithParams(params).Build(alloc)
				Expect(q.GenCmdLineArgs()).To(Equal(expected))
			},
			Entry("no params", "htb", nil, []string{"htb"}),
			Entry("empty params", "htb", types.Params{}, []string{"htb"}),
			Entry("params sorted by key", "htb",
				types.Params{"rate": "256kbit", "ceil": "512kbit"},
				[]string{"htb", "ceil", "512kbit", "rate", "256kbit"}),
			Entry("nil params omitted", "htb",
				types.Params{"rate": "256kbit", "ceil": nil},
				[]string{"htb", "rate", "256kbit"}),
			Entry("non string params", "netem",
				types.Params{"loss": "3%", "limit": 1000000000},
				[]string{"netem", "limit", "1000000000", "loss", "3%"}),
		)
	})
})
