package policyrules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/policyrules"
)

var _ = Describe("Branch parser tests", func() {
	Context("ParseBranch", func() {
		It("parses a complete branch", func() {
			b, err := policyrules.ParseBranch("tcp:dport:8000-8080:512kbit:5%", policyrules.TrafficDirectionUpload)
			Expect(err).ToNot(HaveOccurred())
			Expect(*b).To(Equal(policyrules.Branch{
				Protocol: policyrules.ProtocolTCP,
				PortType: policyrules.PortTypeDestination,
				Range:    "8000-8080",
				Rate:     "512kbit",
				Loss:     "5%",
			}))
		})

		It("parses all range without port type", func() {
			b, err := policyrules.ParseBranch("tcp:all:14%", policyrules.TrafficDirectionDownload)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.PortType).To(BeEmpty())
			Expect(b.IsAll()).To(BeTrue())
			Expect(b.Rate).To(BeEmpty())
			Expect(b.Loss).To(Equal("14%"))
		})

		DescribeTable("resolves direction relative port types",
			func(text string, dir policyrules.TrafficDirection, expected policyrules.PortType) {
				b, err := policyrules.ParseBranch(text, dir)
				Expect(err).ToNot(HaveOccurred())
				Expect(b.PortType).To(Equal(expected))
			},
			Entry("lport on upload", "udp:lport:5000:1mbit", policyrules.TrafficDirectionUpload, policyrules.PortTypeSource),
			Entry("lport on download", "udp:lport:5000:1mbit", policyrules.TrafficDirectionDownload, policyrules.PortTypeDestination),
			Entry("rport on upload", "udp:rport:5000:1mbit", policyrules.TrafficDirectionUpload, policyrules.PortTypeDestination),
			Entry("rport on download", "udp:rport:5000:1mbit", policyrules.TrafficDirectionDownload, policyrules.PortTypeSource),
			Entry("sport is kept", "tcp:sport:5000:1mbit", policyrules.TrafficDirectionDownload, policyrules.PortTypeSource),
			Entry("dport is kept", "tcp:dport:5000:1mbit", policyrules.TrafficDirectionUpload, policyrules.PortTypeDestination),
		)

		DescribeTable("fails with parse error",
			func(text string, reason string) {
				_, err := policyrules.ParseBranch(text, policyrules.TrafficDirectionUpload)
				Expect(err).To(HaveOccurred())
				var parseErr *policyrules.ParseError
				Expect(errors.As(err, &parseErr)).To(BeTrue())
				Expect(parseErr.Input).To(Equal(text))
				Expect(parseErr.Reason).To(ContainSubstring(reason))
			},
			Entry("no port type nor rate or loss", "tcp:8000-8080", "Port type not found"),
			Entry("no rate or loss with port type", "tcp:dport:8000-8080", "Either RATE, JITTER or both must be present"),
			Entry("all without rate or loss", "udp:all", "Either RATE, JITTER or both must be present"),
			Entry("missing port type", "tcp:8000-8080:512kbit", "Port type not found"),
			Entry("unknown protocol", "icmp:dport:80:1mbit", "Invalid upload/download argument"),
			Entry("unknown port type", "tcp:xport:80:1mbit", "Invalid upload/download argument"),
			Entry("rate without units", "tcp:dport:80:512", "Invalid upload/download argument"),
			Entry("loss without percent", "tcp:dport:80:512kbit:5", "Invalid upload/download argument"),
			Entry("upper case", "TCP:dport:80:512kbit", "Invalid upload/download argument"),
			Entry("empty", "", "Invalid upload/download argument"),
			Entry("port out of range", "tcp:dport:70000:1mbit", "out of range"),
			Entry("reversed range", "tcp:dport:9000-8000:1mbit", "greater than"),
		)

		It("fails on invalid direction", func() {
			_, err := policyrules.ParseBranch("tcp:all:1mbit", policyrules.TrafficDirection("sideways"))
			Expect(errors.Is(err, policyrules.ErrInvalidTrafficDirection)).To(BeTrue())
		})
	})

	Context("ParseBranchList", func() {
		It("parses all branches in order", func() {
			branches, err := policyrules.ParseBranchList(
				[]string{"tcp:dport:9700:2mbit", "udp:all:1gbit"}, policyrules.TrafficDirectionUpload)
			Expect(err).ToNot(HaveOccurred())
			Expect(branches).To(HaveLen(2))
			Expect(branches[0].Range).To(Equal("9700"))
			Expect(branches[1].IsAll()).To(BeTrue())
		})

		It("fails if any branch is malformed", func() {
			_, err := policyrules.ParseBranchList(
				[]string{"tcp:dport:9700:2mbit", "udp:9700"}, policyrules.TrafficDirectionUpload)
			Expect(err).To(HaveOccurred())
		})

		It("returns empty list for no branches", func() {
			branches, err := policyrules.ParseBranchList(nil, policyrules.TrafficDirectionUpload)
			Expect(err).ToNot(HaveOccurred())
			Expect(branches).To(BeEmpty())
		})
	})

	Context("PortRange", func() {
		It("returns boundaries of a range", func() {
			start, end, err := policyrules.Branch{Range: "9800-9820"}.PortRange()
			Expect(err).ToNot(HaveOccurred())
			Expect(start).To(Equal(uint16(9800)))
			Expect(end).To(Equal(uint16(9820)))
		})

		It("returns same boundaries for a single port", func() {
			b := policyrules.Branch{Range: "9700"}
			start, end, err := b.PortRange()
			Expect(err).ToNot(HaveOccurred())
			Expect(start).To(Equal(end))
			Expect(b.IsSinglePort()).To(BeTrue())
		})

		It("fails for all range", func() {
			_, _, err := policyrules.Branch{Range: policyrules.RangeAll}.PortRange()
			Expect(err).To(HaveOccurred())
		})
	})
})
