package net_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
	klog "k8s.io/klog/v2"

	multinet "github.com/k8snetworkplumbingwg/simnet-tc/pkg/net"
	netmocks "github.com/k8snetworkplumbingwg/simnet-tc/pkg/net/mocks"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/driver/cmdline"
	tcmocks "github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/mocks"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

var _ = Describe("Registry tests", func() {
	var nlMock *netmocks.NetlinkProvider
	var runnerMock *tcmocks.CommandRunner
	var registry *multinet.Registry
	var log = klog.NewKlogr().WithName("registry-test")

	BeforeEach(func() {
		nlMock = netmocks.NewNetlinkProvider(GinkgoT())
		runnerMock = tcmocks.NewCommandRunner(GinkgoT())
		factory, err := tc.NewTargetFactory(tc.ActuatorPrint, types.NewAllocator(), tc.ActuatorConfig{Log: log})
		Expect(err).ToNot(HaveOccurred())
		registry = multinet.NewRegistry(multinet.NewDeviceManager(nlMock, runnerMock, log), factory, log)
	})

	It("wraps an existing device with a target per direction", func() {
		nlMock.On("LinkList").Return(fakeLinks("lo", "eth0"), nil)
		dev, err := registry.GetDevice(context.Background(), "eth0")
		Expect(err).ToNot(HaveOccurred())
		Expect(dev.Name).To(Equal("eth0"))
		Expect(dev.Egress.Device()).To(Equal("eth0"))
		Expect(dev.Egress.Direction()).To(Equal(tc.DirectionEgress))
		Expect(dev.Ingress.Direction()).To(Equal(tc.DirectionIngress))
	})

	It("returns the same device on subsequent calls", func() {
		nlMock.On("LinkList").Return(fakeLinks("lo"), nil).Once()
		first, err := registry.GetDevice(context.Background(), "lo")
		Expect(err).ToNot(HaveOccurred())
		second, err := registry.GetDevice(context.Background(), "lo")
		Expect(err).ToNot(HaveOccurred())
		Expect(second).To(BeIdenticalTo(first))
	})

	It("fails for a missing device of a non loadable module", func() {
		nlMock.On("LinkList").Return(fakeLinks("lo"), nil)
		_, err := registry.GetDevice(context.Background(), "eth3")
		Expect(errors.Is(err, multinet.ErrDeviceNotFound)).To(BeTrue())
	})

	It("loads module and picks maximal existing device for a module name", func() {
		nlMock.On("LinkList").Return(fakeLinks("lo", "ifb0", "ifb1"), nil)
		runnerMock.On("Run", mock.Anything, "modprobe ifb numifbs=0", false).Return(&cmdline.Result{}, nil)
		dev, err := registry.GetDevice(context.Background(), "ifb")
		Expect(err).ToNot(HaveOccurred())
		Expect(dev.Name).To(Equal("ifb1"))
	})

	It("creates a missing numbered device", func() {
		nlMock.On("LinkList").Return(fakeLinks("lo"), nil)
		runnerMock.On("Run", mock.Anything, "modprobe ifb numifbs=0", false).Return(&cmdline.Result{}, nil)
		nlMock.On("LinkAdd", mock.AnythingOfType("*netlink.Ifb")).Return(nil)
		dev, err := registry.GetDevice(context.Background(), "ifb4")
		Expect(err).ToNot(HaveOccurred())
		Expect(dev.Name).To(Equal("ifb4"))
	})

	It("brings device up", func() {
		link := &netlink.Ifb{LinkAttrs: netlink.LinkAttrs{Name: "ifb0"}}
		nlMock.On("LinkList").Return([]netlink.Link{link}, nil)
		nlMock.On("LinkByName", "ifb0").Return(link, nil)
		nlMock.On("LinkSetUp", link).Return(nil)
		dev, err := registry.GetDevice(context.Background(), "ifb0")
		Expect(err).ToNot(HaveOccurred())
		Expect(dev.Up()).To(Succeed())
	})

	Context("Optional", func() {
		It("returns not found for empty name", func() {
			dev, found, err := registry.Optional(context.Background(), "")
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeFalse())
			Expect(dev).To(BeNil())
		})

		It("returns device for a name", func() {
			nlMock.On("LinkList").Return(fakeLinks("lo"), nil)
			dev, found, err := registry.Optional(context.Background(), "lo")
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(dev.Name).To(Equal("lo"))
		})
	})
})
