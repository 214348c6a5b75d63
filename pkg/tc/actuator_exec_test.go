package tc_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	klog "k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/driver/cmdline"
	tcmocks "github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/mocks"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

var _ = Describe("Actuator exec tests", func() {
	var runnerMock *tcmocks.CommandRunner
	var target *tc.TargetImpl
	var out *bytes.Buffer
	var logger = klog.NewKlogr().WithName("actuator-exec-test")
	var ctx = context.Background()

	BeforeEach(func() {
		var err error
		runnerMock = tcmocks.NewCommandRunner(GinkgoT())
		out = &bytes.Buffer{}
		target, err = tc.NewTargetImpl("lo", tc.DirectionEgress, types.NewAllocator(),
			tc.NewActuatorExecImpl(runnerMock, logger), logger)
		Expect(err).ToNot(HaveOccurred())
		Expect(target.Configure(tc.TargetOptions{Writer: out})).To(Succeed())

		target.Clear()
		root := target.SetRootDiscipline("htb", nil)
		_, err = target.AddClass("htb", root, types.Params{"rate": "384kbit"})
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects filename option", func() {
		err := target.Configure(tc.TargetOptions{Filename: "foo.tc"})
		Expect(errors.Is(err, tc.ErrUnsupportedOption)).To(BeTrue())
	})

	It("executes all commands in order ignoring errors of the first delete command only", func() {
		cmds := target.Commands()
		var executed []string
		record := func(args mock.Arguments) { executed = append(executed, args.String(1)) }
		runnerMock.On("Run", mock.Anything, cmds[0], true).Run(record).
			Return(&cmdline.Result{Command: cmds[0], ReturnCode: 2}, nil).Once()
		runnerMock.On("Run", mock.Anything, cmds[1], false).Run(record).
			Return(&cmdline.Result{Command: cmds[1]}, nil).Once()
		runnerMock.On("Run", mock.Anything, cmds[2], false).Run(record).
			Return(&cmdline.Result{Command: cmds[2]}, nil).Once()

		Expect(target.Marshal(ctx)).To(Succeed())
		Expect(executed).To(Equal(cmds))
		Expect(out.String()).To(BeEmpty())
	})

	It("does not ignore errors of a first command which is not a delete command", func() {
		t, err := tc.NewTargetImpl("lo", tc.DirectionEgress, types.NewAllocator(),
			tc.NewActuatorExecImpl(runnerMock, logger), logger)
		Expect(err).ToNot(HaveOccurred())
		t.SetRootDiscipline("htb", nil)
		runnerMock.On("Run", mock.Anything, "tc qdisc add dev lo root handle 1:0 htb", false).
			Return(&cmdline.Result{}, nil).Once()

		Expect(t.Marshal(ctx)).To(Succeed())
	})

	It("echoes executed commands when verbose", func() {
		Expect(target.Configure(tc.TargetOptions{Verbose: true, Writer: out})).To(Succeed())
		runnerMock.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&cmdline.Result{}, nil).Times(3)

		Expect(target.Marshal(ctx)).To(Succeed())
		Expect(out.String()).To(Equal(" # tc qdisc del dev lo root\n" +
			" # tc qdisc add dev lo root handle 1:0 htb\n" +
			" # tc class add dev lo parent 1:0 classid 1:1 htb rate 384kbit\n"))
	})

	It("stops at a failing command and returns a catchable failure", func() {
		cmds := target.Commands()
		failure := &cmdline.CommandFailed{Result: cmdline.Result{Command: cmds[1], Stderr: "boom", ReturnCode: 2}}
		runnerMock.On("Run", mock.Anything, cmds[0], true).Return(&cmdline.Result{}, nil).Once()
		runnerMock.On("Run", mock.Anything, cmds[1], false).Return(&failure.Result, failure).Once()

		err := target.Marshal(ctx)
		Expect(err).To(HaveOccurred())

		var failed *cmdline.CommandFailed
		Expect(errors.As(err, &failed)).To(BeTrue())
		Expect(failed.Command).To(Equal("tc qdisc add dev lo root handle 1:0 htb"))
		Expect(failed.ReturnCode).To(Equal(2))
		runnerMock.AssertNotCalled(GinkgoT(), "Run", mock.Anything, cmds[2], false)
	})

	It("propagates timeout errors", func() {
		runnerMock.On("Run", mock.Anything, mock.Anything, true).
			Return(nil, errors.Wrap(cmdline.ErrTimeout, "tc qdisc del dev lo root")).Once()

		err := target.Marshal(ctx)
		Expect(errors.Is(err, cmdline.ErrTimeout)).To(BeTrue())
	})
})
