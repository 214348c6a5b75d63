package testutil

import (
	"k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"
)

// FakeExecHelper is a wrapper around testingexec.FakeExec which provides some
// utility functionality to aid in testing
type FakeExecHelper struct {
	testingexec.FakeExec
}

// NewFakeExecHelper returns a new FakeExecHelper
func NewFakeExecHelper() *FakeExecHelper {
	return &FakeExecHelper{testingexec.FakeExec{}}
}

// AddFakeCmd adds a new testingexec.FakeCommandAction to FakeExecHelper.CommandScript
// that creates a new *testingexec.FakeCmd with the called arguments to Command().
// the returned command will run the provided actions in order.
func (feh *FakeExecHelper) AddFakeCmd(actions ...testingexec.FakeAction) *testingexec.FakeCmd {
	fakeCmd := &testingexec.FakeCmd{RunScript: actions}
	var action testingexec.FakeCommandAction = func(cmd string, args ...string) exec.Cmd {
		return testingexec.InitFakeCmd(fakeCmd, cmd, args...)
	}
	feh.CommandScript = append(feh.CommandScript, action)
	return fakeCmd
}

// AddSucceedingCmds adds n commands which succeed with no output
func (feh *FakeExecHelper) AddSucceedingCmds(n int) []*testingexec.FakeCmd {
	cmds := make([]*testingexec.FakeCmd, 0, n)
	for i := 0; i < n; i++ {
		cmds = append(cmds, feh.AddFakeCmd(NewFakeAction(nil, nil, nil)))
	}
	return cmds
}

// NewFakeAction returns a testingexec.FakeAction returning the provided output and error
func NewFakeAction(stdout, stderr []byte, err error) testingexec.FakeAction {
	return func() ([]byte, []byte, error) {
		return stdout, stderr, err
	}
}

// NewExitAction returns a testingexec.FakeAction which exits with rc and writes stderr
func NewExitAction(rc int, stderr string) testingexec.FakeAction {
	return NewFakeAction(nil, []byte(stderr), testingexec.FakeExitError{Status: rc})
}
