package tc

import (
	"context"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/driver/cmdline"
)

// CommandRunner defines an interface to run tc command lines on the host
type CommandRunner interface {
	// Run executes cmdline. a non-zero exit code is returned as *cmdline.CommandFailed unless ignoreErrors is set.
	Run(ctx context.Context, cmdline string, ignoreErrors bool) (*cmdline.Result, error)
}
