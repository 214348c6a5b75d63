package tc

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NewActuatorExecImpl creates a new ActuatorExecImpl
func NewActuatorExecImpl(runner CommandRunner, log klog.Logger) *ActuatorExecImpl {
	return &ActuatorExecImpl{runner: runner, log: log}
}

// ActuatorExecImpl is an implementation of Actuator interface which executes chain commands
// using the provided CommandRunner
type ActuatorExecImpl struct {
	runner CommandRunner
	log    klog.Logger
}

// Validate implements Actuator interface
func (a *ActuatorExecImpl) Validate(opts TargetOptions) error {
	if opts.Filename != "" {
		return errors.Wrap(ErrUnsupportedOption, "filename")
	}
	return nil
}

// Actuate implements Actuator interface. commands are executed in order, stopping at the first failure.
// Note: the first command is expected to be the chain delete command, which fails
// on a device with no qdisc configured. its failure is ignored.
func (a *ActuatorExecImpl) Actuate(ctx context.Context, chain Chain) error {
	opts := chain.Options()
	for idx, cmd := range chain.Commands() {
		ignoreErrs := idx == 0 && strings.Contains(cmd, " del")
		if _, err := a.runner.Run(ctx, cmd, ignoreErrs); err != nil {
			return errors.Wrapf(err, "failed to install %s chain of %s", chain.Direction(), chain.Device())
		}
		if opts.Verbose {
			_, _ = fmt.Fprintln(opts.Output(), " #", cmd)
		}
	}
	a.log.V(4).Info("chain installed", "device", chain.Device(), "direction", chain.Direction())
	return nil
}
