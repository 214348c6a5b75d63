package tc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// NewActuatorPrinterImpl returns a new ActuatorPrinterImpl instance
func NewActuatorPrinterImpl() *ActuatorPrinterImpl {
	return &ActuatorPrinterImpl{}
}

// ActuatorPrinterImpl implements Actuator interface and prints chain commands to console without
// any effect on the system
type ActuatorPrinterImpl struct{}

// Validate implements Actuator interface
func (a ActuatorPrinterImpl) Validate(opts TargetOptions) error {
	if opts.Filename != "" {
		return errors.Wrap(ErrUnsupportedOption, "filename")
	}
	return nil
}

// Actuate implements Actuator interface
func (a ActuatorPrinterImpl) Actuate(_ context.Context, chain Chain) error {
	out := chain.Options().Output()
	for _, cmd := range chain.Commands() {
		if _, err := fmt.Fprintln(out, cmd); err != nil {
			return err
		}
	}
	return nil
}
