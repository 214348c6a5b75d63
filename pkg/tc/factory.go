package tc

import (
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

const (
	ActuatorExec  = "exec"
	ActuatorFile  = "file"
	ActuatorPrint = "print"
)

// ActuatorConfig holds the dependencies an ActuatorFactory may use
type ActuatorConfig struct {
	// Runner executes commands, used by exec actuator
	Runner CommandRunner
	// Dir is the base directory of output files, used by file actuator
	Dir string
	Log klog.Logger
}

// ActuatorFactory creates an Actuator
type ActuatorFactory func(cfg ActuatorConfig) (Actuator, error)

// TargetFactory creates a Target for device and direction
type TargetFactory func(device string, direction Direction) (Target, error)

var actuatorFactories = map[string]ActuatorFactory{
	ActuatorExec: func(cfg ActuatorConfig) (Actuator, error) {
		if cfg.Runner == nil {
			return nil, errors.New("exec actuator requires a command runner")
		}
		return NewActuatorExecImpl(cfg.Runner, cfg.Log), nil
	},
	ActuatorFile: func(cfg ActuatorConfig) (Actuator, error) {
		return NewActuatorFileWriterImpl(cfg.Dir, cfg.Log), nil
	},
	ActuatorPrint: func(_ ActuatorConfig) (Actuator, error) {
		return NewActuatorPrinterImpl(), nil
	},
}

// RegisterActuator registers an ActuatorFactory under name, replacing any factory registered under the same name
func RegisterActuator(name string, factory ActuatorFactory) {
	actuatorFactories[name] = factory
}

// RegisteredActuators returns the sorted names of registered actuators
func RegisteredActuators() []string {
	names := make([]string, 0, len(actuatorFactories))
	for name := range actuatorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTargetFactory returns a TargetFactory creating Targets which share alloc and install
// via the actuator registered under name
func NewTargetFactory(name string, alloc *types.Allocator, cfg ActuatorConfig) (TargetFactory, error) {
	factory, ok := actuatorFactories[name]
	if !ok {
		return nil, errors.Errorf("unknown target %q, expected one of %v", name, RegisteredActuators())
	}
	actuator, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s actuator", name)
	}
	return func(device string, direction Direction) (Target, error) {
		return NewTargetImpl(device, direction, alloc, actuator, cfg.Log)
	}, nil
}
