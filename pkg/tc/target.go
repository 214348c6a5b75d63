package tc

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

const (
	DirectionEgress  Direction = "egress"
	DirectionIngress Direction = "ingress"
)

var (
	// ErrUnsupportedOption is returned by Configure when an option is not recognized by the target's actuator
	ErrUnsupportedOption = errors.New("unsupported target option")
	// ErrAlreadyInstalled is returned when Marshal is called more than once on the same target
	ErrAlreadyInstalled = errors.New("target already installed")
)

// Direction is the traffic direction a Target builds a chain for
type Direction string

// Validate returns an error if d is not one of DirectionEgress, DirectionIngress
func (d Direction) Validate() error {
	if d != DirectionEgress && d != DirectionIngress {
		return errors.Wrapf(types.ErrContractViolation, "direction must be one of %q, %q, got %q",
			DirectionEgress, DirectionIngress, d)
	}
	return nil
}

// chainName returns the tc hook name for the direction
func (d Direction) chainName() string {
	if d == DirectionIngress {
		return "ingress"
	}
	return "root"
}

// TargetOptions holds Target configuration
type TargetOptions struct {
	// Verbose echoes commands to Writer
	Verbose bool
	// Filename is the output file, only recognized by file actuator
	Filename string
	// Writer is the console output, os.Stdout if nil
	Writer io.Writer
}

// Output returns the configured console writer
func (o TargetOptions) Output() io.Writer {
	if o.Writer == nil {
		return os.Stdout
	}
	return o.Writer
}

// Chain is a read only view of a Target's accumulated command log
type Chain interface {
	// Device returns the network device name
	Device() string
	// Direction returns the traffic direction
	Direction() Direction
	// Commands returns the accumulated tc commands in order
	Commands() []string
	// Options returns the Target configuration
	Options() TargetOptions
}

// Target builds the tc chain of a single (device, direction) pair
type Target interface {
	Chain

	// Configure sets Target options, fails with ErrUnsupportedOption if an option is not
	// supported by the Target's actuator
	Configure(opts TargetOptions) error
	// Clear adds a command deleting the whole chain
	Clear()
	// SetRootDiscipline adds the root qdisc of the chain
	SetRootDiscipline(name string, params types.Params) *types.Discipline
	// AddDiscipline adds qdisc under parent class, or a root qdisc if parent is nil
	AddDiscipline(name string, parent *types.DisciplineClass, params types.Params) *types.Discipline
	// AddClass adds a class under parent qdisc
	AddClass(name string, parent *types.Discipline, params types.Params) (*types.DisciplineClass, error)
	// AddFilter adds a filter directing packets matching cond to flow. zero prio or handle
	// are allocated automatically.
	AddFilter(name string, parent types.Node, cond string, flow types.Node, prio, handle uint32) (*types.Filter, error)
	// SetRedirect adds the commands mirroring primary device's ingress traffic to shadow device egress
	SetRedirect(primary, shadow string)
	// Marshal installs the accumulated chain via the Target's actuator. it may be called only once.
	Marshal(ctx context.Context) error
}

// NewTargetImpl creates a new TargetImpl
func NewTargetImpl(device string, direction Direction, alloc *types.Allocator, actuator Actuator,
	log klog.Logger) (*TargetImpl, error) {
	if err := direction.Validate(); err != nil {
		return nil, err
	}
	if alloc == nil || actuator == nil {
		return nil, errors.Wrap(types.ErrContractViolation, "target requires an allocator and an actuator")
	}
	t := &TargetImpl{
		device:    device,
		direction: direction,
		alloc:     alloc,
		actuator:  actuator,
		log:       log.WithValues("device", device, "direction", direction),
		commands:  make([]string, 0),
	}
	if err := t.Configure(TargetOptions{}); err != nil {
		return nil, err
	}
	return t, nil
}

// TargetImpl implements Target, rendering tc command lines
type TargetImpl struct {
	device    string
	direction Direction
	alloc     *types.Allocator
	actuator  Actuator
	log       klog.Logger

	opts      TargetOptions
	commands  []string
	installed bool
}

// Device implements Chain interface
func (t *TargetImpl) Device() string {
	return t.device
}

// Direction implements Chain interface
func (t *TargetImpl) Direction() Direction {
	return t.direction
}

// Commands implements Chain interface
func (t *TargetImpl) Commands() []string {
	return append([]string(nil), t.commands...)
}

// Options implements Chain interface
func (t *TargetImpl) Options() TargetOptions {
	return t.opts
}

// Configure implements Target interface
func (t *TargetImpl) Configure(opts TargetOptions) error {
	if err := t.actuator.Validate(opts); err != nil {
		return err
	}
	t.opts = opts
	return nil
}

func (t *TargetImpl) appendCmd(format string, a ...interface{}) {
	cmd := fmt.Sprintf(format, a...)
	t.log.V(10).Info("new command", "cmd", cmd)
	t.commands = append(t.commands, cmd)
}

// Clear implements Target interface
func (t *TargetImpl) Clear() {
	t.appendCmd("tc qdisc del dev %s %s", t.device, t.direction.chainName())
}

// SetRootDiscipline implements Target interface
func (t *TargetImpl) SetRootDiscipline(name string, params types.Params) *types.Discipline {
	return t.AddDiscipline(name, nil, params)
}

// AddDiscipline implements Target interface
func (t *TargetImpl) AddDiscipline(name string, parent *types.DisciplineClass, params types.Params) *types.Discipline {
	qdisc := types.NewDisciplineBuilder(name).WithParent(parent).WithParams(params).Build(t.alloc)
	attach := t.direction.chainName()
	if parent != nil {
		attach = "parent " + parent.ClassID()
	}
	t.appendCmd("tc qdisc add dev %s %s handle %s %s",
		t.device, attach, qdisc.Handle(), strings.Join(qdisc.GenCmdLineArgs(), " "))
	return qdisc
}

// AddClass implements Target interface
func (t *TargetImpl) AddClass(name string, parent *types.Discipline, params types.Params) (*types.DisciplineClass, error) {
	class, err := types.NewDisciplineClassBuilder(name).WithParent(parent).WithParams(params).Build(t.alloc)
	if err != nil {
		return nil, err
	}
	t.appendCmd("tc class add dev %s parent %s classid %s %s",
		t.device, parent.Handle(), class.ClassID(), strings.Join(class.GenCmdLineArgs(), " "))
	return class, nil
}

// AddFilter implements Target interface
func (t *TargetImpl) AddFilter(name string, parent types.Node, cond string, flow types.Node,
	prio, handle uint32) (*types.Filter, error) {
	filter, err := types.NewFilterBuilder(name).
		WithParent(parent).
		WithCondition(cond).
		WithFlow(flow).
		WithPriority(prio).
		WithHandle(handle).
		Build(t.alloc)
	if err != nil {
		return nil, err
	}
	t.appendCmd("tc filter add dev %s parent %s protocol %s prio %d %s",
		t.device, parent.NodeID(), types.FilterProtocolIPv4, filter.Priority, strings.Join(filter.GenCmdLineArgs(), " "))
	return filter, nil
}

// SetRedirect implements Target interface
func (t *TargetImpl) SetRedirect(primary, shadow string) {
	t.appendCmd("tc qdisc add dev %s handle ffff:0 ingress", primary)
	t.appendCmd("tc filter add dev %s parent ffff:0 protocol ip u32 match u32 0 0 action mirred egress redirect dev %s",
		primary, shadow)
}

// Marshal implements Target interface
func (t *TargetImpl) Marshal(ctx context.Context) error {
	if t.installed {
		return ErrAlreadyInstalled
	}
	t.installed = true
	t.log.V(4).Info("installing chain", "commands", len(t.commands))
	return t.actuator.Actuate(ctx, t)
}
