package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// DisciplineClass represents a tc class attached under a qdisc
type DisciplineClass struct {
	// Name is the class kind e.g htb
	Name string
	// Parent is the owning qdisc
	Parent *Discipline
	// Params are the class parameters e.g rate
	Params Params
	Major  uint32
	Minor  uint32
}

// ClassID returns the class id e.g "1:2"
func (c *DisciplineClass) ClassID() string {
	return fmt.Sprintf("%d:%d", c.Major, c.Minor)
}

// NodeID implements Node interface
func (c *DisciplineClass) NodeID() string {
	return c.ClassID()
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (c *DisciplineClass) GenCmdLineArgs() []string {
	return genSubCommand(c.Name, c.Params)
}

// NewDisciplineClassBuilder returns a new DisciplineClassBuilder
func NewDisciplineClassBuilder(name string) *DisciplineClassBuilder {
	return &DisciplineClassBuilder{name: name}
}

// DisciplineClassBuilder is a DisciplineClass builder
type DisciplineClassBuilder struct {
	name   string
	parent *Discipline
	params Params
}

// WithParent adds Parent to DisciplineClassBuilder
func (cb *DisciplineClassBuilder) WithParent(p *Discipline) *DisciplineClassBuilder {
	cb.parent = p
	return cb
}

// WithParams adds Params to DisciplineClassBuilder
func (cb *DisciplineClassBuilder) WithParams(p Params) *DisciplineClassBuilder {
	cb.params = p
	return cb
}

// Build builds and returns a new DisciplineClass with a class id allocated under its parent qdisc
func (cb *DisciplineClassBuilder) Build(alloc *Allocator) (*DisciplineClass, error) {
	if cb.parent == nil {
		return nil, errors.Wrapf(ErrContractViolation, "class %q requires a parent qdisc", cb.name)
	}
	return &DisciplineClass{
		Name:   cb.name,
		Parent: cb.parent,
		Params: cb.params,
		Major:  cb.parent.Major,
		Minor:  alloc.NextMinor(cb.parent),
	}, nil
}
