package types

import (
	"fmt"
)

const (
	QDiscHTBType   QDiscType = "htb"
	QDiscNetemType QDiscType = "netem"
)

// QDiscType is the type (kernel module name) of qdisc
type QDiscType string

// Discipline represents a tc qdisc. its major is allocated once on creation and its minor is always 0.
type Discipline struct {
	// Name is the qdisc kind e.g htb
	Name string
	// Parent is the class this qdisc is attached to, nil for a root qdisc
	Parent *DisciplineClass
	// Params are the qdisc parameters passed to the kernel module
	Params Params
	// Major is the qdisc major number
	Major uint32
}

// Minor returns the qdisc minor number which is always 0
func (d *Discipline) Minor() uint32 {
	return 0
}

// Handle returns the qdisc handle e.g "1:0"
func (d *Discipline) Handle() string {
	return fmt.Sprintf("%d:%d", d.Major, d.Minor())
}

// NodeID implements Node interface
func (d *Discipline) NodeID() string {
	return d.Handle()
}

// IsRoot returns true if qdisc has no parent class
func (d *Discipline) IsRoot() bool {
	return d.Parent == nil
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (d *Discipline) GenCmdLineArgs() []string {
	return genSubCommand(d.Name, d.Params)
}

// Builders

// NewDisciplineBuilder returns a new DisciplineBuilder
func NewDisciplineBuilder(name string) *DisciplineBuilder {
	return &DisciplineBuilder{name: name}
}

// DisciplineBuilder is a Discipline builder
type DisciplineBuilder struct {
	name   string
	parent *DisciplineClass
	params Params
}

// WithParent adds Parent to DisciplineBuilder
func (db *DisciplineBuilder) WithParent(p *DisciplineClass) *DisciplineBuilder {
	db.parent = p
	return db
}

// WithParams adds Params to DisciplineBuilder
func (db *DisciplineBuilder) WithParams(p Params) *DisciplineBuilder {
	db.params = p
	return db
}

// Build builds and returns a new Discipline, allocating its major from alloc.
// Note: calling Build() multiple times will allocate a new major on each call,
// Params are not deep copied.
func (db *DisciplineBuilder) Build(alloc *Allocator) *Discipline {
	return &Discipline{
		Name:   db.name,
		Parent: db.parent,
		Params: db.params,
		Major:  alloc.NextMajor(),
	}
}
