package types

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

const (
	FilterKindU32   FilterKind = "u32"
	FilterKindBasic FilterKind = "basic"

	FilterProtocolIPv4 FilterProtocol = "ip"
)

// FilterProtocol is the type of filter protocol
type FilterProtocol string

// FilterKind is the type of filter (match style)
type FilterKind string

// Filter represents a tc classifier directing matching packets to Flow
type Filter struct {
	// Name is the filter kind e.g u32
	Name string
	// Parent is the qdisc or class the filter is attached to
	Parent Node
	// Condition is the match expression e.g "ip dport 80 0xffff"
	Condition string
	// Flow is the node receiving matched packets
	Flow     Node
	Priority uint32
	Handle   uint32
}

// FlowID returns the id of the node receiving matched packets
func (f *Filter) FlowID() string {
	return f.Flow.NodeID()
}

// HandleString returns the filter handle in hex notation e.g 0x1a
func (f *Filter) HandleString() string {
	return fmt.Sprintf("0x%x", f.Handle)
}

// NodeID implements Node interface
func (f *Filter) NodeID() string {
	return f.HandleString()
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (f *Filter) GenCmdLineArgs() []string {
	return []string{f.Name, "match", f.Condition, "flowid", f.FlowID()}
}

// NewFilterBuilder returns a new FilterBuilder
func NewFilterBuilder(name string) *FilterBuilder {
	return &FilterBuilder{name: name}
}

// FilterBuilder is a Filter builder
type FilterBuilder struct {
	name      string
	parent    Node
	condition string
	flow      Node
	priority  *uint32
	handle    *uint32
}

// WithParent adds Parent to FilterBuilder
func (fb *FilterBuilder) WithParent(p Node) *FilterBuilder {
	fb.parent = p
	return fb
}

// WithCondition adds match Condition to FilterBuilder
func (fb *FilterBuilder) WithCondition(cond string) *FilterBuilder {
	fb.condition = cond
	return fb
}

// WithFlow adds Flow target to FilterBuilder
func (fb *FilterBuilder) WithFlow(f Node) *FilterBuilder {
	fb.flow = f
	return fb
}

// WithPriority adds Priority to FilterBuilder
func (fb *FilterBuilder) WithPriority(p uint32) *FilterBuilder {
	fb.priority = &p
	return fb
}

// WithHandle adds Handle to FilterBuilder
func (fb *FilterBuilder) WithHandle(h uint32) *FilterBuilder {
	fb.handle = &h
	return fb
}

// Build builds and returns a new Filter. Priority and Handle are allocated from alloc unless
// explicitly provided.
func (fb *FilterBuilder) Build(alloc *Allocator) (*Filter, error) {
	if isNilNode(fb.parent) {
		return nil, errors.Wrapf(ErrContractViolation, "filter %q requires a parent", fb.name)
	}
	if isNilNode(fb.flow) || fb.flow.NodeID() == "" {
		return nil, errors.Wrapf(ErrContractViolation, "filter %q requires a flow target with a node id", fb.name)
	}

	f := &Filter{
		Name:      fb.name,
		Parent:    fb.parent,
		Condition: fb.condition,
		Flow:      fb.flow,
	}
	if fb.priority != nil && *fb.priority != 0 {
		f.Priority = *fb.priority
	} else {
		f.Priority = alloc.NextPriority(fb.parent)
	}
	if fb.handle != nil && *fb.handle != 0 {
		f.Handle = *fb.handle
	} else {
		f.Handle = alloc.NextFilterHandle()
	}
	return f, nil
}

// isNilNode returns true for a nil interface as well as a typed nil pointer
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
