package types

// NewAllocator creates a new Allocator with all counters in their initial state.
// A fresh Allocator should be used for every compilation run.
func NewAllocator() *Allocator {
	return &Allocator{
		minors: make(map[*Discipline]uint32),
		prios:  make(map[Node]uint32),
	}
}

// Allocator hands out tc identifiers: qdisc majors, per qdisc class minors,
// per parent filter priorities and global filter handles.
// Allocator is not safe for concurrent use.
type Allocator struct {
	major  uint32
	handle uint32
	minors map[*Discipline]uint32
	prios  map[Node]uint32
}

// NextMajor returns the next qdisc major number, starting at 1
func (a *Allocator) NextMajor() uint32 {
	a.major++
	return a.major
}

// NextMinor returns the next class minor number under qdisc d, starting at 1
func (a *Allocator) NextMinor(d *Discipline) uint32 {
	a.minors[d]++
	return a.minors[d]
}

// NextFilterHandle returns the next filter handle, starting at 1
func (a *Allocator) NextFilterHandle() uint32 {
	a.handle++
	return a.handle
}

// NextPriority returns the next filter priority for filters attached to parent, starting at 1
func (a *Allocator) NextPriority(parent Node) uint32 {
	a.prios[parent]++
	return a.prios[parent]
}
