package types

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrContractViolation is returned when a node is constructed with arguments that no caller
// should ever pass (e.g a class without a parent qdisc). It indicates misuse, not bad input.
var ErrContractViolation = errors.New("contract violation")

// CmdLineGenerator is an interface for generating tc command line args for a tc object
type CmdLineGenerator interface {
	// GenCmdLineArgs returns tc command line arguments which can be incorporated
	// when invoking tc command via shell
	GenCmdLineArgs() []string
}

// Node is a tc hierarchy element which can be referenced by other elements
type Node interface {
	// NodeID returns the id by which tc references this node, e.g "1:0" or "1:2"
	NodeID() string
}

// Params holds the parameters of a tc node sub-command, e.g rate=256kbit.
// nil values are omitted when rendered.
type Params map[string]interface{}

// sortedArgs returns params as key, value pairs sorted by key
func (p Params) sortedArgs() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		v := p[k]
		if v == nil {
			continue
		}
		args = append(args, k, fmt.Sprint(v))
	}
	return args
}

// genSubCommand renders a node as a tc sub-command: name followed by its sorted params
func genSubCommand(name string, params Params) []string {
	return append([]string{name}, params.sortedArgs()...)
}
