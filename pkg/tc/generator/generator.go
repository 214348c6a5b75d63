package generator

import (
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/policyrules"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
)

// Generator is an interface to generate a tc hierarchy on a Target from a list of Branches
type Generator interface {
	// Generate adds to target the commands building the hierarchy that corresponds to the provided branches
	Generate(target tc.Target, branches []policyrules.Branch) error
}
