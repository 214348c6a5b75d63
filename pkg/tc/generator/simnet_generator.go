package generator

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/policyrules"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
	tctypes "github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

// AllRates holds the rate of the catch-all class of each protocol, empty if not declared
type AllRates struct {
	TCP string
	UDP string
}

// rateOrDefault returns rate if set, DefaultRate otherwise
func rateOrDefault(rate string) string {
	if rate == "" {
		return DefaultRate
	}
	return rate
}

// DetermineAllRates scans branches for the "all" range. each protocol may have at most one such branch.
func DetermineAllRates(branches []policyrules.Branch) (AllRates, error) {
	var rates AllRates
	seen := make(map[policyrules.Protocol]bool)

	for _, b := range branches {
		if !b.IsAll() {
			continue
		}
		if seen[b.Protocol] {
			return AllRates{}, policyrules.NewParseError("",
				fmt.Sprintf("More than one 'all' range detected for the same protocol (%s).", b.Protocol))
		}
		seen[b.Protocol] = true

		switch b.Protocol {
		case policyrules.ProtocolTCP:
			rates.TCP = b.Rate
		case policyrules.ProtocolUDP:
			rates.UDP = b.Rate
		}
	}
	return rates, nil
}

// BuildBasics adds the root htb qdisc splitting traffic by protocol into one class per protocol, and returns
// the htb qdiscs attached under the tcp and udp classes.
func BuildBasics(target tc.Target, rates AllRates) (tcpHook, udpHook *tctypes.Discipline, err error) {
	root := target.SetRootDiscipline(string(tctypes.QDiscHTBType), nil)

	tcpClass, err := target.AddClass(string(tctypes.QDiscHTBType), root,
		tctypes.Params{"rate": rateOrDefault(rates.TCP)})
	if err != nil {
		return nil, nil, err
	}
	udpClass, err := target.AddClass(string(tctypes.QDiscHTBType), root,
		tctypes.Params{"rate": rateOrDefault(rates.UDP)})
	if err != nil {
		return nil, nil, err
	}

	if _, err = target.AddFilter(string(tctypes.FilterKindU32), root,
		protocolCondition(policyrules.ProtocolTCP), tcpClass, 0, 0); err != nil {
		return nil, nil, err
	}
	if _, err = target.AddFilter(string(tctypes.FilterKindU32), root,
		protocolCondition(policyrules.ProtocolUDP), udpClass, 0, 0); err != nil {
		return nil, nil, err
	}

	tcpHook = target.AddDiscipline(string(tctypes.QDiscHTBType), tcpClass, nil)
	udpHook = target.AddDiscipline(string(tctypes.QDiscHTBType), udpClass, nil)
	return tcpHook, udpHook, nil
}

// BuildTree adds for every branch which is not an "all" branch an htb class under its protocol hook,
// a filter directing the branch ports to the class and a netem qdisc under the class if loss is set.
func BuildTree(target tc.Target, tcpHook, udpHook *tctypes.Discipline, branches []policyrules.Branch) error {
	if tcpHook == nil || udpHook == nil {
		return errors.Wrap(tctypes.ErrContractViolation, "protocol hooks must not be nil")
	}

	for _, b := range branches {
		if b.IsAll() {
			continue
		}

		var hook *tctypes.Discipline
		switch b.Protocol {
		case policyrules.ProtocolTCP:
			hook = tcpHook
		case policyrules.ProtocolUDP:
			hook = udpHook
		default:
			return errors.Wrapf(tctypes.ErrContractViolation, "unexpected protocol %q", b.Protocol)
		}

		class, err := target.AddClass(string(tctypes.QDiscHTBType), hook, tctypes.Params{"rate": rateOrDefault(b.Rate)})
		if err != nil {
			return err
		}

		kind, cond, err := portCondition(b)
		if err != nil {
			return err
		}
		if _, err := target.AddFilter(string(kind), hook, cond, class, 0, 0); err != nil {
			return err
		}

		if b.Loss != "" {
			target.AddDiscipline(string(tctypes.QDiscNetemType), class,
				tctypes.Params{"limit": NetemLimit, "loss": b.Loss})
		}
	}
	return nil
}

// protocolCondition returns u32 condition matching IP protocol number
func protocolCondition(p policyrules.Protocol) string {
	return fmt.Sprintf("ip protocol %d 0xff", protocolNumbers[string(p)])
}

// portCondition returns the filter kind and condition matching branch ports.
// a single port is matched exactly with u32, a range with basic cmp ematches which support only strict
// inequalities hence the bounds are widened by one.
func portCondition(b policyrules.Branch) (tctypes.FilterKind, string, error) {
	var offset int
	switch b.PortType {
	case policyrules.PortTypeSource:
		offset = sportOffset
	case policyrules.PortTypeDestination:
		offset = dportOffset
	default:
		return "", "", errors.Wrapf(tctypes.ErrContractViolation, "unresolved port type %q", b.PortType)
	}

	start, end, err := b.PortRange()
	if err != nil {
		return "", "", err
	}
	if b.IsSinglePort() {
		return tctypes.FilterKindU32, fmt.Sprintf("ip %s %d 0xffff", b.PortType, start), nil
	}

	// a bound at the edge of the u16 space has no strict inequality, it is left out instead
	var cmps []string
	if start > 0 {
		cmps = append(cmps, fmt.Sprintf("cmp(u16 at %d layer transport gt %d)", offset, start-1))
	}
	if end < math.MaxUint16 {
		cmps = append(cmps, fmt.Sprintf("cmp(u16 at %d layer transport lt %d)", offset, int(end)+1))
	}
	if len(cmps) == 0 {
		return tctypes.FilterKindU32, fmt.Sprintf("ip %s 0 0x0000", b.PortType), nil
	}
	return tctypes.FilterKindBasic, `"` + strings.Join(cmps, " and ") + `"`, nil
}

// NewSimnetGenerator creates a new SimnetGenerator instance
func NewSimnetGenerator(log klog.Logger) *SimnetGenerator {
	return &SimnetGenerator{log: log}
}

// SimnetGenerator is the Generator building a two level htb hierarchy: traffic is first split by
// protocol, then shaped per branch with an optional loss simulation.
type SimnetGenerator struct {
	log klog.Logger
}

// Generate implements Generator interface
func (g *SimnetGenerator) Generate(target tc.Target, branches []policyrules.Branch) error {
	rates, err := DetermineAllRates(branches)
	if err != nil {
		return err
	}
	g.log.V(4).Info("generating hierarchy", "device", target.Device(), "direction", target.Direction(),
		"branches", len(branches), "tcpAllRate", rates.TCP, "udpAllRate", rates.UDP)

	tcpHook, udpHook, err := BuildBasics(target, rates)
	if err != nil {
		return errors.Wrap(err, "failed to build protocol hooks")
	}
	return BuildTree(target, tcpHook, udpHook, branches)
}
