package policyrules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var branchRegex = regexp.MustCompile(
	`^(tcp|udp)(:sport|:dport|:lport|:rport)?:(all|\d{1,5}-\d{1,5}|\d{1,5})(:\d+[a-z]{3,4})?(:\d{1,3}%)?$`)

// ErrInvalidTrafficDirection is returned when a traffic direction other than upload or download is used
var ErrInvalidTrafficDirection = errors.New("direction must be one of upload, download")

// ParseError is returned when a branch or a list of branches is malformed
type ParseError struct {
	Input  string
	Reason string
}

// Error implements error interface
func (e *ParseError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Input)
}

// NewParseError returns a new ParseError
func NewParseError(input, reason string) *ParseError {
	return &ParseError{Input: input, Reason: reason}
}

// ParseBranch parses text of the form protocol[:porttype]:range[:rate][:loss] into a Branch.
// lport and rport port types are resolved according to dir.
func ParseBranch(text string, dir TrafficDirection) (*Branch, error) {
	if dir != TrafficDirectionUpload && dir != TrafficDirectionDownload {
		return nil, errors.Wrapf(ErrInvalidTrafficDirection, "got %q", dir)
	}

	m := branchRegex.FindStringSubmatch(text)
	if m == nil {
		return nil, NewParseError(text, "Invalid upload/download argument")
	}
	protocol, portType, portRange := m[1], strings.TrimPrefix(m[2], ":"), m[3]
	rate, loss := strings.TrimPrefix(m[4], ":"), strings.TrimPrefix(m[5], ":")

	if portType == "" && portRange != RangeAll {
		return nil, NewParseError(text, "Port type not found (may be omitted only if range is 'all')")
	}
	if rate == "" && loss == "" {
		return nil, NewParseError(text, "Either RATE, JITTER or both must be present")
	}
	if err := validateRange(portRange); err != nil {
		return nil, NewParseError(text, err.Error())
	}

	return &Branch{
		Protocol: Protocol(protocol),
		PortType: resolvePortType(PortType(portType), dir),
		Range:    portRange,
		Rate:     rate,
		Loss:     loss,
	}, nil
}

// ParseBranchList parses all texts, failing on the first malformed branch
func ParseBranchList(texts []string, dir TrafficDirection) ([]Branch, error) {
	branches := make([]Branch, 0, len(texts))
	for _, t := range texts {
		b, err := ParseBranch(t, dir)
		if err != nil {
			return nil, err
		}
		branches = append(branches, *b)
	}
	return branches, nil
}

// resolvePortType resolves direction relative port types to sport / dport
func resolvePortType(pt PortType, dir TrafficDirection) PortType {
	upload := dir == TrafficDirectionUpload
	switch pt {
	case PortTypeLocal:
		if upload {
			return PortTypeSource
		}
		return PortTypeDestination
	case PortTypeRemote:
		if upload {
			return PortTypeDestination
		}
		return PortTypeSource
	default:
		return pt
	}
}

// PortRange returns the inclusive port range of branch. for a single port start equals end.
func (b Branch) PortRange() (start, end uint16, err error) {
	if b.IsAll() {
		return 0, 0, fmt.Errorf("range %q has no port boundaries", b.Range)
	}
	first, last, found := strings.Cut(b.Range, "-")
	if !found {
		last = first
	}
	s, err := strconv.ParseUint(first, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("port %s out of range", first)
	}
	e, err := strconv.ParseUint(last, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("port %s out of range", last)
	}
	if s > e {
		return 0, 0, fmt.Errorf("range start %d is greater than range end %d", s, e)
	}
	return uint16(s), uint16(e), nil
}

func validateRange(portRange string) error {
	if portRange == RangeAll {
		return nil
	}
	b := Branch{Range: portRange}
	_, _, err := b.PortRange()
	return err
}
