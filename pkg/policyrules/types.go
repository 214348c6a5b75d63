package policyrules

import (
	"strings"
)

const (
	TrafficDirectionUpload   TrafficDirection = "upload"
	TrafficDirectionDownload TrafficDirection = "download"

	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"

	PortTypeSource      PortType = "sport"
	PortTypeDestination PortType = "dport"
	// PortTypeLocal resolves to PortTypeSource on upload and to PortTypeDestination on download
	PortTypeLocal PortType = "lport"
	// PortTypeRemote resolves to PortTypeDestination on upload and to PortTypeSource on download
	PortTypeRemote PortType = "rport"

	// RangeAll is the port range matching all traffic of a protocol
	RangeAll = "all"
)

// TrafficDirection is the direction a branch is compiled for, either upload (egress) or download (ingress)
type TrafficDirection string

// Protocol is the transport protocol of a branch
type Protocol string

// PortType selects which port of a packet a branch matches
type PortType string

// Protocols lists the supported protocols in the order their hooks are built
var Protocols = []Protocol{ProtocolTCP, ProtocolUDP}

// Branch is a single parsed shaping policy unit
type Branch struct {
	Protocol Protocol
	// PortType is either PortTypeSource or PortTypeDestination once resolved, empty for RangeAll
	PortType PortType
	// Range is a single port "N", an inclusive range "N1-N2" or RangeAll
	Range string
	// Rate is a tc rate e.g 512kbit, empty if not set
	Rate string
	// Loss is a loss percentage e.g 5%, empty if not set
	Loss string
}

// IsAll returns true if branch matches all ports of its protocol
func (b Branch) IsAll() bool {
	return b.Range == RangeAll
}

// IsSinglePort returns true if branch range is a single port
func (b Branch) IsSinglePort() bool {
	return !b.IsAll() && !strings.Contains(b.Range, "-")
}
