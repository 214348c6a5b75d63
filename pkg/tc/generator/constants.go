package generator

import (
	"golang.org/x/sys/unix"
)

const (
	// DefaultRate is the htb class rate used when a branch or a protocol declares no rate
	DefaultRate = "15gbit"
	// NetemLimit is the netem queue limit in packets. netem defaults to 1000 packets which drops
	// traffic prematurely, note that it may still be reached if shaping is kept on for long.
	NetemLimit = 1000000000

	// transport header offsets of source and destination ports
	sportOffset = 0
	dportOffset = 2
)

var protocolNumbers = map[string]int{
	"tcp": unix.IPPROTO_TCP,
	"udp": unix.IPPROTO_UDP,
}
