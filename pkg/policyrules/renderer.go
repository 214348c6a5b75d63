package policyrules

import (
	"strings"
)

// String renders branch back to its textual form protocol[:porttype]:range[:rate][:loss]
func (b Branch) String() string {
	parts := []string{string(b.Protocol)}
	for _, p := range []string{string(b.PortType), b.Range, b.Rate, b.Loss} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

// Tokenize builds branch text from its parts, skipping empty ones
func Tokenize(protocol, portType, portRange, rate, loss string) string {
	b := Branch{
		Protocol: Protocol(protocol),
		PortType: PortType(portType),
		Range:    portRange,
		Rate:     rate,
		Loss:     loss,
	}
	return b.String()
}
