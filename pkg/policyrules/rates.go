package policyrules

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
)

var rateRegex = regexp.MustCompile(`^(\d+)([a-z]+)$`)

// rateUnits maps tc rate units to their bits per second multiplier
var rateUnits = map[string]uint64{
	"bit":   1,
	"bps":   8,
	"kbit":  1000,
	"kibit": 1024,
	"kbps":  8 * 1000,
	"kibps": 8 * 1024,
	"mbit":  1000 * 1000,
	"mibit": 1024 * 1024,
	"mbps":  8 * 1000 * 1000,
	"mibps": 8 * 1024 * 1024,
	"gbit":  1000 * 1000 * 1000,
	"gibit": 1024 * 1024 * 1024,
	"gbps":  8 * 1000 * 1000 * 1000,
	"gibps": 8 * 1024 * 1024 * 1024,
	"tbit":  1000 * 1000 * 1000 * 1000,
	"tibit": 1024 * 1024 * 1024 * 1024,
	"tbps":  8 * 1000 * 1000 * 1000 * 1000,
	"tibps": 8 * 1024 * 1024 * 1024 * 1024,
}

// SplitRate splits a rate string e.g 512kbit into its value and units
func SplitRate(rate string) (uint64, string, error) {
	m := rateRegex.FindStringSubmatch(rate)
	if m == nil {
		return 0, "", fmt.Errorf("illegal rate string: %q", rate)
	}
	val, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("illegal rate string: %q", rate)
	}
	return val, m[2], nil
}

// ValidateRate returns an error if rate is not a value followed by a tc rate unit
func ValidateRate(rate string) error {
	_, err := ConvertToBps(rate)
	return err
}

// ConvertToBps returns rate in bits per second
func ConvertToBps(rate string) (uint64, error) {
	val, units, err := SplitRate(rate)
	if err != nil {
		return 0, err
	}
	mult, ok := rateUnits[units]
	if !ok {
		return 0, fmt.Errorf("illegal rate string: %q, unknown units %q", rate, units)
	}
	hi, bps := bits.Mul64(val, mult)
	if hi != 0 {
		return 0, fmt.Errorf("rate %q overflows", rate)
	}
	return bps, nil
}
