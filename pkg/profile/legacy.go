package profile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// legacyAliases maps legacy option names to simnet flag names
var legacyAliases = map[string]string{
	"iface":  "interface",
	"dclass": "download",
	"uclass": "upload",
	"sclass": "upload",
}

// repeatableKeys are the flags taking a single value per occurrence which a legacy line may list
// several values of
var repeatableKeys = map[string]bool{
	"upload":   true,
	"download": true,
}

// ParseLegacy parses the legacy profiles format. each profile is a [name] section followed by
// option lines, an option line is a long flag name without dashes optionally followed by its value:
//
//	[3g-sym]
//	clear
//	iface eth0
//	dclass tcp:dport:8000-8080:96kbit
//	dclass udp:dport:5000-5080:96kbit:3%
//
// option keys may repeat, a line of a class option may list several classes and a class option with
// no value requests its direction with no class. lines starting with # are ignored.
func ParseLegacy(data []byte) (Profiles, error) {
	profiles := make(Profiles)
	current := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") || len(line) < 3 {
				return nil, fmt.Errorf("line %d: malformed section header %q", lineNum, line)
			}
			current = strings.TrimSpace(line[1 : len(line)-1])
			profiles[current] = make([]string, 0)
			continue
		}

		if current == "" {
			return nil, fmt.Errorf("line %d: option %q outside of a section", lineNum, line)
		}
		fields := strings.Fields(line)
		key := fields[0]
		if alias, ok := legacyAliases[key]; ok {
			key = alias
		}
		profiles[current] = append(profiles[current], legacyArgs(key, fields[1:])...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// legacyArgs returns the command line arguments of option key with values
func legacyArgs(key string, values []string) []string {
	if !repeatableKeys[key] {
		return append([]string{"--" + key}, values...)
	}
	if len(values) == 0 {
		return []string{"--" + key + "="}
	}
	args := make([]string, 0, 2*len(values))
	for _, v := range values {
		args = append(args, "--"+key, v)
	}
	return args
}
