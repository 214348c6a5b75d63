package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/utils"
)

// DefaultConfigPaths are the locations looked up, in order, for a profiles file if none is given
var DefaultConfigPaths = []string{
	"./simnet.profiles",
	"/usr/local/etc/simnet/profiles.conf",
	"/etc/simnet/profiles.conf",
}

var (
	// ErrConfigNotFound is returned when no profiles file exists in any of the looked up paths
	ErrConfigNotFound = errors.New("cannot find profiles configuration file")
	// ErrProfileNotFound is returned when a profiles file has no profile with the requested name
	ErrProfileNotFound = errors.New("config profile NOT found")
)

// Profiles maps a profile name to its equivalent command line arguments
type Profiles map[string][]string

// Names returns profile names
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	return names
}

// Args returns the command line arguments of profile name
func (p Profiles) Args(name string) ([]string, error) {
	args, ok := p[name]
	if !ok {
		return nil, errors.Wrapf(ErrProfileNotFound, "%s", name)
	}
	return append([]string(nil), args...), nil
}

// DetermineConfigFile returns the absolute path of the first existing file of DefaultConfigPaths
func DetermineConfigFile() (string, error) {
	path, err := utils.FirstExistingPath(DefaultConfigPaths)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.Wrapf(ErrConfigNotFound, "looked up %v", DefaultConfigPaths)
	}
	return path, nil
}

// Load parses profiles file at path. files with .yaml or .yml extension are parsed as YAML,
// any other file as a legacy sections file.
func Load(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profiles file %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseLegacy(data)
	}
}

// Lookup returns the command line arguments of profile name from profiles file at path.
// if path is empty DetermineConfigFile is used.
func Lookup(path, name string) ([]string, error) {
	if path == "" {
		var err error
		if path, err = DetermineConfigFile(); err != nil {
			return nil, err
		}
	}
	profiles, err := Load(path)
	if err != nil {
		return nil, err
	}
	return profiles.Args(name)
}
