package profile

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type yamlProfile struct {
	Interface string   `yaml:"interface"`
	Clear     bool     `yaml:"clear"`
	IfbDevice string   `yaml:"ifbdevice"`
	Verbose   bool     `yaml:"verbose"`
	Upload    []string `yaml:"upload"`
	Download  []string `yaml:"download"`
}

type yamlProfiles struct {
	Profiles map[string]yamlProfile `yaml:"profiles"`
}

// ParseYAML parses profiles in YAML format, e.g:
//
//	profiles:
//	  3g-sym:
//	    interface: eth0
//	    clear: true
//	    download:
//	      - tcp:dport:8000-8080:96kbit
func ParseYAML(data []byte) (Profiles, error) {
	var doc yamlProfiles
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse yaml profiles")
	}

	profiles := make(Profiles, len(doc.Profiles))
	for name, p := range doc.Profiles {
		profiles[name] = p.args()
	}
	return profiles, nil
}

// args returns the command line arguments equivalent to p
func (p yamlProfile) args() []string {
	args := make([]string, 0)
	if p.Verbose {
		args = append(args, "--verbose")
	}
	if p.Clear {
		args = append(args, "--clear")
	}
	if p.Interface != "" {
		args = append(args, "--interface", p.Interface)
	}
	if p.IfbDevice != "" {
		args = append(args, "--ifbdevice", p.IfbDevice)
	}
	for _, u := range p.Upload {
		args = append(args, "--upload", u)
	}
	for _, d := range p.Download {
		args = append(args, "--download", d)
	}
	return args
}
