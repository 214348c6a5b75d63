package simnet

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/policyrules"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/driver/cmdline"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/generator"
)

const (
	DefaultInterface = "lo"
	DefaultIfbDevice = "ifb"
)

// ErrNoAction is returned by Validate when neither upload, download nor clear is requested
var ErrNoAction = errors.New("no action requested: add at least one of --upload, --download, --clear.")

// ErrUnexpectedArgs is returned by ParseArgs when arguments are left over after flags are parsed
var ErrUnexpectedArgs = errors.New("unexpected arguments")

// Options stores option for the simnet command
type Options struct {
	// Interface is the network device to shape
	Interface string
	// Clear issues a chain clearing command before the hierarchy
	Clear bool
	// IfbDevice is the device (or device module) download traffic is redirected to, DefaultIfbDevice if empty
	IfbDevice string
	// Upload are the upload branches, nil if upload is not requested
	Upload []string
	// Download are the download branches, nil if download is not requested
	Download []string
	Verbose  bool
	// Target is the name of the actuator installing the chains
	Target string
	// OutputDir is the directory chains are saved to by the file target
	OutputDir string
	// Timeout limits each command execution
	Timeout time.Duration
	// Sudo runs commands with sudo
	Sudo bool
}

// NewOptions initializes Options
func NewOptions() *Options {
	return &Options{
		Interface: DefaultInterface,
		Target:    tc.ActuatorExec,
		Timeout:   cmdline.DefaultTimeout,
	}
}

// AddFlags adds command line flags into command
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.SortFlags = false
	fs.BoolVar(&o.Verbose, "verbose", o.Verbose, "more verbose output, echoes the installed commands")
	fs.StringVarP(&o.Interface, "interface", "i", o.Interface, "the network device name")
	fs.BoolVarP(&o.Clear, "clear", "c", o.Clear, "issue a chain clearing clause before the actual recipe")
	fs.StringVarP(&o.IfbDevice, "ifbdevice", "b", o.IfbDevice,
		"for download (ingress) control, specifies which ifb device to use. if empty, the ifb device with the "+
			"highest number is used, a new one is set up if none exists")
	fs.StringArrayVarP(&o.Upload, "upload", "u", o.Upload,
		"define discipline class for upload (egress) port range, PROTOCOL:PORTTYPE:RANGE:RATE:JITTER, e.g "+
			"tcp:dport:16000-24000:512kbit:5%. PROTOCOL is one of tcp, udp. PORTTYPE is one of sport, dport, lport, "+
			"rport and may be omitted only if RANGE is all. RANGE is a port, a dash-delimited inclusive port range "+
			"or all. RATE and/or JITTER must be present. may be repeated. an empty value requests the direction "+
			"with no class, e.g --clear --upload= clears the upload chain only")
	fs.StringArrayVarP(&o.Download, "download", "d", o.Download,
		"define discipline class for download (ingress) port range, same format as --upload. may be repeated")
	fs.StringVarP(&o.Target, "target", "t", o.Target,
		"how chains are installed, one of "+strings.Join(tc.RegisteredActuators(), ", "))
	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "directory chains are saved to when target is file")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "time limit of a single command execution")
	fs.BoolVar(&o.Sudo, "sudo", o.Sudo, "run commands with sudo")
}

// ParseArgs parses command line arguments into o. positional arguments are not accepted.
func (o *Options) ParseArgs(name string, args []string) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	o.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errors.Wrapf(ErrUnexpectedArgs, "%s: %q", name, fs.Args())
	}
	return nil
}

// Validate checks options consistency. empty branch values are dropped, a direction given only
// empty values is requested with no class. if only clear is requested both directions are
// set to clear only mode, i.e cleared with no hierarchy built.
func (o *Options) Validate() error {
	o.Upload = dropEmpty(o.Upload)
	o.Download = dropEmpty(o.Download)

	if len(o.Upload) == 0 && len(o.Download) == 0 && !o.Clear {
		return ErrNoAction
	}
	if o.Interface == "" {
		return errors.New("interface must not be empty")
	}
	if !sets.New[string](tc.RegisteredActuators()...).Has(o.Target) {
		return errors.Errorf("unknown target %q, expected one of %s", o.Target, strings.Join(tc.RegisteredActuators(), ", "))
	}

	if err := validateBranches(o.Upload, policyrules.TrafficDirectionUpload); err != nil {
		return err
	}
	if err := validateBranches(o.Download, policyrules.TrafficDirectionDownload); err != nil {
		return err
	}

	if o.Clear && o.Upload == nil && o.Download == nil {
		o.Upload = []string{}
		o.Download = []string{}
	}
	return nil
}

// IsClearOnly returns true if chains are cleared with no hierarchy built
func (o *Options) IsClearOnly() bool {
	return o.Clear && (o.Upload != nil || o.Download != nil) && len(o.Upload) == 0 && len(o.Download) == 0
}

// dropEmpty removes empty values from texts, keeping a nil texts nil
func dropEmpty(texts []string) []string {
	if texts == nil {
		return nil
	}
	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	return kept
}

func validateBranches(texts []string, dir policyrules.TrafficDirection) error {
	branches, err := policyrules.ParseBranchList(texts, dir)
	if err != nil {
		return err
	}
	for _, b := range branches {
		if b.Rate == "" {
			continue
		}
		if err := policyrules.ValidateRate(b.Rate); err != nil {
			return errors.Wrapf(err, "invalid %s branch %s", dir, b)
		}
	}
	_, err = generator.DetermineAllRates(branches)
	return err
}
