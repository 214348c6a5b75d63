package simnet

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	multinet "github.com/k8snetworkplumbingwg/simnet-tc/pkg/net"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/policyrules"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
	cmdlinedriver "github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/driver/cmdline"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/generator"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc/types"
)

// ConfigOption sets a general SimNet option
type ConfigOption func(o *Options)

// WithClear sets whether chains are cleared before the hierarchy is built
func WithClear(clear bool) ConfigOption {
	return func(o *Options) { o.Clear = clear }
}

// WithVerbose sets verbose output
func WithVerbose(verbose bool) ConfigOption {
	return func(o *Options) { o.Verbose = verbose }
}

// WithInterface sets the network device to shape
func WithInterface(name string) ConfigOption {
	return func(o *Options) { o.Interface = name }
}

// WithIfbDevice sets the device download traffic is redirected to
func WithIfbDevice(name string) ConfigOption {
	return func(o *Options) { o.IfbDevice = name }
}

// SetupArgs describes a single branch. exactly one of Upload, Download must be set.
type SetupArgs struct {
	Upload   bool
	Download bool
	Protocol string
	PortType string
	Range    string
	Rate     string
	// Jitter is the loss percentage e.g 7%
	Jitter string
}

// NewSimNet creates a new SimNet. opts is copied.
func NewSimNet(opts *Options, registry *multinet.Registry, gen generator.Generator, out io.Writer,
	log klog.Logger) *SimNet {
	o := *opts
	return &SimNet{
		opts:     &o,
		registry: registry,
		gen:      gen,
		out:      out,
		log:      log,
	}
}

// NewSimNetFromOptions creates a SimNet operating on the host according to opts
func NewSimNetFromOptions(opts *Options, out io.Writer, log klog.Logger) (*SimNet, error) {
	runner := cmdlinedriver.NewCmdLineImpl(log.WithName("cmdline"), exec.New(), opts.Timeout, opts.Sudo)
	factory, err := tc.NewTargetFactory(opts.Target, types.NewAllocator(), tc.ActuatorConfig{
		Runner: runner,
		Dir:    opts.OutputDir,
		Log:    log.WithName("actuator"),
	})
	if err != nil {
		return nil, err
	}
	mgr := multinet.NewDeviceManager(multinet.NewNetlinkProviderImpl(), runner, log.WithName("device-manager"))
	registry := multinet.NewRegistry(mgr, factory, log.WithName("registry"))
	return NewSimNet(opts, registry, generator.NewSimnetGenerator(log.WithName("generator")), out, log), nil
}

// SimNet builds and installs the shaping hierarchy of a network device for upload and download traffic.
// download traffic is redirected to an ifb device and shaped on its egress.
type SimNet struct {
	opts     *Options
	registry *multinet.Registry
	gen      generator.Generator
	out      io.Writer
	log      klog.Logger
}

// Options returns the current SimNet options
func (s *SimNet) Options() Options {
	return *s.opts
}

// Configure sets general options
func (s *SimNet) Configure(opts ...ConfigOption) {
	for _, fn := range opts {
		fn(s.opts)
	}
}

// Setup adds a branch to the upload or download branches
func (s *SimNet) Setup(args SetupArgs) error {
	if args.Upload == args.Download {
		return errors.Wrapf(types.ErrContractViolation,
			"exactly one of upload, download must be set, got upload=%t, download=%t", args.Upload, args.Download)
	}
	token := policyrules.Tokenize(args.Protocol, args.PortType, args.Range, args.Rate, args.Jitter)
	if args.Upload {
		s.opts.Upload = append(s.opts.Upload, token)
	} else {
		s.opts.Download = append(s.opts.Download, token)
	}
	return nil
}

// Marshal builds the chains and installs them in order: interface egress, interface ingress, ifb egress.
// all branches are parsed before any chain is built. a failure to install a chain does not prevent
// the following chains from being installed, all failures are returned as an aggregate.
func (s *SimNet) Marshal(ctx context.Context) error {
	log := s.log.WithValues("run", uuid.New().String())

	upload, err := parseDirection(s.opts.Upload, policyrules.TrafficDirectionUpload)
	if err != nil {
		return err
	}
	download, err := parseDirection(s.opts.Download, policyrules.TrafficDirectionDownload)
	if err != nil {
		return err
	}

	iface, err := s.registry.GetDevice(ctx, s.opts.Interface)
	if err != nil {
		return err
	}

	var ifb *multinet.NetDevice
	if s.opts.Download != nil {
		name := s.opts.IfbDevice
		if name == "" {
			name = DefaultIfbDevice
		}
		if ifb, err = s.registry.GetDevice(ctx, name); err != nil {
			return err
		}
		if err = ifb.Up(); err != nil {
			return err
		}
	}
	log.Info("building chains", "interface", iface.Name, "upload", len(upload), "download", len(download),
		"clear", s.opts.Clear)

	chains := make([]tc.Target, 0, 3)
	if s.opts.Upload != nil {
		if s.opts.Clear {
			iface.Egress.Clear()
		}
		if len(upload) > 0 {
			if err := s.gen.Generate(iface.Egress, upload); err != nil {
				return err
			}
		}
		chains = append(chains, iface.Egress)
	}

	if s.opts.Download != nil {
		if s.opts.Clear {
			iface.Ingress.Clear()
			ifb.Egress.Clear()
		}
		if len(download) > 0 {
			iface.Ingress.SetRedirect(iface.Name, ifb.Name)
			if err := s.gen.Generate(ifb.Egress, download); err != nil {
				return err
			}
		}
		chains = append(chains, iface.Ingress, ifb.Egress)
	}

	var errs []error
	for _, chain := range chains {
		if err := chain.Configure(tc.TargetOptions{Verbose: s.opts.Verbose, Writer: s.out}); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := chain.Marshal(ctx); err != nil {
			log.Error(err, "failed to install chain", "device", chain.Device(), "direction", chain.Direction())
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

// parseDirection parses branches and checks their all ranges
func parseDirection(texts []string, dir policyrules.TrafficDirection) ([]policyrules.Branch, error) {
	branches, err := policyrules.ParseBranchList(texts, dir)
	if err != nil {
		return nil, err
	}
	if _, err := generator.DetermineAllRates(branches); err != nil {
		return nil, err
	}
	return branches, nil
}
