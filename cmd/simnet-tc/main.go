package main

import (
	"context"
	goflag "flag"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/profile"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/simnet"
	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/utils"
)

const logFlushFreqFlagName = "log-flush-frequency"

var logFlushFreq = pflag.Duration(logFlushFreqFlagName, 5*time.Second, "Maximum number of seconds between log flushes")

var (
	info     = color.New(color.FgBlue).FprintfFunc()
	success  = color.New(color.FgGreen).FprintfFunc()
	errPrint = color.New(color.FgRed).FprintfFunc()
)

// KlogWriter serves as a bridge between the standard log package and the glog package.
type KlogWriter struct{}

// Write implements the io.Writer interface.
func (writer KlogWriter) Write(data []byte) (n int, err error) {
	klog.InfoDepth(1, string(data))
	return len(data), nil
}

func initLogs(ctx context.Context, flushFreq time.Duration) {
	log.SetOutput(KlogWriter{})
	log.SetFlags(0)
	go wait.Until(klog.Flush, flushFreq, ctx.Done())
}

// runSimNet validates opts then builds and installs the chains
func runSimNet(ctx context.Context, cmd *cobra.Command, opts *simnet.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s, err := simnet.NewSimNetFromOptions(opts, cmd.OutOrStdout(), klog.NewKlogr().WithName("simnet"))
	if err != nil {
		return err
	}
	if err := s.Marshal(ctx); err != nil {
		return err
	}
	if opts.IsClearOnly() {
		success(cmd.ErrOrStderr(), "chains of %s cleared\n", opts.Interface)
	} else {
		success(cmd.ErrOrStderr(), "simnet setup of %s done\n", opts.Interface)
	}
	return nil
}

func newSimNetCommand(ctx context.Context) *cobra.Command {
	opts := simnet.NewOptions()
	cmd := &cobra.Command{
		Use:          "simnet",
		Short:        "network simulation (simnet) traffic control setup",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimNet(ctx, cmd, opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func newProfileCommand(ctx context.Context) *cobra.Command {
	var configFile string
	var verbose bool
	cmd := &cobra.Command{
		Use:          "profile PROFILE_NAME",
		Short:        "discover and apply profile configurations",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				var err error
				if configFile, err = profile.DetermineConfigFile(); err != nil {
					return err
				}
			}
			if verbose {
				info(cmd.ErrOrStderr(), "Using config file %q\n", configFile)
			}
			profileArgs, err := profile.Lookup(configFile, args[0])
			if err != nil {
				return err
			}
			if verbose {
				info(cmd.ErrOrStderr(), "Profile args: %v\n", profileArgs)
				profileArgs = append(profileArgs, "--verbose")
			}

			opts := simnet.NewOptions()
			if err := opts.ParseArgs("profile "+args[0], profileArgs); err != nil {
				return err
			}
			return runSimNet(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "",
		"profile configuration file to read from. if not specified, default paths are tried in order")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "more verbose output")
	return cmd
}

// newRootCommand creates the simnet-tc command, goFlags are added as persistent flags
func newRootCommand(ctx context.Context, goFlags *goflag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simnet-tc",
		Short: "traffic control policy compiler",
		Long: `simnet-tc compiles per interface traffic shaping policies (rate limits and packet loss per
protocol and port range) into a tc htb hierarchy and installs it, saves it to file or prints it.`,
		// flags are parsed by now, log flush frequency is known
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogs(ctx, *logFlushFreq)
		},
	}
	cmd.PersistentFlags().AddGoFlagSet(goFlags)
	cmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	cmd.AddCommand(newSimNetCommand(ctx), newProfileCommand(ctx))
	return cmd
}

func main() {
	ctx := utils.SetupSignalHandler()
	klog.InitFlags(nil)

	if err := newRootCommand(ctx, goflag.CommandLine).Execute(); err != nil {
		errPrint(os.Stderr, "%v\n", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
