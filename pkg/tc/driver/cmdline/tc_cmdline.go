package cmdline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"
)

// DefaultTimeout is the default time limit for a single command execution
const DefaultTimeout = 10 * time.Second

// ErrTimeout is returned when a command did not complete within the configured timeout
var ErrTimeout = errors.New("command timed out")

// Result holds the outcome of a command execution
type Result struct {
	// Command is the command line as provided to Run
	Command    string
	Stdout     string
	Stderr     string
	ReturnCode int
}

// CommandFailed is returned when a command exits with non-zero return code
type CommandFailed struct {
	Result
}

// Error implements error interface
func (c *CommandFailed) Error() string {
	output := c.Stderr
	if c.Stdout != "" {
		output = fmt.Sprintf("out:%s\nerr: %s", c.Stdout, output)
	}
	msg := output
	if strings.TrimSpace(output) == "" {
		msg = fmt.Sprintf("Command failed: %q", c.Command)
	}
	return fmt.Sprintf("%s (rc=%d)", strings.TrimRight(msg, " \t\r\n"), c.ReturnCode)
}

// NewCmdLineImpl creates a new instance of CmdLineImpl.
// a zero timeout means DefaultTimeout, sudo prefixes every command with sudo.
func NewCmdLineImpl(log klog.Logger, executor exec.Interface, timeout time.Duration, sudo bool) *CmdLineImpl {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CmdLineImpl{
		log:      log,
		executor: executor,
		timeout:  timeout,
		sudo:     sudo,
	}
}

// CmdLineImpl executes command lines (e.g tc commands) as external processes
type CmdLineImpl struct {
	log      klog.Logger
	executor exec.Interface
	timeout  time.Duration
	sudo     bool
}

// Run executes cmdline, returning its Result. a non-zero exit code results in *CommandFailed error
// unless ignoreErrors is set.
func (c *CmdLineImpl) Run(ctx context.Context, cmdline string, ignoreErrors bool) (*Result, error) {
	args, err := SplitCommandLine(cmdline)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command line")
	}
	if c.sudo {
		args = append([]string{"sudo"}, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.V(10).Info("executing", "cmd", args[0], "args", args[1:])
	cmd := c.executor.CommandContext(ctx, args[0], args[1:]...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetStdout(stdout)
	cmd.SetStderr(stderr)
	err = cmd.Run()

	res := &Result{Command: cmdline, Stdout: stdout.String(), Stderr: stderr.String()}
	c.log.V(10).Info("exec result", "err", err, "out", res.Stdout)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, errors.Wrapf(ErrTimeout, "%q did not complete in %s", cmdline, c.timeout)
	}
	if err == nil {
		return res, nil
	}

	var exitErr exec.ExitError
	if !errors.As(err, &exitErr) {
		return res, errors.Wrapf(err, "failed to execute %q", cmdline)
	}
	res.ReturnCode = exitErr.ExitStatus()
	if ignoreErrors {
		c.log.V(4).Info("ignoring command failure", "cmd", cmdline, "rc", res.ReturnCode)
		return res, nil
	}
	return res, &CommandFailed{Result: *res}
}

// SplitCommandLine splits s into arguments on whitespace. a double quoted segment is
// kept as a single argument without the quotes.
func SplitCommandLine(s string) ([]string, error) {
	const quote = `"`
	if strings.Count(s, quote)%2 != 0 {
		return nil, fmt.Errorf("unbalanced quotes in command: %q", s)
	}

	var args []string
	for {
		left, rest, found := strings.Cut(s, quote)
		args = append(args, strings.Fields(left)...)
		if !found {
			return args, nil
		}
		mid, right, _ := strings.Cut(rest, quote)
		args = append(args, mid)
		s = right
	}
}
