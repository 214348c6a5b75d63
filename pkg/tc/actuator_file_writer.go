package tc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/utils"
)

// NewActuatorFileWriterImpl returns a new ActuatorFileWriterImpl instance.
// chains with no configured filename are saved to <device>-<direction>.tc under dir.
func NewActuatorFileWriterImpl(dir string, log klog.Logger) *ActuatorFileWriterImpl {
	return &ActuatorFileWriterImpl{
		log: log,
		dir: dir,
	}
}

// ActuatorFileWriterImpl implements Actuator interface and is used to save chain commands to file
type ActuatorFileWriterImpl struct {
	log klog.Logger
	dir string
}

// Validate implements Actuator interface
func (a ActuatorFileWriterImpl) Validate(_ TargetOptions) error {
	return nil
}

// DefaultFilename returns the file name used for a chain with no configured filename
func DefaultFilename(device string, direction Direction) string {
	return fmt.Sprintf("%s-%s.tc", device, direction)
}

// Path returns the path chain is saved to
func (a ActuatorFileWriterImpl) Path(chain Chain) string {
	name := chain.Options().Filename
	if name == "" {
		name = DefaultFilename(chain.Device(), chain.Direction())
	}
	if a.dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.dir, name)
}

// Actuate implements Actuator interface
func (a ActuatorFileWriterImpl) Actuate(_ context.Context, chain Chain) error {
	path := a.Path(chain)
	opts := chain.Options()

	result := strings.Join(chain.Commands(), "\n")
	if opts.Verbose {
		_, _ = fmt.Fprintln(opts.Output(), result)
	}

	newBuf := bytes.NewBufferString(result)
	_, _ = newBuf.WriteRune('\n')

	exist, err := utils.PathExists(path)
	if err != nil {
		return errors.Wrapf(err, "failed to determine if path exist: %s", path)
	}
	if exist {
		data, err := os.ReadFile(path)
		if err != nil {
			a.log.Info("failed to read existing file", "path", path, "error", err)
		} else if bytes.Equal(data, newBuf.Bytes()) {
			a.log.Info("current and new commands are the same - no action needed.", "path", path)
			return nil
		}
	}

	a.log.Info("saving commands", "path", path)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = newBuf.WriteTo(file)
	return err
}
