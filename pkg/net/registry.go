package net

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
)

// ErrDeviceNotFound is returned when a device does not exist and cannot be created
var ErrDeviceNotFound = errors.New("network device not found")

// NetDevice is a network device with a chain builder per direction
type NetDevice struct {
	Name    string
	Egress  tc.Target
	Ingress tc.Target

	mgr *DeviceManager
}

// Up sets the device admin state up
func (d *NetDevice) Up() error {
	return d.mgr.DeviceUp(d.Name)
}

// NewRegistry creates a new Registry creating device Targets with factory
func NewRegistry(mgr *DeviceManager, factory tc.TargetFactory, log klog.Logger) *Registry {
	return &Registry{
		mgr:     mgr,
		factory: factory,
		log:     log,
		devices: make(map[string]*NetDevice),
	}
}

// Registry hands out a single NetDevice per device name
type Registry struct {
	mgr     *DeviceManager
	factory tc.TargetFactory
	log     klog.Logger
	devices map[string]*NetDevice
}

// GetDevice returns the NetDevice of nameOrModule. an existing device is wrapped as is. if nameOrModule
// belongs to one of LoadableModules the module is loaded and the device created as needed, a bare
// module name picks the existing device with the highest sequence number.
func (r *Registry) GetDevice(ctx context.Context, nameOrModule string) (*NetDevice, error) {
	if dev, ok := r.devices[nameOrModule]; ok {
		return dev, nil
	}

	exists, err := r.mgr.DeviceExists(nameOrModule)
	if err != nil {
		return nil, err
	}
	if exists {
		return r.newDevice(nameOrModule)
	}

	module, num, hasNum := SplitName(nameOrModule)
	if !LoadableModules.Has(module) {
		return nil, errors.Wrapf(ErrDeviceNotFound, "%s", nameOrModule)
	}

	name := fmt.Sprintf("%s%d", module, num)
	if !hasNum {
		if name, err = r.mgr.MaximalExistingName(module); err != nil {
			return nil, err
		}
	}
	if dev, ok := r.devices[name]; ok {
		return dev, nil
	}

	if err := r.mgr.LoadModule(ctx, module, map[string]string{fmt.Sprintf("num%ss", module): "0"}); err != nil {
		return nil, err
	}
	// loading the module may have created the device already
	if err := r.mgr.EnsureDevice(name); err != nil {
		return nil, err
	}
	return r.newDevice(name)
}

// Optional returns the NetDevice of name if name is not empty. found is false for an empty name.
func (r *Registry) Optional(ctx context.Context, name string) (dev *NetDevice, found bool, err error) {
	if name == "" {
		return nil, false, nil
	}
	dev, err = r.GetDevice(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return dev, true, nil
}

func (r *Registry) newDevice(name string) (*NetDevice, error) {
	egress, err := r.factory(name, tc.DirectionEgress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create egress target of %s", name)
	}
	ingress, err := r.factory(name, tc.DirectionIngress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create ingress target of %s", name)
	}
	dev := &NetDevice{Name: name, Egress: egress, Ingress: ingress, mgr: r.mgr}
	r.devices[name] = dev
	r.log.V(4).Info("registered network device", "name", name)
	return dev, nil
}
