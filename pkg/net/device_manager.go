package net

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/simnet-tc/pkg/tc"
)

const (
	ModuleIFB   = "ifb"
	ModuleDummy = "dummy"
)

// LoadableModules are the device modules for which devices may be created on demand
var LoadableModules = sets.New[string](ModuleIFB, ModuleDummy)

// NewDeviceManager creates a new DeviceManager
func NewDeviceManager(nl NetlinkProvider, runner tc.CommandRunner, log klog.Logger) *DeviceManager {
	return &DeviceManager{nl: nl, runner: runner, log: log}
}

// DeviceManager queries and creates network devices
type DeviceManager struct {
	nl     NetlinkProvider
	runner tc.CommandRunner
	log    klog.Logger
}

// AllIfaceNames returns the sorted names of all network devices containing filter, all devices if filter is empty
func (m *DeviceManager) AllIfaceNames(filter string) ([]string, error) {
	links, err := m.nl.LinkList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list links")
	}
	names := sets.New[string]()
	for _, l := range links {
		name := l.Attrs().Name
		if filter == "" || strings.Contains(name, filter) {
			names.Insert(name)
		}
	}
	return sets.List(names), nil
}

// DeviceExists returns true if a network device with the given name exists
func (m *DeviceManager) DeviceExists(name string) (bool, error) {
	names, err := m.AllIfaceNames("")
	if err != nil {
		return false, err
	}
	return sets.New[string](names...).Has(name), nil
}

// SplitName splits device name to its module and sequence number, e.g ifb3 -> ifb, 3.
// hasNum is false if name has no numeric suffix.
func SplitName(name string) (module string, num int, hasNum bool) {
	module = strings.TrimRight(name, "0123456789")
	suffix := name[len(module):]
	if suffix == "" {
		return module, 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return module, 0, false
	}
	return module, n, true
}

// MaximalExistingName returns the name of the existing device of module with the highest sequence number,
// or the zero indexed device name if none exists.
func (m *DeviceManager) MaximalExistingName(module string) (string, error) {
	names, err := m.AllIfaceNames(module)
	if err != nil {
		return "", err
	}
	nums := make([]int, 0, len(names))
	for _, name := range names {
		mod, num, ok := SplitName(name)
		if ok && mod == module {
			nums = append(nums, num)
		}
	}
	if len(nums) == 0 {
		return module + "0", nil
	}
	sort.Ints(nums)
	return fmt.Sprintf("%s%d", module, nums[len(nums)-1]), nil
}

// LoadModule loads kernel module name with the given parameters
func (m *DeviceManager) LoadModule(ctx context.Context, name string, params map[string]string) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd := "modprobe " + name
	for _, k := range keys {
		cmd += fmt.Sprintf(" %s=%s", k, params[k])
	}
	m.log.V(4).Info("loading kernel module", "cmd", cmd)
	if _, err := m.runner.Run(ctx, cmd, false); err != nil {
		return errors.Wrapf(err, "failed to load module %s", name)
	}
	return nil
}

// EnsureDevice creates device name unless it exists. name's module must be one of LoadableModules.
func (m *DeviceManager) EnsureDevice(name string) error {
	exists, err := m.DeviceExists(name)
	if err != nil || exists {
		return err
	}

	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	var link netlink.Link
	module, _, _ := SplitName(name)
	switch module {
	case ModuleIFB:
		link = &netlink.Ifb{LinkAttrs: attrs}
	case ModuleDummy:
		link = &netlink.Dummy{LinkAttrs: attrs}
	default:
		return errors.Errorf("cannot create device %s, module %q is not one of %v", name, module, sets.List(LoadableModules))
	}

	m.log.Info("creating network device", "name", name)
	if err := m.nl.LinkAdd(link); err != nil {
		return errors.Wrapf(err, "failed to add device %s", name)
	}
	return nil
}

// DeviceUp sets device admin state up
func (m *DeviceManager) DeviceUp(name string) error {
	link, err := m.nl.LinkByName(name)
	if err != nil {
		return errors.Wrapf(err, "failed to get device %s", name)
	}
	if err := m.nl.LinkSetUp(link); err != nil {
		return errors.Wrapf(err, "failed to set device %s up", name)
	}
	return nil
}
