package vkm

import (
	"fmt"
	"strings"
)

// Capability identifies the kind of work a queue family must support.
type Capability int

const (
	CapabilityGraphics Capability = iota
	CapabilityCompute
	CapabilityTransfer
)

func (c Capability) String() string {
	switch c {
	case CapabilityGraphics:
		return "graphics"
	case CapabilityCompute:
		return "compute"
	case CapabilityTransfer:
		return "transfer"
	}
	return "unknown"
}

// QueuePriority is the relative priority assigned to the single queue
// this package requests per device. Only one queue is ever used, so the
// value carries no scheduling meaning.
const QueuePriority = 0.5

// DevicePredicate decides whether an enumerated physical device is
// acceptable. Predicates are supplied by the caller, typically from
// configuration, so selection logic stays decoupled from any particular
// machine's hardware inventory.
type DevicePredicate func(*PhysicalDevice) bool

// MatchDeviceName matches devices whose name contains the given
// substring, case-insensitively. An empty substring matches everything.
func MatchDeviceName(substr string) DevicePredicate {
	needle := strings.ToLower(substr)
	return func(p *PhysicalDevice) bool {
		return strings.Contains(strings.ToLower(p.DeviceName), needle)
	}
}

// MatchAny accepts the first enumerated device.
func MatchAny() DevicePredicate {
	return func(*PhysicalDevice) bool { return true }
}

// MatchQueueCapability matches devices with at least one queue family
// advertising the given capability.
func MatchQueueCapability(c Capability) DevicePredicate {
	return func(p *PhysicalDevice) bool {
		qfs, err := p.QueueFamilies()
		if err != nil {
			return false
		}
		return len(qfs.FilterCapability(c)) > 0
	}
}

// And combines predicates; all must accept.
func (p DevicePredicate) And(more ...DevicePredicate) DevicePredicate {
	return func(d *PhysicalDevice) bool {
		if !p(d) {
			return false
		}
		for _, m := range more {
			if !m(d) {
				return false
			}
		}
		return true
	}
}

// Select enumerates all physical devices visible to the process and
// returns the first one the predicate accepts. Enumeration is read-only;
// no device state is created. Fails with ErrNoMatchingDevice when nothing
// matches.
func (i *Instance) Select(pred DevicePredicate) (*PhysicalDevice, error) {
	devices, err := i.PhysicalDevices()
	if err != nil {
		return nil, fmt.Errorf("enumerating physical devices: %w", err)
	}

	return selectDevice(devices, pred)
}

// selectDevice is the enumeration-free half of Select.
func selectDevice(devices []*PhysicalDevice, pred DevicePredicate) (*PhysicalDevice, error) {
	for _, d := range devices {
		if pred(d) {
			Logger().Info("physical device selected", "device", d.DeviceName)
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %d device(s) enumerated", ErrNoMatchingDevice, len(devices))
}

// PickQueue scans the device's queue families for the first one
// advertising the requested capability, creates a logical device with a
// single queue from that family at QueuePriority, and returns both.
// Fails with ErrNoQueueFamily when no family matches.
func (p *PhysicalDevice) PickQueue(c Capability) (*Device, *Queue, error) {
	qfs, err := p.QueueFamilies()
	if err != nil {
		return nil, nil, fmt.Errorf("enumerating queue families: %w", err)
	}

	matching := qfs.FilterCapability(c)
	if len(matching) == 0 {
		return nil, nil, fmt.Errorf("%w: %s on %s", ErrNoQueueFamily, c, p.DeviceName)
	}

	qf := matching[0]

	device, err := p.CreateLogicalDevice(QueueFamilySlice{qf}, QueuePriority)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logical device: %w", err)
	}

	queue := device.GetQueue(qf)

	Logger().Info("queue picked", "device", p.DeviceName, "family", qf.Index, "capability", c.String())

	return device, queue, nil
}
