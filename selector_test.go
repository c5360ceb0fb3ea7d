package vkm

import (
	"errors"
	"testing"
)

func namedDevices(names ...string) []*PhysicalDevice {
	out := make([]*PhysicalDevice, len(names))
	for i, n := range names {
		out[i] = &PhysicalDevice{DeviceName: n}
	}
	return out
}

func TestMatchDeviceName(t *testing.T) {
	devices := namedDevices("llvmpipe (LLVM 15.0.7, 256 bits)", "NVIDIA GeForce RTX 3060")

	d, err := selectDevice(devices, MatchDeviceName("nvidia"))
	if err != nil {
		t.Fatal(err)
	}
	if d != devices[1] {
		t.Errorf("matched wrong device: %s", d.DeviceName)
	}

	// Matching is case-insensitive in both directions.
	d, err = selectDevice(devices, MatchDeviceName("LLVMPIPE"))
	if err != nil {
		t.Fatal(err)
	}
	if d != devices[0] {
		t.Errorf("matched wrong device: %s", d.DeviceName)
	}
}

func TestMatchDeviceNameEmptyMatchesFirst(t *testing.T) {
	devices := namedDevices("a", "b")

	d, err := selectDevice(devices, MatchDeviceName(""))
	if err != nil {
		t.Fatal(err)
	}
	if d != devices[0] {
		t.Error("empty filter should accept the first device")
	}
}

func TestSelectNoMatchingDevice(t *testing.T) {
	devices := namedDevices("llvmpipe")

	_, err := selectDevice(devices, MatchDeviceName("radeon"))
	if !errors.Is(err, ErrNoMatchingDevice) {
		t.Errorf("expected ErrNoMatchingDevice, got %v", err)
	}

	_, err = selectDevice(nil, MatchAny())
	if !errors.Is(err, ErrNoMatchingDevice) {
		t.Errorf("empty enumeration: expected ErrNoMatchingDevice, got %v", err)
	}
}

func TestPredicateAnd(t *testing.T) {
	devices := namedDevices("intel uhd", "intel arc")

	pred := MatchDeviceName("intel").And(MatchDeviceName("arc"))
	d, err := selectDevice(devices, pred)
	if err != nil {
		t.Fatal(err)
	}
	if d != devices[1] {
		t.Errorf("matched wrong device: %s", d.DeviceName)
	}
}

func TestQueueFamilySupports(t *testing.T) {
	computeOnly := &QueueFamily{Compute: true}
	graphicsOnly := &QueueFamily{Graphics: true}
	transferOnly := &QueueFamily{Transfer: true}

	if !computeOnly.Supports(CapabilityCompute) {
		t.Error("compute family should support compute")
	}
	if computeOnly.Supports(CapabilityGraphics) {
		t.Error("compute family should not support graphics")
	}
	// Compute and graphics families implicitly support transfer.
	if !computeOnly.Supports(CapabilityTransfer) {
		t.Error("compute family should implicitly support transfer")
	}
	if !graphicsOnly.Supports(CapabilityTransfer) {
		t.Error("graphics family should implicitly support transfer")
	}
	if !transferOnly.Supports(CapabilityTransfer) {
		t.Error("transfer family should support transfer")
	}
	if transferOnly.Supports(CapabilityCompute) {
		t.Error("transfer family should not support compute")
	}
}

func TestFilterCapability(t *testing.T) {
	qfs := QueueFamilySlice{
		{Index: 0, Graphics: true, Compute: true},
		{Index: 1, Transfer: true},
		{Index: 2, Compute: true},
	}

	compute := qfs.FilterCapability(CapabilityCompute)
	if len(compute) != 2 {
		t.Fatalf("expected 2 compute families, got %d", len(compute))
	}
	if compute[0].Index != 0 || compute[1].Index != 2 {
		t.Error("filter changed family order")
	}

	transfer := qfs.FilterCapability(CapabilityTransfer)
	if len(transfer) != 3 {
		t.Errorf("expected 3 transfer-capable families, got %d", len(transfer))
	}
}

func TestDeviceNameStringTrimsPadding(t *testing.T) {
	var name [256]byte
	copy(name[:], "llvmpipe")

	got := deviceNameString(name)
	if got != "llvmpipe" {
		t.Errorf("got %q", got)
	}
	if len(got) != len("llvmpipe") {
		t.Errorf("padding not trimmed: %d bytes", len(got))
	}
}

func TestCapabilityString(t *testing.T) {
	if CapabilityCompute.String() != "compute" {
		t.Error(CapabilityCompute.String())
	}
	if CapabilityGraphics.String() != "graphics" {
		t.Error(CapabilityGraphics.String())
	}
	if CapabilityTransfer.String() != "transfer" {
		t.Error(CapabilityTransfer.String())
	}
}
