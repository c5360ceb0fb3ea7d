package vkm

import "testing"

func TestGridFor(t *testing.T) {
	if GridFor(1024, 1024, 8, 8) != [3]uint32{128, 128, 1} {
		t.Error(GridFor(1024, 1024, 8, 8))
	}

	// Partial groups round up.
	if GridFor(1025, 1024, 8, 8) != [3]uint32{129, 128, 1} {
		t.Error(GridFor(1025, 1024, 8, 8))
	}

	if GridFor(3200, 2400, 8, 8) != [3]uint32{400, 300, 1} {
		t.Error(GridFor(3200, 2400, 8, 8))
	}
}

func TestGrid1D(t *testing.T) {
	if Grid1D(65536, 64) != [3]uint32{1024, 1, 1} {
		t.Error(Grid1D(65536, 64))
	}
	if Grid1D(65537, 64) != [3]uint32{1025, 1, 1} {
		t.Error(Grid1D(65537, 64))
	}
	if Grid1D(1, 64) != [3]uint32{1, 1, 1} {
		t.Error(Grid1D(1, 64))
	}
}

func TestCeilDivZeroDenominator(t *testing.T) {
	if ceilDiv(10, 0) != 0 {
		t.Error("ceilDiv by zero should return 0")
	}
}
