package vkm

// GridFor returns the workgroup grid that covers a width x height extent
// with the given local workgroup size, rounding up on partial groups.
// Choosing a grid that matches the resource extent is the caller's
// responsibility; Dispatch does not validate coverage.
func GridFor(width, height, localX, localY uint32) [3]uint32 {
	return [3]uint32{ceilDiv(width, localX), ceilDiv(height, localY), 1}
}

// Grid1D returns the workgroup grid covering n work items with the given
// local size.
func Grid1D(n, local uint32) [3]uint32 {
	return [3]uint32{ceilDiv(n, local), 1, 1}
}

func ceilDiv(n, d uint32) uint32 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}
