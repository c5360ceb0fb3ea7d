package vkm

// RGBA is a floating point color in the 0..1 range, the value space
// clear operations are specified in.
type RGBA struct {
	R, G, B, A float32
}

// RGBA8 quantizes the color to 8 bits per channel, the storage format of
// the images this package clears. Values outside 0..1 clamp.
func (c RGBA) RGBA8() [4]uint8 {
	return [4]uint8{quantize8(c.R), quantize8(c.G), quantize8(c.B), quantize8(c.A)}
}

// Float32 returns the color as the 4-float array Vulkan clear values use.
func (c RGBA) Float32() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func quantize8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
