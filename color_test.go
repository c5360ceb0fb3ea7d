package vkm

import "testing"

func TestRGBA8(t *testing.T) {
	blue := RGBA{R: 0, G: 0, B: 1, A: 1}
	if blue.RGBA8() != [4]uint8{0, 0, 255, 255} {
		t.Errorf("blue quantized to %v", blue.RGBA8())
	}

	gray := RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}
	q := gray.RGBA8()
	if q[0] != 128 {
		t.Errorf("0.5 quantized to %d", q[0])
	}
}

func TestRGBA8Clamps(t *testing.T) {
	c := RGBA{R: -0.5, G: 1.5, B: 0, A: 2}
	if c.RGBA8() != [4]uint8{0, 255, 0, 255} {
		t.Errorf("out-of-range color quantized to %v", c.RGBA8())
	}
}

func TestFloat32(t *testing.T) {
	c := RGBA{R: 0.1, G: 0.2, B: 0.3, A: 0.4}
	f := c.Float32()
	if f != [4]float32{0.1, 0.2, 0.3, 0.4} {
		t.Errorf("got %v", f)
	}
}
