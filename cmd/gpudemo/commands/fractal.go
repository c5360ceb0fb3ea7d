package commands

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"

	vkm "github.com/lefp/vulkan-mandelbrot"
)

// viewport is the region of the complex plane a fractal kernel renders,
// passed to the kernel as push constants.
type viewport struct {
	Center linmath.Vec2
	Span   linmath.Vec2
}

// push serializes the viewport, followed by any extra floats the kernel
// declares, into the layout of a std430 push constant block of vec2s.
func (v viewport) push(extra ...float32) []byte {
	vals := []float32{v.Center[0], v.Center[1], v.Span[0], v.Span[1]}
	vals = append(vals, extra...)

	out := make([]byte, len(vals)*4)
	for i, f := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// viewportFor centers the view on (cx, cy) spanning span units of the
// complex plane horizontally, with the vertical span scaled to the image
// aspect ratio.
func viewportFor(cx, cy, span float64, width, height uint32) viewport {
	return viewport{
		Center: linmath.Vec2{float32(cx), float32(cy)},
		Span:   linmath.Vec2{float32(span), float32(span * float64(height) / float64(width))},
	}
}

// renderFractal dispatches a fractal kernel over a freshly allocated
// image and writes the result to a PNG file. The kernel is expected to
// bind the target as a storage image at slot 0 and run in 8x8 local
// groups.
func renderFractal(s *session, shaderFile string, width, height uint32, push []byte, output string) error {
	shader, err := s.device.LoadShaderModuleFromFile(filepath.Join(shaderDir, shaderFile))
	if err != nil {
		return err
	}
	defer shader.Destroy()

	layout := vkm.BindingLayout{{Kind: vkm.BindingStorageImage, Access: vkm.AccessWrite}}
	pipeline, err := s.device.BuildComputePipeline(shader, "main", layout, len(push))
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	img, err := s.alloc.AllocateImage(width, height, vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageStorageBit|vk.ImageUsageTransferSrcBit)
	if err != nil {
		return err
	}

	readback, err := s.alloc.AllocateBuffer(int(img.ByteSize()), 1, vk.BufferUsageTransferDstBit, true)
	if err != nil {
		return err
	}

	bindings, err := vkm.NewBindingSet(pipeline, img)
	if err != nil {
		return err
	}
	defer bindings.Destroy()

	rec := s.device.NewRecorder()
	if err := rec.Dispatch(pipeline, bindings, vkm.GridFor(width, height, 8, 8), push); err != nil {
		return err
	}
	if err := rec.CopyImageToBuffer(img, readback); err != nil {
		return err
	}
	seq, err := rec.Seal()
	if err != nil {
		return err
	}

	token, err := s.queue.Submit(seq)
	if err != nil {
		return err
	}
	if err := token.Wait(waitTimeout()); err != nil {
		return err
	}

	pixels, err := readback.Read()
	if err != nil {
		return err
	}

	if err := savePNG(output, pixels, int(width), int(height)); err != nil {
		return err
	}

	fmt.Printf("rendered %dx%d to %s\n", width, height, output)
	return nil
}
