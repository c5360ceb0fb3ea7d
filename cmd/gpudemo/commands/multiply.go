package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	vk "github.com/vulkan-go/vulkan"

	vkm "github.com/lefp/vulkan-mandelbrot"
)

var multiplyCount int

var multiplyCmd = &cobra.Command{
	Use:   "multiply",
	Short: "Run the multiply-by-12 kernel over a buffer",
	Long: `Fills a buffer with ascending integers, dispatches a compute kernel
that multiplies every element by 12 in place, and verifies the result
on the host. This is the classic first compute workload: one storage
buffer, one dispatch, one readback.`,
	RunE: runMultiply,
}

func init() {
	multiplyCmd.Flags().IntVar(&multiplyCount, "count", 65536, "number of uint32 elements")
	rootCmd.AddCommand(multiplyCmd)
}

func runMultiply(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	shader, err := s.device.LoadShaderModuleFromFile(filepath.Join(shaderDir, "multiply.spv"))
	if err != nil {
		return err
	}
	defer shader.Destroy()

	layout := vkm.BindingLayout{{Kind: vkm.BindingStorageBuffer, Access: vkm.AccessReadWrite}}
	pipeline, err := s.device.BuildComputePipeline(shader, "main", layout, 0)
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	buf, err := s.alloc.AllocateBuffer(multiplyCount, 4, vk.BufferUsageStorageBufferBit, true)
	if err != nil {
		return err
	}
	if err := buf.FillUint32(func(i int) uint32 { return uint32(i) }); err != nil {
		return err
	}

	bindings, err := vkm.NewBindingSet(pipeline, buf)
	if err != nil {
		return err
	}
	defer bindings.Destroy()

	rec := s.device.NewRecorder()
	if err := rec.Dispatch(pipeline, bindings, vkm.Grid1D(uint32(multiplyCount), 64), nil); err != nil {
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

	got, err := buf.ReadUint32()
	if err != nil {
		return err
	}
	for i, v := range got {
		if v != uint32(i)*12 {
			return fmt.Errorf("element %d: got %d, expected %d", i, v, uint32(i)*12)
		}
	}

	fmt.Printf("multiplied %d elements by 12, contents verified\n", multiplyCount)
	return nil
}
