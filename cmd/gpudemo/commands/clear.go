package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	vk "github.com/vulkan-go/vulkan"

	vkm "github.com/lefp/vulkan-mandelbrot"
)

var (
	clearSize   uint32
	clearOutput string
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear an image to blue and read it back",
	Long: `Creates a device-local RGBA8 image, clears every pixel to opaque
blue, copies the pixels into a host-visible buffer, and verifies them.
With --output the result is also written out as a PNG.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().Uint32Var(&clearSize, "size", 1024, "image width and height in pixels")
	clearCmd.Flags().StringVarP(&clearOutput, "output", "o", "", "write the cleared image to this PNG file")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	img, err := s.alloc.AllocateImage(clearSize, clearSize, vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageTransferDstBit|vk.ImageUsageTransferSrcBit)
	if err != nil {
		return err
	}

	readback, err := s.alloc.AllocateBuffer(int(img.ByteSize()), 1, vk.BufferUsageTransferDstBit, true)
	if err != nil {
		return err
	}

	blue := vkm.RGBA{B: 1, A: 1}

	rec := s.device.NewRecorder()
	if err := rec.ClearImage(img, blue); err != nil {
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

	want := blue.RGBA8()
	for i := 0; i+3 < len(pixels); i += 4 {
		if pixels[i] != want[0] || pixels[i+1] != want[1] || pixels[i+2] != want[2] || pixels[i+3] != want[3] {
			return fmt.Errorf("pixel %d: got [%d %d %d %d], expected %v",
				i/4, pixels[i], pixels[i+1], pixels[i+2], pixels[i+3], want)
		}
	}

	fmt.Printf("cleared %dx%d image to blue, all pixels verified\n", clearSize, clearSize)

	if clearOutput != "" {
		if err := savePNG(clearOutput, pixels, int(clearSize), int(clearSize)); err != nil {
			return err
		}
		fmt.Println("wrote", clearOutput)
	}
	return nil
}
