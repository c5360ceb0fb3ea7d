package commands

import (
	"github.com/spf13/cobra"
)

var (
	mandelbrotWidth  uint32
	mandelbrotHeight uint32
	mandelbrotCX     float64
	mandelbrotCY     float64
	mandelbrotSpan   float64
	mandelbrotOut    string
)

var mandelbrotCmd = &cobra.Command{
	Use:   "mandelbrot",
	Short: "Render the Mandelbrot set to a PNG",
	Long: `Renders the Mandelbrot set with a compute kernel writing directly
into a storage image, then reads the image back and writes it as a
PNG. The viewport flags select the region of the complex plane.`,
	RunE: runMandelbrot,
}

func init() {
	mandelbrotCmd.Flags().Uint32Var(&mandelbrotWidth, "width", 3200, "image width in pixels")
	mandelbrotCmd.Flags().Uint32Var(&mandelbrotHeight, "height", 2400, "image height in pixels")
	mandelbrotCmd.Flags().Float64Var(&mandelbrotCX, "cx", -0.5, "viewport center, real axis")
	mandelbrotCmd.Flags().Float64Var(&mandelbrotCY, "cy", 0, "viewport center, imaginary axis")
	mandelbrotCmd.Flags().Float64Var(&mandelbrotSpan, "span", 3, "horizontal span of the viewport")
	mandelbrotCmd.Flags().StringVarP(&mandelbrotOut, "output", "o", "mandelbrot.png", "output PNG file")
	rootCmd.AddCommand(mandelbrotCmd)
}

func runMandelbrot(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	vp := viewportFor(mandelbrotCX, mandelbrotCY, mandelbrotSpan, mandelbrotWidth, mandelbrotHeight)
	return renderFractal(s, "mandelbrot.spv", mandelbrotWidth, mandelbrotHeight, vp.push(), mandelbrotOut)
}
