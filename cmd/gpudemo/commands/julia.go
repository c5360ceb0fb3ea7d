package commands

import (
	"github.com/spf13/cobra"
)

var (
	juliaWidth  uint32
	juliaHeight uint32
	juliaCReal  float64
	juliaCImag  float64
	juliaSpan   float64
	juliaOut    string
)

var juliaCmd = &cobra.Command{
	Use:   "julia",
	Short: "Render a Julia set to a PNG",
	Long: `Renders the Julia set for the parameter c given by --creal and
--cimag. The kernel and plumbing are shared with the mandelbrot
command; only the iteration seed differs.`,
	RunE: runJulia,
}

func init() {
	juliaCmd.Flags().Uint32Var(&juliaWidth, "width", 3200, "image width in pixels")
	juliaCmd.Flags().Uint32Var(&juliaHeight, "height", 2400, "image height in pixels")
	juliaCmd.Flags().Float64Var(&juliaCReal, "creal", -0.8, "real part of c")
	juliaCmd.Flags().Float64Var(&juliaCImag, "cimag", 0.156, "imaginary part of c")
	juliaCmd.Flags().Float64Var(&juliaSpan, "span", 3.5, "horizontal span of the viewport")
	juliaCmd.Flags().StringVarP(&juliaOut, "output", "o", "julia.png", "output PNG file")
	rootCmd.AddCommand(juliaCmd)
}

func runJulia(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	vp := viewportFor(0, 0, juliaSpan, juliaWidth, juliaHeight)
	push := vp.push(float32(juliaCReal), float32(juliaCImag))
	return renderFractal(s, "julia.spv", juliaWidth, juliaHeight, push, juliaOut)
}
