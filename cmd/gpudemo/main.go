package main

import (
	"os"

	"github.com/lefp/vulkan-mandelbrot/cmd/gpudemo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
