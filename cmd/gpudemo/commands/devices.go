package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	vkm "github.com/lefp/vulkan-mandelbrot"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Vulkan physical devices",
	Long: `Enumerate every Vulkan physical device visible to the process,
with its queue family capabilities. Useful for choosing a --device
filter on machines with more than one GPU.`,
	RunE: runDevices,
}

var devicesShowInstance bool

func init() {
	devicesCmd.Flags().BoolVar(&devicesShowInstance, "instance", false, "also list instance layers and extensions")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	if err := vkm.Initialize(); err != nil {
		return fmt.Errorf("initializing vulkan: %w", err)
	}

	if devicesShowInstance {
		layers, err := vkm.SupportedLayers()
		if err != nil {
			return fmt.Errorf("enumerating layers: %w", err)
		}
		exts, err := vkm.SupportedExtensions()
		if err != nil {
			return fmt.Errorf("enumerating extensions: %w", err)
		}
		fmt.Println("instance layers:")
		for _, l := range layers {
			fmt.Println("  ", l)
		}
		fmt.Println("instance extensions:")
		for _, e := range exts {
			fmt.Println("  ", e)
		}
		fmt.Println()
	}

	app := &vkm.App{Name: "gpudemo"}
	instance, err := app.CreateInstance()
	if err != nil {
		return fmt.Errorf("creating instance: %w", err)
	}
	defer instance.Destroy()

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("no Vulkan devices found")
		return nil
	}

	for i, d := range devices {
		fmt.Printf("%d: %s\n", i, d.DeviceName)
		qfs, err := d.QueueFamilies()
		if err != nil {
			fmt.Printf("   queue families unavailable: %v\n", err)
			continue
		}
		for _, qf := range qfs {
			fmt.Printf("   family %d: compute=%v graphics=%v transfer=%v\n",
				qf.Index, qf.Compute, qf.Graphics, qf.Transfer)
		}
	}

	return nil
}
