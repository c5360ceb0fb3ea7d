package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	vkm "github.com/lefp/vulkan-mandelbrot"
)

var (
	cfgFile   string
	verbose   bool
	shaderDir string
)

var rootCmd = &cobra.Command{
	Use:   "gpudemo",
	Short: "Headless Vulkan compute demos",
	Long: `gpudemo runs small compute workloads on a Vulkan device without
opening a window: buffer copies, a multiply kernel, image clears, and
fractal renders written out as PNG files.

Device selection is driven by the --device substring filter (or the
GPUDEMO_DEVICE environment variable), matched case-insensitively
against the enumerated device names.`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gpudemo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("device", "", "substring filter on the physical device name")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "wait timeout per submission (0 waits forever)")
	rootCmd.PersistentFlags().StringVar(&shaderDir, "shader-dir", "shaders", "directory holding compiled .spv kernels")
	rootCmd.PersistentFlags().Bool("validation", false, "enable the Khronos validation layer")

	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("validation", rootCmd.PersistentFlags().Lookup("validation"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gpudemo")
	}

	viper.SetEnvPrefix("GPUDEMO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	vkm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// session is the shared device state every subcommand needs.
type session struct {
	instance *vkm.Instance
	device   *vkm.Device
	queue    *vkm.Queue
	alloc    *vkm.Allocator
}

// openSession initializes Vulkan, selects a physical device per the
// configured filter, and brings up a compute queue on it.
func openSession() (*session, error) {
	if err := vkm.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing vulkan: %w", err)
	}

	app := &vkm.App{Name: "gpudemo"}
	if viper.GetBool("validation") {
		if err := app.EnableValidation(); err != nil {
			fmt.Fprintln(os.Stderr, "validation layer unavailable:", err)
		}
	}

	instance, err := app.CreateInstance()
	if err != nil {
		return nil, fmt.Errorf("creating instance: %w", err)
	}

	pred := vkm.MatchDeviceName(viper.GetString("device")).
		And(vkm.MatchQueueCapability(vkm.CapabilityCompute))

	physical, err := instance.Select(pred)
	if err != nil {
		instance.Destroy()
		return nil, err
	}

	device, queue, err := physical.PickQueue(vkm.CapabilityCompute)
	if err != nil {
		instance.Destroy()
		return nil, err
	}

	return &session{
		instance: instance,
		device:   device,
		queue:    queue,
		alloc:    device.NewAllocator(),
	}, nil
}

func (s *session) close() {
	s.device.WaitIdle()
	s.alloc.Destroy()
	s.queue.Destroy()
	s.device.Destroy()
	s.instance.Destroy()
}

// waitTimeout is the per-submission wait limit from configuration.
func waitTimeout() time.Duration {
	return viper.GetDuration("timeout")
}
