package vkm

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Initialize initializes Vulkan for headless compute work. It must be
// called once before creating an Instance. No windowing system is
// touched; programs that only dispatch kernels and read buffers back
// need nothing else.
func Initialize() error {
	err := vk.SetDefaultGetInstanceProcAddr()
	if err != nil {
		return err
	}
	err = vk.Init()
	if err != nil {
		return err
	}
	return nil
}

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v *Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App is used to provide information about this specific application to Vulkan
type App struct {
	// Name the name of the application
	Name string
	// EngineName the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// APIVersion the expected minimum version of the Vulkan API (i.e. 1.0.0)
	APIVersion Version

	// EnabledLayers the enabled layers
	EnabledLayers []string

	// EnabledExtensions the enabled extensions
	EnabledExtensions []string
}

// SupportedLayers returns a list of layers supported by the Vulkan
// runtime. Initialize must have been called first.
func SupportedLayers() ([]string, error) {
	var instanceLayerLen uint32
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&instanceLayerLen, nil))
	if err != nil {
		return nil, err
	}
	instanceLayer := make([]vk.LayerProperties, instanceLayerLen)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&instanceLayerLen, instanceLayer))
	if err != nil {
		return nil, err
	}
	layerNames := make([]string, 0)
	for _, layer := range instanceLayer {
		layer.Deref()
		layerNames = append(layerNames,
			vk.ToString(layer.LayerName[:]))
	}
	return layerNames, nil
}

// SupportedExtensions returns a list of instance extensions supported by
// the Vulkan runtime. Initialize must have been called first.
func SupportedExtensions() ([]string, error) {
	var instanceExtLen uint32
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &instanceExtLen, nil))
	if err != nil {
		return nil, err
	}
	instanceExt := make([]vk.ExtensionProperties, instanceExtLen)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &instanceExtLen, instanceExt))
	if err != nil {
		return nil, err
	}
	extNames := make([]string, 0)
	for _, ext := range instanceExt {
		ext.Deref()
		extNames = append(extNames,
			vk.ToString(ext.ExtensionName[:]))
	}
	return extNames, nil
}

// EnableValidation enables the Khronos validation layer if the runtime
// supports it.
func (a *App) EnableValidation() error {
	_, err := a.EnableLayer("VK_LAYER_KHRONOS_validation")
	return err
}

// EnableLayer enables a specific layer, verifying the runtime supports it.
func (a *App) EnableLayer(layer string) (*App, error) {
	if a.EnabledLayers == nil {
		a.EnabledLayers = make([]string, 0)
	}
	layers, err := SupportedLayers()
	if err != nil {
		return a, fmt.Errorf("error getting supported layers: %w", err)
	}
	for _, l := range layers {
		if l == layer {
			a.EnabledLayers = append(a.EnabledLayers, layer)
			return a, nil
		}
	}
	return a, fmt.Errorf("validation layer '%s' not found", layer)
}

// VKApplicationInfo creates a structure representing this application in a Vulkan friendly format
func (a *App) VKApplicationInfo() vk.ApplicationInfo {

	if a.APIVersion.Major < 1 {
		a.APIVersion.Major = 1
	}

	var appInfo = vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         a.APIVersion.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
	return appInfo
}

// CreateInstance creates the Vulkan instance
func (a *App) CreateInstance() (*Instance, error) {
	appInfo := a.VKApplicationInfo()

	extensions := safeStrings(a.EnabledExtensions)
	layers := safeStrings(a.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance := &Instance{}

	err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance.VKInstance))
	if err != nil {
		return nil, err
	}
	vk.InitInstance(instance.VKInstance)

	Logger().Debug("vulkan instance created", "app", a.Name, "layers", len(layers), "extensions", len(extensions))

	return instance, nil
}

// deviceNameString trims the fixed-size, NUL-padded device name array of
// the physical device properties to a Go string.
func deviceNameString(name [256]byte) string {
	return vk.ToString(name[:])
}

// PhysicalDevices returns a list of physical devices known to Vulkan
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, nil))
	if err != nil {
		return nil, err
	}

	if deviceCount == 0 {
		return nil, nil
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, devices))
	if err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, deviceCount)
	for i, device := range devices {
		ret[i] = &PhysicalDevice{}
		ret[i].VKPhysicalDevice = device

		vk.GetPhysicalDeviceProperties(device, &ret[i].VKPhysicalDeviceProperties)

		ret[i].VKPhysicalDeviceProperties.Deref()
		ret[i].DeviceName = deviceNameString(ret[i].VKPhysicalDeviceProperties.DeviceName)
	}
	return ret, nil

}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	// VKInstance is the native Vulkan instance object
	VKInstance vk.Instance
}

func (i *Instance) Destroy() error {
	vk.DestroyInstance(i.VKInstance, nil)
	return nil
}
