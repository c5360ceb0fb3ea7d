package vkm

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

var end = "\x00"
var endChar byte = '\x00'

// noTimeout is the fence wait value meaning "block indefinitely".
const noTimeout = ^uint64(0)

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	for i := range list {
		list[i] = safeString(list[i])
	}
	return list
}

// toBytes will take an unsafe.Pointer and length in bytes and convert it
// to a byte slice
func toBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:lenInBytes]
}

func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer(unsafe.SliceData(data)))[:len(data)/4]
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// vkResult converts a vk.Result to an error, mapping the conditions this
// package gives dedicated sentinels to.
func vkResult(r vk.Result) error {
	switch r {
	case vk.Success:
		return nil
	case vk.Timeout:
		return ErrTimeout
	case vk.ErrorDeviceLost:
		return fmt.Errorf("%w: vulkan reported VK_ERROR_DEVICE_LOST", ErrDeviceLost)
	default:
		return vk.Error(r)
	}
}
