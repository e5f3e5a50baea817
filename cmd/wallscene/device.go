package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/wallscene"
)

// device is a standalone Vulkan device used for offscreen rendering.
type device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

// openDevice picks the first discrete or integrated adapter, falling back to
// whatever the backend exposes.
func openDevice() (*device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	wallscene.Logger().Info("wallscene: adapter selected", "adapter", selected.Info.Name)
	return &device{instance: instance, device: openDev.Device, queue: openDev.Queue}, nil
}

func (d *device) Close() {
	d.device.Destroy()
	d.instance.Destroy()
}
