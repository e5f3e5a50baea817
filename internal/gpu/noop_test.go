package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposed no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// bufferWrite is one captured queue write.
type bufferWrite struct {
	buf    hal.Buffer
	offset uint64
	data   []byte
}

// captureWrites swaps the queue writer of bs for one that records writes.
func captureWrites(bs *BufferSet) *[]bufferWrite {
	var writes []bufferWrite
	bs.write = func(buf hal.Buffer, offset uint64, data []byte) error {
		writes = append(writes, bufferWrite{buf: buf, offset: offset, data: append([]byte(nil), data...)})
		return nil
	}
	return &writes
}
