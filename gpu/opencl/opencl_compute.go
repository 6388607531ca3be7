package opencl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"blackhole/config"
	"blackhole/gpu"
	"blackhole/sim"
	"blackhole/texture"
)

// Compute owns every device resource for the process lifetime: context,
// queue, program, both kernels, the outcome table buffers, both texture
// buffers and the destination frame buffer. Nothing is released before exit
// except on constructor failure.
type Compute struct {
	cfg config.Settings

	context      *cl.Context
	queue        *cl.CommandQueue
	program      *cl.Program
	genKernel    *cl.Kernel
	renderKernel *cl.Kernel

	anglesBuf   *cl.MemObject
	capturedBuf *cl.MemObject
	skyBuf      *cl.MemObject
	surfaceBuf  *cl.MemObject
	destBuf     *cl.MemObject
	destBytes   int

	skyW, skyH   int
	surfW, surfH int

	deviceName string
	generated  bool
}

var _ gpu.Compute = (*Compute)(nil)

// findDevice prefers a GPU on any platform and falls back to a CPU device.
func findDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with clinfo"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed")
	}
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeGPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0], nil
		}
	}
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeCPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0], nil
		}
	}
	return nil, errors.New("no suitable OpenCL devices found")
}

// NewCompute builds the full device pipeline and uploads both textures. Any
// failure releases whatever was created so far and reports the failing stage.
func NewCompute(cfg config.Settings, sky, surface *texture.Texture) (*Compute, error) {
	device, err := findDevice()
	if err != nil {
		return nil, err
	}

	c := &Compute{
		cfg:        cfg,
		skyW:       sky.Width,
		skyH:       sky.Height,
		surfW:      surface.Width,
		surfH:      surface.Height,
		deviceName: device.Name(),
	}

	c.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	c.queue, err = c.context.CreateCommandQueue(device, 0)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	c.program, err = c.context.CreateProgramWithSource([]string{raysKernelSource, renderKernelSource})
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := c.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		c.Cleanup()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	c.genKernel, err = c.program.CreateKernel("gen_outcomes")
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("creating outcome kernel: %w", err)
	}
	c.renderKernel, err = c.program.CreateKernel("render_frame")
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("creating render kernel: %w", err)
	}

	n := cfg.TableSize
	c.anglesBuf, err = c.context.CreateEmptyBuffer(cl.MemReadWrite, n*4)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("allocating angle buffer: %w", err)
	}
	c.capturedBuf, err = c.context.CreateEmptyBuffer(cl.MemReadWrite, n)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("allocating outcome buffer: %w", err)
	}
	c.skyBuf, err = c.context.CreateEmptyBuffer(cl.MemReadOnly, len(sky.Pix))
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("allocating sky texture buffer: %w", err)
	}
	c.surfaceBuf, err = c.context.CreateEmptyBuffer(cl.MemReadOnly, len(surface.Pix))
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("allocating surface texture buffer: %w", err)
	}

	if _, err := c.queue.EnqueueWriteBuffer(c.skyBuf, true, 0, len(sky.Pix), unsafe.Pointer(&sky.Pix[0]), nil); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("uploading sky texture: %w", err)
	}
	if _, err := c.queue.EnqueueWriteBuffer(c.surfaceBuf, true, 0, len(surface.Pix), unsafe.Pointer(&surface.Pix[0]), nil); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("uploading surface texture: %w", err)
	}

	fmt.Printf("OpenCL device: %s\n", c.deviceName)
	return c, nil
}

func (c *Compute) Name() string {
	return fmt.Sprintf("OpenCL (%s)", c.deviceName)
}

// GenerateOutcomes runs the one-shot generator kernel, one work item per
// angle bucket. The table stays resident in device memory for the render
// kernel; the host copy is returned for logging and diagnostics.
func (c *Compute) GenerateOutcomes() (*sim.Table, error) {
	n := c.cfg.TableSize
	err := c.genKernel.SetArgs(
		c.anglesBuf,
		c.capturedBuf,
		float32(c.cfg.MinAngle),
		float32(c.cfg.MaxAngle),
		int32(n),
		float32(c.cfg.StartRadius),
	)
	if err != nil {
		return nil, fmt.Errorf("setting outcome kernel arguments: %w", err)
	}
	if _, err := c.queue.EnqueueNDRangeKernel(c.genKernel, nil, []int{n}, nil, nil); err != nil {
		return nil, fmt.Errorf("enqueueing outcome kernel: %w", err)
	}

	table := &sim.Table{
		MinAngle: c.cfg.MinAngle,
		MaxAngle: c.cfg.MaxAngle,
		Angles:   make([]float32, n),
		Captured: make([]uint8, n),
	}
	if _, err := c.queue.EnqueueReadBufferFloat32(c.anglesBuf, true, 0, table.Angles, nil); err != nil {
		return nil, fmt.Errorf("reading angle buffer: %w", err)
	}
	if _, err := c.queue.EnqueueReadBuffer(c.capturedBuf, true, 0, n, unsafe.Pointer(&table.Captured[0]), nil); err != nil {
		return nil, fmt.Errorf("reading outcome buffer: %w", err)
	}
	if err := c.queue.Finish(); err != nil {
		return nil, fmt.Errorf("waiting for outcome generation: %w", err)
	}

	c.generated = true
	return table, nil
}

// RenderFrame submits the compositor kernel and blocks on the read-back.
// The blocking read is the frame barrier: by the time this returns, dst
// holds the completed frame and the next submission cannot overlap it.
func (c *Compute) RenderFrame(v gpu.View, dst []byte) error {
	if !c.generated {
		return errors.New("outcome table has not been generated")
	}
	if v.Pitch < v.Width {
		return fmt.Errorf("row pitch %d is smaller than width %d", v.Pitch, v.Width)
	}
	need := v.Pitch * v.Height * 4
	if len(dst) < need {
		return fmt.Errorf("destination buffer holds %d bytes, frame needs %d", len(dst), need)
	}
	if err := c.ensureDestBuffer(need); err != nil {
		return err
	}

	err := c.renderKernel.SetArgs(
		c.destBuf,
		c.anglesBuf,
		c.capturedBuf,
		int32(v.Width),
		int32(v.Height),
		int32(v.Pitch),
		v.CX,
		v.CY,
		c.skyBuf,
		int32(c.skyW),
		int32(c.skyH),
		c.surfaceBuf,
		int32(c.surfW),
		int32(c.surfH),
		int32(c.cfg.Antialias),
		int32(c.cfg.TableSize),
		float32(c.cfg.MinAngle),
		float32(c.cfg.MaxAngle),
		float32(c.cfg.FOVScale),
		float32(c.cfg.RotationScale),
	)
	if err != nil {
		return fmt.Errorf("setting render kernel arguments: %w", err)
	}
	if _, err := c.queue.EnqueueNDRangeKernel(c.renderKernel, nil, []int{v.Width, v.Height}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing render kernel: %w", err)
	}
	if _, err := c.queue.EnqueueReadBuffer(c.destBuf, true, 0, need, unsafe.Pointer(&dst[0]), nil); err != nil {
		return fmt.Errorf("reading frame buffer: %w", err)
	}
	return nil
}

// ensureDestBuffer sizes the destination buffer to the requested frame. The
// pitch comes from the presentation surface, so the buffer can only be
// allocated once the first frame's geometry is known.
func (c *Compute) ensureDestBuffer(bytes int) error {
	if c.destBuf != nil && bytes <= c.destBytes {
		return nil
	}
	if c.destBuf != nil {
		c.destBuf.Release()
		c.destBuf = nil
		c.destBytes = 0
	}
	buf, err := c.context.CreateEmptyBuffer(cl.MemWriteOnly, bytes)
	if err != nil {
		return fmt.Errorf("allocating frame buffer: %w", err)
	}
	c.destBuf = buf
	c.destBytes = bytes
	return nil
}

// Cleanup releases device resources in reverse creation order. Safe to call
// on a partially constructed Compute.
func (c *Compute) Cleanup() {
	if c.destBuf != nil {
		c.destBuf.Release()
		c.destBuf = nil
	}
	if c.surfaceBuf != nil {
		c.surfaceBuf.Release()
		c.surfaceBuf = nil
	}
	if c.skyBuf != nil {
		c.skyBuf.Release()
		c.skyBuf = nil
	}
	if c.capturedBuf != nil {
		c.capturedBuf.Release()
		c.capturedBuf = nil
	}
	if c.anglesBuf != nil {
		c.anglesBuf.Release()
		c.anglesBuf = nil
	}
	if c.renderKernel != nil {
		c.renderKernel.Release()
		c.renderKernel = nil
	}
	if c.genKernel != nil {
		c.genKernel.Release()
		c.genKernel = nil
	}
	if c.program != nil {
		c.program.Release()
		c.program = nil
	}
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.context != nil {
		c.context.Release()
		c.context = nil
	}
}
