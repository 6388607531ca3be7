package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"blackhole/config"
	"blackhole/sim"
	"blackhole/texture"
)

// CPUCompute implements the Compute interface with worker-pool parallelism.
// It is the fallback when no OpenCL device is available and the reference
// implementation the kernel code is checked against.
type CPUCompute struct {
	cfg        config.Settings
	sky        *texture.Texture
	surface    *texture.Texture
	table      *sim.Table
	numWorkers int
}

// NewCPUCompute creates a host-side compute backend. It owns the textures
// and, after GenerateOutcomes, the outcome table for the process lifetime.
func NewCPUCompute(cfg config.Settings, sky, surface *texture.Texture) (*CPUCompute, error) {
	numWorkers := runtime.NumCPU()
	fmt.Printf("Initializing CPU compute with %d workers\n", numWorkers)

	return &CPUCompute{
		cfg:        cfg,
		sky:        sky,
		surface:    surface,
		numWorkers: numWorkers,
	}, nil
}

func (c *CPUCompute) Name() string { return "CPU" }

// Cleanup releases nothing; all state here is garbage collected.
func (c *CPUCompute) Cleanup() {}

// GenerateOutcomes integrates every angle bucket across the worker pool.
func (c *CPUCompute) GenerateOutcomes() (*sim.Table, error) {
	c.table = sim.Generate(c.cfg.MinAngle, c.cfg.MaxAngle, c.cfg.TableSize, c.cfg.StartRadius)
	return c.table, nil
}

// RenderFrame composites one frame into dst, parallel across rows. Rows are
// independent and the table and textures are read-only, so workers share
// them without locks.
func (c *CPUCompute) RenderFrame(v View, dst []byte) error {
	if c.table == nil {
		return errors.New("outcome table has not been generated")
	}
	if v.Pitch < v.Width {
		return fmt.Errorf("row pitch %d is smaller than width %d", v.Pitch, v.Width)
	}
	if need := v.Pitch * v.Height * 4; len(dst) < need {
		return fmt.Errorf("destination buffer holds %d bytes, frame needs %d", len(dst), need)
	}

	work := make(chan int, v.Height)
	for y := 0; y < v.Height; y++ {
		work <- y
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(c.numWorkers)
	for w := 0; w < c.numWorkers; w++ {
		go func() {
			defer wg.Done()
			for y := range work {
				c.renderRow(v, y, dst)
			}
		}()
	}
	wg.Wait()

	return nil
}
