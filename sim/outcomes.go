package sim

import (
	"runtime"
	"sync"
)

// Table is the precomputed outcome of every discretized incidence angle.
// Entry i covers incidence angle MinAngle + i*(MaxAngle-MinAngle)/(N-1).
// It is generated exactly once at startup and never written again, so every
// frame may read it concurrently without synchronization.
type Table struct {
	MinAngle float64
	MaxAngle float64

	Angles   []float32 // result angle per bucket
	Captured []uint8   // 1 when the ray fell below the capture radius
}

// Generate integrates every angle bucket in parallel and assembles the
// immutable table. Buckets are independent, so they are simply fanned out
// over a worker pool.
func Generate(minAngle, maxAngle float64, count int, startRadius float64) *Table {
	t := &Table{
		MinAngle: minAngle,
		MaxAngle: maxAngle,
		Angles:   make([]float32, count),
		Captured: make([]uint8, count),
	}

	work := make(chan int, count)
	for i := 0; i < count; i++ {
		work <- i
	}
	close(work)

	numWorkers := runtime.NumCPU()
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				frac := float64(i) / float64(count-1)
				slope := maxAngle*frac + minAngle*(1-frac)

				angle, captured := TraceRay(slope, startRadius)
				t.Angles[i] = float32(angle)
				if captured {
					t.Captured[i] = 1
				}
			}
		}()
	}
	wg.Wait()

	return t
}

// Lookup reads the table at a fractional bucket position. Uniform spacing
// makes the position itself the index; no search is needed. Positions off
// either end clamp to the edge entries.
//
// When the two straddled buckets disagree on capture, interpolating their
// angles would mix a horizon-crossing angle with an escape angle, so the
// lower bucket wins outright.
func (t *Table) Lookup(pos float64) (angle float32, captured bool) {
	if pos < 0 {
		pos = 0
	}
	i := int(pos)
	if i > len(t.Angles)-2 {
		i = len(t.Angles) - 2
	}
	f := float32(pos - float64(i))
	if f > 1 {
		f = 1
	}

	captured = t.Captured[i] != 0
	if t.Captured[i] != t.Captured[i+1] {
		return t.Angles[i], captured
	}
	return (1-f)*t.Angles[i] + f*t.Angles[i+1], captured
}

// Size returns the bucket count.
func (t *Table) Size() int { return len(t.Angles) }

// CapturedCount reports how many buckets fell in; handy for startup logging.
func (t *Table) CapturedCount() int {
	n := 0
	for _, c := range t.Captured {
		if c != 0 {
			n++
		}
	}
	return n
}
