package stepfn

import (
	"container/heap"
	"fmt"
)

// Compact re-applies f's compaction mode and point budget to an arbitrary
// breakpoint list, returning a new StepFunction.
func (f StepFunction) Compact(data []Point) (StepFunction, error) {
	cp := append([]Point(nil), data...)
	cp = compact(cp, f.mode, f.maxSize)
	return New(cp)
}

// Mult scales every y value by k. k == 0 returns the zero function,
// preserving max_size and mode.
func (f StepFunction) Mult(k float32) StepFunction {
	if k == 0 {
		return StepFunction{maxSize: f.maxSize, mode: f.mode}
	}
	data := make([]Point, len(f.data))
	for i, p := range f.data {
		data[i] = Point{X: p.X, Y: p.Y * k}
	}
	return StepFunction{data: data, maxSize: f.maxSize, mode: f.mode}
}

// Add returns the pointwise sum of f and other, under zip, compacted to
// f's budget and mode.
func (f StepFunction) Add(other StepFunction) StepFunction {
	return f.combine(other, func(l, r float32) float32 { return l + r })
}

// Choice returns the pointwise convex combination alpha*f + (1-alpha)*other,
// under zip, compacted to f's budget and mode.
func (f StepFunction) Choice(alpha float32, other StepFunction) StepFunction {
	return f.combine(other, func(l, r float32) float32 { return l*alpha + r*(1-alpha) })
}

func (f StepFunction) combine(other StepFunction, fn func(l, r float32) float32) StepFunction {
	var data []Point
	z := f.Zip(other)
	for {
		p, ok := z.Next()
		if !ok {
			break
		}
		data = append(data, Point{X: p.X, Y: fn(p.L, p.R)})
	}
	data = compact(data, f.mode, f.maxSize)
	return StepFunction{data: data, maxSize: f.maxSize, mode: f.mode}
}

// candidate is a compaction-pass heap entry: a point eligible for removal
// because it lies on a monotone run between its neighbours.
type candidate struct {
	bin     int     // dist binned by granularity, to damp floating-point noise
	idx     int     // index of the candidate point in data
	dist    float32 // gap to the right neighbour if useLeft, else to the left one
	useLeft bool    // true: survivor absorbs the greater x; false: the smaller
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

// Less reports whether i must be popped before j: smallest bin wins, and
// on a bin tie the larger index wins (DESIGN.md explains why this
// tie-break was chosen).
func (h candidateHeap) Less(i, j int) bool {
	if h[i].bin != h[j].bin {
		return h[i].bin < h[j].bin
	}
	return h[i].idx > h[j].idx
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// compact collapses data down to at most maxSize points using mode to
// decide which side of each monotone run survives. It first deduplicates
// consecutive equal-y points (a duplicate x between any two consecutive
// input points is a programmer error and panics), then, if still over budget, repeatedly
// removes the closest candidate pair on a monotone run via a distance-keyed
// max-heap until the budget is met, recursing if a bin-skip left it short.
func compact(data []Point, mode CompactionMode, maxSize int) []Point {
	pos := 0
	var prevY float32
	prevX := float32(-1)
	for i := 0; i < len(data); i++ {
		x, y := data[i].X, data[i].Y
		if y != prevY {
			data[pos] = Point{X: x, Y: y}
			prevY = y
			pos++
		}
		if x == prevX {
			panic(fmt.Sprintf("stepfn: duplicate x %v in compaction input", x))
		}
		prevX = x
	}
	data = data[:pos]

	if len(data) <= maxSize {
		return data
	}

	scale := data[len(data)-1].X
	granularity := scale / 10000

	mk := func(dist float32, idx int, useLeft bool) candidate {
		return candidate{bin: int(dist / granularity), idx: idx, dist: dist, useLeft: useLeft}
	}

	h := &candidateHeap{}
	for i := 0; i+2 < len(data); i++ {
		a, b, c := data[i], data[i+1], data[i+2]
		var useLeft bool
		switch {
		case a.Y >= b.Y && b.Y >= c.Y:
			useLeft = mode == OverApproximate
		case a.Y <= b.Y && b.Y <= c.Y:
			useLeft = mode == UnderApproximate
		default:
			continue // local extremum: never a removal candidate
		}
		var dist float32
		if useLeft {
			dist = c.X - b.X
		} else {
			dist = b.X - a.X
		}
		heap.Push(h, mk(dist, i+1, useLeft))
	}

	toRemove := len(data) - maxSize
	lastBin := -1
	for h.Len() > 0 {
		d := heap.Pop(h).(candidate)
		if d.bin == lastBin {
			// decorrelate removals within the same distance bin
			lastBin = -1
			continue
		}
		lastBin = d.bin

		if data[d.idx].Y < 0 {
			continue // already tombstoned
		}

		neighbour, n2 := -1, -1
		for i := d.idx - 1; i >= 0; i-- {
			if data[i].Y >= 0 {
				if neighbour == -1 {
					neighbour = i
				} else {
					n2 = i
					break
				}
			}
		}
		if neighbour != -1 {
			if n2 != -1 && (data[n2].Y-data[neighbour].Y)*(data[neighbour].Y-data[d.idx].Y) <= 0 {
				heap.Push(h, mk(data[d.idx].X-data[neighbour].X+d.dist, d.idx, d.useLeft))
			}
			if d.useLeft {
				data[d.idx] = data[neighbour]
			} else {
				data[d.idx].X = data[neighbour].X
			}
			data[neighbour].Y = -1
		}

		toRemove--
		if toRemove == 0 {
			break
		}
	}

	out := data[:0]
	for _, p := range data {
		if p.Y >= 0 {
			out = append(out, p)
		}
	}
	data = out

	// a skipped bin may have left the heap exhausted with length still
	// above maxSize; recurse to run another pass.
	return compact(data, mode, maxSize)
}
