package stepfn

import "math"

// Iter walks one of the three breakpoint views described in the package
// doc: raw (breakpoints as stored), graph (0,0 prepended), or func (0,0
// prepended and a final point at +Inf carrying the last y, used by
// Integrate and the pairwise arithmetic so the right-constant extension to
// infinity is explicit).
type Iter struct {
	data  []Point
	idx   int
	prev  Point
	first bool
	last  bool
}

// RawIter returns the breakpoints exactly as stored.
func (f StepFunction) RawIter() Iter {
	return Iter{data: f.data}
}

// GraphIter prepends (0, 0) to the raw breakpoints.
func (f StepFunction) GraphIter() Iter {
	return Iter{data: f.data, first: true}
}

// FuncIter prepends (0, 0), yields the raw breakpoints, then appends
// (+Inf, lastY).
func (f StepFunction) FuncIter() Iter {
	return Iter{data: f.data, first: true, last: true}
}

// Next returns the next point in the view, or ok=false once exhausted.
func (it *Iter) Next() (Point, bool) {
	if it.first {
		it.first = false
		return Point{0, 0}, true
	}
	if it.idx < len(it.data) {
		p := it.data[it.idx]
		it.idx++
		it.prev = p
		return p, true
	}
	if it.last {
		it.last = false
		return Point{X: inf32, Y: it.prev.Y}, true
	}
	return Point{}, false
}

var inf32 = float32(math.Inf(1))

// aggregatingIter coalesces consecutive points whose x values are within
// 5*epsilon relative distance of each other, reporting the midpoint x and
// the latest y.
type aggregatingIter struct {
	data    []Point
	idx     int
	current Point
	has     bool
}

func newAggregatingIter(data []Point) *aggregatingIter {
	return &aggregatingIter{data: data}
}

func (a *aggregatingIter) peek() (Point, bool) {
	if a.has {
		return a.current, true
	}
	if a.idx >= len(a.data) {
		return Point{}, false
	}
	first := a.data[a.idx]
	a.idx++
	last := first
	for a.idx < len(a.data) {
		next := a.data[a.idx]
		if abs32(next.X-first.X)/first.X <= 5*epsilon {
			last = next
			a.idx++
		} else {
			break
		}
	}
	a.current = Point{X: first.X + (last.X-first.X)/2, Y: last.Y}
	a.has = true
	return a.current, true
}

func (a *aggregatingIter) next() (Point, bool) {
	p, ok := a.peek()
	a.has = false
	return p, ok
}

// ZipIter yields, for every x that appears as a breakpoint in either of two
// step functions (in ascending order), the x and the pair of y values each
// side reports there. At any output point, the side with no breakpoint at
// that x reports its most recently seen y (initially 0). Breakpoints from
// the two inputs whose x coordinates are within 5*epsilon relative
// distance of each other are coalesced into a single output point at their
// midpoint, carrying the latest y from each side.
type ZipIter struct {
	left, right  *aggregatingIter
	lPrev, rPrev float32
}

// Zip returns a ZipIter over f and other's raw breakpoints.
func (f StepFunction) Zip(other StepFunction) *ZipIter {
	return &ZipIter{
		left:  newAggregatingIter(f.data),
		right: newAggregatingIter(other.data),
	}
}

// ZipPoint is one output of a ZipIter: the shared x and the two sides' y
// values at that x.
type ZipPoint struct {
	X    float32
	L, R float32
}

// Next returns the next zipped point, or ok=false once both sides are
// exhausted.
func (z *ZipIter) Next() (ZipPoint, bool) {
	l, lok := z.left.peek()
	r, rok := z.right.peek()
	switch {
	case lok && rok:
		if abs32(l.X-r.X)/max32(r.X, 1e-10) <= 5*epsilon {
			z.lPrev = z.left.next1()
			z.rPrev = z.right.next1()
			return ZipPoint{X: l.X + (r.X-l.X)/2, L: l.Y, R: r.Y}, true
		} else if l.X < r.X {
			z.lPrev = z.left.next1()
			return ZipPoint{X: l.X, L: l.Y, R: z.rPrev}, true
		}
		z.rPrev = z.right.next1()
		return ZipPoint{X: r.X, L: z.lPrev, R: r.Y}, true
	case lok:
		z.lPrev = z.left.next1()
		return ZipPoint{X: l.X, L: l.Y, R: z.rPrev}, true
	case rok:
		z.rPrev = z.right.next1()
		return ZipPoint{X: r.X, L: z.lPrev, R: r.Y}, true
	default:
		return ZipPoint{}, false
	}
}

// next1 advances the iterator and returns the consumed point's y, for use
// where the caller already peeked the full point via peek().
func (a *aggregatingIter) next1() float32 {
	p, _ := a.next()
	return p.Y
}

// All drains a ZipIter into a slice; useful in tests and small functions.
func (z *ZipIter) All() []ZipPoint {
	var out []ZipPoint
	for {
		p, ok := z.Next()
		if !ok {
			return out
		}
		out = append(out, p)
	}
}
