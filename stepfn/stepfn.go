package stepfn

// epsilon is single-precision machine epsilon: the smallest float32 value
// such that 1+epsilon != 1. The x-coalescing threshold of aggregatingIter
// and ZipIter is stated relative to it.
const epsilon float32 = 1.1920929e-07

// DefaultMaxSize is the default point budget for a StepFunction.
const DefaultMaxSize = 10000

// CompactionMode selects which side of a monotone run compaction prefers to
// keep when collapsing two neighbouring breakpoints into one.
//
// UnderApproximate never increases At(x) for any x; OverApproximate never
// decreases it. Both are exact away from the collapsed points.
type CompactionMode int

const (
	// UnderApproximate prefers shifting survivors left on rising runs,
	// under-approximating a CDF read as P(X <= x).
	UnderApproximate CompactionMode = iota
	OverApproximate
)

// Point is a single (x, y) breakpoint.
type Point struct {
	X, Y float32
}

// StepFunction is a non-negative, piecewise-constant function on
// [0, +Inf), represented as an ordered, strictly-increasing-in-x list of
// breakpoints. The value at a query point q is the y of the last
// breakpoint with x <= q; below the first breakpoint the value is 0; above
// the last breakpoint the value is the last y (right-constant extension).
//
// StepFunction is value-typed and logically immutable: all of its methods
// that compute a derived function return a new instance and never modify
// the receiver's breakpoints in place.
type StepFunction struct {
	data    []Point // never mutated after a StepFunction is constructed
	maxSize int
	mode    CompactionMode
}

// Zero returns the identically-zero step function.
func Zero() StepFunction {
	return StepFunction{maxSize: DefaultMaxSize}
}

// New constructs a StepFunction from an ordered list of breakpoints.
//
// It fails with ErrInvalidDataRange if any coordinate is negative, and with
// ErrNonMonotonicData if the x coordinates are not strictly increasing. An
// empty slice yields the zero function.
func New(points []Point) (StepFunction, error) {
	for _, p := range points {
		if p.X < 0 || p.Y < 0 {
			return StepFunction{}, ErrInvalidDataRange
		}
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].X >= points[i].X {
			return StepFunction{}, ErrNonMonotonicData
		}
	}
	var data []Point
	if len(points) > 0 {
		data = append(data, points...)
	}
	return StepFunction{data: data, maxSize: DefaultMaxSize, mode: UnderApproximate}, nil
}

// MaxSize returns the point budget this function compacts to.
func (f StepFunction) MaxSize() int { return f.maxSize }

// Mode returns the compaction mode this function uses.
func (f StepFunction) Mode() CompactionMode { return f.mode }

// WithMaxSize returns a copy of f with a different point budget. It does
// not itself re-compact the existing data; the new budget takes effect on
// the next operation that compacts.
func (f StepFunction) WithMaxSize(maxSize int) StepFunction {
	f.maxSize = maxSize
	return f
}

// WithMode returns a copy of f using a different compaction mode.
func (f StepFunction) WithMode(mode CompactionMode) StepFunction {
	f.mode = mode
	return f
}

// Data returns the function's raw breakpoints. The returned slice is a copy
// and may be freely modified by the caller.
func (f StepFunction) Data() []Point {
	out := make([]Point, len(f.data))
	copy(out, f.data)
	return out
}

// At returns the step value at x: the y of the last breakpoint with
// x' <= x, or 0 if x is below the first breakpoint.
func (f StepFunction) At(x float32) float32 {
	for i := len(f.data) - 1; i >= 0; i-- {
		if f.data[i].X <= x {
			return f.data[i].Y
		}
	}
	return 0
}

// MaxX returns the last breakpoint's x coordinate, or 0 if f is empty.
func (f StepFunction) MaxX() float32 {
	if len(f.data) == 0 {
		return 0
	}
	return f.data[len(f.data)-1].X
}

// Integrate returns the Riemann integral of f over [from, to], under the
// right-constant extension between breakpoints. Past the last breakpoint
// the function keeps its last y, so that region contributes last y times
// its length within [from, to].
func (f StepFunction) Integrate(from, to float32) float32 {
	var sum float32
	it := f.FuncIter()
	prev, ok := it.Next()
	if !ok {
		return 0
	}
	for {
		cur, ok := it.Next()
		if !ok {
			break
		}
		lo, hi := max32(prev.X, from), min32(cur.X, to)
		if lo < hi {
			sum += (hi - lo) * prev.Y
		}
		prev = cur
	}
	return sum
}

// Similar reports whether f and other agree to within a relative tolerance
// of 1e-6 at every stored breakpoint, after first checking they have the
// same number of breakpoints. It is intended for round-trip tests
// (parse(format(f)).Similar(f)), not general-purpose function comparison.
func (f StepFunction) Similar(other StepFunction) bool {
	if len(f.data) != len(other.data) {
		return false
	}
	for i := range f.data {
		if !similar(f.data[i].X, other.data[i].X) || !similar(f.data[i].Y, other.data[i].Y) {
			return false
		}
	}
	return true
}

func similar(a, b float32) bool {
	switch {
	case a == 0:
		return abs32(b) < 1e-6
	case b == 0:
		return abs32(a) < 1e-6
	default:
		return abs32(a-b)/max32(abs32(a), abs32(b)) < 1e-6
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Ordering is the result of Compare: the standard three-way comparison,
// used only when the two functions are in fact comparable everywhere.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
)

// Compare compares f and other pointwise over their zip. It returns
// (Less, true) if f <= other everywhere with strict inequality somewhere,
// (Greater, true) symmetrically, (Equal, true) if identical, and
// (_, false) if neither function dominates the other everywhere.
func (f StepFunction) Compare(other StepFunction) (Ordering, bool) {
	var (
		have bool
		ret  Ordering
	)
	z := f.Zip(other)
	for {
		p, ok := z.Next()
		if !ok {
			break
		}
		switch {
		case p.L < p.R:
			if have && ret == Greater {
				return 0, false
			}
			ret, have = Less, true
		case p.L > p.R:
			if have && ret == Less {
				return 0, false
			}
			ret, have = Greater, true
		}
	}
	if !have {
		return Equal, true
	}
	return ret, true
}
