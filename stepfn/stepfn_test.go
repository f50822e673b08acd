package stepfn

import (
	"math"
	"testing"
)

func TestNewRejectsNegativeCoordinates(t *testing.T) {
	if _, err := New(pts(-1, 0)); !IsInvalidDataRange(err) {
		t.Fatalf("expected ErrInvalidDataRange, got %v", err)
	}
	if _, err := New(pts(0, -1)); !IsInvalidDataRange(err) {
		t.Fatalf("expected ErrInvalidDataRange, got %v", err)
	}
}

func TestNewRejectsNonMonotonicX(t *testing.T) {
	if _, err := New(pts(1, 0, 0.5, 1)); !IsNonMonotonicData(err) {
		t.Fatalf("expected ErrNonMonotonicData, got %v", err)
	}
	if _, err := New(pts(1, 0, 1, 1)); !IsNonMonotonicData(err) {
		t.Fatalf("expected ErrNonMonotonicData, got %v", err)
	}
}

func TestNewEmptyIsZero(t *testing.T) {
	f, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.At(0) != 0 || f.At(100) != 0 || f.MaxX() != 0 {
		t.Fatalf("empty function should be identically zero, got At(0)=%v At(100)=%v MaxX()=%v", f.At(0), f.At(100), f.MaxX())
	}
}

func TestAtBelowFirstBreakpointIsZero(t *testing.T) {
	f, err := New(pts(1, 2, 3, 5))
	if err != nil {
		t.Fatal(err)
	}
	if f.At(0) != 0 {
		t.Fatalf("At(0) = %v, want 0", f.At(0))
	}
	if f.At(1) != 2 {
		t.Fatalf("At(1) = %v, want 2", f.At(1))
	}
	if f.At(2.9) != 2 {
		t.Fatalf("At(2.9) = %v, want 2", f.At(2.9))
	}
	if f.At(3) != 5 {
		t.Fatalf("At(3) = %v, want 5", f.At(3))
	}
	if f.At(100) != 5 {
		t.Fatalf("At(100) = %v, want 5 (right-constant extension)", f.At(100))
	}
}

func TestIntegrateExample(t *testing.T) {
	f, err := New(pts(1, 2, 3, 5))
	if err != nil {
		t.Fatal(err)
	}
	got := f.Integrate(0, 4)
	want := float32(2*(3-1) + 5*(4-3))
	if got != want {
		t.Fatalf("Integrate(0,4) = %v, want %v", got, want)
	}
}

func TestIntegrateMatchesStoredBreakpoints(t *testing.T) {
	f, err := New(pts(0, 1, 2, 3, 5, 2))
	if err != nil {
		t.Fatal(err)
	}
	got := f.Integrate(0, f.MaxX())
	var want float32
	data := f.Data()
	for i := 0; i+1 < len(data); i++ {
		want += (data[i+1].X - data[i].X) * data[i].Y
	}
	if got != want {
		t.Fatalf("Integrate(0, MaxX) = %v, want %v", got, want)
	}
}

func TestAddIsCommutative(t *testing.T) {
	f, err := New(pts(0, 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(pts(1, 2, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	fg := f.Add(g)
	gf := g.Add(f)
	for x := float32(0); x <= 4; x += 0.25 {
		if fg.At(x) != gf.At(x) {
			t.Fatalf("Add not commutative at x=%v: %v != %v", x, fg.At(x), gf.At(x))
		}
	}
}

func TestChoiceMatchesWeightedSum(t *testing.T) {
	f, err := New(pts(0, 1, 2, 4))
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(pts(1, 2, 3, 6))
	if err != nil {
		t.Fatal(err)
	}
	alpha := float32(0.3)
	choice := f.Choice(alpha, g)
	for x := float32(0); x <= 4; x += 0.1 {
		want := alpha*f.At(x) + (1-alpha)*g.At(x)
		if choice.At(x) != want {
			t.Fatalf("Choice at x=%v: got %v want %v", x, choice.At(x), want)
		}
	}
}

func TestMultZeroReturnsZeroFunction(t *testing.T) {
	f, err := New(pts(0, 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	f = f.WithMaxSize(42).WithMode(OverApproximate)
	zero := f.Mult(0)
	if zero.MaxSize() != 42 || zero.Mode() != OverApproximate {
		t.Fatalf("Mult(0) should preserve max_size/mode, got %v/%v", zero.MaxSize(), zero.Mode())
	}
	if zero.At(10) != 0 {
		t.Fatalf("Mult(0) should be identically zero, At(10)=%v", zero.At(10))
	}
}

func TestStringFormatTrimsTrailingZeros(t *testing.T) {
	f, err := New(pts(0, 0.1, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	got := f.String()
	want := "[(0, 0.1), (1, 2)]"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	f, err := New(pts(0, 0.1, 0.5, 0.25, 1.2345, 3))
	if err != nil {
		t.Fatal(err)
	}
	s := f.String()
	back, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	if !back.Similar(f) {
		t.Fatalf("round trip mismatch: %v vs %v", back.Data(), f.Data())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"[(1, 2]",
		"[1, 2)]",
		"[(a, 2)]",
		"[(1, b)]",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("Parse(%q) should have failed", c)
		}
	}
}

func TestParseRejectsDataRangeAndMonotonicity(t *testing.T) {
	if _, err := Parse("[(-1, 2)]"); !IsInvalidDataRange(err) {
		t.Fatalf("expected ErrInvalidDataRange, got %v", err)
	}
	if _, err := Parse("[(1, 2), (1, 3)]"); !IsNonMonotonicData(err) {
		t.Fatalf("expected ErrNonMonotonicData, got %v", err)
	}
}

func TestCompareIdentical(t *testing.T) {
	f, _ := New(pts(0, 1, 1, 2))
	g, _ := New(pts(0, 1, 1, 2))
	ord, ok := f.Compare(g)
	if !ok || ord != Equal {
		t.Fatalf("Compare identical functions: got (%v, %v), want (Equal, true)", ord, ok)
	}
}

func TestCompareDominance(t *testing.T) {
	f, _ := New(pts(0, 1, 1, 2))
	g, _ := New(pts(0, 2, 1, 3))
	ord, ok := f.Compare(g)
	if !ok || ord != Less {
		t.Fatalf("Compare dominated functions: got (%v, %v), want (Less, true)", ord, ok)
	}
}

func TestCompareIncomparable(t *testing.T) {
	f, _ := New(pts(0, 1, 1, 5))
	g, _ := New(pts(0, 5, 1, 1))
	_, ok := f.Compare(g)
	if ok {
		t.Fatalf("expected incomparable functions, got a definite ordering")
	}
}

func TestZeroIsIdenticallyZero(t *testing.T) {
	z := Zero()
	if z.At(0) != 0 || z.At(math.MaxFloat32) != 0 || z.MaxX() != 0 {
		t.Fatalf("Zero() is not identically zero")
	}
}
