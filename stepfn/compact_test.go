package stepfn

import "testing"

func pts(xy ...float32) []Point {
	out := make([]Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func assertPoints(t *testing.T, got []Point, want []Point) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v points, want %v (got=%v want=%v)", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %v, want %v (full got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestCompactEven(t *testing.T) {
	data := pts(0, 0.1, 0.1, 0.2, 0.2, 0.3, 0.3, 0.4, 0.4, 0.5, 0.5, 0.6, 0.6, 0.7, 0.7, 0.8, 0.8, 0.9, 0.9, 1.0)

	under := compact(append([]Point(nil), data...), UnderApproximate, 5)
	assertPoints(t, under, pts(0, 0.1, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.9, 1.0))

	over := compact(append([]Point(nil), data...), OverApproximate, 5)
	assertPoints(t, over, pts(0, 0.3, 0.3, 0.5, 0.5, 0.7, 0.7, 0.9, 0.9, 1.0))
}

func TestCompactBegin(t *testing.T) {
	data := pts(0, 0.1, 0.1, 0.2, 0.2, 0.3, 0.3, 0.4, 0.5, 0.5, 0.7, 0.6, 0.9, 0.7)

	under := compact(append([]Point(nil), data...), UnderApproximate, 5)
	assertPoints(t, under, pts(0, 0.1, 0.1, 0.2, 0.3, 0.4, 0.5, 0.5, 0.9, 0.7))

	over := compact(append([]Point(nil), data...), OverApproximate, 5)
	assertPoints(t, over, pts(0, 0.2, 0.2, 0.4, 0.5, 0.5, 0.7, 0.6, 0.9, 0.7))
}

func TestCompactMiddle(t *testing.T) {
	data := pts(0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0)

	under := compact(append([]Point(nil), data...), UnderApproximate, 5)
	assertPoints(t, under, pts(0, 0.1, 0.2, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0))

	over := compact(append([]Point(nil), data...), OverApproximate, 5)
	assertPoints(t, over, pts(0, 0.1, 0.2, 0.3, 0.4, 0.6, 0.7, 0.8, 0.9, 1.0))
}

func TestCompactEdges(t *testing.T) {
	data := pts(0.1, 0.2, 0.2, 0.3, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.8, 0.9, 0.9, 1.0)

	under := compact(append([]Point(nil), data...), UnderApproximate, 5)
	assertPoints(t, under, pts(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0))

	over := compact(append([]Point(nil), data...), OverApproximate, 5)
	assertPoints(t, over, pts(0.1, 0.3, 0.3, 0.4, 0.5, 0.6, 0.7, 0.9, 0.9, 1.0))
}

func TestCompactNeverExceedsBudget(t *testing.T) {
	var data []Point
	var x float32
	for i := 0; i < 200; i++ {
		x += 1
		data = append(data, Point{X: x, Y: float32(i % 7)})
	}
	for _, mode := range []CompactionMode{UnderApproximate, OverApproximate} {
		out := compact(append([]Point(nil), data...), mode, 20)
		if len(out) > 20 {
			t.Fatalf("mode %v: got %d points, want <= 20", mode, len(out))
		}
	}
}

func TestCompactionModeMonotoneBound(t *testing.T) {
	f, err := New(pts(0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	under := f.WithMode(UnderApproximate).WithMaxSize(5)
	compactedUnder, err := under.Compact(under.Data())
	if err != nil {
		t.Fatal(err)
	}
	over := f.WithMode(OverApproximate).WithMaxSize(5)
	compactedOver, err := over.Compact(over.Data())
	if err != nil {
		t.Fatal(err)
	}
	if len(compactedUnder.Data()) > 5 || len(compactedOver.Data()) > 5 {
		t.Fatalf("compaction exceeded budget: under=%d over=%d", len(compactedUnder.Data()), len(compactedOver.Data()))
	}
	for x := float32(0); x <= 10; x += 0.5 {
		if compactedUnder.At(x) > f.At(x) {
			t.Fatalf("under-approximation increased at x=%v: %v > %v", x, compactedUnder.At(x), f.At(x))
		}
		if compactedOver.At(x) < f.At(x) {
			t.Fatalf("over-approximation decreased at x=%v: %v < %v", x, compactedOver.At(x), f.At(x))
		}
	}
}
