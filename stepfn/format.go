package stepfn

import (
	"strconv"
	"strings"
)

// String renders f in its textual form: "[(x1, y1), (x2, y2), ...]", with
// numbers printed to five decimal places and trailing zeros (and a
// trailing decimal point) trimmed. Parse is its inverse.
func (f StepFunction) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range f.data {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		b.WriteString(trimTrailing(strconv.FormatFloat(float64(p.X), 'f', 5, 32)))
		b.WriteString(", ")
		b.WriteString(trimTrailing(strconv.FormatFloat(float64(p.Y), 'f', 5, 32)))
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

func trimTrailing(s string) string {
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// Parse reads a StepFunction from its textual form as produced by String.
// It fails with an InvalidFormat error (naming the expectation and the
// byte offset of the failure), ErrInvalidDataRange, or ErrNonMonotonicData.
func Parse(s string) (StepFunction, error) {
	i := 0
	skipSpace := func() {
		for i < len(s) && isParseSpace(s[i]) {
			i++
		}
	}

	skipSpace()
	for i < len(s) && s[i] == '[' {
		i++
	}
	end := len(s)
	for end > i && isParseSpace(s[end-1]) {
		end--
	}
	for end > i && s[end-1] == ']' {
		end--
	}

	var points []Point
	xPrev := float32(-1)
	for {
		skipSpace()
		if i >= end {
			break
		}
		if s[i] != '(' {
			return StepFunction{}, InvalidFormat("expecting '('", i)
		}
		i++

		xStart := i
		for i < end && s[i] != ',' {
			i++
		}
		if i >= end {
			return StepFunction{}, InvalidFormat("expecting ','", xStart)
		}
		xStr := strings.TrimSpace(s[xStart:i])
		i++ // consume ','
		x, err := strconv.ParseFloat(xStr, 32)
		if err != nil {
			return StepFunction{}, InvalidFormat("expecting number", xStart)
		}
		xf := float32(x)
		if xf < 0 {
			return StepFunction{}, ErrInvalidDataRange
		}
		if xf <= xPrev {
			return StepFunction{}, ErrNonMonotonicData
		}
		xPrev = xf

		skipSpace()
		yStart := i
		for i < end && s[i] != ')' {
			i++
		}
		if i >= end {
			return StepFunction{}, InvalidFormat("expecting ')'", yStart)
		}
		yStr := strings.TrimSpace(s[yStart:i])
		i++ // consume ')'
		y, err := strconv.ParseFloat(yStr, 32)
		if err != nil {
			return StepFunction{}, InvalidFormat("expecting number", yStart)
		}
		yf := float32(y)
		if yf < 0 {
			return StepFunction{}, ErrInvalidDataRange
		}

		points = append(points, Point{X: xf, Y: yf})

		skipSpace()
		if i < end && s[i] == ',' {
			i++
		}
	}

	return New(points)
}

func isParseSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
