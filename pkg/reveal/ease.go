package reveal

import "math"

// Ease is a CSS timing function.
type Ease string

const (
	EaseLinear  Ease = "linear"
	EaseDefault Ease = "ease"
	EaseOut     Ease = "ease-out"
	EaseInOut   Ease = "ease-in-out"
)

// Apply maps linear progress f in [0,1] through the timing curve.
func (e Ease) Apply(f float64) float64 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 1
	}
	switch e {
	case EaseDefault:
		return cubicBezier(0.25, 0.1, 0.25, 1, f)
	case EaseOut:
		return cubicBezier(0, 0, 0.58, 1, f)
	case EaseInOut:
		return cubicBezier(0.42, 0, 0.58, 1, f)
	}
	return f
}

// cubicBezier evaluates a CSS cubic-bezier(x1,y1,x2,y2) at x.
func cubicBezier(x1, y1, x2, y2, x float64) float64 {
	bez := func(a, b, t float64) float64 {
		u := 1 - t
		return 3*u*u*t*a + 3*u*t*t*b + t*t*t
	}
	dbez := func(a, b, t float64) float64 {
		u := 1 - t
		return 3*u*u*a + 6*u*t*(b-a) + 3*t*t*(1-b)
	}

	t := x
	for i := 0; i < 8; i++ {
		d := dbez(x1, x2, t)
		if math.Abs(d) < 1e-9 {
			break
		}
		t -= (bez(x1, x2, t) - x) / d
		t = math.Max(0, math.Min(1, t))
	}
	// Newton can stall on flat segments; finish with bisection.
	if math.Abs(bez(x1, x2, t)-x) > 1e-6 {
		lo, hi := 0.0, 1.0
		for i := 0; i < 40; i++ {
			t = (lo + hi) / 2
			if bez(x1, x2, t) < x {
				lo = t
			} else {
				hi = t
			}
		}
	}
	return bez(y1, y2, t)
}
