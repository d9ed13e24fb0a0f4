package geost

// arith.go: exact integer helpers for distance bounds

import (
	"math"
	"math/bits"
)

// sq returns x*x, panicking on overflow.
func sq(op string, x int) int {
	a := uint64(abs(x))
	hi, lo := bits.Mul64(a, a)
	if hi != 0 || lo > math.MaxInt {
		arithmeticFault(op, "%d squared overflows", x)
	}
	return int(lo)
}

// add returns a+b, panicking on overflow.
func add(op string, a, b int) int {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		arithmeticFault(op, "%d + %d overflows", a, b)
	}
	return s
}

// mul returns a*b, panicking on overflow.
func mul(op string, a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		arithmeticFault(op, "%d * %d overflows", a, b)
	}
	return p
}

// isqrt returns floor(sqrt(v)) for v >= 0.
func isqrt(v int) int {
	if v < 0 {
		arithmeticFault("isqrt", "negative operand %d", v)
	}
	r := uint64(math.Sqrt(float64(v)))
	u := uint64(v)
	for r*r > u {
		r--
	}
	for (r+1)*(r+1) <= u {
		r++
	}
	return int(r)
}

// checkSqrt asserts lo² <= v <= hi².
func checkSqrt(op string, v, lo, hi int) {
	if lo < 0 || hi < lo || uint64(lo)*uint64(lo) > uint64(v) || uint64(hi)*uint64(hi) < uint64(v) {
		arithmeticFault(op, "root bracket [%d, %d] does not hold %d", lo, hi, v)
	}
}

// floorSqrt returns the largest r with r² <= v.
func floorSqrt(op string, v int) int {
	r := isqrt(v)
	checkSqrt(op, v, r, r+1)
	return r
}

// ceilSqrt returns the smallest r with r² >= v.
func ceilSqrt(op string, v int) int {
	r := isqrt(v)
	if r*r != v {
		r++
	}
	checkSqrt(op, v, r-min(r, 1), r)
	return r
}

// floorDiv and ceilDiv round toward negative and positive infinity; b != 0.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}
