package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	// TileSize is the default tile edge length in world pixels.
	TileSize = 32

	// Epsilon absorbs float drift when comparing snapped positions.
	Epsilon = 1e-6
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// FloorDiv returns floor(v / size) as an int.
func FloorDiv(v, size float64) int {
	return int(math.Floor(v / size))
}

// Sign returns -1, 0 or 1.
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SegmentIntersection reports whether segment a0-a1 crosses segment b0-b1.
// t is the parameter along a0-a1 and u the parameter along b0-b1 at the
// crossing. Collinear overlap counts as no intersection.
func SegmentIntersection(a0, a1, b0, b1 cp.Vector) (t, u float64, ok bool) {
	r := a1.Sub(a0)
	s := b1.Sub(b0)
	denom := r.Cross(s)
	if math.Abs(denom) < Epsilon {
		return 0, 0, false
	}
	qp := b0.Sub(a0)
	t = qp.Cross(s) / denom
	u = qp.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return 0, 0, false
	}
	return t, u, true
}
