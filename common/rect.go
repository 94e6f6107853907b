package common

import "github.com/jakecoffman/cp"

// Rect is an axis-aligned box described by its centre and half extents.
// World coordinates grow right and down.
type Rect struct {
	Center cp.Vector
	HalfW  float64
	HalfH  float64
}

// RectFromTopLeft builds a Rect from a top-left corner and a size.
func RectFromTopLeft(x, y, w, h float64) Rect {
	return Rect{
		Center: cp.Vector{X: x + w/2, Y: y + h/2},
		HalfW:  w / 2,
		HalfH:  h / 2,
	}
}

func (r Rect) Left() float64   { return r.Center.X - r.HalfW }
func (r Rect) Right() float64  { return r.Center.X + r.HalfW }
func (r Rect) Top() float64    { return r.Center.Y - r.HalfH }
func (r Rect) Bottom() float64 { return r.Center.Y + r.HalfH }
func (r Rect) Width() float64  { return r.HalfW * 2 }
func (r Rect) Height() float64 { return r.HalfH * 2 }

// Translate returns r moved by d.
func (r Rect) Translate(d cp.Vector) Rect {
	r.Center = r.Center.Add(d)
	return r
}

// MoveTo returns r centred on c.
func (r Rect) MoveTo(c cp.Vector) Rect {
	r.Center = c
	return r
}

// Intersects reports strict overlap; touching edges do not count.
func (r Rect) Intersects(other Rect) bool {
	return r.Left() < other.Right() &&
		r.Right() > other.Left() &&
		r.Top() < other.Bottom() &&
		r.Bottom() > other.Top()
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p cp.Vector) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}
