package doctree

import "math"

// Rect is an axis-aligned box in the document's absolute coordinate frame.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
func (r Rect) Area() float64   { return r.Width * r.Height }

// Empty reports whether r encloses no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Malformed reports whether any component is NaN or infinite, or a
// dimension is negative.
func (r Rect) Malformed() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return r.Width < 0 || r.Height < 0
}

// Clamped returns r with non-finite coordinates zeroed and negative
// dimensions clamped to zero.
func (r Rect) Clamped() Rect {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	out := Rect{X: fix(r.X), Y: fix(r.Y), Width: fix(r.Width), Height: fix(r.Height)}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Union returns the smallest rectangle containing r and o. An empty operand
// is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	if o.Width == 0 && o.Height == 0 {
		return r
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// Intersection returns the overlap of r and o, or a zero Rect.
func (r Rect) Intersection(o Rect) Rect {
	x := math.Max(r.X, o.X)
	y := math.Max(r.Y, o.Y)
	w := math.Min(r.Right(), o.Right()) - x
	h := math.Min(r.Bottom(), o.Bottom()) - y
	if w <= 0 || h <= 0 {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Contains reports whether o lies inside r, allowing eps of slack per edge.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps &&
		o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps &&
		o.Bottom() <= r.Bottom()+eps
}

// OverlapRatio is the intersection area over the smaller of the two areas.
// Degenerate rectangles never overlap.
func (r Rect) OverlapRatio(o Rect) float64 {
	smaller := math.Min(r.Area(), o.Area())
	if smaller <= 0 {
		return 0
	}
	return r.Intersection(o).Area() / smaller
}

// SizeRatio is the smaller area over the larger one, 1 for boxes of equal
// size. Degenerate rectangles compare as 0.
func (r Rect) SizeRatio(o Rect) float64 {
	a, b := r.Area(), o.Area()
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Min(a, b) / math.Max(a, b)
}
