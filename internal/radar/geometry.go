// Package radar computes radar chart geometry, animates it and paints it.
// Coordinates are relative to the chart centre with y growing downwards.
package radar

import "math"

const (
	DefaultSize   = 320.0
	MinPadding    = 28.0
	PaddingRatio  = 0.08
	LabelOffset   = 14.0
	IconSize      = 18.0
	LineHeight    = 12.0
	FontSize      = 11.0
	WeakThreshold = 75
	GapThreshold  = 8
)

// RingLevels are the grid rings as percentages of the radius.
var RingLevels = []int{20, 40, 60, 80, 100}

// Point is a chart coordinate relative to the centre, y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

func mid(a, b Point) Point { return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2} }

// Radius is the chart radius for a square canvas of the given size.
func Radius(size float64) float64 {
	return size/2 - math.Max(MinPadding, size*PaddingRatio)
}

// Angle is the direction of category i of n, starting at the top and going clockwise.
func Angle(i, n int) float64 {
	if n <= 0 {
		return -math.Pi / 2
	}
	return -math.Pi/2 + float64(i)*2*math.Pi/float64(n)
}

// Polar returns the point at distance r along category i of n.
func Polar(i, n int, r float64) Point {
	a := Angle(i, n)
	return Point{X: math.Cos(a) * r, Y: math.Sin(a) * r}
}

// Points places each score at radius*score/100 along its spoke.
func Points(scores []int, radius float64) []Point {
	out := make([]Point, len(scores))
	for i, s := range scores {
		out[i] = Polar(i, len(scores), radius*float64(s)/100)
	}
	return out
}

// Rings returns one closed polygon per ring level.
func Rings(n int, radius float64) [][]Point {
	if n == 0 {
		return nil
	}
	out := make([][]Point, 0, len(RingLevels))
	for _, level := range RingLevels {
		r := radius * float64(level) / 100
		ring := make([]Point, n)
		for i := range ring {
			ring[i] = Polar(i, n, r)
		}
		out = append(out, ring)
	}
	return out
}

// Spokes returns the outer end of each spoke.
func Spokes(n int, radius float64) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = Polar(i, n, radius)
	}
	return out
}
