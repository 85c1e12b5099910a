package maps

import "math"

var sqrt3 = math.Sqrt(3)

// Layout converts axial coordinates to positions for pointy-top hexes of the
// given corner radius.
type Layout struct {
	Size float64
}

// Center returns the centre of hex h.
func (l Layout) Center(h Hex) Point {
	return Point{
		X: l.Size * (sqrt3*float64(h.Q) + sqrt3/2*float64(h.R)),
		Y: l.Size * 1.5 * float64(h.R),
	}
}

// Corners returns the six corners of h, starting at -30 degrees and turning
// counter-clockwise. Corner i and corner i+1 bound edge i.
func (l Layout) Corners(h Hex) [6]Point {
	c := l.Center(h)
	var corners [6]Point
	for i := 0; i < 6; i++ {
		angle := math.Pi / 180 * float64(60*i-30)
		corners[i] = Point{
			X: c.X + l.Size*math.Cos(angle),
			Y: c.Y + l.Size*math.Sin(angle),
		}
	}
	return corners
}

// EdgeMidpoints returns the midpoint of each of the six edges of h, in the
// same order as Corners.
func (l Layout) EdgeMidpoints(h Hex) [6]Point {
	corners := l.Corners(h)
	var mids [6]Point
	for i := 0; i < 6; i++ {
		mids[i] = corners[i].Mid(corners[(i+1)%6])
	}
	return mids
}
