// Package maps handles hex-board geometry: axial coordinates, rings, and the
// corner and edge positions that neighbouring hexes share.
package maps

import "math"

// Precision is the number of coordinate steps per unit used for Key.
// Corners and edge midpoints computed from different hexes land on the same
// Key as long as they agree to within 1/Precision.
const Precision = 1000

// Hex is an axial hex coordinate.
type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// directions are the six axial neighbour offsets, counter-clockwise from east.
var directions = [6]Hex{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Add returns the component-wise sum of two hexes.
func (h Hex) Add(o Hex) Hex {
	return Hex{Q: h.Q + o.Q, R: h.R + o.R}
}

// Scale multiplies both components by k.
func (h Hex) Scale(k int) Hex {
	return Hex{Q: h.Q * k, R: h.R * k}
}

// Neighbor returns the adjacent hex in direction dir (0-5).
func (h Hex) Neighbor(dir int) Hex {
	return h.Add(directions[((dir%6)+6)%6])
}

// Distance returns the number of hex steps between h and o.
func (h Hex) Distance(o Hex) int {
	dq := h.Q - o.Q
	dr := h.R - o.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

// Ring returns the hexes exactly radius steps from the origin, walking the
// ring in a fixed order. Ring(0) is just the origin.
func Ring(radius int) []Hex {
	if radius <= 0 {
		return []Hex{{}}
	}
	ring := make([]Hex, 0, 6*radius)
	h := directions[4].Scale(radius)
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			ring = append(ring, h)
			h = h.Neighbor(side)
		}
	}
	return ring
}

// Spiral returns every hex within radius of the origin, ring by ring from the
// centre outwards.
func Spiral(radius int) []Hex {
	hexes := make([]Hex, 0, 1+3*radius*(radius+1))
	for r := 0; r <= radius; r++ {
		hexes = append(hexes, Ring(r)...)
	}
	return hexes
}

// Point is a 2D position in board units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Key is a rounded coordinate used to deduplicate shared corners and edges.
type Key struct {
	X int64
	Y int64
}

// Key rounds the point to Precision.
func (p Point) Key() Key {
	return Key{X: roundCoord(p.X), Y: roundCoord(p.Y)}
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Mid returns the midpoint between two points.
func (p Point) Mid(o Point) Point {
	return Point{X: (p.X + o.X) / 2, Y: (p.Y + o.Y) / 2}
}

func roundCoord(v float64) int64 {
	r := math.Round(v * Precision)
	if r == 0 {
		return 0 // folds -0
	}
	return int64(r)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
