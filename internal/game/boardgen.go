package game

import (
	"math"
	"math/rand"
	"sort"

	"hexlands/pkg/maps"
)

// Board dimensions for the standard four-player island.
const (
	HexSize       = 1.0
	BoardRadius   = 2
	LandTiles     = 19
	BoardVertices = 54
	BoardEdges    = 72
	NumPorts      = 9

	// PortRadius is how far a vertex may sit from a port marker and still
	// use it. A marker is an edge midpoint, so exactly the two ends of that
	// edge (half a side away) fall inside.
	PortRadius = 0.6 * HexSize
)

var tileResources = []Resource{
	Wood, Wood, Wood, Wood,
	Brick, Brick, Brick,
	Sheep, Sheep, Sheep, Sheep,
	Wheat, Wheat, Wheat, Wheat,
	Ore, Ore, Ore,
	Desert,
}

var diceTokens = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

var portKinds = []PortKind{
	PortGeneric, PortGeneric, PortGeneric, PortGeneric,
	PortWood, PortBrick, PortSheep, PortWheat, PortOre,
}

// tokenSearchBudget bounds the backtracking token search before falling back
// to plain sequential assignment.
const tokenSearchBudget = 200000

// NewBoard builds a randomized board: 19 land tiles in a radius-2 hexagon,
// the 54 vertices and 72 edges between them, number tokens with no two 6/8
// tiles touching, and 9 ports on the coast.
func NewBoard(rng *rand.Rand) *Board {
	layout := maps.Layout{Size: HexSize}
	b := &Board{
		vertexIndex: make(map[maps.Key]VertexID),
		edgeIndex:   make(map[maps.Key]EdgeID),
	}

	resources := append([]Resource(nil), tileResources...)
	rng.Shuffle(len(resources), func(i, j int) {
		resources[i], resources[j] = resources[j], resources[i]
	})

	for i, h := range maps.Spiral(BoardRadius) {
		t := &Tile{
			ID:        TileID(i),
			Hex:       h,
			Resource:  resources[i],
			Center:    layout.Center(h),
			HasRobber: resources[i] == Desert,
		}
		for c, p := range layout.Corners(h) {
			v := b.vertexFor(p)
			t.Vertices[c] = v.ID
			v.Tiles = append(v.Tiles, t.ID)
		}
		for c, p := range layout.EdgeMidpoints(h) {
			e, created := b.edgeFor(p)
			if created {
				e.Vertices = [2]VertexID{t.Vertices[c], t.Vertices[(c+1)%6]}
				for _, v := range e.Vertices {
					b.Vertices[v].Edges = append(b.Vertices[v].Edges, e.ID)
				}
			}
			t.Edges[c] = e.ID
		}
		b.Tiles = append(b.Tiles, t)
	}

	assignTokens(b, rng)
	placePorts(b, layout, rng)
	return b
}

func (b *Board) vertexFor(p maps.Point) *Vertex {
	if id, ok := b.vertexIndex[p.Key()]; ok {
		return b.Vertices[id]
	}
	v := &Vertex{ID: VertexID(len(b.Vertices)), Pos: p}
	b.Vertices = append(b.Vertices, v)
	b.vertexIndex[p.Key()] = v.ID
	return v
}

func (b *Board) edgeFor(p maps.Point) (*Edge, bool) {
	if id, ok := b.edgeIndex[p.Key()]; ok {
		return b.Edges[id], false
	}
	e := &Edge{ID: EdgeID(len(b.Edges)), Pos: p}
	b.Edges = append(b.Edges, e)
	b.edgeIndex[p.Key()] = e.ID
	return e, true
}

func isHotToken(token int) bool {
	return token == 6 || token == 8
}

// tokenSearch assigns tokens to tiles in layout order, trying the remaining
// token values in a random order at each step and backtracking whenever a
// 6 or 8 would touch an earlier 6 or 8.
type tokenSearch struct {
	tiles     []*Tile
	neighbors [][]int // earlier positions in tiles that share a vertex
	counts    map[int]int
	assigned  []int
	rng       *rand.Rand
	steps     int
}

func (s *tokenSearch) place(pos int) bool {
	if pos == len(s.tiles) {
		return true
	}
	s.steps++
	if s.steps > tokenSearchBudget {
		return false
	}

	var values []int
	for v, n := range s.counts {
		if n > 0 {
			values = append(values, v)
		}
	}
	sort.Ints(values)
	s.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })

	for _, v := range values {
		if isHotToken(v) && s.touchesHot(pos) {
			continue
		}
		s.assigned[pos] = v
		s.counts[v]--
		if s.place(pos + 1) {
			return true
		}
		s.counts[v]++
		s.assigned[pos] = 0
		if s.steps > tokenSearchBudget {
			return false
		}
	}
	return false
}

func (s *tokenSearch) touchesHot(pos int) bool {
	for _, n := range s.neighbors[pos] {
		if isHotToken(s.assigned[n]) {
			return true
		}
	}
	return false
}

func assignTokens(b *Board, rng *rand.Rand) {
	var tiles []*Tile
	position := make(map[TileID]int)
	for _, t := range b.Tiles {
		if t.Resource != Desert {
			position[t.ID] = len(tiles)
			tiles = append(tiles, t)
		}
	}

	search := &tokenSearch{
		tiles:     tiles,
		neighbors: make([][]int, len(tiles)),
		counts:    make(map[int]int),
		assigned:  make([]int, len(tiles)),
		rng:       rng,
	}
	for i, t := range tiles {
		for _, n := range b.TileNeighbors(t.ID) {
			if p, ok := position[n]; ok && p < i {
				search.neighbors[i] = append(search.neighbors[i], p)
			}
		}
	}
	for _, v := range diceTokens {
		search.counts[v]++
	}

	if !search.place(0) {
		pool := append([]int(nil), diceTokens...)
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		copy(search.assigned, pool)
	}
	for i, t := range tiles {
		t.Token = search.assigned[i]
	}
}

// placePorts puts a port at every other hex of the sea ring around the
// island. Each port sits on the land edge of its sea hex nearest the centre.
func placePorts(b *Board, layout maps.Layout, rng *rand.Rand) {
	kinds := append([]PortKind(nil), portKinds...)
	rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })

	origin := maps.Point{}
	shore := maps.Ring(BoardRadius + 1)
	for slot := 0; slot < len(shore) && len(b.Ports) < len(kinds); slot += 2 {
		var best *Edge
		bestDist := math.Inf(1)
		for _, mid := range layout.EdgeMidpoints(shore[slot]) {
			id, ok := b.edgeIndex[mid.Key()]
			if !ok {
				continue
			}
			if d := mid.Dist(origin); d < bestDist {
				best, bestDist = b.Edges[id], d
			}
		}
		if best == nil {
			continue
		}

		port := &Port{ID: PortID(len(b.Ports)), Kind: kinds[len(b.Ports)], Pos: best.Pos}
		for _, v := range b.Vertices {
			if v.Pos.Dist(port.Pos) <= PortRadius {
				port.Vertices = append(port.Vertices, v.ID)
				v.Ports = append(v.Ports, port.ID)
			}
		}
		b.Ports = append(b.Ports, port)
	}
}
