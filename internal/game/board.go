package game

import (
	"fmt"

	"hexlands/pkg/maps"
)

// Element ids index the Board slices.
type (
	TileID   int
	VertexID int
	EdgeID   int
	PortID   int
)

// Sentinels for "no element".
const (
	NoTile   TileID   = -1
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
)

// BuildingKind is the type of a player piece.
type BuildingKind int

const (
	BuildingNone BuildingKind = iota
	BuildingRoad
	BuildingSettlement
	BuildingCity
)

// String returns the building name.
func (k BuildingKind) String() string {
	switch k {
	case BuildingRoad:
		return "road"
	case BuildingSettlement:
		return "settlement"
	case BuildingCity:
		return "city"
	default:
		return "none"
	}
}

// Building is a player piece standing on a vertex or edge.
type Building struct {
	Kind  BuildingKind `json:"kind"`
	Owner int          `json:"owner"`
}

// PortKind is the trade rate a port unlocks: generic 3:1, or 2:1 for a
// single resource.
type PortKind int

const (
	PortGeneric PortKind = iota
	PortWood
	PortBrick
	PortSheep
	PortWheat
	PortOre
)

// PortFor returns the 2:1 port kind for r.
func PortFor(r Resource) PortKind {
	return PortKind(int(r) + 1)
}

// Resource returns the resource a specific port trades, and false for
// generic ports.
func (k PortKind) Resource() (Resource, bool) {
	if k <= PortGeneric || k > PortOre {
		return 0, false
	}
	return Resource(int(k) - 1), true
}

// String returns "3:1" for generic ports and "2:1 <resource>" otherwise.
func (k PortKind) String() string {
	if r, ok := k.Resource(); ok {
		return "2:1 " + r.String()
	}
	return "3:1"
}

// Tile is one land hex.
type Tile struct {
	ID        TileID      `json:"id"`
	Hex       maps.Hex    `json:"hex"`
	Resource  Resource    `json:"resource"`
	Token     int         `json:"token"` // 0 on the desert
	Center    maps.Point  `json:"center"`
	HasRobber bool        `json:"hasRobber"`
	Vertices  [6]VertexID `json:"vertices"`
	Edges     [6]EdgeID   `json:"edges"`
}

// Vertex is a hex corner where settlements and cities stand.
type Vertex struct {
	ID       VertexID   `json:"id"`
	Pos      maps.Point `json:"pos"`
	Building *Building  `json:"building,omitempty"`
	Tiles    []TileID   `json:"tiles"`
	Edges    []EdgeID   `json:"edges"`
	Ports    []PortID   `json:"ports,omitempty"`
}

// Edge is a hex side where roads are built.
type Edge struct {
	ID       EdgeID      `json:"id"`
	Pos      maps.Point  `json:"pos"`
	Road     *Building   `json:"road,omitempty"`
	Vertices [2]VertexID `json:"vertices"`
}

// Port is a harbour on the coast, reachable from its vertices.
type Port struct {
	ID       PortID     `json:"id"`
	Kind     PortKind   `json:"kind"`
	Pos      maps.Point `json:"pos"`
	Vertices []VertexID `json:"vertices"`
}

// Board is the arena of tiles, vertices, edges and ports. Elements refer to
// each other by id only.
type Board struct {
	Tiles    []*Tile   `json:"tiles"`
	Vertices []*Vertex `json:"vertices"`
	Edges    []*Edge   `json:"edges"`
	Ports    []*Port   `json:"ports"`

	vertexIndex map[maps.Key]VertexID
	edgeIndex   map[maps.Key]EdgeID
}

// Tile returns the tile with the given id, or nil.
func (b *Board) Tile(id TileID) *Tile {
	if id < 0 || int(id) >= len(b.Tiles) {
		return nil
	}
	return b.Tiles[id]
}

// Vertex returns the vertex with the given id, or nil.
func (b *Board) Vertex(id VertexID) *Vertex {
	if id < 0 || int(id) >= len(b.Vertices) {
		return nil
	}
	return b.Vertices[id]
}

// Edge returns the edge with the given id, or nil.
func (b *Board) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(b.Edges) {
		return nil
	}
	return b.Edges[id]
}

// Port returns the port with the given id, or nil.
func (b *Board) Port(id PortID) *Port {
	if id < 0 || int(id) >= len(b.Ports) {
		return nil
	}
	return b.Ports[id]
}

// AdjacentHexes returns the tiles touching a vertex (one to three).
func (b *Board) AdjacentHexes(v VertexID) []TileID {
	if vx := b.Vertex(v); vx != nil {
		return vx.Tiles
	}
	return nil
}

// AdjacentEdges returns the edges meeting at a vertex (two or three).
func (b *Board) AdjacentEdges(v VertexID) []EdgeID {
	if vx := b.Vertex(v); vx != nil {
		return vx.Edges
	}
	return nil
}

// EdgeVertices returns both endpoints of an edge.
func (b *Board) EdgeVertices(e EdgeID) [2]VertexID {
	if ed := b.Edge(e); ed != nil {
		return ed.Vertices
	}
	return [2]VertexID{NoVertex, NoVertex}
}

// PortsNear returns the ports a building on v would unlock.
func (b *Board) PortsNear(v VertexID) []*Port {
	vx := b.Vertex(v)
	if vx == nil {
		return nil
	}
	ports := make([]*Port, 0, len(vx.Ports))
	for _, id := range vx.Ports {
		ports = append(ports, b.Ports[id])
	}
	return ports
}

// OtherEnd returns the endpoint of e that is not v.
func (b *Board) OtherEnd(e EdgeID, v VertexID) VertexID {
	ends := b.EdgeVertices(e)
	if ends[0] == v {
		return ends[1]
	}
	return ends[0]
}

// NeighborVertices returns the vertices one edge away from v.
func (b *Board) NeighborVertices(v VertexID) []VertexID {
	edges := b.AdjacentEdges(v)
	out := make([]VertexID, 0, len(edges))
	for _, e := range edges {
		out = append(out, b.OtherEnd(e, v))
	}
	return out
}

// TileNeighbors returns the tiles sharing at least one vertex with t.
func (b *Board) TileNeighbors(t TileID) []TileID {
	tile := b.Tile(t)
	if tile == nil {
		return nil
	}
	seen := map[TileID]bool{t: true}
	var out []TileID
	for _, v := range tile.Vertices {
		for _, n := range b.Vertices[v].Tiles {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// RobberTile returns the tile currently holding the robber.
func (b *Board) RobberTile() TileID {
	for _, t := range b.Tiles {
		if t.HasRobber {
			return t.ID
		}
	}
	return NoTile
}

// VertexAt finds the vertex at a position.
func (b *Board) VertexAt(p maps.Point) (VertexID, bool) {
	b.index()
	id, ok := b.vertexIndex[p.Key()]
	return id, ok
}

// EdgeAt finds the edge whose midpoint is at a position.
func (b *Board) EdgeAt(p maps.Point) (EdgeID, bool) {
	b.index()
	id, ok := b.edgeIndex[p.Key()]
	return id, ok
}

// Clone returns a deep copy of the board. Position lookups are rebuilt on
// demand in the copy.
func (b *Board) Clone() *Board {
	c := &Board{
		Tiles:    make([]*Tile, len(b.Tiles)),
		Vertices: make([]*Vertex, len(b.Vertices)),
		Edges:    make([]*Edge, len(b.Edges)),
		Ports:    make([]*Port, len(b.Ports)),
	}
	for i, t := range b.Tiles {
		tc := *t
		c.Tiles[i] = &tc
	}
	for i, v := range b.Vertices {
		vc := *v
		vc.Building = cloneBuilding(v.Building)
		vc.Tiles = append([]TileID(nil), v.Tiles...)
		vc.Edges = append([]EdgeID(nil), v.Edges...)
		vc.Ports = append([]PortID(nil), v.Ports...)
		c.Vertices[i] = &vc
	}
	for i, e := range b.Edges {
		ec := *e
		ec.Road = cloneBuilding(e.Road)
		c.Edges[i] = &ec
	}
	for i, p := range b.Ports {
		pc := *p
		pc.Vertices = append([]VertexID(nil), p.Vertices...)
		c.Ports[i] = &pc
	}
	return c
}

func cloneBuilding(b *Building) *Building {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// index rebuilds the position lookups, which are not serialized.
func (b *Board) index() {
	if b.vertexIndex != nil && len(b.vertexIndex) == len(b.Vertices) && len(b.edgeIndex) == len(b.Edges) {
		return
	}
	b.vertexIndex = make(map[maps.Key]VertexID, len(b.Vertices))
	for _, v := range b.Vertices {
		b.vertexIndex[v.Pos.Key()] = v.ID
	}
	b.edgeIndex = make(map[maps.Key]EdgeID, len(b.Edges))
	for _, e := range b.Edges {
		b.edgeIndex[e.Pos.Key()] = e.ID
	}
}

// Validate checks the structural invariants of a board: element counts,
// symmetric adjacency and in-range references.
func (b *Board) Validate() error {
	if len(b.Tiles) != LandTiles || len(b.Vertices) != BoardVertices || len(b.Edges) != BoardEdges {
		return fmt.Errorf("board has %d tiles, %d vertices, %d edges", len(b.Tiles), len(b.Vertices), len(b.Edges))
	}
	for _, t := range b.Tiles {
		for _, v := range t.Vertices {
			if !containsTile(b.Vertices[v].Tiles, t.ID) {
				return fmt.Errorf("tile %d lists vertex %d which does not list it back", t.ID, v)
			}
		}
	}
	for _, v := range b.Vertices {
		if n := len(v.Tiles); n < 1 || n > 3 {
			return fmt.Errorf("vertex %d touches %d tiles", v.ID, n)
		}
		if n := len(v.Edges); n < 2 || n > 3 {
			return fmt.Errorf("vertex %d has %d edges", v.ID, n)
		}
		if id, ok := b.VertexAt(v.Pos); !ok || id != v.ID {
			return fmt.Errorf("vertex %d shares its position with vertex %d", v.ID, id)
		}
		for _, e := range v.Edges {
			ends := b.Edges[e].Vertices
			if ends[0] != v.ID && ends[1] != v.ID {
				return fmt.Errorf("vertex %d lists edge %d which does not end there", v.ID, e)
			}
		}
	}
	for _, e := range b.Edges {
		if e.Vertices[0] == e.Vertices[1] {
			return fmt.Errorf("edge %d is a loop", e.ID)
		}
		if id, ok := b.EdgeAt(e.Pos); !ok || id != e.ID {
			return fmt.Errorf("edge %d shares its position with edge %d", e.ID, id)
		}
	}
	robbers := 0
	for _, t := range b.Tiles {
		if t.HasRobber {
			robbers++
		}
	}
	if robbers != 1 {
		return fmt.Errorf("board has %d robbers", robbers)
	}
	return nil
}

func containsTile(ids []TileID, id TileID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
