package game

import (
	"math/rand"
	"sort"
	"testing"
)

func TestNewBoard_Shape(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(1)))

	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(b.Ports) != NumPorts {
		t.Errorf("expected %d ports, got %d", NumPorts, len(b.Ports))
	}
	for _, e := range b.Edges {
		ends := b.EdgeVertices(e.ID)
		if ends[0] == ends[1] || b.Vertex(ends[0]) == nil || b.Vertex(ends[1]) == nil {
			t.Errorf("edge %d has bad endpoints %v", e.ID, ends)
		}
	}
	for _, v := range b.Vertices {
		if n := len(b.AdjacentHexes(v.ID)); n > 3 {
			t.Errorf("vertex %d touches %d tiles", v.ID, n)
		}
	}
}

func TestNewBoard_ResourceAndTokenMultisets(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(7)))

	counts := map[Resource]int{}
	var tokens []int
	for _, tile := range b.Tiles {
		counts[tile.Resource]++
		if tile.Resource == Desert {
			if tile.Token != 0 {
				t.Errorf("desert has token %d", tile.Token)
			}
			if !tile.HasRobber {
				t.Error("robber should start on the desert")
			}
			continue
		}
		tokens = append(tokens, tile.Token)
	}

	want := map[Resource]int{Wood: 4, Brick: 3, Sheep: 4, Wheat: 4, Ore: 3, Desert: 1}
	for r, n := range want {
		if counts[r] != n {
			t.Errorf("expected %d %s tiles, got %d", n, r, counts[r])
		}
	}

	sort.Ints(tokens)
	if len(tokens) != len(diceTokens) {
		t.Fatalf("expected %d tokens, got %d", len(diceTokens), len(tokens))
	}
	for i := range tokens {
		if tokens[i] != diceTokens[i] {
			t.Fatalf("token multiset mismatch: %v", tokens)
		}
	}
}

func TestNewBoard_NoAdjacentSixesAndEights(t *testing.T) {
	for seed := int64(0); seed < 1000; seed++ {
		b := NewBoard(rand.New(rand.NewSource(seed)))
		for _, tile := range b.Tiles {
			if !isHotToken(tile.Token) {
				continue
			}
			for _, n := range b.TileNeighbors(tile.ID) {
				if isHotToken(b.Tiles[n].Token) {
					t.Fatalf("seed %d: tiles %d and %d both carry 6/8", seed, tile.ID, n)
				}
			}
		}
	}
}

func TestNewBoard_Ports(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(3)))

	generic := 0
	specific := map[Resource]bool{}
	used := map[VertexID]bool{}
	for _, p := range b.Ports {
		if r, ok := p.Kind.Resource(); ok {
			if specific[r] {
				t.Errorf("two %s ports", r)
			}
			specific[r] = true
		} else {
			generic++
		}

		if len(p.Vertices) != 2 {
			t.Fatalf("port %d reaches %d vertices, want 2", p.ID, len(p.Vertices))
		}
		shared := false
		for _, e := range b.AdjacentEdges(p.Vertices[0]) {
			if b.OtherEnd(e, p.Vertices[0]) == p.Vertices[1] {
				shared = true
			}
		}
		if !shared {
			t.Errorf("port %d vertices are not joined by an edge", p.ID)
		}
		for _, v := range p.Vertices {
			if used[v] {
				t.Errorf("vertex %d serves two ports", v)
			}
			used[v] = true
			if len(b.Vertices[v].Tiles) > 2 {
				t.Errorf("port vertex %d is inland", v)
			}
		}
	}
	if generic != 4 || len(specific) != 5 {
		t.Errorf("expected 4 generic and 5 specific ports, got %d and %d", generic, len(specific))
	}
}

func TestNewBoard_SameSeedSameBoard(t *testing.T) {
	a := NewBoard(rand.New(rand.NewSource(99)))
	b := NewBoard(rand.New(rand.NewSource(99)))
	for i := range a.Tiles {
		if a.Tiles[i].Resource != b.Tiles[i].Resource || a.Tiles[i].Token != b.Tiles[i].Token {
			t.Fatalf("tile %d differs between identical seeds", i)
		}
	}
	for i := range a.Ports {
		if a.Ports[i].Kind != b.Ports[i].Kind {
			t.Fatalf("port %d differs between identical seeds", i)
		}
	}
}

func TestBoard_PositionLookup(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(5)))
	b.vertexIndex = nil // as after decoding

	for _, v := range b.Vertices {
		id, ok := b.VertexAt(v.Pos)
		if !ok || id != v.ID {
			t.Fatalf("VertexAt(%v) = %d, %v", v.Pos, id, ok)
		}
	}
	for _, e := range b.Edges {
		id, ok := b.EdgeAt(e.Pos)
		if !ok || id != e.ID {
			t.Fatalf("EdgeAt(%v) = %d, %v", e.Pos, id, ok)
		}
	}
}

func TestBoard_ValidateRejectsSharedPosition(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(5)))
	b.Vertices[7].Pos = b.Vertices[3].Pos
	b.vertexIndex = nil

	if err := b.Validate(); err == nil {
		t.Fatal("expected two vertices on one position to fail validation")
	}
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(5)))
	b.Vertices[0].Building = &Building{Kind: BuildingSettlement, Owner: 1}

	c := b.Clone()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate clone: %v", err)
	}

	c.Vertices[0].Building.Kind = BuildingCity
	c.Edges[0].Road = &Building{Kind: BuildingRoad, Owner: 2}
	c.Vertices[1].Tiles[0] = NoTile
	robber := c.RobberTile()
	c.Tiles[robber].HasRobber = false

	if b.Vertices[0].Building.Kind != BuildingSettlement {
		t.Error("clone shares vertex buildings with the original")
	}
	if b.Edges[0].Road != nil {
		t.Error("clone shares edges with the original")
	}
	if b.Vertices[1].Tiles[0] == NoTile {
		t.Error("clone shares vertex adjacency with the original")
	}
	if b.RobberTile() != robber {
		t.Error("clone shares tiles with the original")
	}
}
