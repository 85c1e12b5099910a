package game

import "testing"

func TestLongestRoad_Chain(t *testing.T) {
	e := createPlayEngine(t)
	g := e.state

	edges, verts := chain(g.Board, 0, 4)
	for _, edge := range edges {
		putRoad(g, edge, 0)
	}
	if n := LongestRoad(g.Board, 0); n != 4 {
		t.Fatalf("expected length 4, got %d", n)
	}

	// An opponent settlement at the middle vertex splits the road in two.
	put(g, verts[2], 1, BuildingSettlement)
	if n := LongestRoad(g.Board, 0); n != 2 {
		t.Errorf("expected length 2 after the cut, got %d", n)
	}

	// The player's own settlement does not cut anything.
	put(g, verts[2], 0, BuildingSettlement)
	if n := LongestRoad(g.Board, 0); n != 4 {
		t.Errorf("expected length 4 through own settlement, got %d", n)
	}
}

func TestLongestRoad_CycleWithSpur(t *testing.T) {
	e := createPlayEngine(t)
	g := e.state

	ring := g.Board.Tiles[0]
	for _, edge := range ring.Edges {
		putRoad(g, edge, 0)
	}
	if n := LongestRoad(g.Board, 0); n != 6 {
		t.Fatalf("expected a closed ring of 6, got %d", n)
	}

	// Attach one spur leading away from the ring.
	v := ring.Vertices[0]
	for _, edge := range g.Board.AdjacentEdges(v) {
		if g.Board.Edges[edge].Road == nil {
			putRoad(g, edge, 0)
			break
		}
	}
	if n := LongestRoad(g.Board, 0); n != 7 {
		t.Errorf("expected ring plus spur of 7, got %d", n)
	}
}

func TestLongestRoad_OtherPlayersIgnored(t *testing.T) {
	e := createPlayEngine(t)
	g := e.state

	edges, _ := chain(g.Board, 0, 3)
	putRoad(g, edges[0], 0)
	putRoad(g, edges[1], 1)
	putRoad(g, edges[2], 0)
	if n := LongestRoad(g.Board, 0); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n := LongestRoad(g.Board, 2); n != 0 {
		t.Errorf("expected 0 for a player without roads, got %d", n)
	}
}

func TestAwardHonor(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		holder int
		want   int
	}{
		{"below threshold", []int{4, 3, 0, 0}, NoPlayer, NoPlayer},
		{"unique leader", []int{5, 3, 0, 0}, NoPlayer, 0},
		{"holder keeps on tie", []int{6, 6, 0, 0}, 0, 0},
		{"strictly passed", []int{5, 6, 0, 0}, 0, 1},
		{"tie without holder revokes", []int{5, 7, 7, 0}, 0, NoPlayer},
		{"tie with nobody holding", []int{5, 5, 0, 0}, NoPlayer, NoPlayer},
		{"holder drops below threshold", []int{4, 4, 0, 0}, 0, NoPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := awardHonor(tt.values, tt.holder, LongestRoadMin); got != tt.want {
				t.Errorf("awardHonor(%v, %d) = %d, want %d", tt.values, tt.holder, got, tt.want)
			}
		})
	}
}

func TestLongestRoad_HonorMovesPoints(t *testing.T) {
	e := createPlayEngine(t)
	g := e.state
	g.HasRolled = true

	// Seat 0: five roads from vertex 0.
	edges, verts := chain(g.Board, 0, 5)
	for _, edge := range edges {
		putRoad(g, edge, 0)
	}
	e.refreshLongestRoad()
	if g.LongestRoadHolder != 0 || !g.Players[0].HasLongestRoad || g.Players[0].VictoryPoints != HonorPoints {
		t.Fatalf("expected seat 0 to hold longest road, holder=%d vp=%d", g.LongestRoadHolder, g.Players[0].VictoryPoints)
	}

	// A settlement splits the road into 2 and 3, below the threshold.
	put(g, verts[2], 1, BuildingSettlement)
	e.refreshLongestRoad()
	if g.LongestRoadHolder != NoPlayer || g.Players[0].VictoryPoints != 0 || g.Players[0].HasLongestRoad {
		t.Errorf("expected honor revoked, holder=%d vp=%d", g.LongestRoadHolder, g.Players[0].VictoryPoints)
	}

	var changes []int
	for _, ev := range e.TakeEvents() {
		if c, ok := ev.(LongestRoadChanged); ok {
			changes = append(changes, c.PlayerID)
		}
	}
	if len(changes) != 2 || changes[0] != 0 || changes[1] != NoPlayer {
		t.Errorf("unexpected LongestRoadChanged events %v", changes)
	}
}

func TestBuildSettlement_CutsOpponentRoad(t *testing.T) {
	e := createPlayEngine(t)
	g := e.state
	g.HasRolled = true

	// Seat 1 holds longest road with six roads; seat 0 builds into the
	// middle of it from a spur.
	edges, verts := chain(g.Board, 0, 6)
	for _, edge := range edges {
		putRoad(g, edge, 1)
	}
	e.refreshLongestRoad()
	if g.LongestRoadHolder != 1 {
		t.Fatalf("expected seat 1 to hold longest road")
	}

	mid := verts[3]
	var spur EdgeID = NoEdge
	for _, edge := range g.Board.AdjacentEdges(mid) {
		if g.Board.Edges[edge].Road == nil {
			spur = edge
		}
	}
	if spur == NoEdge {
		t.Skip("middle vertex has no free edge on this board")
	}
	putRoad(g, spur, 0)
	give(t, g, 0, CostSettlement)

	if err := e.BuildSettlement(mid, 0); err != nil {
		t.Fatalf("build settlement: %v", err)
	}
	if g.Players[1].RoadLength != 3 {
		t.Errorf("expected seat 1 road of 3 after the cut, got %d", g.Players[1].RoadLength)
	}
	if g.LongestRoadHolder != NoPlayer {
		t.Errorf("expected longest road revoked, holder %d", g.LongestRoadHolder)
	}
}
