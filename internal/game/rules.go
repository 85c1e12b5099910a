package game

import "sort"

// Placement and query rules. Everything here reads the state and never
// mutates it, so the bot can call it freely.

func (g *GameState) ownsBuildingAt(v VertexID, playerID int) bool {
	vx := g.Board.Vertex(v)
	return vx != nil && vx.Building != nil && vx.Building.Owner == playerID
}

func (g *GameState) opponentAt(v VertexID, playerID int) bool {
	vx := g.Board.Vertex(v)
	return vx != nil && vx.Building != nil && vx.Building.Owner != playerID
}

func (g *GameState) ownsRoad(e EdgeID, playerID int) bool {
	ed := g.Board.Edge(e)
	return ed != nil && ed.Road != nil && ed.Road.Owner == playerID
}

// CanBuildSettlement checks the placement rules for a new settlement on v.
// With checkRoad set, one of the player's roads must end at v.
func (g *GameState) CanBuildSettlement(v VertexID, playerID int, checkRoad bool) error {
	vx := g.Board.Vertex(v)
	if vx == nil {
		return ruleError(KindUnknownTarget, "vertex %d", v)
	}
	if vx.Building != nil {
		return invalidPlacement(Occupied)
	}
	for _, n := range g.Board.NeighborVertices(v) {
		if g.Board.Vertices[n].Building != nil {
			return invalidPlacement(DistanceRule)
		}
	}
	if checkRoad {
		connected := false
		for _, e := range vx.Edges {
			if g.ownsRoad(e, playerID) {
				connected = true
				break
			}
		}
		if !connected {
			return invalidPlacement(NotConnected)
		}
	}
	return nil
}

// CanBuildRoad checks the placement rules for a road on e. During setup the
// road must touch one of the player's settlements; afterwards it must extend
// from one of the player's buildings or from an empty vertex the player's
// roads already reach.
func (g *GameState) CanBuildRoad(e EdgeID, playerID int, isSetup bool) error {
	ed := g.Board.Edge(e)
	if ed == nil {
		return ruleError(KindUnknownTarget, "edge %d", e)
	}
	if ed.Road != nil {
		return invalidPlacement(Occupied)
	}
	a, b := ed.Vertices[0], ed.Vertices[1]
	if g.opponentAt(a, playerID) && g.opponentAt(b, playerID) {
		return invalidPlacement(BlockedByOpponent)
	}

	if isSetup {
		if g.ownsBuildingAt(a, playerID) || g.ownsBuildingAt(b, playerID) {
			return nil
		}
		return invalidPlacement(NotConnected)
	}

	for _, v := range ed.Vertices {
		if g.ownsBuildingAt(v, playerID) {
			return nil
		}
		if g.Board.Vertices[v].Building != nil {
			continue
		}
		for _, other := range g.Board.Vertices[v].Edges {
			if other != e && g.ownsRoad(other, playerID) {
				return nil
			}
		}
	}
	return invalidPlacement(NotConnected)
}

// CanUpgradeCity checks that v holds one of the player's settlements.
func (g *GameState) CanUpgradeCity(v VertexID, playerID int) error {
	vx := g.Board.Vertex(v)
	if vx == nil {
		return ruleError(KindUnknownTarget, "vertex %d", v)
	}
	if vx.Building == nil || vx.Building.Owner != playerID || vx.Building.Kind != BuildingSettlement {
		return invalidPlacement(NoSettlement)
	}
	return nil
}

// ValidSettlementVertices lists where the player may place a settlement now,
// ignoring cost.
func (g *GameState) ValidSettlementVertices(playerID int) []VertexID {
	if g.Player(playerID) == nil {
		return nil
	}
	checkRoad := g.Phase != PhaseSetup
	var out []VertexID
	for _, v := range g.Board.Vertices {
		if g.CanBuildSettlement(v.ID, playerID, checkRoad) == nil {
			out = append(out, v.ID)
		}
	}
	return out
}

// ValidRoadEdges lists where the player may place a road now, ignoring cost.
// During setup only edges touching the settlement just placed qualify.
func (g *GameState) ValidRoadEdges(playerID int) []EdgeID {
	if g.Player(playerID) == nil {
		return nil
	}
	var out []EdgeID
	if g.Phase == PhaseSetup {
		vx := g.Board.Vertex(g.SetupSettlement)
		if vx == nil {
			return nil
		}
		for _, e := range vx.Edges {
			if g.CanBuildRoad(e, playerID, true) == nil {
				out = append(out, e)
			}
		}
		return out
	}
	for _, e := range g.Board.Edges {
		if g.CanBuildRoad(e.ID, playerID, false) == nil {
			out = append(out, e.ID)
		}
	}
	return out
}

// ValidRobberTiles lists the tiles the player may move the robber to: any
// tile without the robber that none of the player's buildings touch. When
// every such tile touches the player, any robber-free tile is allowed.
func (g *GameState) ValidRobberTiles(playerID int) []TileID {
	var out, fallback []TileID
	for _, t := range g.Board.Tiles {
		if t.HasRobber {
			continue
		}
		fallback = append(fallback, t.ID)
		if !g.tileTouches(t, playerID) {
			out = append(out, t.ID)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (g *GameState) tileTouches(t *Tile, playerID int) bool {
	for _, v := range t.Vertices {
		if g.ownsBuildingAt(v, playerID) {
			return true
		}
	}
	return false
}

// robberTarget reports whether tile is in ValidRobberTiles(playerID).
func (g *GameState) robberTarget(tile TileID, playerID int) error {
	t := g.Board.Tile(tile)
	if t == nil {
		return ruleError(KindUnknownTarget, "tile %d", tile)
	}
	if t.HasRobber {
		return invalidPlacement(Occupied)
	}
	for _, id := range g.ValidRobberTiles(playerID) {
		if id == tile {
			return nil
		}
	}
	return invalidPlacement(OwnBuildingAdjacent)
}

// StealCandidates returns opponents with a building on tile and at least one
// resource card, in seat order.
func (g *GameState) StealCandidates(tile TileID, playerID int) []int {
	t := g.Board.Tile(tile)
	if t == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, v := range t.Vertices {
		b := g.Board.Vertices[v].Building
		if b == nil || b.Owner == playerID || seen[b.Owner] {
			continue
		}
		seen[b.Owner] = true
		if g.Players[b.Owner].HandSize() > 0 {
			out = append(out, b.Owner)
		}
	}
	sort.Ints(out)
	return out
}
