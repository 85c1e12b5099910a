package bot

import "hexlands/internal/game"

// DiceProbability is the chance that two dice total token. Desert tiles
// carry token 0 and score nothing.
func DiceProbability(token int) float64 {
	if token < 2 || token > 12 || token == 7 {
		return 0
	}
	d := token - 7
	if d < 0 {
		d = -d
	}
	return float64(6-d) / 36
}

// production sums weighted dice probability over the producing tiles
// around v and reports which resources they yield.
func production(g *game.GameState, v game.VertexID, t Tuning) (float64, [game.NumResources]bool) {
	var kinds [game.NumResources]bool
	sum := 0.0
	for _, id := range g.Board.AdjacentHexes(v) {
		tile := g.Board.Tiles[id]
		if !tile.Resource.Tradeable() {
			continue
		}
		p := DiceProbability(tile.Token) * t.ProductionWeight[tile.Resource]
		if tile.HasRobber {
			p *= t.RobberedPenalty
		}
		sum += p
		kinds[tile.Resource] = true
	}
	return sum, kinds
}

// covered lists the resources the player's buildings already touch.
func covered(g *game.GameState, playerID int) [game.NumResources]bool {
	var out [game.NumResources]bool
	for _, vx := range g.Board.Vertices {
		if vx.Building == nil || vx.Building.Owner != playerID {
			continue
		}
		for _, id := range vx.Tiles {
			if r := g.Board.Tiles[id].Resource; r.Tradeable() {
				out[r] = true
			}
		}
	}
	return out
}

// portOpen reports whether no opponent has built on the port.
func portOpen(g *game.GameState, port *game.Port, playerID int) bool {
	for _, v := range port.Vertices {
		if b := g.Board.Vertices[v].Building; b != nil && b.Owner != playerID {
			return false
		}
	}
	return true
}

// ScoreSettlement rates v as a settlement site for the player: production,
// resource diversity, a usable port, a flat expansion bonus and a bonus for
// every resource the player does not yet collect.
func ScoreSettlement(g *game.GameState, playerID int, v game.VertexID, t Tuning) float64 {
	p := g.Player(playerID)
	if p == nil || g.Board.Vertex(v) == nil {
		return 0
	}
	prod, kinds := production(g, v, t)
	have := covered(g, playerID)

	score := prod + t.ExpansionBonus
	for _, r := range game.AllResources {
		if !kinds[r] {
			continue
		}
		score += t.DiversityBonus
		if !have[r] {
			score += t.NewResourceBonus
		}
	}

	for _, port := range g.Board.PortsNear(v) {
		if p.HasPort(port.Kind) || !portOpen(g, port, playerID) {
			continue
		}
		r, specific := port.Kind.Resource()
		switch {
		case !specific:
			score += t.PortBonus
		case kinds[r] || have[r]:
			score += t.SpecificPortBonus
		default:
			score += t.PortBonus / 2
		}
	}
	return score
}

// ScoreCity rates upgrading the settlement on v: its production alone.
func ScoreCity(g *game.GameState, v game.VertexID, t Tuning) float64 {
	prod, _ := production(g, v, t)
	return prod
}

// reaches reports whether the player's network already touches v without
// counting edge skip.
func reaches(g *game.GameState, playerID int, v game.VertexID, skip game.EdgeID) bool {
	vx := g.Board.Vertices[v]
	if vx.Building != nil && vx.Building.Owner == playerID {
		return true
	}
	for _, e := range vx.Edges {
		if e == skip {
			continue
		}
		if r := g.Board.Edges[e].Road; r != nil && r.Owner == playerID {
			return true
		}
	}
	return false
}

// behindLeader reports whether another player has a longer road.
func behindLeader(g *game.GameState, playerID int) bool {
	mine := g.Players[playerID].RoadLength
	for _, o := range g.Players {
		if o.ID != playerID && o.RoadLength > mine {
			return true
		}
	}
	return false
}

// ScoreRoad rates a road on e: new buildable vertices it reaches, the best
// site at its far end, the best site a few edges further on (discounted by
// distance) and a bonus while chasing the longest road.
func ScoreRoad(g *game.GameState, playerID int, e game.EdgeID, t Tuning) float64 {
	ed := g.Board.Edge(e)
	if ed == nil || g.Player(playerID) == nil {
		return 0
	}
	score, immediate, ahead := 0.0, 0.0, 0.0
	for _, v := range ed.Vertices {
		if reaches(g, playerID, v, e) {
			continue
		}
		if g.CanBuildSettlement(v, playerID, false) == nil {
			score += t.ExtensionBonus
			if s := ScoreSettlement(g, playerID, v, t); s > immediate {
				immediate = s
			}
		}
		if s := lookahead(g, playerID, v, e, t); s > ahead {
			ahead = s
		}
	}
	score += t.ImmediateWeight*immediate + t.LookaheadWeight*ahead
	if behindLeader(g, playerID) {
		score += t.ContestBonus
	}
	return score
}

// lookahead walks breadth-first from start over empty edges, up to
// LookaheadDepth edges, and returns the best settlement score found divided
// by one plus its distance. Opponent buildings stop the walk.
func lookahead(g *game.GameState, playerID int, start game.VertexID, via game.EdgeID, t Tuning) float64 {
	if b := g.Board.Vertices[start].Building; b != nil && b.Owner != playerID {
		return 0
	}
	type step struct {
		v     game.VertexID
		depth int
	}
	seen := map[game.VertexID]bool{start: true}
	for _, v := range g.Board.EdgeVertices(via) {
		seen[v] = true
	}
	queue := []step{{start, 0}}
	best := 0.0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth == t.LookaheadDepth {
			continue
		}
		for _, e := range g.Board.AdjacentEdges(cur.v) {
			if g.Board.Edges[e].Road != nil {
				continue
			}
			next := g.Board.OtherEnd(e, cur.v)
			if seen[next] {
				continue
			}
			seen[next] = true
			d := cur.depth + 1
			b := g.Board.Vertices[next].Building
			if b != nil {
				continue
			}
			if g.CanBuildSettlement(next, playerID, false) == nil {
				if s := ScoreSettlement(g, playerID, next, t) / float64(d+1); s > best {
					best = s
				}
			}
			queue = append(queue, step{next, d})
		}
	}
	return best
}

// ScoreRobberTile rates a robber destination: the tile's production plus
// the opponents it hurts, weighted by their buildings and hand size, with a
// bonus for hitting the points leader.
func ScoreRobberTile(g *game.GameState, playerID int, tile game.TileID, t Tuning) float64 {
	tl := g.Board.Tile(tile)
	p := g.Player(playerID)
	if tl == nil || p == nil {
		return 0
	}
	lead := 0
	for _, o := range g.Players {
		if o.ID != playerID && o.VictoryPoints > lead {
			lead = o.VictoryPoints
		}
	}

	score := DiceProbability(tl.Token) * t.RobberProductionWeight
	seen := make(map[int]bool)
	for _, v := range tl.Vertices {
		b := g.Board.Vertices[v].Building
		if b == nil || b.Owner == playerID {
			continue
		}
		weight := 1.0
		if b.Kind == game.BuildingCity {
			weight = 2
		}
		score += t.RobberBuildingWeight * weight
		if seen[b.Owner] {
			continue
		}
		seen[b.Owner] = true
		o := g.Players[b.Owner]
		score += t.RobberHandWeight * float64(o.HandSize())
		if o.VictoryPoints == lead && lead > p.VictoryPoints {
			score += t.RobberLeaderBonus
		}
	}
	return score
}

// Value prices a stockpile with the tuning's per-resource value table.
func Value(s game.Stockpile, t Tuning) float64 {
	v := 0.0
	for _, r := range game.AllResources {
		v += float64(s[r]) * t.ResourceValues[r]
	}
	return v
}

// ScoreTrade is the value received minus the value given.
func ScoreTrade(give, get game.Stockpile, t Tuning) float64 {
	return Value(get, t) - Value(give, t)
}

// ChooseDiscard picks n cards from hand, cheapest first. Ties go to the
// lower resource index.
func ChooseDiscard(hand game.Stockpile, n int, t Tuning) game.Stockpile {
	var out game.Stockpile
	left := hand
	for i := 0; i < n; i++ {
		pick, found := game.Wood, false
		for _, r := range game.AllResources {
			if left[r] <= 0 {
				continue
			}
			if !found || t.ResourceValues[r] < t.ResourceValues[pick] {
				pick, found = r, true
			}
		}
		if !found {
			break
		}
		left[pick]--
		out[pick]++
	}
	return out
}

// ShouldPlayKnight reports whether an opponent is ahead on points.
func ShouldPlayKnight(g *game.GameState, playerID int) bool {
	p := g.Player(playerID)
	if p == nil {
		return false
	}
	for _, o := range g.Players {
		if o.ID != playerID && o.VictoryPoints > p.TotalPoints() {
			return true
		}
	}
	return false
}
