package game

// Honor thresholds.
const (
	LongestRoadMin = 5
	LargestArmyMin = 3
	HonorPoints    = 2
)

// LongestRoad returns the length of the longest trail through the player's
// roads. A trail never reuses an edge and cannot pass through a vertex that
// holds an opponent's building, though it may end there.
//
// The search is exhaustive. With at most 15 roads per player and vertex
// degree at most 3 it stays small.
func LongestRoad(b *Board, playerID int) int {
	owned := make(map[EdgeID]bool)
	for _, e := range b.Edges {
		if e.Road != nil && e.Road.Owner == playerID {
			owned[e.ID] = true
		}
	}
	if len(owned) == 0 {
		return 0
	}

	w := roadWalker{board: b, player: playerID, owned: owned, used: make(map[EdgeID]bool, len(owned))}
	best := 0
	for _, e := range b.Edges {
		if !owned[e.ID] {
			continue
		}
		for _, start := range e.Vertices {
			w.used[e.ID] = true
			if n := 1 + w.extend(b.OtherEnd(e.ID, start)); n > best {
				best = n
			}
			w.used[e.ID] = false
		}
	}
	return best
}

type roadWalker struct {
	board  *Board
	player int
	owned  map[EdgeID]bool
	used   map[EdgeID]bool
}

// extend returns the longest continuation from v using unused owned edges.
func (w *roadWalker) extend(v VertexID) int {
	vx := w.board.Vertices[v]
	if vx.Building != nil && vx.Building.Owner != w.player {
		return 0
	}
	best := 0
	for _, e := range vx.Edges {
		if !w.owned[e] || w.used[e] {
			continue
		}
		w.used[e] = true
		if n := 1 + w.extend(w.board.OtherEnd(e, v)); n > best {
			best = n
		}
		w.used[e] = false
	}
	return best
}

// awardHonor decides who holds an honor given each seat's value:
//   - below threshold nobody holds it;
//   - a holder tied with the maximum keeps it;
//   - otherwise a unique leader takes it;
//   - a tie without the holder leaves it unheld.
func awardHonor(values []int, holder, threshold int) int {
	top := 0
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	if top < threshold {
		return NoPlayer
	}
	if holder >= 0 && holder < len(values) && values[holder] == top {
		return holder
	}
	leader := NoPlayer
	for id, v := range values {
		if v != top {
			continue
		}
		if leader != NoPlayer {
			return NoPlayer
		}
		leader = id
	}
	return leader
}

// refreshLongestRoad recomputes every road length and moves the honor.
func (e *Engine) refreshLongestRoad() {
	g := e.state
	values := make([]int, len(g.Players))
	for i, p := range g.Players {
		p.RoadLength = LongestRoad(g.Board, i)
		values[i] = p.RoadLength
	}
	next := awardHonor(values, g.LongestRoadHolder, LongestRoadMin)
	if next == g.LongestRoadHolder {
		return
	}
	if prev := g.Player(g.LongestRoadHolder); prev != nil {
		prev.HasLongestRoad = false
		prev.VictoryPoints -= HonorPoints
	}
	if p := g.Player(next); p != nil {
		p.HasLongestRoad = true
		p.VictoryPoints += HonorPoints
	}
	e.log.Info("longest road changed", logPlayer(g.LongestRoadHolder, next)...)
	g.LongestRoadHolder = next
	e.emit(LongestRoadChanged{PlayerID: next})
}

// refreshLargestArmy moves the largest army honor after a knight.
func (e *Engine) refreshLargestArmy() {
	g := e.state
	values := make([]int, len(g.Players))
	for i, p := range g.Players {
		values[i] = p.KnightsPlayed
	}
	next := awardHonor(values, g.LargestArmyHolder, LargestArmyMin)
	if next == g.LargestArmyHolder {
		return
	}
	if prev := g.Player(g.LargestArmyHolder); prev != nil {
		prev.HasLargestArmy = false
		prev.VictoryPoints -= HonorPoints
	}
	if p := g.Player(next); p != nil {
		p.HasLargestArmy = true
		p.VictoryPoints += HonorPoints
	}
	e.log.Info("largest army changed", logPlayer(g.LargestArmyHolder, next)...)
	g.LargestArmyHolder = next
	e.emit(LargestArmyChanged{PlayerID: next})
}
