// Package bot chooses moves for computer seats. It only reads game state and
// returns a game.Action; the caller applies it through game.Engine like any
// other command.
package bot

import "hexlands/internal/game"

// Brain decides moves with a fixed set of weights.
type Brain struct {
	Tuning Tuning
}

// New returns a brain using DefaultTuning.
func New() *Brain {
	return &Brain{Tuning: DefaultTuning}
}

// Decide returns the next action for the seat, or nil when the game is not
// waiting on it. Every action returned has already passed the same checks the
// engine applies.
func Decide(g *game.GameState, playerID int) game.Action {
	return New().Decide(g, playerID)
}

// Decide returns the next action for the seat, or nil when the game is not
// waiting on it.
func (b *Brain) Decide(g *game.GameState, playerID int) game.Action {
	p := g.Player(playerID)
	if p == nil {
		return nil
	}
	switch g.Phase {
	case game.PhaseSetup:
		if g.CurrentPlayer != playerID {
			return nil
		}
		return b.decideSetup(g, playerID)
	case game.PhaseDiscardCards:
		if next, ok := g.AwaitingDiscardFrom(); !ok || next != playerID {
			return nil
		}
		return game.Discard{Cards: ChooseDiscard(p.Resources, g.DiscardDue(playerID), b.Tuning)}
	case game.PhasePlay:
		if a := b.respondToTrade(g, playerID); a != nil {
			return a
		}
		if g.CurrentPlayer != playerID {
			return nil
		}
		return b.decideTurn(g, playerID)
	}
	return nil
}

func (b *Brain) decideSetup(g *game.GameState, playerID int) game.Action {
	if g.SetupSettlement == game.NoVertex {
		if v, ok := b.bestSettlement(g, playerID, g.ValidSettlementVertices(playerID)); ok {
			return game.BuildSettlement{Vertex: v}
		}
		return nil
	}
	if e, ok := b.bestRoad(g, playerID); ok {
		return game.BuildRoad{Edge: e}
	}
	return nil
}

// respondToTrade answers the first open offer addressed to the seat.
func (b *Brain) respondToTrade(g *game.GameState, playerID int) game.Action {
	for _, id := range g.PendingTradeIDs() {
		t := g.Trades[id]
		if t.To != playerID {
			continue
		}
		me, them := g.Players[playerID], g.Players[t.From]
		if me.Resources.CanAfford(t.Request) && them.Resources.CanAfford(t.Offer) &&
			ScoreTrade(t.Request, t.Offer, b.Tuning) > b.Tuning.AcceptThreshold {
			return game.AcceptTrade{TradeID: id}
		}
		return game.DeclineTrade{TradeID: id}
	}
	return nil
}

func (b *Brain) decideTurn(g *game.GameState, playerID int) game.Action {
	p := g.Players[playerID]

	if g.RobberPending {
		return game.MoveRobber{Tile: b.bestRobberTile(g, playerID)}
	}
	if !g.HasRolled {
		if b.canPlay(g, p, game.Knight) && ShouldPlayKnight(g, playerID) {
			return game.PlayCard{Card: game.Knight}
		}
		return game.RollDice{}
	}

	if g.FreeRoads > 0 && p.RoadsLeft > 0 {
		if e, ok := b.bestRoad(g, playerID); ok {
			return game.BuildRoad{Edge: e}
		}
	}
	if p.CitiesLeft > 0 && p.Resources.CanAfford(game.CostCity) {
		if v, ok := b.bestCity(g, playerID); ok {
			return game.UpgradeCity{Vertex: v}
		}
	}
	if p.SettlementsLeft > 0 && p.Resources.CanAfford(game.CostSettlement) {
		if v, ok := b.bestSettlement(g, playerID, g.ValidSettlementVertices(playerID)); ok {
			return game.BuildSettlement{Vertex: v}
		}
	}
	if a := b.playCard(g, playerID); a != nil {
		return a
	}
	if p.RoadsLeft > 0 && p.Resources.CanAfford(game.CostRoad) {
		if e, ok := b.bestRoad(g, playerID); ok && ScoreRoad(g, playerID, e, b.Tuning) >= b.Tuning.RoadThreshold {
			return game.BuildRoad{Edge: e}
		}
	}

	goal, _ := b.goal(g, playerID)
	if len(g.Bank.Deck) > 0 {
		if goal == game.CostDevCard && p.Resources.CanAfford(goal) || surplus(p.Resources, goal).CanAfford(game.CostDevCard) {
			return game.BuyCard{}
		}
	}
	if a := b.bankTrade(g, playerID, goal); a != nil {
		return a
	}
	return game.EndTurn{}
}

func (b *Brain) canPlay(g *game.GameState, p *game.Player, card game.DevCard) bool {
	return !g.DevCardPlayed && p.DevCards[card] > 0
}

// playCard plays a held card after the roll when it helps right now.
func (b *Brain) playCard(g *game.GameState, playerID int) game.Action {
	p := g.Players[playerID]
	if g.DevCardPlayed {
		return nil
	}
	if b.canPlay(g, p, game.Knight) && ShouldPlayKnight(g, playerID) {
		return game.PlayCard{Card: game.Knight}
	}
	if b.canPlay(g, p, game.RoadBuilding) && p.RoadsLeft > 0 {
		if _, ok := b.bestRoad(g, playerID); ok {
			return game.PlayCard{Card: game.RoadBuilding}
		}
	}

	goal, ok := b.goal(g, playerID)
	if !ok {
		return nil
	}
	need := shortfall(p.Resources, goal)
	if need.IsZero() {
		return nil
	}
	if b.canPlay(g, p, game.YearOfPlenty) {
		var pick [2]game.Resource
		left := need
		for i := range pick {
			pick[i] = b.mostWanted(left)
			if left[pick[i]] > 0 {
				left[pick[i]]--
			}
		}
		var want game.Stockpile
		want[pick[0]]++
		want[pick[1]]++
		if g.Bank.Resources.CanAfford(want) {
			return game.PlayCard{Card: game.YearOfPlenty, Choice: game.CardChoice{Resources: pick}}
		}
	}
	if b.canPlay(g, p, game.Monopoly) {
		return game.PlayCard{Card: game.Monopoly, Choice: game.CardChoice{Resource: b.mostWanted(need)}}
	}
	return nil
}

// mostWanted picks the resource with the largest count in need, breaking
// ties by value and then index. An empty need yields the most valuable
// resource.
func (b *Brain) mostWanted(need game.Stockpile) game.Resource {
	best := game.AllResources[0]
	for _, r := range game.AllResources[1:] {
		if need[r] > need[best] || (need[r] == need[best] && b.Tuning.ResourceValues[r] > b.Tuning.ResourceValues[best]) {
			best = r
		}
	}
	return best
}

// goal is what the seat is saving for: a settlement when it has somewhere
// to put one, else a city, else a road, else a development card.
func (b *Brain) goal(g *game.GameState, playerID int) (game.Stockpile, bool) {
	p := g.Players[playerID]
	switch {
	case p.SettlementsLeft > 0 && len(g.ValidSettlementVertices(playerID)) > 0:
		return game.CostSettlement, true
	case p.CitiesLeft > 0 && g.CountBuildings(playerID, game.BuildingSettlement) > 0:
		return game.CostCity, true
	case p.RoadsLeft > 0 && len(g.ValidRoadEdges(playerID)) > 0:
		return game.CostRoad, true
	case len(g.Bank.Deck) > 0:
		return game.CostDevCard, true
	}
	return game.Stockpile{}, false
}

// shortfall is what hand lacks to cover cost.
func shortfall(hand, cost game.Stockpile) game.Stockpile {
	var out game.Stockpile
	for _, r := range game.AllResources {
		if d := cost[r] - hand[r]; d > 0 {
			out[r] = d
		}
	}
	return out
}

// surplus is what hand holds beyond cost.
func surplus(hand, cost game.Stockpile) game.Stockpile {
	var out game.Stockpile
	for _, r := range game.AllResources {
		if d := hand[r] - cost[r]; d > 0 {
			out[r] = d
		}
	}
	return out
}

// bankTrade trades surplus toward the goal, one unit at a time, when the
// surplus can cover the whole shortfall. Resources the goal needs are never
// offered, so repeated calls cannot trade back and forth.
func (b *Brain) bankTrade(g *game.GameState, playerID int, goal game.Stockpile) game.Action {
	p := g.Players[playerID]
	need := shortfall(p.Resources, goal)
	if need.IsZero() {
		return nil
	}
	extra := surplus(p.Resources, goal)
	groups := 0
	for _, r := range game.AllResources {
		groups += extra[r] / g.TradeRatio(playerID, r)
	}
	if groups < need.Total() {
		return nil
	}

	want := b.mostWanted(need)
	give, found := game.Wood, false
	for _, r := range game.AllResources {
		if extra[r] < g.TradeRatio(playerID, r) {
			continue
		}
		if !found || b.Tuning.ResourceValues[r] < b.Tuning.ResourceValues[give] {
			give, found = r, true
		}
	}
	if !found {
		return nil
	}

	var offer, request game.Stockpile
	offer[give] = g.TradeRatio(playerID, give)
	request[want] = 1
	if ScoreTrade(offer, request, b.Tuning)+b.Tuning.NeedBonus <= 0 {
		return nil
	}
	if g.ValidateBankTrade(playerID, offer, request) != nil {
		return nil
	}
	return game.ProposeTrade{Offer: offer, Request: request, Counterparty: game.NoPlayer}
}

func (b *Brain) bestSettlement(g *game.GameState, playerID int, candidates []game.VertexID) (game.VertexID, bool) {
	best, bestScore, found := game.NoVertex, 0.0, false
	for _, v := range candidates {
		if s := ScoreSettlement(g, playerID, v, b.Tuning); !found || s > bestScore {
			best, bestScore, found = v, s, true
		}
	}
	return best, found
}

func (b *Brain) bestCity(g *game.GameState, playerID int) (game.VertexID, bool) {
	best, bestScore, found := game.NoVertex, 0.0, false
	for _, vx := range g.Board.Vertices {
		if g.CanUpgradeCity(vx.ID, playerID) != nil {
			continue
		}
		if s := ScoreCity(g, vx.ID, b.Tuning); !found || s > bestScore {
			best, bestScore, found = vx.ID, s, true
		}
	}
	return best, found
}

func (b *Brain) bestRoad(g *game.GameState, playerID int) (game.EdgeID, bool) {
	best, bestScore, found := game.NoEdge, 0.0, false
	for _, e := range g.ValidRoadEdges(playerID) {
		if s := ScoreRoad(g, playerID, e, b.Tuning); !found || s > bestScore {
			best, bestScore, found = e, s, true
		}
	}
	return best, found
}

func (b *Brain) bestRobberTile(g *game.GameState, playerID int) game.TileID {
	best, bestScore, found := game.NoTile, 0.0, false
	for _, t := range g.ValidRobberTiles(playerID) {
		if s := ScoreRobberTile(g, playerID, t, b.Tuning); !found || s > bestScore {
			best, bestScore, found = t, s, true
		}
	}
	return best
}
