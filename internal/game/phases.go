package game

import (
	"sort"

	"go.uber.org/zap"
)

// RollDice rolls for the current player. A 7 starts the discard and robber
// sequence; any other total produces resources.
func (e *Engine) RollDice(playerID int) (int, error) {
	g := e.state
	if err := e.requireTurn(playerID, PhasePlay); err != nil {
		return 0, err
	}
	if g.HasRolled {
		return 0, ErrDiceAlreadyRolled
	}
	if g.RobberPending {
		return 0, ruleError(KindOutOfSequence, "robber must be moved first")
	}

	total := e.dice.Roll()
	g.Dice = total
	g.HasRolled = true
	e.log.Debug("dice rolled", zap.Int("player", playerID), zap.Int("total", total))
	e.emit(DiceRolled{PlayerID: playerID, Total: total})

	if total == 7 {
		e.startDiscards()
	} else {
		e.produce(total)
	}
	e.finish()
	return total, nil
}

// produce pays out every unrobbed tile showing total. When the bank cannot
// cover every claim on a resource, a sole claimant takes what is left and
// several claimants get nothing of it.
func (e *Engine) produce(total int) {
	g := e.state
	var claims [NumResources][]int
	for r := range claims {
		claims[r] = make([]int, len(g.Players))
	}
	for _, t := range g.Board.Tiles {
		if t.Token != total || t.HasRobber || !t.Resource.Tradeable() {
			continue
		}
		for _, v := range t.Vertices {
			b := g.Board.Vertices[v].Building
			if b == nil {
				continue
			}
			amount := 1
			if b.Kind == BuildingCity {
				amount = 2
			}
			claims[t.Resource][b.Owner] += amount
		}
	}

	for _, r := range AllResources {
		want, claimants := 0, 0
		for _, n := range claims[r] {
			if n > 0 {
				want += n
				claimants++
			}
		}
		if want == 0 {
			continue
		}
		supply := g.Bank.Resources.Get(r)
		if want > supply {
			if claimants > 1 {
				e.log.Info("bank short, nobody paid", zap.Stringer("resource", r), zap.Int("want", want), zap.Int("supply", supply))
				continue
			}
			for id, n := range claims[r] {
				if n > 0 {
					claims[r][id] = supply
				}
			}
		}
		for id, n := range claims[r] {
			if n <= 0 {
				continue
			}
			e.grant(g.Players[id], r, n)
			e.emit(ResourcesDistributed{PlayerID: id, Resource: r, Amount: n})
		}
	}
}

// startDiscards queues every player holding more than the discard limit.
// With nobody to wait for the robber move is due at once.
func (e *Engine) startDiscards() {
	g := e.state
	g.DiscardQueue = g.DiscardQueue[:0]
	for i, p := range g.Players {
		g.DiscardOwed[i] = 0
		if hand := p.HandSize(); hand > g.Settings.DiscardLimit {
			g.DiscardOwed[i] = hand / 2
			g.DiscardQueue = append(g.DiscardQueue, i)
		}
	}
	if len(g.DiscardQueue) == 0 {
		g.RobberPending = true
		return
	}
	e.setPhase(PhaseDiscardCards)
}

// Discard returns cards to the bank for the player at the head of the
// discard queue. The count must be exactly half their hand, rounded down.
func (e *Engine) Discard(playerID int, cards Stockpile) error {
	g := e.state
	if g.Phase != PhaseDiscardCards {
		return wrongPhase(PhaseDiscardCards, g.Phase)
	}
	if g.Player(playerID) == nil {
		return ruleError(KindUnknownTarget, "seat %d", playerID)
	}
	if next, _ := g.AwaitingDiscardFrom(); next != playerID {
		return ErrNotYourTurn
	}
	if cards.HasNegative() {
		return ruleError(KindInvalidDiscard, "negative count")
	}
	p := g.Players[playerID]
	if !p.Resources.CanAfford(cards) {
		return ErrInsufficientResources
	}
	if owed := g.DiscardOwed[playerID]; cards.Total() != owed {
		return ruleError(KindInvalidDiscard, "must discard exactly %d cards, got %d", owed, cards.Total())
	}

	e.pay(p, cards)
	g.DiscardOwed[playerID] = 0
	g.DiscardQueue = g.DiscardQueue[1:]
	e.log.Debug("cards discarded", zap.Int("player", playerID), zap.Int("count", cards.Total()))
	e.emit(CardsDiscarded{PlayerID: playerID, Count: cards.Total()})

	if len(g.DiscardQueue) == 0 {
		g.DiscardQueue = nil
		g.RobberPending = true
		e.setPhase(PhasePlay)
	}
	e.finish()
	return nil
}

// MoveRobber relocates the robber after a 7 or a knight and steals one
// random card from a random opponent on the new tile.
func (e *Engine) MoveRobber(playerID int, tile TileID) error {
	g := e.state
	if err := e.requireTurn(playerID, PhasePlay); err != nil {
		return err
	}
	if !g.RobberPending {
		return ruleError(KindOutOfSequence, "no robber move pending")
	}
	if err := g.robberTarget(tile, playerID); err != nil {
		return err
	}

	if old := g.Board.Tile(g.Board.RobberTile()); old != nil {
		old.HasRobber = false
	}
	g.Board.Tiles[tile].HasRobber = true
	g.RobberPending = false
	e.log.Debug("robber moved", zap.Int("player", playerID), zap.Int("tile", int(tile)))
	e.emit(RobberMoved{TileID: tile})

	if victims := g.StealCandidates(tile, playerID); len(victims) > 0 {
		victim := g.Players[victims[e.rng.Intn(len(victims))]]
		held := victim.Resources.Held()
		r := held[e.rng.Intn(len(held))]
		victim.Resources.Remove(r, 1)
		g.Players[playerID].Resources.Add(r, 1)
		e.emit(ResourceStolen{FromID: victim.ID, ToID: playerID, Resource: r, Amount: 1})
	}
	e.finish()
	return nil
}

// EndTurn passes play to the next seat.
func (e *Engine) EndTurn(playerID int) error {
	g := e.state
	if err := e.requireTurn(playerID, PhasePlay); err != nil {
		return err
	}
	if !g.HasRolled {
		return ErrDiceNotRolled
	}
	if g.RobberPending {
		return ruleError(KindOutOfSequence, "robber must be moved first")
	}

	g.Players[playerID].ResetTurn()
	for id := range g.Trades {
		delete(g.Trades, id)
	}
	g.HasRolled = false
	g.Dice = 0
	g.DevCardPlayed = false
	g.FreeRoads = 0
	g.CurrentPlayer = (g.CurrentPlayer + 1) % len(g.Players)
	g.Turn++
	e.emit(TurnChanged{PlayerID: g.CurrentPlayer})
	e.finish()
	return nil
}

// PendingTradeIDs lists open offers in a stable order.
func (g *GameState) PendingTradeIDs() []string {
	ids := make([]string, 0, len(g.Trades))
	for id := range g.Trades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
