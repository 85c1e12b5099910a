package game

import "go.uber.org/zap"

// CardChoice carries the extra input some cards need: the resource named by
// Monopoly, or the two resources taken by Year of Plenty.
type CardChoice struct {
	Resource  Resource    `json:"resource"`
	Resources [2]Resource `json:"resources"`
}

// FreeRoadsPerCard is how many roads a road building card grants.
const FreeRoadsPerCard = 2

// BuyDevelopmentCard draws a card for the player. It cannot be played until
// the player's next turn.
func (e *Engine) BuyDevelopmentCard(playerID int) (DevCard, error) {
	g := e.state
	if err := e.requireMainAction(playerID); err != nil {
		return 0, err
	}
	p := g.Players[playerID]
	if len(g.Bank.Deck) == 0 {
		return 0, bankDepleted("development cards")
	}
	if !p.Resources.CanAfford(CostDevCard) {
		return 0, ErrInsufficientResources
	}

	e.pay(p, CostDevCard)
	card, _ := g.Bank.Draw()
	p.NewDevCards[card]++
	e.log.Debug("development card bought", zap.Int("player", playerID), zap.Int("deckLeft", len(g.Bank.Deck)))
	e.emit(DevCardBought{PlayerID: playerID})
	e.finish()
	return card, nil
}

// PlayDevelopmentCard plays one card held since before this turn. Only one
// card may be played per turn, and victory point cards are never played.
// Knights may be played before rolling.
func (e *Engine) PlayDevelopmentCard(playerID int, card DevCard, choice CardChoice) error {
	g := e.state
	if err := e.requireTurn(playerID, PhasePlay); err != nil {
		return err
	}
	if g.RobberPending {
		return ruleError(KindOutOfSequence, "robber must be moved first")
	}
	if g.DevCardPlayed {
		return ruleError(KindOutOfSequence, "already played a development card this turn")
	}
	p := g.Players[playerID]
	if !card.Valid() || card == VictoryPoint || p.DevCards[card] == 0 {
		return ErrDevCardUnavailable
	}

	switch card {
	case RoadBuilding:
		if p.RoadsLeft == 0 {
			return ErrNoPiecesRemaining
		}
	case YearOfPlenty:
		var want Stockpile
		for _, r := range choice.Resources {
			if !r.Tradeable() {
				return ruleError(KindUnknownTarget, "resource %d", r)
			}
			want[r]++
		}
		if r, short := g.Bank.Resources.Missing(want); short {
			return bankDepleted(r.String())
		}
	case Monopoly:
		if !choice.Resource.Tradeable() {
			return ruleError(KindUnknownTarget, "resource %d", choice.Resource)
		}
	}

	p.DevCards[card]--
	g.DevCardPlayed = true
	e.log.Info("development card played", zap.Int("player", playerID), zap.Stringer("card", card))
	e.emit(DevCardPlayed{PlayerID: playerID, Card: card})

	switch card {
	case Knight:
		p.KnightsPlayed++
		g.RobberPending = true
		e.refreshLargestArmy()
	case RoadBuilding:
		g.FreeRoads = FreeRoadsPerCard
		if p.RoadsLeft < g.FreeRoads {
			g.FreeRoads = p.RoadsLeft
		}
	case YearOfPlenty:
		for _, r := range choice.Resources {
			e.grant(p, r, 1)
			e.emit(ResourcesDistributed{PlayerID: playerID, Resource: r, Amount: 1})
		}
	case Monopoly:
		r := choice.Resource
		for _, other := range g.Players {
			if other.ID == playerID {
				continue
			}
			if n := other.Resources.Get(r); n > 0 {
				other.Resources.Remove(r, n)
				p.Resources.Add(r, n)
				e.emit(ResourceStolen{FromID: other.ID, ToID: playerID, Resource: r, Amount: n})
			}
		}
	}
	e.finish()
	return nil
}
