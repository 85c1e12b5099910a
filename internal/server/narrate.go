package server

import (
	"fmt"

	"hexlands/internal/game"
)

// describeEvent renders an event as a history line.
func describeEvent(g *game.GameState, ev game.Event) string {
	name := func(id int) string {
		if p := g.Player(id); p != nil {
			return p.Name
		}
		return "nobody"
	}

	switch e := ev.(type) {
	case game.DiceRolled:
		return fmt.Sprintf("%s rolled %d", name(e.PlayerID), e.Total)
	case game.ResourcesDistributed:
		return fmt.Sprintf("%s received %d %s", name(e.PlayerID), e.Amount, e.Resource)
	case game.BuildingPlaced:
		return fmt.Sprintf("%s built a %s", name(e.PlayerID), e.Kind)
	case game.LongestRoadChanged:
		if e.PlayerID == game.NoPlayer {
			return "Longest road is unclaimed"
		}
		return fmt.Sprintf("%s holds the longest road", name(e.PlayerID))
	case game.LargestArmyChanged:
		if e.PlayerID == game.NoPlayer {
			return "Largest army is unclaimed"
		}
		return fmt.Sprintf("%s holds the largest army", name(e.PlayerID))
	case game.RobberMoved:
		return fmt.Sprintf("The robber moved to tile %d", e.TileID)
	case game.ResourceStolen:
		return fmt.Sprintf("%s took %d %s from %s", name(e.ToID), e.Amount, e.Resource, name(e.FromID))
	case game.GameOver:
		return fmt.Sprintf("%s wins", name(e.WinnerID))
	case game.PhaseChanged:
		return fmt.Sprintf("Phase: %s", e.Phase)
	case game.TurnChanged:
		return fmt.Sprintf("%s to play", name(e.PlayerID))
	case game.CardsDiscarded:
		return fmt.Sprintf("%s discarded %d cards", name(e.PlayerID), e.Count)
	case game.DevCardBought:
		return fmt.Sprintf("%s bought a development card", name(e.PlayerID))
	case game.DevCardPlayed:
		return fmt.Sprintf("%s played %s", name(e.PlayerID), e.Card)
	case game.TradeProposed:
		if e.To == game.NoPlayer {
			return fmt.Sprintf("%s traded with the bank", name(e.From))
		}
		return fmt.Sprintf("%s offered a trade to %s", name(e.From), name(e.To))
	case game.TradeExecuted:
		return "Trade completed"
	case game.TradeDeclined:
		return "Trade declined"
	default:
		return ev.EventType()
	}
}
