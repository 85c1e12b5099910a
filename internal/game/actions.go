package game

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Action is one command a seat can issue. Humans and bots both go through
// Engine.Apply, so bot proposals are validated like anyone else's.
type Action interface {
	ActionName() string
}

type RollDice struct{}

type BuildSettlement struct {
	Vertex VertexID `json:"vertex"`
}

type BuildRoad struct {
	Edge EdgeID `json:"edge"`
}

type UpgradeCity struct {
	Vertex VertexID `json:"vertex"`
}

type BuyCard struct{}

type PlayCard struct {
	Card   DevCard    `json:"card"`
	Choice CardChoice `json:"choice"`
}

// ProposeTrade offers resources to another seat, or to the bank when
// Counterparty is NoPlayer.
type ProposeTrade struct {
	Offer        Stockpile `json:"offer"`
	Request      Stockpile `json:"request"`
	Counterparty int       `json:"counterparty"`
}

// UnmarshalJSON leaves Counterparty at NoPlayer when the key is absent, so
// an offer without one goes to the bank.
func (a *ProposeTrade) UnmarshalJSON(data []byte) error {
	type wire ProposeTrade
	w := wire{Counterparty: NoPlayer}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = ProposeTrade(w)
	return nil
}

type AcceptTrade struct {
	TradeID string `json:"tradeId"`
}

type DeclineTrade struct {
	TradeID string `json:"tradeId"`
}

type MoveRobber struct {
	Tile TileID `json:"tile"`
}

type Discard struct {
	Cards Stockpile `json:"cards"`
}

type EndTurn struct{}

func (RollDice) ActionName() string        { return "roll_dice" }
func (BuildSettlement) ActionName() string { return "build_settlement" }
func (BuildRoad) ActionName() string       { return "build_road" }
func (UpgradeCity) ActionName() string     { return "upgrade_city" }
func (BuyCard) ActionName() string         { return "buy_card" }
func (PlayCard) ActionName() string        { return "play_card" }
func (ProposeTrade) ActionName() string    { return "propose_trade" }
func (AcceptTrade) ActionName() string     { return "accept_trade" }
func (DeclineTrade) ActionName() string    { return "decline_trade" }
func (MoveRobber) ActionName() string      { return "move_robber" }
func (Discard) ActionName() string         { return "discard" }
func (EndTurn) ActionName() string         { return "end_turn" }

// Apply validates and applies one action for a seat.
func (e *Engine) Apply(playerID int, a Action) error {
	var err error
	switch act := a.(type) {
	case RollDice:
		_, err = e.RollDice(playerID)
	case BuildSettlement:
		err = e.BuildSettlement(act.Vertex, playerID)
	case BuildRoad:
		err = e.BuildRoad(act.Edge, playerID)
	case UpgradeCity:
		err = e.UpgradeCity(act.Vertex, playerID)
	case BuyCard:
		_, err = e.BuyDevelopmentCard(playerID)
	case PlayCard:
		err = e.PlayDevelopmentCard(playerID, act.Card, act.Choice)
	case ProposeTrade:
		_, err = e.ProposeTrade(playerID, act.Offer, act.Request, act.Counterparty)
	case AcceptTrade:
		err = e.ExecuteTrade(playerID, act.TradeID)
	case DeclineTrade:
		err = e.DeclineTrade(playerID, act.TradeID)
	case MoveRobber:
		err = e.MoveRobber(playerID, act.Tile)
	case Discard:
		err = e.Discard(playerID, act.Cards)
	case EndTurn:
		err = e.EndTurn(playerID)
	case nil:
		err = ruleError(KindUnknownTarget, "no action")
	default:
		err = ruleError(KindUnknownTarget, "unsupported action %T", a)
	}
	if err != nil {
		e.log.Debug("action rejected",
			zap.Int("player", playerID),
			zap.String("action", actionName(a)),
			zap.Error(err))
	}
	return err
}

func actionName(a Action) string {
	if a == nil {
		return "nil"
	}
	return a.ActionName()
}

// String gives a short description for logs.
func (a ProposeTrade) String() string {
	to := "bank"
	if a.Counterparty != NoPlayer {
		to = fmt.Sprintf("seat %d", a.Counterparty)
	}
	return fmt.Sprintf("%s for %s with %s", a.Offer, a.Request, to)
}
