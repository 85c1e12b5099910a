package protocol

import (
	"encoding/json"
	"fmt"

	"hexlands/internal/game"
)

type actionDecoder func(json.RawMessage) (game.Action, error)

func decodeAs[T game.Action](data json.RawMessage) (game.Action, error) {
	var a T
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return a, nil
}

var actionDecoders = map[string]actionDecoder{
	game.RollDice{}.ActionName():        decodeAs[game.RollDice],
	game.BuildSettlement{}.ActionName(): decodeAs[game.BuildSettlement],
	game.BuildRoad{}.ActionName():       decodeAs[game.BuildRoad],
	game.UpgradeCity{}.ActionName():     decodeAs[game.UpgradeCity],
	game.BuyCard{}.ActionName():         decodeAs[game.BuyCard],
	game.PlayCard{}.ActionName():        decodeAs[game.PlayCard],
	game.ProposeTrade{}.ActionName():    decodeAs[game.ProposeTrade],
	game.AcceptTrade{}.ActionName():     decodeAs[game.AcceptTrade],
	game.DeclineTrade{}.ActionName():    decodeAs[game.DeclineTrade],
	game.MoveRobber{}.ActionName():      decodeAs[game.MoveRobber],
	game.Discard{}.ActionName():         decodeAs[game.Discard],
	game.EndTurn{}.ActionName():         decodeAs[game.EndTurn],
}

// EncodeAction wraps an action for the given game.
func EncodeAction(gameID string, a game.Action) (ActionPayload, error) {
	if a == nil {
		return ActionPayload{}, fmt.Errorf("nil action")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return ActionPayload{}, fmt.Errorf("encode %s: %w", a.ActionName(), err)
	}
	return ActionPayload{GameID: gameID, Action: a.ActionName(), Data: data}, nil
}

// Decode turns the payload back into a game action.
func (p ActionPayload) Decode() (game.Action, error) {
	dec, ok := actionDecoders[p.Action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", p.Action)
	}
	a, err := dec(p.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Action, err)
	}
	return a, nil
}

// EncodeEvents tags each event with its type name.
func EncodeEvents(events []game.Event) ([]EventEnvelope, error) {
	out := make([]EventEnvelope, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", ev.EventType(), err)
		}
		out = append(out, EventEnvelope{Type: ev.EventType(), Data: data})
	}
	return out, nil
}
