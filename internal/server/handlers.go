package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hexlands/internal/database"
	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

var (
	errUnknownMessage   = errors.New("unknown message type")
	errMalformed        = errors.New("malformed message")
	errNotAuthenticated = errors.New("not authenticated")
	errNotInGame        = errors.New("not seated in that game")
	errBadSeatCount     = fmt.Errorf("a game seats %d to %d players", game.MinPlayers, game.MaxPlayers)
)

// errorCode maps handler errors to wire codes. Rule errors keep their own.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, database.ErrGameNotFound):
		return protocol.ErrCodeGameNotFound
	case errors.Is(err, database.ErrSeatTaken), errors.Is(err, database.ErrSeatNotFound):
		return protocol.ErrCodeSeatTaken
	case errors.Is(err, errNotAuthenticated):
		return protocol.ErrCodeNotAuthenticated
	case errors.Is(err, errNotInGame):
		return protocol.ErrCodeNotInGame
	case errors.Is(err, errUnknownMessage), errors.Is(err, errMalformed), errors.Is(err, errBadSeatCount):
		return protocol.ErrCodeInvalidMessage
	}
	return protocol.CodeFor(err)
}

// Handlers processes incoming messages.
type Handlers struct {
	hub *Hub
	log *zap.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub, log: hub.log}
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypeAuthenticate:
		err = h.handleAuthenticate(client, msg)
	case protocol.TypeCreateGame:
		err = h.handleCreateGame(client, msg)
	case protocol.TypeJoinGame:
		err = h.handleJoinGame(client, msg)
	case protocol.TypeListGames:
		err = h.handleListGames(client, msg)
	case protocol.TypeAction:
		err = h.handleAction(client, msg)
	case protocol.TypePing:
		h.reply(client, msg.ID, protocol.TypePong, struct{}{})
	default:
		err = errUnknownMessage
	}

	if err != nil {
		h.sendError(client, msg.ID, err)
	}
}

func parse(msg *protocol.Message, v interface{}) error {
	if err := msg.ParsePayload(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func (h *Handlers) reply(client *Client, msgID string, t protocol.MessageType, payload interface{}) {
	resp, err := protocol.NewMessage(t, payload)
	if err != nil {
		h.log.Error("failed to build reply", zap.String("type", string(t)), zap.Error(err))
		return
	}
	resp.ID = msgID
	client.Send(resp)
}

func (h *Handlers) sendError(client *Client, msgID string, err error) {
	code := errorCode(err)
	if code == protocol.ErrCodeInternalError {
		h.log.Error("request failed", zap.String("msg", msgID), zap.Error(err))
	}
	h.reply(client, msgID, protocol.TypeError, protocol.ErrorPayload{Code: code, Message: err.Error()})
}

// handleAuthenticate registers a new player or resumes one by token.
func (h *Handlers) handleAuthenticate(client *Client, msg *protocol.Message) error {
	var payload protocol.AuthenticatePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	db := h.hub.server.db
	var player *database.Player
	var err error

	if payload.Token != "" {
		player, err = db.GetPlayerByToken(payload.Token)
		if err != nil && !errors.Is(err, database.ErrPlayerNotFound) {
			return err
		}
	}

	if player == nil {
		name := payload.Name
		if name == "" {
			name = "Player"
		}
		player, err = db.CreatePlayer(name)
		if err != nil {
			return err
		}
		h.log.Info("player created", zap.String("player", player.ID), zap.String("name", player.Name))
	} else {
		if err := db.UpdatePlayerLastSeen(player.ID); err != nil {
			h.log.Warn("failed to update last seen", zap.Error(err))
		}
		h.log.Info("player reconnected", zap.String("player", player.ID))
	}

	client.setPlayer(player.ID, player.Name)
	h.reply(client, msg.ID, protocol.TypeAuthResult, protocol.AuthResultPayload{
		Success:  true,
		PlayerID: player.ID,
		Token:    player.Token,
		Name:     player.Name,
	})
	return nil
}

// handleCreateGame starts a game with the caller in seat 0, open seats for
// remote players next and bots after them.
func (h *Handlers) handleCreateGame(client *Client, msg *protocol.Message) error {
	playerID, playerName := client.Player()
	if playerID == "" {
		return errNotAuthenticated
	}
	var payload protocol.CreateGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	defaults := h.hub.server.cfg.Game
	bots := payload.Bots
	if bots == 0 && payload.OpenSeats == 0 {
		bots = defaults.Bots
	}
	total := 1 + payload.OpenSeats + bots
	if payload.OpenSeats < 0 || bots < 0 || total < game.MinPlayers || total > game.MaxPlayers {
		return errBadSeatCount
	}

	settings := defaults.Settings
	if payload.VictoryPoints > 0 {
		settings.VictoryPoints = payload.VictoryPoints
	}
	if payload.FairDice {
		settings.FairDice = true
	}
	if payload.Seed != 0 {
		settings.Seed = payload.Seed
	}

	colors := game.AllColors()
	players := []*game.Player{game.NewPlayer(0, playerName, colors[0])}
	for i := 0; i < payload.OpenSeats; i++ {
		seat := len(players)
		players = append(players, game.NewPlayer(seat, fmt.Sprintf("Player %d", seat+1), colors[seat]))
	}
	for i := 0; i < bots; i++ {
		seat := len(players)
		players = append(players, game.NewBotPlayer(seat, fmt.Sprintf("Bot %d", seat), colors[seat]))
	}

	name := payload.Name
	if name == "" {
		name = playerName + "'s game"
	}
	s, err := h.hub.server.sessions.Create(name, playerID, players, settings)
	if err != nil {
		return err
	}
	h.log.Info("game created", zap.String("game", s.ID), zap.Int("bots", bots), zap.Int("openSeats", payload.OpenSeats))

	h.hub.AddClientToGame(client, s.ID, 0)
	if err := h.hub.server.db.SetSeatConnected(s.ID, 0, true); err != nil {
		h.log.Warn("failed to mark seat connected", zap.Error(err))
	}
	h.reply(client, msg.ID, protocol.TypeGameCreated, protocol.GameCreatedPayload{GameID: s.ID, Seat: 0})
	return h.advance(s)
}

// handleJoinGame claims an open seat, or rejoins one the player holds.
func (h *Handlers) handleJoinGame(client *Client, msg *protocol.Message) error {
	playerID, playerName := client.Player()
	if playerID == "" {
		return errNotAuthenticated
	}
	var payload protocol.JoinGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	s, err := h.hub.server.sessions.Get(payload.GameID)
	if err != nil {
		return err
	}
	db := h.hub.server.db
	if err := db.ClaimSeat(payload.GameID, payload.Seat, playerID, playerName); err != nil {
		return err
	}
	if err := db.SetSeatConnected(payload.GameID, payload.Seat, true); err != nil {
		h.log.Warn("failed to mark seat connected", zap.Error(err))
	}
	h.hub.AddClientToGame(client, payload.GameID, payload.Seat)
	h.log.Info("player joined", zap.String("game", payload.GameID), zap.Int("seat", payload.Seat), zap.String("player", playerID))

	if view, _, err := s.View(payload.Seat); err == nil {
		if err := db.AddHistoryEvent(&database.HistoryEvent{
			GameID:     payload.GameID,
			Turn:       view.Turn,
			Phase:      view.Phase.String(),
			Seat:       payload.Seat,
			PlayerName: playerName,
			EventType:  "player_joined",
			Message:    fmt.Sprintf("%s took seat %d", playerName, payload.Seat+1),
		}); err != nil {
			h.log.Warn("failed to record join", zap.Error(err))
		}
	}

	h.reply(client, msg.ID, protocol.TypeJoinedGame, protocol.JoinedGamePayload{GameID: payload.GameID, Seat: payload.Seat})
	h.hub.sendState(client, s)
	return nil
}

// handleListGames lists unfinished games with their open seats.
func (h *Handlers) handleListGames(client *Client, msg *protocol.Message) error {
	items, err := h.hub.server.listGames()
	if err != nil {
		return err
	}
	h.reply(client, msg.ID, protocol.TypeGameList, protocol.GameListPayload{Games: items})
	return nil
}

// handleAction submits a command for the client's seat. Rule violations are
// answered with an action_result; nothing is broadcast for them.
func (h *Handlers) handleAction(client *Client, msg *protocol.Message) error {
	var payload protocol.ActionPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	gameID, seat := client.Seat()
	if payload.GameID == "" {
		payload.GameID = gameID
	}
	if gameID == "" || payload.GameID != gameID {
		return errNotInGame
	}
	a, err := payload.Decode()
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	s, err := h.hub.server.sessions.Get(gameID)
	if err != nil {
		return err
	}
	out, err := s.Submit(seat, a)
	if err != nil {
		return err
	}

	result := protocol.ActionResultPayload{ActionID: msg.ID, Success: out.Err == nil}
	if out.Err != nil {
		e := protocol.NewErrorPayload(out.Err)
		result.Error = &e
	}
	h.reply(client, msg.ID, protocol.TypeActionResult, result)

	if out.Err == nil {
		h.hub.publish(s, out)
	}
	return nil
}

// advance lets bots move and publishes whatever they did.
func (h *Handlers) advance(s *Session) error {
	out, err := s.Advance()
	if err != nil {
		return err
	}
	h.hub.publish(s, out)
	return nil
}
