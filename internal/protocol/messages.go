// Package protocol defines the network message types for client-server communication.
package protocol

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"hexlands/internal/game"
)

// MessageType identifies the type of message.
type MessageType string

// Authentication message types
const (
	TypeAuthenticate MessageType = "authenticate"
	TypeAuthResult   MessageType = "auth_result"
)

// Lobby message types
const (
	TypeCreateGame  MessageType = "create_game"
	TypeGameCreated MessageType = "game_created"
	TypeJoinGame    MessageType = "join_game"
	TypeJoinedGame  MessageType = "joined_game"
	TypeListGames   MessageType = "list_games"
	TypeGameList    MessageType = "game_list"
)

// Game flow message types
const (
	TypeAction       MessageType = "action"
	TypeActionResult MessageType = "action_result"
	TypeGameState    MessageType = "state"
	TypeEvents       MessageType = "events"
	TypeGameEnded    MessageType = "game_ended"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

// Rule violations, one per game.ErrorKind.
const (
	ErrCodeNotYourTurn           ErrorCode = "not_your_turn"
	ErrCodeWrongPhase            ErrorCode = "wrong_phase"
	ErrCodeInvalidPlacement      ErrorCode = "invalid_placement"
	ErrCodeInsufficientResources ErrorCode = "insufficient_resources"
	ErrCodeNoPiecesRemaining     ErrorCode = "no_pieces_remaining"
	ErrCodeBankDepleted          ErrorCode = "bank_depleted"
	ErrCodeInvalidTrade          ErrorCode = "invalid_trade"
	ErrCodeDevCardUnavailable    ErrorCode = "dev_card_unavailable"
	ErrCodeDiceAlreadyRolled     ErrorCode = "dice_already_rolled"
	ErrCodeDiceNotRolled         ErrorCode = "dice_not_rolled"
	ErrCodeInvalidDiscard        ErrorCode = "invalid_discard"
	ErrCodeOutOfSequence         ErrorCode = "out_of_sequence"
	ErrCodeInvalidTarget         ErrorCode = "invalid_target"
)

// Session and transport errors.
const (
	ErrCodeInvalidMessage   ErrorCode = "invalid_message"
	ErrCodeGameNotFound     ErrorCode = "game_not_found"
	ErrCodeSeatTaken        ErrorCode = "seat_taken"
	ErrCodeNotAuthenticated ErrorCode = "not_authenticated"
	ErrCodeNotInGame        ErrorCode = "not_in_game"
	ErrCodeInternalError    ErrorCode = "internal_error"
)

var kindCodes = map[game.ErrorKind]ErrorCode{
	game.KindNotYourTurn:           ErrCodeNotYourTurn,
	game.KindWrongPhase:            ErrCodeWrongPhase,
	game.KindInvalidPlacement:      ErrCodeInvalidPlacement,
	game.KindInsufficientResources: ErrCodeInsufficientResources,
	game.KindNoPiecesRemaining:     ErrCodeNoPiecesRemaining,
	game.KindBankDepleted:          ErrCodeBankDepleted,
	game.KindInvalidTrade:          ErrCodeInvalidTrade,
	game.KindDevCardUnavailable:    ErrCodeDevCardUnavailable,
	game.KindDiceAlreadyRolled:     ErrCodeDiceAlreadyRolled,
	game.KindDiceNotRolled:         ErrCodeDiceNotRolled,
	game.KindInvalidDiscard:        ErrCodeInvalidDiscard,
	game.KindOutOfSequence:         ErrCodeOutOfSequence,
	game.KindUnknownTarget:         ErrCodeInvalidTarget,
}

// CodeFor maps an error to its wire code. Rule errors keep their kind even
// when wrapped; anything else is internal.
func CodeFor(err error) ErrorCode {
	var re *game.RuleError
	if errors.As(err, &re) {
		if code, ok := kindCodes[re.Kind]; ok {
			return code
		}
	}
	return ErrCodeInternalError
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewErrorPayload builds the error payload for err.
func NewErrorPayload(err error) ErrorPayload {
	return ErrorPayload{Code: CodeFor(err), Message: err.Error()}
}
