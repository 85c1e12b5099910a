package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected command.
type ErrorKind int

const (
	KindNotYourTurn ErrorKind = iota + 1
	KindWrongPhase
	KindInvalidPlacement
	KindInsufficientResources
	KindNoPiecesRemaining
	KindBankDepleted
	KindInvalidTrade
	KindDevCardUnavailable
	KindDiceAlreadyRolled
	KindDiceNotRolled
	KindInvalidDiscard
	KindOutOfSequence
	KindUnknownTarget
)

// String returns the kind name as used on the wire.
func (k ErrorKind) String() string {
	switch k {
	case KindNotYourTurn:
		return "NOT_YOUR_TURN"
	case KindWrongPhase:
		return "WRONG_PHASE"
	case KindInvalidPlacement:
		return "INVALID_PLACEMENT"
	case KindInsufficientResources:
		return "INSUFFICIENT_RESOURCES"
	case KindNoPiecesRemaining:
		return "NO_PIECES_REMAINING"
	case KindBankDepleted:
		return "BANK_DEPLETED"
	case KindInvalidTrade:
		return "INVALID_TRADE"
	case KindDevCardUnavailable:
		return "DEV_CARD_UNAVAILABLE"
	case KindDiceAlreadyRolled:
		return "DICE_ALREADY_ROLLED"
	case KindDiceNotRolled:
		return "DICE_NOT_ROLLED"
	case KindInvalidDiscard:
		return "INVALID_DISCARD"
	case KindOutOfSequence:
		return "OUT_OF_SEQUENCE"
	case KindUnknownTarget:
		return "UNKNOWN_TARGET"
	default:
		return "UNKNOWN"
	}
}

// PlacementReason says why a placement was refused.
type PlacementReason int

const (
	PlacementOK PlacementReason = iota
	DistanceRule
	NotConnected
	Occupied
	BlockedByOpponent
	NoSettlement
	OwnBuildingAdjacent
)

func (r PlacementReason) String() string {
	switch r {
	case DistanceRule:
		return "too close to another building"
	case NotConnected:
		return "not connected to your road network"
	case Occupied:
		return "already occupied"
	case BlockedByOpponent:
		return "blocked by an opponent"
	case NoSettlement:
		return "no settlement of yours there"
	case OwnBuildingAdjacent:
		return "touches one of your own buildings"
	default:
		return "ok"
	}
}

// RuleError is returned by every rejected command. Commands that fail leave
// the game untouched.
type RuleError struct {
	Kind      ErrorKind
	Expected  Phase
	Actual    Phase
	Placement PlacementReason
	Subject   string
	Detail    string
}

func (e *RuleError) Error() string {
	switch e.Kind {
	case KindWrongPhase:
		return fmt.Sprintf("wrong phase: expected %s, game is in %s", e.Expected, e.Actual)
	case KindInvalidPlacement:
		return "invalid placement: " + e.Placement.String()
	case KindBankDepleted:
		return "bank has run out of " + e.Subject
	}
	msg := kindMessages[e.Kind]
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	return msg
}

// Is matches any RuleError of the same kind, so errors.Is(err, ErrWrongPhase)
// holds whatever phases are carried.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && t.Kind == e.Kind
}

var kindMessages = map[ErrorKind]string{
	KindNotYourTurn:           "not your turn",
	KindInsufficientResources: "insufficient resources",
	KindNoPiecesRemaining:     "no pieces remaining",
	KindInvalidTrade:          "invalid trade",
	KindDevCardUnavailable:    "development card unavailable",
	KindDiceAlreadyRolled:     "dice already rolled this turn",
	KindDiceNotRolled:         "dice not rolled yet",
	KindInvalidDiscard:        "invalid discard",
	KindOutOfSequence:         "out of sequence",
	KindUnknownTarget:         "unknown target",
}

// Game errors. Compare with errors.Is.
var (
	ErrNotYourTurn           = &RuleError{Kind: KindNotYourTurn}
	ErrWrongPhase            = &RuleError{Kind: KindWrongPhase}
	ErrInvalidPlacement      = &RuleError{Kind: KindInvalidPlacement}
	ErrInsufficientResources = &RuleError{Kind: KindInsufficientResources}
	ErrNoPiecesRemaining     = &RuleError{Kind: KindNoPiecesRemaining}
	ErrBankDepleted          = &RuleError{Kind: KindBankDepleted}
	ErrInvalidTrade          = &RuleError{Kind: KindInvalidTrade}
	ErrDevCardUnavailable    = &RuleError{Kind: KindDevCardUnavailable}
	ErrDiceAlreadyRolled     = &RuleError{Kind: KindDiceAlreadyRolled}
	ErrDiceNotRolled         = &RuleError{Kind: KindDiceNotRolled}
	ErrInvalidDiscard        = &RuleError{Kind: KindInvalidDiscard}
	ErrOutOfSequence         = &RuleError{Kind: KindOutOfSequence}
	ErrUnknownTarget         = &RuleError{Kind: KindUnknownTarget}
)

// KindOf extracts the ErrorKind of err, or 0 when err is not a RuleError.
func KindOf(err error) ErrorKind {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

func wrongPhase(expected, actual Phase) error {
	return &RuleError{Kind: KindWrongPhase, Expected: expected, Actual: actual}
}

func invalidPlacement(reason PlacementReason) error {
	return &RuleError{Kind: KindInvalidPlacement, Placement: reason}
}

func bankDepleted(subject string) error {
	return &RuleError{Kind: KindBankDepleted, Subject: subject}
}

func ruleError(kind ErrorKind, format string, args ...any) error {
	return &RuleError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
