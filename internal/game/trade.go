package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TradeOffer is a trade proposal. Bank trades execute at once; offers to
// another seat wait for that seat to accept or decline, and lapse at the end
// of the turn.
type TradeOffer struct {
	ID      string    `json:"id"`
	From    int       `json:"from"`
	To      int       `json:"to"` // NoPlayer for the bank
	Offer   Stockpile `json:"offer"`
	Request Stockpile `json:"request"`
}

// Bank trade ratios.
const (
	RatioDefault  = 4
	RatioGeneric  = 3
	RatioSpecific = 2
)

// TradeRatio returns how many units of r the player gives the bank per unit
// received.
func (g *GameState) TradeRatio(playerID int, r Resource) int {
	p := g.Player(playerID)
	if p == nil {
		return RatioDefault
	}
	if p.HasPort(PortFor(r)) {
		return RatioSpecific
	}
	if p.HasPort(PortGeneric) {
		return RatioGeneric
	}
	return RatioDefault
}

func validateShape(offer, request Stockpile) error {
	if offer.HasNegative() || request.HasNegative() {
		return ruleError(KindInvalidTrade, "negative quantity")
	}
	if offer.IsZero() {
		return ruleError(KindInvalidTrade, "nothing offered")
	}
	if request.IsZero() {
		return ruleError(KindInvalidTrade, "nothing requested")
	}
	for _, r := range AllResources {
		if offer[r] > 0 && request[r] > 0 {
			return ruleError(KindInvalidTrade, "%s on both sides", r)
		}
	}
	return nil
}

// ValidateBankTrade checks a bank or port trade: the player holds the offer,
// the bank holds the request, each offered amount is a whole multiple of its
// ratio, and the groups given match the units requested.
func (g *GameState) ValidateBankTrade(playerID int, offer, request Stockpile) error {
	if err := validateShape(offer, request); err != nil {
		return err
	}
	p := g.Player(playerID)
	if p == nil {
		return ruleError(KindUnknownTarget, "seat %d", playerID)
	}
	if !p.Resources.CanAfford(offer) {
		return ErrInsufficientResources
	}
	if r, short := g.Bank.Resources.Missing(request); short {
		return bankDepleted(r.String())
	}
	groups := 0
	for _, r := range AllResources {
		if offer[r] == 0 {
			continue
		}
		ratio := g.TradeRatio(playerID, r)
		if offer[r]%ratio != 0 {
			return ruleError(KindInvalidTrade, "%s must be offered in multiples of %d", r, ratio)
		}
		groups += offer[r] / ratio
	}
	if groups != request.Total() {
		return ruleError(KindInvalidTrade, "offer covers %d units, %d requested", groups, request.Total())
	}
	return nil
}

// ProposeTrade either trades with the bank immediately (counterparty
// NoPlayer) or records an offer for another seat. It returns the trade id.
func (e *Engine) ProposeTrade(playerID int, offer, request Stockpile, counterparty int) (string, error) {
	g := e.state
	if err := e.requireMainAction(playerID); err != nil {
		return "", err
	}

	trade := &TradeOffer{
		ID:      uuid.New().String(),
		From:    playerID,
		To:      counterparty,
		Offer:   offer,
		Request: request,
	}

	if counterparty == NoPlayer {
		if err := g.ValidateBankTrade(playerID, offer, request); err != nil {
			return "", err
		}
		p := g.Players[playerID]
		e.pay(p, offer)
		for _, r := range AllResources {
			e.grant(p, r, request[r])
		}
		e.log.Info("bank trade", zap.Int("player", playerID), zap.Stringer("offer", offer), zap.Stringer("request", request))
		e.emit(TradeExecuted{TradeID: trade.ID})
		e.finish()
		return trade.ID, nil
	}

	if err := validateShape(offer, request); err != nil {
		return "", err
	}
	if g.Player(counterparty) == nil {
		return "", ruleError(KindUnknownTarget, "seat %d", counterparty)
	}
	if counterparty == playerID {
		return "", ruleError(KindInvalidTrade, "cannot trade with yourself")
	}
	if !g.Players[playerID].Resources.CanAfford(offer) {
		return "", ErrInsufficientResources
	}

	if g.Trades == nil {
		g.Trades = make(map[string]*TradeOffer)
	}
	g.Trades[trade.ID] = trade
	e.log.Debug("trade proposed", zap.String("trade", trade.ID), zap.Int("from", playerID), zap.Int("to", counterparty))
	e.emit(TradeProposed{TradeID: trade.ID, From: playerID, To: counterparty})
	e.finish()
	return trade.ID, nil
}

// ExecuteTrade is called by the counterparty to accept a pending offer. Both
// hands are checked again and the swap is atomic.
func (e *Engine) ExecuteTrade(playerID int, tradeID string) error {
	g := e.state
	if g.Phase != PhasePlay {
		return wrongPhase(PhasePlay, g.Phase)
	}
	trade, ok := g.Trades[tradeID]
	if !ok {
		return ruleError(KindUnknownTarget, "trade %s", tradeID)
	}
	if trade.To != playerID {
		return ErrNotYourTurn
	}
	from, to := g.Players[trade.From], g.Players[trade.To]
	if !from.Resources.CanAfford(trade.Offer) || !to.Resources.CanAfford(trade.Request) {
		return ErrInsufficientResources
	}

	from.Resources.Spend(trade.Offer)
	to.Resources.Deposit(trade.Offer)
	to.Resources.Spend(trade.Request)
	from.Resources.Deposit(trade.Request)
	delete(g.Trades, tradeID)
	e.log.Info("player trade", zap.String("trade", tradeID), zap.Int("from", trade.From), zap.Int("to", trade.To))
	e.emit(TradeExecuted{TradeID: tradeID})
	e.finish()
	return nil
}

// DeclineTrade withdraws an offer. Either side may decline it.
func (e *Engine) DeclineTrade(playerID int, tradeID string) error {
	g := e.state
	if g.Phase != PhasePlay {
		return wrongPhase(PhasePlay, g.Phase)
	}
	trade, ok := g.Trades[tradeID]
	if !ok {
		return ruleError(KindUnknownTarget, "trade %s", tradeID)
	}
	if trade.To != playerID && trade.From != playerID {
		return ErrNotYourTurn
	}
	delete(g.Trades, tradeID)
	e.emit(TradeDeclined{TradeID: tradeID})
	return nil
}
