package game

// OpponentView is what one player may see of another: counts, never the
// contents of hands.
type OpponentView struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Color          PlayerColor `json:"color"`
	IsBot          bool        `json:"isBot"`
	HandSize       int         `json:"handSize"`
	DevCardCount   int         `json:"devCardCount"`
	VictoryPoints  int         `json:"victoryPoints"`
	RoadLength     int         `json:"roadLength"`
	KnightsPlayed  int         `json:"knightsPlayed"`
	HasLongestRoad bool        `json:"hasLongestRoad"`
	HasLargestArmy bool        `json:"hasLargestArmy"`
}

// PlayerView is the game as seen from one seat.
type PlayerView struct {
	Self              Player         `json:"self"`
	TotalPoints       int            `json:"totalPoints"`
	Opponents         []OpponentView `json:"opponents"`
	Settings          Settings       `json:"settings"`
	Phase             Phase          `json:"phase"`
	Turn              int            `json:"turn"`
	CurrentPlayer     int            `json:"currentPlayer"`
	AwaitingSeat      int            `json:"awaitingSeat"`
	SetupSettlement   VertexID       `json:"setupSettlement"`
	Dice              int            `json:"dice"`
	HasRolled         bool           `json:"hasRolled"`
	RobberPending     bool           `json:"robberPending"`
	DevCardPlayed     bool           `json:"devCardPlayed"`
	DiscardDue        int            `json:"discardDue"`
	FreeRoads         int            `json:"freeRoads"`
	BankResources     Stockpile      `json:"bankResources"`
	DeckSize          int            `json:"deckSize"`
	LongestRoadHolder int            `json:"longestRoadHolder"`
	LargestArmyHolder int            `json:"largestArmyHolder"`
	Trades            []TradeOffer   `json:"trades,omitempty"`
	Winner            int            `json:"winner"`
}

// PlayerView builds the view for a seat. Only trades involving the seat are
// included.
func (g *GameState) PlayerView(playerID int) (PlayerView, error) {
	p := g.Player(playerID)
	if p == nil {
		return PlayerView{}, ruleError(KindUnknownTarget, "seat %d", playerID)
	}
	self := *p
	self.Ports = append([]PortKind(nil), p.Ports...)

	v := PlayerView{
		Self:              self,
		TotalPoints:       p.TotalPoints(),
		Settings:          g.Settings,
		Phase:             g.Phase,
		Turn:              g.Turn,
		CurrentPlayer:     g.CurrentPlayer,
		AwaitingSeat:      g.AwaitingSeat(),
		SetupSettlement:   g.SetupSettlement,
		Dice:              g.Dice,
		HasRolled:         g.HasRolled,
		RobberPending:     g.RobberPending,
		DevCardPlayed:     g.DevCardPlayed,
		DiscardDue:        g.DiscardDue(playerID),
		FreeRoads:         g.FreeRoads,
		BankResources:     g.Bank.Resources,
		DeckSize:          len(g.Bank.Deck),
		LongestRoadHolder: g.LongestRoadHolder,
		LargestArmyHolder: g.LargestArmyHolder,
		Winner:            g.Winner,
	}
	for _, o := range g.Players {
		if o.ID == playerID {
			continue
		}
		v.Opponents = append(v.Opponents, OpponentView{
			ID:             o.ID,
			Name:           o.Name,
			Color:          o.Color,
			IsBot:          o.IsBot,
			HandSize:       o.HandSize(),
			DevCardCount:   o.DevCards.Total() + o.NewDevCards.Total(),
			VictoryPoints:  o.VictoryPoints,
			RoadLength:     o.RoadLength,
			KnightsPlayed:  o.KnightsPlayed,
			HasLongestRoad: o.HasLongestRoad,
			HasLargestArmy: o.HasLargestArmy,
		})
	}
	for _, id := range g.PendingTradeIDs() {
		t := g.Trades[id]
		if t.From == playerID || t.To == playerID {
			v.Trades = append(v.Trades, *t)
		}
	}
	return v, nil
}

// EstimateState rebuilds a playable state from a seat's view and the public
// board. Opponent hands and the deck are unknown: hands are dealt evenly over
// the resource types and the deck is filled with knights. The result is good
// enough for choosing a move, never for applying one.
func EstimateState(v PlayerView, board *Board) *GameState {
	g := &GameState{
		Settings:          v.Settings,
		Board:             board,
		Bank:              &Bank{Resources: v.BankResources, Deck: make([]DevCard, v.DeckSize)},
		Phase:             v.Phase,
		Turn:              v.Turn,
		CurrentPlayer:     v.CurrentPlayer,
		Dice:              v.Dice,
		HasRolled:         v.HasRolled,
		RobberPending:     v.RobberPending,
		DevCardPlayed:     v.DevCardPlayed,
		FreeRoads:         v.FreeRoads,
		SetupSettlement:   v.SetupSettlement,
		LongestRoadHolder: v.LongestRoadHolder,
		LargestArmyHolder: v.LargestArmyHolder,
		Trades:            make(map[string]*TradeOffer),
		Winner:            v.Winner,
	}

	n := len(v.Opponents) + 1
	g.Players = make([]*Player, n)
	g.DiscardOwed = make([]int, n)
	self := v.Self
	g.Players[self.ID] = &self
	for _, o := range v.Opponents {
		p := NewPlayer(o.ID, o.Name, o.Color)
		p.IsBot = o.IsBot
		p.VictoryPoints = o.VictoryPoints
		p.RoadLength = o.RoadLength
		p.KnightsPlayed = o.KnightsPlayed
		p.HasLongestRoad = o.HasLongestRoad
		p.HasLargestArmy = o.HasLargestArmy
		for i := 0; i < o.HandSize; i++ {
			p.Resources[AllResources[i%NumResources]]++
		}
		g.Players[o.ID] = p
	}
	for id, p := range g.Players {
		if p == nil {
			g.Players[id] = NewPlayer(id, "", ColorRed)
		}
	}

	if v.Phase == PhaseDiscardCards && v.AwaitingSeat != NoPlayer {
		g.DiscardQueue = []int{v.AwaitingSeat}
		if v.AwaitingSeat == self.ID {
			g.DiscardOwed[self.ID] = v.DiscardDue
		}
	}
	for i := range v.Trades {
		t := v.Trades[i]
		g.Trades[t.ID] = &t
	}
	return g
}

// PlayerView is a convenience wrapper over the state's view.
func (e *Engine) PlayerView(playerID int) (PlayerView, error) {
	return e.state.PlayerView(playerID)
}
