package game

// PlayerColor represents a player's color.
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorWhite  PlayerColor = "white"
	ColorOrange PlayerColor = "orange"
)

// AllColors returns the seat colors in seat order.
func AllColors() []PlayerColor {
	return []PlayerColor{ColorRed, ColorBlue, ColorWhite, ColorOrange}
}

// NoPlayer marks an unheld honor or a bank counterparty.
const NoPlayer = -1

// Piece limits per player.
const (
	MaxRoads       = 15
	MaxSettlements = 5
	MaxCities      = 4
)

// Player is one seat at the table. ID is the seat index.
type Player struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	Color           PlayerColor `json:"color"`
	IsBot           bool        `json:"isBot"`
	Resources       Stockpile   `json:"resources"`
	DevCards        DevCards    `json:"devCards"`    // playable
	NewDevCards     DevCards    `json:"newDevCards"` // bought this turn
	RoadsLeft       int         `json:"roadsLeft"`
	SettlementsLeft int         `json:"settlementsLeft"`
	CitiesLeft      int         `json:"citiesLeft"`
	VictoryPoints   int         `json:"victoryPoints"` // public points, honors included
	RoadLength      int         `json:"roadLength"`
	KnightsPlayed   int         `json:"knightsPlayed"`
	HasLongestRoad  bool        `json:"hasLongestRoad"`
	HasLargestArmy  bool        `json:"hasLargestArmy"`
	Ports           []PortKind  `json:"ports,omitempty"`
}

// NewPlayer creates a player with a full set of pieces.
func NewPlayer(id int, name string, color PlayerColor) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		Color:           color,
		RoadsLeft:       MaxRoads,
		SettlementsLeft: MaxSettlements,
		CitiesLeft:      MaxCities,
	}
}

// NewBotPlayer creates a computer-controlled player.
func NewBotPlayer(id int, name string, color PlayerColor) *Player {
	p := NewPlayer(id, name, color)
	p.IsBot = true
	return p
}

// TotalPoints is the victory total including hidden victory point cards.
func (p *Player) TotalPoints() int {
	return p.VictoryPoints + p.DevCards[VictoryPoint] + p.NewDevCards[VictoryPoint]
}

// HandSize is the number of resource cards held.
func (p *Player) HandSize() int {
	return p.Resources.Total()
}

// HasPort reports whether the player has unlocked a port kind.
func (p *Player) HasPort(k PortKind) bool {
	for _, have := range p.Ports {
		if have == k {
			return true
		}
	}
	return false
}

// unlockPort records a port kind. Returns false if it was already held.
func (p *Player) unlockPort(k PortKind) bool {
	if p.HasPort(k) {
		return false
	}
	p.Ports = append(p.Ports, k)
	return true
}

// ResetTurn makes cards bought this turn playable.
func (p *Player) ResetTurn() {
	for i, n := range p.NewDevCards {
		p.DevCards[i] += n
	}
	p.NewDevCards = DevCards{}
}
