package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// DevCard is a development card type.
type DevCard int

const (
	Knight DevCard = iota
	RoadBuilding
	YearOfPlenty
	Monopoly
	VictoryPoint
)

// NumDevCards is the number of development card types.
const NumDevCards = 5

// AllDevCards lists the card types in index order.
var AllDevCards = [NumDevCards]DevCard{Knight, RoadBuilding, YearOfPlenty, Monopoly, VictoryPoint}

// String returns the card name.
func (c DevCard) String() string {
	switch c {
	case Knight:
		return "knight"
	case RoadBuilding:
		return "road_building"
	case YearOfPlenty:
		return "year_of_plenty"
	case Monopoly:
		return "monopoly"
	case VictoryPoint:
		return "victory_point"
	default:
		return fmt.Sprintf("card(%d)", int(c))
	}
}

// Valid reports whether c is a known card type.
func (c DevCard) Valid() bool {
	return c >= Knight && c <= VictoryPoint
}

// MarshalText encodes the card by name.
func (c DevCard) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown development card %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card name.
func (c *DevCard) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for _, card := range AllDevCards {
		if card.String() == name {
			*c = card
			return nil
		}
	}
	return fmt.Errorf("unknown development card %q", name)
}

// DevCards counts cards per type.
type DevCards [NumDevCards]int

// Total returns the number of cards.
func (d DevCards) Total() int {
	n := 0
	for _, v := range d {
		n += v
	}
	return n
}

// BankResourceUnits is the starting bank supply of each resource.
const BankResourceUnits = 19

var deckComposition = DevCards{
	Knight:       14,
	RoadBuilding: 2,
	YearOfPlenty: 2,
	Monopoly:     2,
	VictoryPoint: 5,
}

// Bank holds the resource supply and the face-down development deck.
type Bank struct {
	Resources Stockpile `json:"resources"`
	Deck      []DevCard `json:"deck"`
}

// NewBank creates a full bank with a shuffled deck.
func NewBank(rng *rand.Rand) *Bank {
	b := &Bank{}
	for _, r := range AllResources {
		b.Resources[r] = BankResourceUnits
	}
	for _, card := range AllDevCards {
		for i := 0; i < deckComposition[card]; i++ {
			b.Deck = append(b.Deck, card)
		}
	}
	rng.Shuffle(len(b.Deck), func(i, j int) { b.Deck[i], b.Deck[j] = b.Deck[j], b.Deck[i] })
	return b
}

// DeckCounts returns how many cards of each type remain in the deck.
func (b *Bank) DeckCounts() DevCards {
	var d DevCards
	for _, c := range b.Deck {
		d[c]++
	}
	return d
}

// Draw takes the top card of the deck.
func (b *Bank) Draw() (DevCard, bool) {
	if len(b.Deck) == 0 {
		return 0, false
	}
	card := b.Deck[len(b.Deck)-1]
	b.Deck = b.Deck[:len(b.Deck)-1]
	return card, true
}
