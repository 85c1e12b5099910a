package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resource is a tradeable resource type. Desert only appears on tiles and
// never in a stockpile.
type Resource int

const (
	Wood Resource = iota
	Brick
	Sheep
	Wheat
	Ore
	Desert
)

// NumResources is the number of tradeable resource types.
const NumResources = 5

// AllResources lists the tradeable resources in index order.
var AllResources = [NumResources]Resource{Wood, Brick, Sheep, Wheat, Ore}

// String returns the resource name.
func (r Resource) String() string {
	switch r {
	case Wood:
		return "wood"
	case Brick:
		return "brick"
	case Sheep:
		return "sheep"
	case Wheat:
		return "wheat"
	case Ore:
		return "ore"
	case Desert:
		return "desert"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

// Tradeable reports whether r can be held, produced or traded.
func (r Resource) Tradeable() bool {
	return r >= Wood && r <= Ore
}

// MarshalText encodes the resource by name.
func (r Resource) MarshalText() ([]byte, error) {
	if !r.Tradeable() && r != Desert {
		return nil, fmt.Errorf("unknown resource %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a resource name.
func (r *Resource) UnmarshalText(text []byte) error {
	v, ok := ParseResource(string(text))
	if !ok {
		return fmt.Errorf("unknown resource %q", string(text))
	}
	*r = v
	return nil
}

// ParseResource looks up a resource by name, case-insensitively.
func ParseResource(name string) (Resource, bool) {
	switch strings.ToLower(name) {
	case "wood":
		return Wood, true
	case "brick":
		return Brick, true
	case "sheep":
		return Sheep, true
	case "wheat":
		return Wheat, true
	case "ore":
		return Ore, true
	case "desert":
		return Desert, true
	}
	return 0, false
}

// Stockpile counts units of each tradeable resource. It is indexed by
// Resource, so literals read Stockpile{Wood: 1, Brick: 1}.
type Stockpile [NumResources]int

// Get returns the amount of a resource.
func (s Stockpile) Get(r Resource) int {
	if !r.Tradeable() {
		return 0
	}
	return s[r]
}

// Add adds units of a resource.
func (s *Stockpile) Add(r Resource, amount int) {
	if r.Tradeable() {
		s[r] += amount
	}
}

// Remove removes units of a resource. Returns false if insufficient.
func (s *Stockpile) Remove(r Resource, amount int) bool {
	if !r.Tradeable() || s[r] < amount {
		return false
	}
	s[r] -= amount
	return true
}

// Total returns the total number of units held.
func (s Stockpile) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// IsZero reports whether the stockpile holds nothing.
func (s Stockpile) IsZero() bool {
	return s == Stockpile{}
}

// HasNegative reports whether any count is below zero.
func (s Stockpile) HasNegative() bool {
	for _, v := range s {
		if v < 0 {
			return true
		}
	}
	return false
}

// CanAfford checks whether s covers cost.
func (s Stockpile) CanAfford(cost Stockpile) bool {
	for i := range s {
		if s[i] < cost[i] {
			return false
		}
	}
	return true
}

// Spend removes cost from s. Returns false, leaving s unchanged, if
// insufficient.
func (s *Stockpile) Spend(cost Stockpile) bool {
	if !s.CanAfford(cost) {
		return false
	}
	for i := range s {
		s[i] -= cost[i]
	}
	return true
}

// Deposit adds every count in o to s.
func (s *Stockpile) Deposit(o Stockpile) {
	for i := range s {
		s[i] += o[i]
	}
}

// Missing returns the first resource in o that s cannot cover.
func (s Stockpile) Missing(o Stockpile) (Resource, bool) {
	for _, r := range AllResources {
		if s[r] < o[r] {
			return r, true
		}
	}
	return 0, false
}

// Held returns the resource types with a positive count, in index order.
func (s Stockpile) Held() []Resource {
	var held []Resource
	for _, r := range AllResources {
		if s[r] > 0 {
			held = append(held, r)
		}
	}
	return held
}

// String formats the non-zero counts, e.g. "2 wood, 1 ore".
func (s Stockpile) String() string {
	var parts []string
	for _, r := range AllResources {
		if s[r] != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", s[r], r))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON encodes the stockpile as an object keyed by resource name.
func (s Stockpile) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, NumResources)
	for _, r := range AllResources {
		m[r.String()] = s[r]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form. Missing keys are zero.
func (s *Stockpile) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Stockpile
	for name, n := range m {
		r, ok := ParseResource(name)
		if !ok || !r.Tradeable() {
			return fmt.Errorf("unknown resource %q", name)
		}
		out[r] = n
	}
	*s = out
	return nil
}

// Build costs.
var (
	CostRoad       = Stockpile{Wood: 1, Brick: 1}
	CostSettlement = Stockpile{Wood: 1, Brick: 1, Sheep: 1, Wheat: 1}
	CostCity       = Stockpile{Wheat: 2, Ore: 3}
	CostDevCard    = Stockpile{Sheep: 1, Wheat: 1, Ore: 1}
)
