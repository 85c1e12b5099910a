package bot

import "hexlands/internal/game"

// Tuning holds every weight the scorers use. Scores are unitless; only their
// ordering matters.
type Tuning struct {
	// Settlement placement.
	ProductionWeight  [game.NumResources]float64
	DiversityBonus    float64
	PortBonus         float64
	SpecificPortBonus float64
	ExpansionBonus    float64
	NewResourceBonus  float64
	RobberedPenalty   float64 // fraction of a robbed tile's production that counts

	// Roads.
	ExtensionBonus  float64
	ContestBonus    float64
	ImmediateWeight float64
	LookaheadWeight float64
	LookaheadDepth  int
	RoadThreshold   float64

	// Robber.
	RobberProductionWeight float64
	RobberBuildingWeight   float64
	RobberHandWeight       float64
	RobberLeaderBonus      float64

	// Trading and discards.
	ResourceValues  [game.NumResources]float64
	NeedBonus       float64
	AcceptThreshold float64
}

// DefaultTuning favors ore and wheat once cities matter, and wood and brick
// for early expansion.
var DefaultTuning = Tuning{
	ProductionWeight: [game.NumResources]float64{
		game.Wood:  10.0,
		game.Brick: 10.0,
		game.Sheep: 8.0,
		game.Wheat: 11.0,
		game.Ore:   10.5,
	},
	DiversityBonus:    0.5,
	PortBonus:         0.6,
	SpecificPortBonus: 1.0,
	ExpansionBonus:    0.5,
	NewResourceBonus:  0.75,
	RobberedPenalty:   0.25,

	ExtensionBonus:  0.8,
	ContestBonus:    0.6,
	ImmediateWeight: 0.6,
	LookaheadWeight: 0.8,
	LookaheadDepth:  3,
	RoadThreshold:   1.0,

	RobberProductionWeight: 10.0,
	RobberBuildingWeight:   0.8,
	RobberHandWeight:       0.15,
	RobberLeaderBonus:      1.0,

	ResourceValues: [game.NumResources]float64{
		game.Wood:  1.0,
		game.Brick: 1.1,
		game.Sheep: 0.8,
		game.Wheat: 1.3,
		game.Ore:   1.4,
	},
	NeedBonus:       3.5,
	AcceptThreshold: 0.0,
}
