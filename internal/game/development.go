package game

import "go.uber.org/zap"

// BuildSettlement places a settlement. During setup it is the first half of a
// placement step and is free; in play it costs CostSettlement and needs one
// of the player's roads to reach the vertex.
func (e *Engine) BuildSettlement(v VertexID, playerID int) error {
	g := e.state
	if g.Phase == PhaseSetup {
		return e.setupSettlement(v, playerID)
	}
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}

	p := g.Players[playerID]
	if p.SettlementsLeft == 0 {
		return ErrNoPiecesRemaining
	}
	if err := g.CanBuildSettlement(v, playerID, true); err != nil {
		return err
	}
	if !p.Resources.CanAfford(CostSettlement) {
		return ErrInsufficientResources
	}

	e.pay(p, CostSettlement)
	e.placeSettlement(p, v)
	// A settlement can cut an opponent's road.
	e.refreshLongestRoad()
	e.finish()
	return nil
}

// BuildRoad places a road. During setup it completes a placement step; in
// play it costs CostRoad unless a road building card left free roads.
func (e *Engine) BuildRoad(edge EdgeID, playerID int) error {
	g := e.state
	if g.Phase == PhaseSetup {
		return e.setupRoad(edge, playerID)
	}

	free := g.FreeRoads > 0
	if free {
		// Free roads may be laid before rolling.
		if err := e.requireTurn(playerID, PhasePlay); err != nil {
			return err
		}
		if g.RobberPending {
			return ruleError(KindOutOfSequence, "robber must be moved first")
		}
	} else if err := e.requireMainAction(playerID); err != nil {
		return err
	}

	p := g.Players[playerID]
	if p.RoadsLeft == 0 {
		return ErrNoPiecesRemaining
	}
	if err := g.CanBuildRoad(edge, playerID, false); err != nil {
		return err
	}
	if !free && !p.Resources.CanAfford(CostRoad) {
		return ErrInsufficientResources
	}

	if free {
		g.FreeRoads--
		if p.RoadsLeft == 1 {
			g.FreeRoads = 0
		}
	} else {
		e.pay(p, CostRoad)
	}
	e.placeRoad(p, edge)
	e.finish()
	return nil
}

// UpgradeCity turns one of the player's settlements into a city. The
// settlement piece returns to the player's supply.
func (e *Engine) UpgradeCity(v VertexID, playerID int) error {
	g := e.state
	if err := e.requireMainAction(playerID); err != nil {
		return err
	}

	p := g.Players[playerID]
	if err := g.CanUpgradeCity(v, playerID); err != nil {
		return err
	}
	if p.CitiesLeft == 0 {
		return ErrNoPiecesRemaining
	}
	if !p.Resources.CanAfford(CostCity) {
		return ErrInsufficientResources
	}

	e.pay(p, CostCity)
	vx := g.Board.Vertices[v]
	vx.Building.Kind = BuildingCity
	p.CitiesLeft--
	p.SettlementsLeft++
	p.VictoryPoints++
	e.log.Info("city built", zap.Int("player", playerID), zap.Int("vertex", int(v)))
	e.emit(BuildingPlaced{Kind: BuildingCity, PlayerID: playerID, Vertex: v, Edge: NoEdge, Position: vx.Pos})
	e.finish()
	return nil
}

func (e *Engine) placeSettlement(p *Player, v VertexID) {
	vx := e.state.Board.Vertices[v]
	vx.Building = &Building{Kind: BuildingSettlement, Owner: p.ID}
	p.SettlementsLeft--
	p.VictoryPoints++
	for _, port := range e.state.Board.PortsNear(v) {
		if p.unlockPort(port.Kind) {
			e.log.Debug("port unlocked", zap.Int("player", p.ID), zap.Stringer("port", port.Kind))
		}
	}
	e.log.Info("settlement built", zap.Int("player", p.ID), zap.Int("vertex", int(v)))
	e.emit(BuildingPlaced{Kind: BuildingSettlement, PlayerID: p.ID, Vertex: v, Edge: NoEdge, Position: vx.Pos})
}

func (e *Engine) placeRoad(p *Player, edge EdgeID) {
	ed := e.state.Board.Edges[edge]
	ed.Road = &Building{Kind: BuildingRoad, Owner: p.ID}
	p.RoadsLeft--
	e.log.Debug("road built", zap.Int("player", p.ID), zap.Int("edge", int(edge)))
	e.emit(BuildingPlaced{Kind: BuildingRoad, PlayerID: p.ID, Vertex: NoVertex, Edge: edge, Position: ed.Pos})
	e.refreshLongestRoad()
}
