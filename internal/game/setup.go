package game

import "go.uber.org/zap"

// Setup placement runs in snake order. Each step is a settlement followed by
// a road touching it; the second round's settlement pays out one unit per
// adjacent producing tile.

func (e *Engine) setupSettlement(v VertexID, playerID int) error {
	g := e.state
	if err := e.requireTurn(playerID, PhaseSetup); err != nil {
		return err
	}
	if g.SetupSettlement != NoVertex {
		return ruleError(KindOutOfSequence, "place the road for this settlement first")
	}
	p := g.Players[playerID]
	if p.SettlementsLeft == 0 {
		return ErrNoPiecesRemaining
	}
	if err := g.CanBuildSettlement(v, playerID, false); err != nil {
		return err
	}

	e.placeSettlement(p, v)
	g.SetupSettlement = v

	if g.SetupStep >= len(g.Players) {
		for _, t := range g.Board.AdjacentHexes(v) {
			tile := g.Board.Tiles[t]
			if tile.Resource == Desert || tile.HasRobber {
				continue
			}
			if g.Bank.Resources.Get(tile.Resource) == 0 {
				continue
			}
			e.grant(p, tile.Resource, 1)
			e.emit(ResourcesDistributed{PlayerID: playerID, Resource: tile.Resource, Amount: 1})
		}
	}
	e.finish()
	return nil
}

func (e *Engine) setupRoad(edge EdgeID, playerID int) error {
	g := e.state
	if err := e.requireTurn(playerID, PhaseSetup); err != nil {
		return err
	}
	if g.SetupSettlement == NoVertex {
		return ruleError(KindOutOfSequence, "place a settlement first")
	}
	p := g.Players[playerID]
	if p.RoadsLeft == 0 {
		return ErrNoPiecesRemaining
	}
	if err := g.CanBuildRoad(edge, playerID, true); err != nil {
		return err
	}
	ends := g.Board.EdgeVertices(edge)
	if ends[0] != g.SetupSettlement && ends[1] != g.SetupSettlement {
		return invalidPlacement(NotConnected)
	}

	e.placeRoad(p, edge)
	g.SetupSettlement = NoVertex
	g.SetupStep++

	order := g.SetupOrder()
	if g.SetupStep >= len(order) {
		g.CurrentPlayer = 0
		g.Turn = 1
		e.log.Info("setup complete")
		e.setPhase(PhasePlay)
		e.emit(TurnChanged{PlayerID: 0})
	} else if next := order[g.SetupStep]; next != g.CurrentPlayer {
		g.CurrentPlayer = next
		e.emit(TurnChanged{PlayerID: next})
	}
	e.log.Debug("setup step", zap.Int("step", g.SetupStep), zap.Int("next", g.CurrentPlayer))
	e.finish()
	return nil
}
