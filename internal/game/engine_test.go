package game

import (
	"errors"
	"testing"
)

func TestSetup_SnakeOrder(t *testing.T) {
	e := createTestEngine(t, 1)
	g := e.state

	var order []int
	for g.Phase == PhaseSetup {
		p := g.CurrentPlayer
		order = append(order, p)
		if err := e.BuildSettlement(g.ValidSettlementVertices(p)[0], p); err != nil {
			t.Fatalf("settlement: %v", err)
		}
		if err := e.BuildRoad(g.ValidRoadEdges(p)[0], p); err != nil {
			t.Fatalf("road: %v", err)
		}
	}

	want := []int{0, 1, 2, 3, 3, 2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("expected %d setup steps, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
	if g.Phase != PhasePlay || g.CurrentPlayer != 0 {
		t.Errorf("expected play phase with seat 0, got %s seat %d", g.Phase, g.CurrentPlayer)
	}
	for _, p := range g.Players {
		if p.VictoryPoints != 2 || p.SettlementsLeft != MaxSettlements-2 || p.RoadsLeft != MaxRoads-2 {
			t.Errorf("seat %d: vp=%d settlements=%d roads=%d", p.ID, p.VictoryPoints, p.SettlementsLeft, p.RoadsLeft)
		}
	}
	assertConserved(t, g)
}

func TestSetup_OnlySecondSettlementPays(t *testing.T) {
	e := createTestEngine(t, 2)
	g := e.state

	for g.Phase == PhaseSetup {
		p := g.CurrentPlayer
		step := g.SetupStep
		before := g.Players[p].HandSize()
		v := g.ValidSettlementVertices(p)[0]
		if err := e.BuildSettlement(v, p); err != nil {
			t.Fatal(err)
		}

		want := 0
		if step >= len(g.Players) {
			for _, id := range g.Board.AdjacentHexes(v) {
				if tile := g.Board.Tiles[id]; tile.Resource != Desert && !tile.HasRobber {
					want++
				}
			}
		}
		if got := g.Players[p].HandSize() - before; got != want {
			t.Errorf("step %d: seat %d gained %d cards, want %d", step, p, got, want)
		}
		if err := e.BuildRoad(g.ValidRoadEdges(p)[0], p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSetup_Sequencing(t *testing.T) {
	e := createTestEngine(t, 3)
	g := e.state

	expectKind(t, e.BuildRoad(0, 0), KindOutOfSequence)
	expectKind(t, e.BuildSettlement(g.ValidSettlementVertices(1)[0], 1), KindNotYourTurn)
	_, err := e.RollDice(0)
	expectKind(t, err, KindWrongPhase)

	v := g.ValidSettlementVertices(0)[0]
	if err := e.BuildSettlement(v, 0); err != nil {
		t.Fatal(err)
	}
	expectKind(t, e.BuildSettlement(g.ValidSettlementVertices(0)[0], 0), KindOutOfSequence)

	// A road elsewhere on the board is refused even if it would touch
	// another settlement of the same player.
	for _, edge := range g.Board.Edges {
		ends := edge.Vertices
		if ends[0] == v || ends[1] == v {
			continue
		}
		if err := e.BuildRoad(edge.ID, 0); err == nil {
			t.Fatalf("road %d away from the new settlement was accepted", edge.ID)
		}
	}
}

func TestRollDice_TwiceInOneTurn(t *testing.T) {
	e := createPlayEngine(t, 5, 6)

	if _, err := e.RollDice(0); err != nil {
		t.Fatalf("first roll: %v", err)
	}
	_, err := e.RollDice(0)
	if !errors.Is(err, ErrDiceAlreadyRolled) {
		t.Fatalf("expected DiceAlreadyRolled, got %v", err)
	}

	if err := e.EndTurn(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RollDice(1); err != nil {
		t.Fatalf("next seat roll: %v", err)
	}
}

func TestRollDice_OutOfTurn(t *testing.T) {
	e := createPlayEngine(t, 5)
	_, err := e.RollDice(2)
	expectKind(t, err, KindNotYourTurn)
}

func TestActionsBeforeRoll(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	give(t, g, 0, Stockpile{Wood: 5, Brick: 5, Sheep: 5, Wheat: 5, Ore: 5})

	expectKind(t, e.EndTurn(0), KindDiceNotRolled)
	_, err := e.BuyDevelopmentCard(0)
	expectKind(t, err, KindDiceNotRolled)
	expectKind(t, e.BuildRoad(0, 0), KindDiceNotRolled)
}

func TestProduction(t *testing.T) {
	e := createPlayEngine(t, 0)
	g := e.state

	var tile *Tile
	for _, tl := range g.Board.Tiles {
		if tl.Resource != Desert {
			tile = tl
			break
		}
	}
	e.dice = &ScriptedDice{Rolls: []int{tile.Token}}
	put(g, tile.Vertices[0], 1, BuildingSettlement)
	put(g, tile.Vertices[3], 2, BuildingCity)

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if got := g.Players[1].Resources.Get(tile.Resource); got < 1 {
		t.Errorf("settlement got %d %s", got, tile.Resource)
	}
	if got := g.Players[2].Resources.Get(tile.Resource); got < 2 {
		t.Errorf("city got %d %s", got, tile.Resource)
	}
	assertConserved(t, g)

	var sawEvent bool
	for _, ev := range e.TakeEvents() {
		if rd, ok := ev.(ResourcesDistributed); ok && rd.PlayerID == 2 {
			sawEvent = true
		}
	}
	if !sawEvent {
		t.Error("expected ResourcesDistributed for the city owner")
	}
}

func TestProduction_RobberBlocksTile(t *testing.T) {
	e := createPlayEngine(t, 0)
	g := e.state

	var tile *Tile
	for _, tl := range g.Board.Tiles {
		if tl.Resource != Desert {
			tile = tl
			break
		}
	}
	g.Board.Tiles[g.Board.RobberTile()].HasRobber = false
	tile.HasRobber = true
	e.dice = &ScriptedDice{Rolls: []int{tile.Token}}
	put(g, tile.Vertices[0], 1, BuildingSettlement)

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	// The settlement may touch other tiles with the same token, but not
	// this one; count only what this tile could have given.
	want := 0
	for _, id := range g.Board.AdjacentHexes(tile.Vertices[0]) {
		other := g.Board.Tiles[id]
		if id != tile.ID && other.Token == tile.Token && other.Resource == tile.Resource {
			want++
		}
	}
	if got := g.Players[1].Resources.Get(tile.Resource); got != want {
		t.Errorf("robbed tile paid out: got %d, want %d", got, want)
	}
}

func TestProduction_BankShort(t *testing.T) {
	e := createPlayEngine(t, 0)
	g := e.state

	var tile *Tile
	for _, tl := range g.Board.Tiles {
		if tl.Resource != Desert {
			tile = tl
			break
		}
	}
	r := tile.Resource
	e.dice = &ScriptedDice{Rolls: []int{tile.Token, tile.Token}}

	// Leave one unit in the bank; two cities claim four.
	var drain Stockpile
	drain[r] = BankResourceUnits - 1
	give(t, g, 3, drain)
	put(g, tile.Vertices[0], 1, BuildingCity)
	put(g, tile.Vertices[3], 2, BuildingCity)

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if g.Players[1].Resources.Get(r) != 0 || g.Players[2].Resources.Get(r) != 0 {
		t.Error("several claimants should get nothing from a short bank")
	}

	// A sole claimant takes what is left.
	g.Board.Vertices[tile.Vertices[3]].Building = nil
	if err := e.EndTurn(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RollDice(1); err != nil {
		t.Fatal(err)
	}
	if got := g.Players[1].Resources.Get(r); got != 1 {
		t.Errorf("sole claimant got %d, want 1", got)
	}
	assertConserved(t, g)
}

func TestDiscard_ExactHalf(t *testing.T) {
	e := createPlayEngine(t, 7)
	g := e.state
	give(t, g, 1, Stockpile{Wood: 5, Ore: 4}) // 9 cards, owes 4
	give(t, g, 2, Stockpile{Sheep: 7})        // at the limit, owes nothing

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhaseDiscardCards {
		t.Fatalf("expected discard phase, got %s", g.Phase)
	}
	if g.DiscardDue(1) != 4 || g.DiscardDue(2) != 0 {
		t.Fatalf("owed: seat1=%d seat2=%d", g.DiscardDue(1), g.DiscardDue(2))
	}

	expectKind(t, e.Discard(2, Stockpile{Sheep: 1}), KindNotYourTurn)
	expectKind(t, e.Discard(1, Stockpile{Wood: 3}), KindInvalidDiscard)
	expectKind(t, e.Discard(1, Stockpile{Wood: 5}), KindInvalidDiscard)
	expectKind(t, e.Discard(1, Stockpile{Brick: 4}), KindInsufficientResources)
	expectKind(t, e.EndTurn(0), KindWrongPhase)

	if err := e.Discard(1, Stockpile{Wood: 2, Ore: 2}); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if g.Phase != PhasePlay || !g.RobberPending {
		t.Fatalf("expected play with robber pending, got %s pending=%v", g.Phase, g.RobberPending)
	}
	if g.Players[1].HandSize() != 5 {
		t.Errorf("expected 5 cards left, got %d", g.Players[1].HandSize())
	}
	expectKind(t, e.EndTurn(0), KindOutOfSequence)
	assertConserved(t, g)
}

func TestDiscard_QueueOrder(t *testing.T) {
	e := createPlayEngine(t, 7)
	g := e.state
	give(t, g, 3, Stockpile{Wood: 8})
	give(t, g, 1, Stockpile{Ore: 10})

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	expectKind(t, e.Discard(3, Stockpile{Wood: 4}), KindNotYourTurn)
	if err := e.Discard(1, Stockpile{Ore: 5}); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhaseDiscardCards {
		t.Fatal("expected to wait for seat 3")
	}
	if err := e.Discard(3, Stockpile{Wood: 4}); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhasePlay {
		t.Fatalf("expected play, got %s", g.Phase)
	}
}

func TestMoveRobber_Steals(t *testing.T) {
	e := createPlayEngine(t, 7)
	g := e.state

	var target *Tile
	for _, tl := range g.Board.Tiles {
		if !tl.HasRobber {
			target = tl
			break
		}
	}
	put(g, target.Vertices[0], 1, BuildingSettlement)
	give(t, g, 1, Stockpile{Ore: 1})

	expectKind(t, e.MoveRobber(0, target.ID), KindOutOfSequence)
	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if !g.RobberPending {
		t.Fatal("expected robber pending with no discards due")
	}
	expectKind(t, e.MoveRobber(0, g.Board.RobberTile()), KindInvalidPlacement)

	if err := e.MoveRobber(0, target.ID); err != nil {
		t.Fatalf("move robber: %v", err)
	}
	if !target.HasRobber || g.Board.RobberTile() != target.ID {
		t.Error("robber not on target")
	}
	if g.Players[0].Resources.Get(Ore) != 1 || g.Players[1].Resources.Get(Ore) != 0 {
		t.Error("expected the ore to be stolen")
	}

	var stolen *ResourceStolen
	for _, ev := range e.TakeEvents() {
		if s, ok := ev.(ResourceStolen); ok {
			stolen = &s
		}
	}
	if stolen == nil || stolen.FromID != 1 || stolen.ToID != 0 || stolen.Resource != Ore {
		t.Errorf("unexpected steal event %+v", stolen)
	}
	if err := e.EndTurn(0); err != nil {
		t.Errorf("end turn after robber: %v", err)
	}
}

func TestMoveRobber_NotNextToOwnBuilding(t *testing.T) {
	e := createPlayEngine(t, 7)
	g := e.state

	var own *Tile
	for _, tl := range g.Board.Tiles {
		if !tl.HasRobber {
			own = tl
			break
		}
	}
	put(g, own.Vertices[0], 0, BuildingSettlement)
	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	err := e.MoveRobber(0, own.ID)
	expectKind(t, err, KindInvalidPlacement)
	if err.(*RuleError).Placement != OwnBuildingAdjacent {
		t.Errorf("expected OwnBuildingAdjacent, got %v", err)
	}
}

func TestBuild_CostsAndPieces(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state

	edges, verts := chain(g.Board, 0, 2)
	put(g, verts[0], 0, BuildingSettlement)
	g.HasRolled = true // skip production so the hand stays exact

	expectKind(t, e.BuildRoad(edges[0], 0), KindInsufficientResources)
	give(t, g, 0, Stockpile{Wood: 2, Brick: 2, Sheep: 1, Wheat: 3, Ore: 3})

	if err := e.BuildRoad(edges[0], 0); err != nil {
		t.Fatal(err)
	}
	if err := e.BuildRoad(edges[1], 0); err != nil {
		t.Fatal(err)
	}
	if g.Players[0].RoadsLeft != MaxRoads-2 {
		t.Errorf("roads left %d", g.Players[0].RoadsLeft)
	}
	expectKind(t, e.BuildSettlement(verts[2], 0), KindInsufficientResources)

	expectKind(t, e.UpgradeCity(verts[1], 0), KindInvalidPlacement)
	vp := g.Players[0].VictoryPoints
	if err := e.UpgradeCity(verts[0], 0); err != nil {
		t.Fatal(err)
	}
	if g.Players[0].VictoryPoints != vp+1 || g.Players[0].CitiesLeft != MaxCities-1 {
		t.Error("city did not score")
	}
	if g.Board.Vertices[verts[0]].Building.Kind != BuildingCity {
		t.Error("building not upgraded in place")
	}
	assertConserved(t, g)
}

func TestBuild_NoPiecesRemaining(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state

	edges, verts := chain(g.Board, 0, 1)
	put(g, verts[0], 0, BuildingSettlement)
	give(t, g, 0, Stockpile{Wood: 1, Brick: 1})
	g.Players[0].RoadsLeft = 0
	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	expectKind(t, e.BuildRoad(edges[0], 0), KindNoPiecesRemaining)
}

func TestRejectedCommandChangesNothing(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	e.TakeEvents()
	before := circulation(g)
	hand := g.Players[0].Resources

	if err := e.BuildSettlement(0, 0); err == nil {
		t.Fatal("expected rejection")
	}
	if g.Players[0].Resources != hand || circulation(g) != before {
		t.Error("rejected command changed resources")
	}
	if len(e.TakeEvents()) != 0 {
		t.Error("rejected command emitted events")
	}
}

func TestEndTurn_Advances(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	g.Players[0].NewDevCards[Knight] = 1

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if err := e.EndTurn(0); err != nil {
		t.Fatal(err)
	}
	if g.CurrentPlayer != 1 || g.HasRolled || g.Turn != 2 {
		t.Errorf("unexpected state after end turn: seat=%d rolled=%v turn=%d", g.CurrentPlayer, g.HasRolled, g.Turn)
	}
	if g.Players[0].DevCards[Knight] != 1 || g.Players[0].NewDevCards[Knight] != 0 {
		t.Error("bought cards should become playable after the turn")
	}
}

func TestVictory(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	g.Players[0].VictoryPoints = 9
	g.Players[0].DevCards[VictoryPoint] = 1

	if _, err := e.RollDice(0); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhaseEnd || g.Winner != 0 {
		t.Fatalf("expected seat 0 to win, phase %s winner %d", g.Phase, g.Winner)
	}
	if w := g.GetWinner(); w == nil || w.ID != 0 {
		t.Error("GetWinner should return seat 0")
	}
	var over bool
	for _, ev := range e.TakeEvents() {
		if _, ok := ev.(GameOver); ok {
			over = true
		}
	}
	if !over {
		t.Error("expected GameOver event")
	}
	expectKind(t, e.EndTurn(0), KindWrongPhase)
}

func TestApply_Dispatch(t *testing.T) {
	e := createPlayEngine(t, 5)

	if err := e.Apply(0, RollDice{}); err != nil {
		t.Fatal(err)
	}
	if err := e.Apply(0, EndTurn{}); err != nil {
		t.Fatal(err)
	}
	expectKind(t, e.Apply(1, nil), KindUnknownTarget)
	expectKind(t, e.Apply(2, RollDice{}), KindNotYourTurn)
}

func TestPlayerView_HidesOpponentHands(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	give(t, g, 1, Stockpile{Ore: 3})

	v, err := e.PlayerView(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Opponents) != 3 {
		t.Fatalf("expected 3 opponents, got %d", len(v.Opponents))
	}
	if v.Opponents[0].ID != 1 || v.Opponents[0].HandSize != 3 {
		t.Errorf("unexpected opponent view %+v", v.Opponents[0])
	}
	if _, err := e.PlayerView(9); err == nil {
		t.Error("expected error for unknown seat")
	}
}

func TestEstimateState_MatchesPublicState(t *testing.T) {
	e := createPlayEngine(t, 5)
	g := e.state
	give(t, g, 1, Stockpile{Ore: 3, Wood: 1})
	give(t, g, 0, Stockpile{Brick: 2})

	v, err := e.PlayerView(0)
	if err != nil {
		t.Fatal(err)
	}
	est := EstimateState(v, g.Board)

	if est.AwaitingSeat() != g.AwaitingSeat() {
		t.Errorf("awaiting seat %d, want %d", est.AwaitingSeat(), g.AwaitingSeat())
	}
	if est.Player(0).Resources != g.Player(0).Resources {
		t.Errorf("own hand %v, want %v", est.Player(0).Resources, g.Player(0).Resources)
	}
	if got := est.Player(1).HandSize(); got != 4 {
		t.Errorf("opponent hand size %d, want 4", got)
	}
	if len(est.Bank.Deck) != len(g.Bank.Deck) {
		t.Errorf("deck size %d, want %d", len(est.Bank.Deck), len(g.Bank.Deck))
	}
	if len(est.ValidRobberTiles(0)) != len(g.ValidRobberTiles(0)) {
		t.Error("robber targets differ")
	}
}

func TestEstimateState_Setup(t *testing.T) {
	e := createTestEngine(t, 7)
	g := e.state
	vs := g.ValidSettlementVertices(0)
	if err := e.BuildSettlement(vs[0], 0); err != nil {
		t.Fatal(err)
	}

	v, err := e.PlayerView(0)
	if err != nil {
		t.Fatal(err)
	}
	est := EstimateState(v, g.Board)
	want := g.ValidRoadEdges(0)
	got := est.ValidRoadEdges(0)
	if len(got) != len(want) || len(got) == 0 {
		t.Fatalf("road edges %v, want %v", got, want)
	}
}
