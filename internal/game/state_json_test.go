package game

import (
	"encoding/json"
	"testing"
)

func TestStockpile_JSON(t *testing.T) {
	data, err := json.Marshal(Stockpile{Wood: 2, Ore: 1})
	if err != nil {
		t.Fatal(err)
	}
	var back Stockpile
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != (Stockpile{Wood: 2, Ore: 1}) {
		t.Errorf("got %s from %s", back, data)
	}

	if err := json.Unmarshal([]byte(`{"sheep":3}`), &back); err != nil || back != (Stockpile{Sheep: 3}) {
		t.Errorf("partial object: %v %s", err, back)
	}
	if err := json.Unmarshal([]byte(`{"desert":1}`), &back); err == nil {
		t.Error("desert should not decode into a stockpile")
	}
}

func TestGameState_SnapshotResumes(t *testing.T) {
	e := createTestEngine(t, 9, 8)
	completeSetup(t, e)

	data, err := json.Marshal(e.State())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := restored.Board.Validate(); err != nil {
		t.Fatalf("restored board: %v", err)
	}
	if restored.Phase != PhasePlay || restored.CurrentPlayer != 0 {
		t.Fatalf("restored phase %s seat %d", restored.Phase, restored.CurrentPlayer)
	}
	if circulation(&restored) != circulation(e.State()) {
		t.Error("resources changed in the round trip")
	}

	r := Resume(&restored, Options{Dice: &ScriptedDice{Rolls: []int{8}}})
	if _, err := r.RollDice(0); err != nil {
		t.Fatalf("roll on resumed game: %v", err)
	}
	p := restored.Players[0]
	if _, ok := restored.Board.VertexAt(restored.Board.Vertices[0].Pos); !ok {
		t.Error("position index not rebuilt")
	}
	if p.SettlementsLeft != MaxSettlements-2 || p.RoadsLeft != MaxRoads-2 {
		t.Errorf("pieces lost: %d settlements, %d roads", p.SettlementsLeft, p.RoadsLeft)
	}
}
