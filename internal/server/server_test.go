package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hexlands/internal/database"
	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	settings := game.DefaultSettings()
	settings.Seed = 5
	s, err := New(Config{
		DBPath: filepath.Join(t.TempDir(), "hexlands.db"),
		Game:   GameDefaults{Bots: 3, Settings: settings},
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.db.Close() })
	return s
}

// humanVsBots creates a game with a human in seat 0 and three bots.
func humanVsBots(t *testing.T, s *Server) (*Session, *database.Player) {
	t.Helper()
	owner, err := s.db.CreatePlayer("Ada")
	require.NoError(t, err)
	players := []*game.Player{
		game.NewPlayer(0, "Ada", game.ColorRed),
		game.NewBotPlayer(1, "Bot 1", game.ColorBlue),
		game.NewBotPlayer(2, "Bot 2", game.ColorWhite),
		game.NewBotPlayer(3, "Bot 3", game.ColorOrange),
	}
	settings := game.DefaultSettings()
	settings.Seed = 21
	sess, err := s.sessions.Create("Friday", owner.ID, players, settings)
	require.NoError(t, err)
	return sess, owner
}

// placeSetup makes seat 0's next setup settlement and road.
func placeSetup(t *testing.T, sess *Session) *Outcome {
	t.Helper()
	moves, err := sess.ValidMoves(0)
	require.NoError(t, err)
	require.NotEmpty(t, moves.Settlements)
	out, err := sess.Submit(0, game.BuildSettlement{Vertex: moves.Settlements[0]})
	require.NoError(t, err)
	require.NoError(t, out.Err)

	moves, err = sess.ValidMoves(0)
	require.NoError(t, err)
	require.NotEmpty(t, moves.Roads)
	out, err = sess.Submit(0, game.BuildRoad{Edge: moves.Roads[0]})
	require.NoError(t, err)
	require.NoError(t, out.Err)
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSession_BotsTakeTheirSetupTurns(t *testing.T) {
	s := newTestServer(t)
	sess, _ := humanVsBots(t, s)

	out := placeSetup(t, sess)
	// Seats 1, 2, 3, 3, 2, 1 place before the turn returns to seat 0.
	assert.Len(t, out.Steps, 1+12)

	state := sess.engine.State()
	assert.Equal(t, game.PhaseSetup, state.Phase)
	assert.Equal(t, 0, state.AwaitingSeat())
	for seat := 1; seat <= 3; seat++ {
		assert.Equal(t, 2, state.CountBuildings(seat, game.BuildingSettlement), "seat %d", seat)
		assert.Equal(t, 2, state.CountBuildings(seat, game.BuildingRoad), "seat %d", seat)
	}

	actions, err := s.db.GetActions(sess.ID)
	require.NoError(t, err)
	assert.Len(t, actions, 14)
	history, err := s.db.GetGameHistory(sess.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)

	// Finishing setup hands the first turn back to seat 0.
	placeSetup(t, sess)
	assert.Equal(t, game.PhasePlay, state.Phase)
	assert.Equal(t, 0, state.AwaitingSeat())
}

func TestSession_ViewWhileMoving(t *testing.T) {
	s := newTestServer(t)
	sess, _ := humanVsBots(t, s)

	stop := make(chan struct{})
	views := make(chan int, 1)
	go func() {
		n := 0
		defer func() { views <- n }()
		for {
			select {
			case <-stop:
				return
			default:
			}
			view, board, err := sess.View(1)
			if err != nil {
				return
			}
			if _, err := json.Marshal(protocol.GameStatePayload{GameID: sess.ID, Seat: 1, View: view, Board: board}); err != nil {
				return
			}
			n++
		}
	}()

	placeSetup(t, sess)
	placeSetup(t, sess)
	close(stop)
	assert.Positive(t, <-views)

	// The snapshot no longer follows the game.
	_, board, err := sess.View(0)
	require.NoError(t, err)
	live := sess.engine.State().Board
	assert.NotSame(t, live, board)
	assert.NotSame(t, live.Vertices[0], board.Vertices[0])
	assert.Equal(t, live.RobberTile(), board.RobberTile())
}

func TestSession_RejectedActionIsLoggedNotApplied(t *testing.T) {
	s := newTestServer(t)
	sess, _ := humanVsBots(t, s)

	out, err := sess.Submit(1, game.RollDice{})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, game.ErrNotYourTurn)
	assert.Empty(t, out.Steps)

	actions, err := s.db.GetActions(sess.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, string(protocol.ErrCodeNotYourTurn), actions[0].ErrorCode)
}

func TestSessions_RestoreFromSnapshot(t *testing.T) {
	s := newTestServer(t)
	sess, _ := humanVsBots(t, s)
	placeSetup(t, sess)
	before := sess.engine.State()

	restored := newSessions(s.db, zap.NewNop())
	n, err := restored.Restore()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	again, err := restored.Get(sess.ID)
	require.NoError(t, err)
	after := again.engine.State()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.CurrentPlayer, after.CurrentPlayer)
	assert.Equal(t, before.SetupStep, after.SetupStep)
	assert.Equal(t, before.Bank.Resources, after.Bank.Resources)
	assert.True(t, again.bots[1])
	assert.False(t, again.bots[0])

	// The restored session keeps accepting commands.
	placeSetup(t, again)
	assert.Equal(t, game.PhasePlay, after.Phase)

	_, err = restored.Get("missing")
	assert.ErrorIs(t, err, database.ErrGameNotFound)
}

func get(t *testing.T, s *Server, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, s, http.MethodGet, path, token)
}

func do(t *testing.T, s *Server, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHTTP_QueryAPI(t *testing.T) {
	s := newTestServer(t)
	sess, owner := humanVsBots(t, s)
	placeSetup(t, sess)

	w := get(t, s, "/api/games", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list protocol.GameListPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, sess.ID, list.Games[0].ID)
	assert.Equal(t, 4, list.Games[0].PlayerCount)
	assert.Empty(t, list.Games[0].OpenSeats)

	base := "/api/games/" + sess.ID
	assert.Equal(t, http.StatusUnauthorized, get(t, s, base+"/players/0", "").Code)
	assert.Equal(t, http.StatusForbidden, get(t, s, base+"/players/1", owner.Token).Code)

	w = get(t, s, base+"/players/0", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var view protocol.GameStatePayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 0, view.Seat)
	assert.Equal(t, "Ada", view.View.Self.Name)
	assert.Len(t, view.View.Opponents, 3)
	require.NotNil(t, view.Board)
	assert.NoError(t, view.Board.Validate())

	w = get(t, s, base+"/valid/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	var moves protocol.ValidMovesPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &moves))
	assert.Equal(t, "setup", moves.Phase)
	assert.NotEmpty(t, moves.Settlements)

	assert.Equal(t, http.StatusNotFound, get(t, s, base+"/valid/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, base+"/valid/x", "").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/games/missing/valid/0", "").Code)

	w = get(t, s, base+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist protocol.GameHistoryPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.NotEmpty(t, hist.Events)
	assert.Equal(t, "building_placed", hist.Events[0].EventType)
	assert.Equal(t, "Ada built a settlement", hist.Events[0].Message)

	last := hist.Events[len(hist.Events)-1].ID
	w = get(t, s, base+"/history?since="+strconv.FormatInt(last, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Empty(t, hist.Events)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/games/missing/history", "").Code)
}

func TestHTTP_MyGamesAndDelete(t *testing.T) {
	s := newTestServer(t)
	sess, owner := humanVsBots(t, s)
	stranger, err := s.db.CreatePlayer("Eve")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(t, s, "/api/players/me/games", "").Code)

	w := get(t, s, "/api/players/me/games", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var list protocol.GameListPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, sess.ID, list.Games[0].ID)

	w = get(t, s, "/api/players/me/games", stranger.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Games)

	path := "/api/games/" + sess.ID
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodDelete, path, stranger.Token).Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, path, owner.Token).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, path, owner.Token).Code)

	_, err = s.sessions.Get(sess.ID)
	assert.ErrorIs(t, err, database.ErrGameNotFound)
}

type wsConn struct {
	t    *testing.T
	conn *websocket.Conn
}

// serve runs the hub and an HTTP listener for s and returns the websocket URL.
func serve(t *testing.T, s *Server) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	_, err := s.Start(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *wsConn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsConn{t: t, conn: conn}
}

func (c *wsConn) send(msgType protocol.MessageType, payload interface{}) string {
	msg, err := protocol.NewMessage(msgType, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
	return msg.ID
}

// next reads until a message of the given type arrives.
func (c *wsConn) next(msgType protocol.MessageType) *protocol.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg protocol.Message
		require.NoError(c.t, c.conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return &msg
		}
	}
}

func TestWebSocket_CreateGameAndPlay(t *testing.T) {
	s := newTestServer(t)
	c := dial(t, serve(t, s))
	c.next(protocol.TypeWelcome)

	c.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "early"})
	var errPayload protocol.ErrorPayload
	require.NoError(t, c.next(protocol.TypeError).ParsePayload(&errPayload))
	assert.Equal(t, protocol.ErrCodeNotAuthenticated, errPayload.Code)

	c.send(protocol.TypeAuthenticate, protocol.AuthenticatePayload{Name: "Ada"})
	var auth protocol.AuthResultPayload
	require.NoError(t, c.next(protocol.TypeAuthResult).ParsePayload(&auth))
	assert.True(t, auth.Success)
	assert.NotEmpty(t, auth.Token)

	c.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "Friday", Seed: 9})
	var created protocol.GameCreatedPayload
	require.NoError(t, c.next(protocol.TypeGameCreated).ParsePayload(&created))
	assert.Equal(t, 0, created.Seat)

	var state protocol.GameStatePayload
	require.NoError(t, c.next(protocol.TypeGameState).ParsePayload(&state))
	assert.Equal(t, game.PhaseSetup, state.View.Phase)
	assert.Len(t, state.View.Opponents, 3)

	// Out of phase: answered, nothing broadcast.
	p, err := protocol.EncodeAction(created.GameID, game.RollDice{})
	require.NoError(t, err)
	id := c.send(protocol.TypeAction, p)
	var result protocol.ActionResultPayload
	require.NoError(t, c.next(protocol.TypeActionResult).ParsePayload(&result))
	assert.Equal(t, id, result.ActionID)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)

	sess, err := s.sessions.Get(created.GameID)
	require.NoError(t, err)
	moves, err := sess.ValidMoves(0)
	require.NoError(t, err)
	p, err = protocol.EncodeAction(created.GameID, game.BuildSettlement{Vertex: moves.Settlements[0]})
	require.NoError(t, err)
	c.send(protocol.TypeAction, p)
	require.NoError(t, c.next(protocol.TypeActionResult).ParsePayload(&result))
	assert.True(t, result.Success)

	var events protocol.EventsPayload
	require.NoError(t, c.next(protocol.TypeEvents).ParsePayload(&events))
	require.NotEmpty(t, events.Events)
	assert.Equal(t, "building_placed", events.Events[0].Type)

	c.send(protocol.TypeListGames, struct{}{})
	var list protocol.GameListPayload
	require.NoError(t, c.next(protocol.TypeGameList).ParsePayload(&list))
	require.Len(t, list.Games, 1)

	c.send(protocol.TypePing, struct{}{})
	c.next(protocol.TypePong)

	c.send("attack", struct{}{})
	require.NoError(t, c.next(protocol.TypeError).ParsePayload(&errPayload))
	assert.Equal(t, protocol.ErrCodeInvalidMessage, errPayload.Code)
}

func TestWebSocket_JoinOpenSeat(t *testing.T) {
	s := newTestServer(t)
	url := serve(t, s)
	host := dial(t, url)
	host.next(protocol.TypeWelcome)
	host.send(protocol.TypeAuthenticate, protocol.AuthenticatePayload{Name: "Ada"})
	host.next(protocol.TypeAuthResult)
	host.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Bots: 2, OpenSeats: 1})
	var created protocol.GameCreatedPayload
	require.NoError(t, host.next(protocol.TypeGameCreated).ParsePayload(&created))

	guest := dial(t, url)
	guest.next(protocol.TypeWelcome)
	guest.send(protocol.TypeAuthenticate, protocol.AuthenticatePayload{Name: "Grace"})
	guest.next(protocol.TypeAuthResult)

	guest.send(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: created.GameID, Seat: 0})
	var errPayload protocol.ErrorPayload
	require.NoError(t, guest.next(protocol.TypeError).ParsePayload(&errPayload))
	assert.Equal(t, protocol.ErrCodeSeatTaken, errPayload.Code)

	guest.send(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: created.GameID, Seat: 1})
	var joined protocol.JoinedGamePayload
	require.NoError(t, guest.next(protocol.TypeJoinedGame).ParsePayload(&joined))
	assert.Equal(t, 1, joined.Seat)

	var state protocol.GameStatePayload
	require.NoError(t, guest.next(protocol.TypeGameState).ParsePayload(&state))
	assert.Equal(t, 1, state.Seat)
	assert.Equal(t, 1, state.View.Self.ID)

	hist, err := s.db.GetGameHistory(created.GameID)
	require.NoError(t, err)
	var messages []string
	for _, ev := range hist {
		messages = append(messages, ev.Message)
	}
	assert.Contains(t, messages, "Grace took seat 2")

	guest.send(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: "missing", Seat: 1})
	require.NoError(t, guest.next(protocol.TypeError).ParsePayload(&errPayload))
	assert.Equal(t, protocol.ErrCodeGameNotFound, errPayload.Code)
}
