package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hexlands/internal/game"
	"hexlands/internal/protocol"
	"hexlands/internal/server"
)

// startServer runs a server on an httptest listener and returns its base URL.
func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := server.New(server.Config{
		DBPath: filepath.Join(t.TempDir(), "hexlands.db"),
		Game:   server.GameDefaults{Bots: 3, Settings: game.DefaultSettings()},
	}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = s.Start(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		s.Stop(context.Background())
	})
	return ts.URL
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"localhost:30000", "ws://localhost:30000/ws"},
		{"http://localhost:30000/", "ws://localhost:30000/ws"},
		{"https://play.example.com", "wss://play.example.com/ws"},
		{"ws://10.0.0.2:30000/ws", "ws://10.0.0.2:30000/ws"},
		{"wss://play.example.com/ws", "wss://play.example.com/ws"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WebSocketURL(tt.in), tt.in)
	}
}

func TestPickSeat(t *testing.T) {
	games := []protocol.GameListItem{
		{ID: "full"},
		{ID: "a", OpenSeats: []int{2}},
		{ID: "b", OpenSeats: []int{1, 3}},
	}

	id, seat, ok := pickSeat(games, -1)
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 2, seat)

	id, seat, ok = pickSeat(games, 3)
	require.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, 3, seat)

	_, _, ok = pickSeat(games, 0)
	assert.False(t, ok)
}

func TestNetworkClient_SendBeforeConnect(t *testing.T) {
	c := NewNetworkClient(nil)
	_, err := c.SendPayload(protocol.TypePing, struct{}{})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNetworkClient_PingPong(t *testing.T) {
	url := startServer(t)
	c := NewNetworkClient(nil)
	require.NoError(t, c.Connect(context.Background(), url))
	defer c.Disconnect()
	assert.True(t, c.IsConnected())

	id, err := c.SendPayload(protocol.TypePing, struct{}{})
	require.NoError(t, err)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-c.RecvChan():
			require.True(t, ok, "connection closed")
			if msg.Type == protocol.TypePong {
				assert.Equal(t, id, msg.ID)
				return
			}
		case <-timeout:
			t.Fatal("no pong")
		}
	}
}

func TestRunner_PlaysHostedGameToTheEnd(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	r := NewRunner(RunnerConfig{
		Server: url,
		Name:   "Remote",
		Seat:   -1,
		Create: &protocol.CreateGamePayload{Name: "remote", Bots: 3, VictoryPoints: 4, Seed: 11},
	}, nil)
	require.NoError(t, r.Run(ctx))

	gameID, seat := r.Seat()
	assert.NotEmpty(t, gameID)
	assert.Equal(t, 0, seat)
	assert.NotEmpty(t, r.Token())

	resp, err := http.Get(url + "/api/games/" + gameID + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history protocol.GameHistoryPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	var types []string
	for _, ev := range history.Events {
		types = append(types, ev.EventType)
	}
	assert.Contains(t, types, "game_over")
}

func TestRunner_JoinsOpenSeat(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	host := NewRunner(RunnerConfig{
		Server: url,
		Name:   "Host",
		Create: &protocol.CreateGamePayload{Name: "two remotes", Bots: 1, OpenSeats: 1, VictoryPoints: 4, Seed: 12},
	}, nil)
	hostErr := make(chan error, 1)
	go func() { hostErr <- host.Run(ctx) }()

	// Wait for the game to be listed before looking for a seat.
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/api/games")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var list protocol.GameListPayload
		if json.NewDecoder(resp.Body).Decode(&list) != nil {
			return false
		}
		return len(list.Games) == 1 && len(list.Games[0].OpenSeats) == 1
	}, 5*time.Second, 20*time.Millisecond)

	guest := NewRunner(RunnerConfig{Server: url, Name: "Guest", Seat: -1}, nil)
	require.NoError(t, guest.Run(ctx))
	require.NoError(t, <-hostErr)

	_, seat := guest.Seat()
	assert.Equal(t, 1, seat)
}

func TestRunner_UnknownGame(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := NewRunner(RunnerConfig{Server: url, Name: "Lost", GameID: "missing", Seat: 1}, nil)
	err := r.Run(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), string(protocol.ErrCodeGameNotFound)))
}

func TestRunner_NoOpenSeat(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := NewRunner(RunnerConfig{Server: url, Name: "Early", Seat: -1}, nil)
	assert.ErrorIs(t, r.Run(ctx), ErrNoOpenSeat)
}
