package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/siakng/monopoly-server-go/internal/config"
	"github.com/siakng/monopoly-server-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type frame struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id"`
	PlayerID string          `json:"player_id"`
	TargetID string          `json:"target_id"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*game.Engine, string) {
	t.Helper()
	opts := game.DefaultOptions()
	opts.Seed = 11
	engine := game.NewEngine(zap.NewNop(), opts)

	hub := NewHub(engine, config.WebSocketConfig{SendBufferSize: 64}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return engine, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func join(t *testing.T, baseURL, gameID, name string) (*websocket.Conn, string) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(baseURL+"?game="+gameID+"&name="+name, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	joined := readUntil(t, conn, MessageJoined)
	assert.Equal(t, gameID, joined.GameID)
	require.NotEmpty(t, joined.PlayerID)
	return conn, joined.PlayerID
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)

		var f frame
		require.NoError(t, json.Unmarshal(payload, &f))
		if f.Type == msgType {
			return f
		}
	}
}

func TestHubPlaysCommandsAndFansOutEvents(t *testing.T) {
	engine, url := startHub(t)
	first, firstID := join(t, url, "kampus", "Andi")
	second, secondID := join(t, url, "kampus", "Budi")
	assert.NotEqual(t, firstID, secondID)

	send(t, second, map[string]any{"type": "start_game"})
	for _, conn := range []*websocket.Conn{first, second} {
		started := readUntil(t, conn, "GAME_STARTED")
		assert.Equal(t, "kampus", started.GameID)
		assert.Equal(t, firstID, started.TargetID, "first seat opens")

		snap := readUntil(t, conn, "STATE_SNAPSHOT")
		var view game.Snapshot
		require.NoError(t, json.Unmarshal(snap.Data, &view))
		require.Len(t, view.Players, 2)
		assert.Equal(t, "Andi", view.Players[0].Name)
		assert.Equal(t, "Budi", view.Players[1].Name)
	}

	send(t, second, map[string]any{"type": "roll_dice"})
	rejected := readUntil(t, second, MessageError)
	assert.Contains(t, rejected.Message, "turn")

	send(t, first, map[string]any{"type": "roll_dice", "player_id": secondID})
	for _, conn := range []*websocket.Conn{first, second} {
		rolled := readUntil(t, conn, "DICE_ROLLED")
		assert.Equal(t, firstID, rolled.PlayerID, "actor comes from the connection")
	}

	snap, err := engine.Snapshot("kampus")
	require.NoError(t, err)
	assert.NotEqual(t, "WAITING", snap.Phase)
}

func TestHubRejectsMalformedMessage(t *testing.T) {
	_, url := startHub(t)
	conn, _ := join(t, url, "kampus", "Andi")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	f := readUntil(t, conn, MessageError)
	assert.Equal(t, "malformed message", f.Message)

	send(t, conn, map[string]any{"type": "fly_to_moon"})
	f = readUntil(t, conn, MessageError)
	assert.Contains(t, f.Message, "unknown command")
}

func TestHubRefusesSeatsAfterStart(t *testing.T) {
	_, url := startHub(t)
	first, _ := join(t, url, "kampus", "Andi")
	join(t, url, "kampus", "Budi")

	send(t, first, map[string]any{"type": "start_game"})
	readUntil(t, first, "GAME_STARTED")

	_, resp, err := websocket.DefaultDialer.Dial(url+"?game=kampus&name=Cici", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubDisconnectRemovesPlayer(t *testing.T) {
	engine, url := startHub(t)
	first, firstID := join(t, url, "kampus", "Andi")
	second, _ := join(t, url, "kampus", "Budi")

	send(t, first, map[string]any{"type": "start_game"})
	readUntil(t, first, "GAME_STARTED")

	require.NoError(t, second.Close())

	over := readUntil(t, first, "GAME_OVER")
	assert.Equal(t, firstID, over.TargetID)

	snap, err := engine.Snapshot("kampus")
	require.NoError(t, err)
	assert.Equal(t, "GAME_OVER", snap.Phase)
	assert.Equal(t, firstID, snap.Winner)
}

func TestHubForgetsAbandonedWaitingGame(t *testing.T) {
	engine, url := startHub(t)
	conn, _ := join(t, url, "kampus", "Andi")
	assert.Contains(t, engine.Games(), "kampus")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		for _, id := range engine.Games() {
			if id == "kampus" {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func newTestClient(h *Hub, gameID, playerID string) *Client {
	return &Client{hub: h, send: make(chan []byte, 64), playerID: playerID, name: playerID, gameID: gameID}
}

func TestHubJoinRefusedOnceGameStarted(t *testing.T) {
	engine := game.NewEngine(zap.NewNop(), game.DefaultOptions())
	h := NewHub(engine, config.WebSocketConfig{SendBufferSize: 64}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	assert.Error(t, h.join(newTestClient(h, "missing", "p0")), "unknown games take no seats")

	_, err := engine.CreateGame("kampus")
	require.NoError(t, err)
	require.NoError(t, h.join(newTestClient(h, "kampus", "p1")))
	require.NoError(t, h.join(newTestClient(h, "kampus", "p2")))
	require.NoError(t, h.start("kampus", game.Command{Type: game.CommandStartGame, PlayerID: "p1"}))

	assert.Error(t, h.join(newTestClient(h, "kampus", "late")))
	assert.Len(t, h.seats("kampus"), 2)
}

func TestHubSeatsMatchPlayersWhenJoiningDuringStart(t *testing.T) {
	engine := game.NewEngine(zap.NewNop(), game.DefaultOptions())
	h := NewHub(engine, config.WebSocketConfig{SendBufferSize: 64}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	_, err := engine.CreateGame("kampus")
	require.NoError(t, err)
	require.NoError(t, h.join(newTestClient(h, "kampus", "p00")))
	require.NoError(t, h.join(newTestClient(h, "kampus", "p01")))

	var wg sync.WaitGroup
	for i := 2; i < 12; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = h.join(newTestClient(h, "kampus", id))
		}(fmt.Sprintf("p%02d", i))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, h.start("kampus", game.Command{Type: game.CommandStartGame, PlayerID: "p00"}))
	}()
	wg.Wait()

	snap, err := engine.Snapshot("kampus")
	require.NoError(t, err)
	var players []string
	for _, p := range snap.Players {
		players = append(players, p.ID)
	}
	var seated []string
	for _, seat := range h.seats("kampus") {
		seated = append(seated, seat.ID)
	}
	sort.Strings(players)
	sort.Strings(seated)
	assert.Equal(t, seated, players, "every seated client plays")
}

func TestOriginChecker(t *testing.T) {
	allowAll := originChecker(nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	assert.True(t, allowAll(req))

	check := originChecker([]string{"https://siak.example/"})
	assert.False(t, check(req))
	req.Header.Set("Origin", "https://siak.example")
	assert.True(t, check(req))
	req.Header.Del("Origin")
	assert.True(t, check(req))
}
