package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/loupgarou/internal/room"
	"example.com/loupgarou/internal/token"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ts     *httptest.Server
	rooms  *room.Registry
	tokens *token.Issuer
	hub    *Hub
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := token.NewIssuer(token.NewMemoryStore())
	hub := NewHub(log)
	seed := uint64(1)
	rooms := room.NewRegistry(tokens, hub, room.Options{
		Rand: func() *rand.Rand {
			seed++
			return rand.New(rand.NewPCG(seed, seed))
		},
		Log: log,
	})

	router := httprouter.New()
	NewServer(cfg, rooms, hub, log).RegisterRoutes(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, rooms: rooms, tokens: tokens, hub: hub}
}

type wsClient struct {
	t       *testing.T
	ws      *websocket.Conn
	id      string
	ref     int64
	pending []Envelope
}

func (e *testEnv) dial(t *testing.T) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	c := &wsClient{t: t, ws: ws}
	var hello HelloPayload
	c.decode(c.until(TypeHello), &hello)
	require.NotEmpty(t, hello.SocketID)
	c.id = hello.SocketID
	return c
}

func (c *wsClient) read() Envelope {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(c.t, c.ws.ReadJSON(&env))
	return env
}

// until returns the first message of type typ, buffering anything else.
func (c *wsClient) until(typ string) Envelope {
	c.t.Helper()
	for i, env := range c.pending {
		if env.Type == typ {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return env
		}
	}
	for {
		env := c.read()
		if env.Type == typ {
			return env
		}
		c.pending = append(c.pending, env)
	}
}

func (c *wsClient) send(typ string, payload any) int64 {
	c.t.Helper()
	c.ref++
	ref := c.ref
	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteJSON(Envelope{Type: typ, Ref: &ref, Payload: raw}))
	return ref
}

func (c *wsClient) request(typ string, payload any) Ack {
	c.t.Helper()
	ref := c.send(typ, payload)
	for {
		env := c.until(TypeAck)
		require.NotNil(c.t, env.Ref)
		if *env.Ref != ref {
			continue
		}
		var a Ack
		c.decode(env, &a)
		return a
	}
}

func (c *wsClient) decode(env Envelope, v any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(env.Payload, v))
}

func TestWS_HelloCarriesSocketID(t *testing.T) {
	env := newTestEnv(t, Config{})
	a := env.dial(t)
	b := env.dial(t)
	assert.NotEqual(t, a.id, b.id)
	require.Eventually(t, func() bool { return env.hub.Len() == 2 }, time.Second, 10*time.Millisecond)
}

func TestWS_FullGame(t *testing.T) {
	env := newTestEnv(t, Config{})
	host := env.dial(t)

	ack := host.request(TypeCreateRoom, "Narrator")
	require.True(t, ack.Success, ack.Error)
	require.Len(t, ack.RoomCode, room.CodeLength)
	require.Len(t, ack.Players, 1)
	assert.True(t, ack.Players[0].IsHost)
	code := ack.RoomCode

	players := make([]*wsClient, 5)
	for i := range players {
		p := env.dial(t)
		ack := p.request(TypeJoinRoom, JoinRoomPayload{RoomCode: strings.ToLower(code), PlayerName: "P" + string(rune('A'+i))})
		require.True(t, ack.Success, ack.Error)
		assert.Equal(t, code, ack.RoomCode)
		assert.Len(t, ack.Players, i+2)
		players[i] = p

		var joined room.PlayerJoinedPayload
		host.decode(host.until(room.EventPlayerJoined), &joined)
		assert.Equal(t, "P"+string(rune('A'+i)), joined.NewPlayer)
		assert.Len(t, joined.Players, i+2)
	}

	ack = host.request(TypeStartGame, code)
	require.True(t, ack.Success, ack.Error)

	var gm room.GameMasterViewPayload
	host.decode(host.until(room.EventGameMasterView), &gm)
	require.Len(t, gm.Players, 6)
	assert.True(t, gm.Players[0].IsHost)

	hostView, err := env.tokens.Lookup(context.Background(), gm.Token)
	require.NoError(t, err)
	assert.True(t, hostView.IsGameMaster)
	assert.Equal(t, code, hostView.RoomCode)

	wolves := 0
	for _, p := range players {
		var ra room.RoleAssignedPayload
		p.decode(p.until(room.EventRoleAssigned), &ra)
		require.NotEmpty(t, ra.Token)

		v, err := env.tokens.Lookup(context.Background(), ra.Token)
		require.NoError(t, err)
		require.NotNil(t, v.Role)
		assert.False(t, v.IsGameMaster)
		if v.Role.IsWerewolf() {
			wolves++
			assert.NotNil(t, v.BluffRole)
		}
		p.until(room.EventGameStarting)
	}
	assert.Equal(t, 2, wolves)
	host.until(room.EventGameStarting)

	// late joiners are turned away
	late := env.dial(t)
	ack = late.request(TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: "Late"})
	assert.False(t, ack.Success)
	assert.Equal(t, room.ErrGameAlreadyStarted.Error(), ack.Error)

	info := late.request(TypeGetRoomInfo, code)
	require.True(t, info.Success)
	require.NotNil(t, info.GameStarted)
	assert.True(t, *info.GameStarted)
}

func TestWS_RequestErrors(t *testing.T) {
	env := newTestEnv(t, Config{})
	host := env.dial(t)

	ack := host.request(TypeJoinRoom, JoinRoomPayload{RoomCode: "ZZZZ", PlayerName: "Bob"})
	assert.False(t, ack.Success)
	assert.Equal(t, room.ErrRoomNotFound.Error(), ack.Error)

	ack = host.request(TypeCreateRoom, "   ")
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Error, room.ErrInvalidName.Error())

	ack = host.request(TypeCreateRoom, map[string]string{"playerName": "Host"})
	require.True(t, ack.Success, ack.Error)
	code := ack.RoomCode

	ack = host.request(TypeStartGame, code)
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Error, room.ErrTooFewPlayers.Error())

	other := env.dial(t)
	require.True(t, other.request(TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: "Eve"}).Success)
	ack = other.request(TypeStartGame, code)
	assert.False(t, ack.Success)
	assert.Equal(t, room.ErrNotHost.Error(), ack.Error)

	ack = host.request(TypeStartGame, 42)
	assert.False(t, ack.Success)
	assert.Equal(t, errBadPayload.Error(), ack.Error)
}

func TestWS_MalformedMessages(t *testing.T) {
	env := newTestEnv(t, Config{})
	c := env.dial(t)

	require.NoError(t, c.ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var e ErrorPayload
	c.decode(c.until(TypeError), &e)
	assert.Equal(t, "bad_json", e.Code)

	ref := c.send("dance", nil)
	got := c.until(TypeError)
	c.decode(got, &e)
	assert.Equal(t, "unknown_type", e.Code)
	require.NotNil(t, got.Ref)
	assert.Equal(t, ref, *got.Ref)
}

func TestWS_RateLimited(t *testing.T) {
	env := newTestEnv(t, Config{RateLimit: 0.001, RateBurst: 1})
	c := env.dial(t)

	c.send(TypeGetRoomInfo, "ABCD")
	c.send(TypeGetRoomInfo, "ABCD")

	var e ErrorPayload
	c.decode(c.until(TypeError), &e)
	assert.Equal(t, "rate_limited", e.Code)
}

func TestWS_DisconnectLeavesRoom(t *testing.T) {
	env := newTestEnv(t, Config{})
	host := env.dial(t)
	code := host.request(TypeCreateRoom, "Host").RoomCode

	guest := env.dial(t)
	require.True(t, guest.request(TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: "Guest"}).Success)
	host.until(room.EventPlayerJoined)

	require.NoError(t, guest.ws.Close())

	var left room.PlayerLeftPayload
	host.decode(host.until(room.EventPlayerLeft), &left)
	assert.Equal(t, "Guest", left.LeftPlayer)
	assert.Len(t, left.Players, 1)

	require.NoError(t, host.ws.Close())
	require.Eventually(t, func() bool { return env.rooms.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWS_LeaveRoomMigratesHost(t *testing.T) {
	env := newTestEnv(t, Config{})
	host := env.dial(t)
	code := host.request(TypeCreateRoom, "Host").RoomCode

	guest := env.dial(t)
	require.True(t, guest.request(TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: "Guest"}).Success)

	require.True(t, host.request(TypeLeaveRoom, nil).Success)

	var left room.PlayerLeftPayload
	guest.decode(guest.until(room.EventPlayerLeft), &left)
	require.Len(t, left.Players, 1)
	assert.True(t, left.Players[0].IsHost)
	assert.Equal(t, guest.id, left.Players[0].ConnID)
}

func TestWS_OriginCheck(t *testing.T) {
	env := newTestEnv(t, Config{AllowedOrigins: []string{"https://game.example"}})
	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"

	hdr := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)

	hdr = map[string][]string{"Origin": {"https://game.example"}}
	ws, _, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	_ = ws.Close()
}

func TestWS_SilentPeerIsDropped(t *testing.T) {
	env := newTestEnv(t, Config{PingInterval: 20 * time.Millisecond, PongWait: 150 * time.Millisecond})

	live := env.dial(t)
	liveCode := live.request(TypeCreateRoom, "Awake").RoomCode
	require.NoError(t, live.ws.SetReadDeadline(time.Time{}))
	go func() {
		// reading lets the client answer pings
		for {
			if _, _, err := live.ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	silent := env.dial(t)
	silentCode := silent.request(TypeCreateRoom, "Asleep").RoomCode
	require.Equal(t, 2, env.rooms.Count())

	require.Eventually(t, func() bool {
		_, err := env.rooms.Info(silentCode)
		return errors.Is(err, room.ErrRoomNotFound)
	}, 2*time.Second, 10*time.Millisecond)

	_, err := env.rooms.Info(liveCode)
	assert.NoError(t, err, "a peer answering pings keeps its room")
}

func TestWS_RoomInfoResendsOwnToken(t *testing.T) {
	env := newTestEnv(t, Config{})
	host := env.dial(t)
	code := host.request(TypeCreateRoom, "Host").RoomCode

	players := make([]*wsClient, 5)
	for i := range players {
		players[i] = env.dial(t)
		ack := players[i].request(TypeJoinRoom, JoinRoomPayload{RoomCode: code, PlayerName: fmt.Sprintf("P%d", i)})
		require.True(t, ack.Success, ack.Error)
	}

	info := players[0].request(TypeGetRoomInfo, code)
	require.True(t, info.Success)
	assert.Empty(t, info.Token)

	require.True(t, host.request(TypeStartGame, code).Success)

	var ra room.RoleAssignedPayload
	players[0].decode(players[0].until(room.EventRoleAssigned), &ra)

	info = players[0].request(TypeGetRoomInfo, code)
	require.True(t, info.Success)
	assert.Equal(t, ra.Token, info.Token)

	var gm room.GameMasterViewPayload
	host.decode(host.until(room.EventGameMasterView), &gm)
	assert.Equal(t, gm.Token, host.request(TypeGetRoomInfo, code).Token)

	stranger := env.dial(t)
	info = stranger.request(TypeGetRoomInfo, code)
	require.True(t, info.Success)
	assert.Empty(t, info.Token)
}
