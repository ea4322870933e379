package room

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"example.com/loupgarou/internal/assign"
	"example.com/loupgarou/internal/token"
	"github.com/google/uuid"
)

const (
	// room sizes include the host, who is not dealt a role
	MinRoomSize = assign.MinSeats + 1
	MaxRoomSize = assign.MaxSeats + 1

	MaxNameLength = 32

	DefaultRetention = 4 * time.Hour
)

type Options struct {
	Retention time.Duration
	Codes     CodeGenerator
	Rand      func() *rand.Rand
	Now       func() time.Time
	Log       *slog.Logger
}

// Registry is the directory of live rooms. Every operation runs under one
// lock, so operations never interleave.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	conns map[string]string // conn id -> room code

	tokens *token.Issuer
	notify Notifier

	retention time.Duration
	codes     CodeGenerator
	rng       func() *rand.Rand
	now       func() time.Time
	log       *slog.Logger
}

func NewRegistry(tokens *token.Issuer, notify Notifier, opts Options) *Registry {
	r := &Registry{
		rooms:     make(map[string]*Room),
		conns:     make(map[string]string),
		tokens:    tokens,
		notify:    notify,
		retention: opts.Retention,
		codes:     opts.Codes,
		rng:       opts.Rand,
		now:       opts.Now,
		log:       opts.Log,
	}
	if r.retention <= 0 {
		r.retention = DefaultRetention
	}
	if r.codes == nil {
		r.codes = RandomCode
	}
	if r.rng == nil {
		r.rng = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// StartResult describes a successful deal.
type StartResult struct {
	Code   string
	Result *assign.Result
	Tokens token.Tokens
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: at most %d characters", ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// Create opens a room with connID as host and first player.
func (r *Registry) Create(ctx context.Context, connID, name string) (Snapshot, error) {
	name, err := cleanName(name)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCodeLocked()
	if err != nil {
		return Snapshot{}, fmt.Errorf("generate room code: %w", err)
	}

	r.leaveLocked(ctx, connID)

	now := r.now()
	rm := newRoom(uuid.NewString(), code, connID, now)
	rm.add(connID, name, now)
	r.rooms[code] = rm
	r.conns[connID] = code

	r.log.Info("room created", "room", code, "host", name)
	return rm.snapshot(), nil
}

func (r *Registry) uniqueCodeLocked() (string, error) {
	for {
		code, err := r.codes()
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
}

// Join seats connID in an existing room that has not started.
func (r *Registry) Join(ctx context.Context, code, connID, name string) (Snapshot, error) {
	name, err := cleanName(name)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.lookupLocked(code)
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	if r.conns[connID] == rm.code {
		return rm.snapshot(), nil
	}
	if rm.started {
		return Snapshot{}, ErrGameAlreadyStarted
	}
	if rm.nameTaken(name) {
		return Snapshot{}, ErrNameTaken
	}

	r.leaveLocked(ctx, connID)

	rm.add(connID, name, r.now())
	r.conns[connID] = rm.code

	r.log.Info("player joined", "room", rm.code, "player", name, "size", len(rm.players))
	r.notify.Notify(rm.connIDs(), EventPlayerJoined, PlayerJoinedPayload{
		Players:   rm.list(),
		NewPlayer: name,
	})
	return rm.snapshot(), nil
}

// Leave removes connID from its room, if any. It is called on disconnect.
func (r *Registry) Leave(ctx context.Context, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(ctx, connID)
}

func (r *Registry) leaveLocked(ctx context.Context, connID string) {
	code, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)

	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	p, ok := rm.remove(connID)
	if !ok {
		return
	}
	r.log.Info("player left", "room", code, "player", p.Name, "size", len(rm.players))

	if rm.empty() {
		r.destroyLocked(ctx, rm, "empty")
		return
	}

	r.notify.Notify(rm.connIDs(), EventPlayerLeft, PlayerLeftPayload{
		Players:    rm.list(),
		LeftPlayer: p.Name,
	})
}

func (r *Registry) destroyLocked(ctx context.Context, rm *Room, reason string) {
	delete(r.rooms, rm.code)
	for id := range rm.players {
		if r.conns[id] == rm.code {
			delete(r.conns, id)
		}
	}
	if rm.started {
		if err := r.tokens.Evict(ctx, rm.id); err != nil {
			r.log.Error("evict tokens", "room", rm.code, "err", err)
		}
	}
	r.log.Info("room deleted", "room", rm.code, "reason", reason)
}

// Start deals roles for the room and pushes every participant its token.
func (r *Registry) Start(ctx context.Context, code, requester string) (StartResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.lookupLocked(code)
	if !ok {
		return StartResult{}, ErrRoomNotFound
	}
	if requester != rm.hostConnID {
		return StartResult{}, ErrNotHost
	}
	if rm.started {
		return StartResult{}, ErrGameAlreadyStarted
	}
	if n := len(rm.players); n < MinRoomSize {
		return StartResult{}, fmt.Errorf("%w: %d in room including the game master, need at least %d", ErrTooFewPlayers, n, MinRoomSize)
	} else if n > MaxRoomSize {
		return StartResult{}, fmt.Errorf("%w: %d in room including the game master, at most %d", ErrTooManyPlayers, n, MaxRoomSize)
	}

	res, err := assign.Assign(r.rng(), rm.seats())
	if err != nil {
		return StartResult{}, err
	}

	host := rm.host()
	toks, err := r.tokens.Mint(ctx, token.RoomRef{ID: rm.id, Code: rm.code}, token.Participant{ConnID: host.ConnID, Name: host.Name}, res)
	if err != nil {
		return StartResult{}, err
	}

	rm.started = true
	rm.tokens = toks

	r.notify.Notify([]string{host.ConnID}, EventGameMasterView, GameMasterViewPayload{
		Players: toks.HostView.Players,
		Token:   toks.Host,
	})
	for _, s := range res.Seats {
		r.notify.Notify([]string{s.ConnID}, EventRoleAssigned, RoleAssignedPayload{Token: toks.Players[s.ConnID]})
	}
	r.notify.Notify(rm.connIDs(), EventGameStarting, GameStartingPayload{Players: rm.list()})

	r.log.Info("game started", "room", rm.code, "players", len(rm.players), "werewolves", assign.WerewolfCount(len(res.Seats)))
	return StartResult{Code: rm.code, Result: res, Tokens: toks}, nil
}

// Info returns a snapshot of the room.
func (r *Registry) Info(code string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.lookupLocked(code)
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	return rm.snapshot(), nil
}

// TokenOf returns the role token connID received when the room started.
func (r *Registry) TokenOf(code, connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.lookupLocked(code)
	if !ok {
		return "", false
	}
	return rm.tokenOf(connID)
}

func (r *Registry) lookupLocked(code string) (*Room, bool) {
	code = normalizeCode(code)
	if !ValidCode(code) {
		return nil, false
	}
	rm, ok := r.rooms[code]
	return rm, ok
}

// codeOf returns the code of the room holding connID.
func (r *Registry) codeOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.conns[connID]
	return code, ok
}

// Count is the number of live rooms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Sweep deletes rooms older than the retention window, occupied or not.
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rm := range r.rooms {
		if now.Sub(rm.createdAt) > r.retention {
			r.destroyLocked(ctx, rm, "timeout")
			n++
		}
	}
	return n
}
