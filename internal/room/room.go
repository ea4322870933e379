package room

import (
	"strings"
	"time"

	"example.com/loupgarou/internal/assign"
	"example.com/loupgarou/internal/token"
)

// Player is one connection seated in a room.
type Player struct {
	ConnID   string    `json:"socketId"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is mutated only by the Registry, under its lock.
type Room struct {
	id         string // uuid; codes are recycled
	code       string
	hostConnID string
	players    map[string]*Player
	order      []string // conn ids by join time
	started    bool
	createdAt  time.Time

	tokens token.Tokens
}

func newRoom(id, code, hostConnID string, now time.Time) *Room {
	return &Room{
		id:         id,
		code:       code,
		hostConnID: hostConnID,
		players:    make(map[string]*Player),
		createdAt:  now,
	}
}

func (r *Room) add(connID, name string, now time.Time) {
	r.players[connID] = &Player{
		ConnID:   connID,
		Name:     name,
		IsHost:   connID == r.hostConnID,
		JoinedAt: now,
	}
	r.order = append(r.order, connID)
}

// remove drops connID and hands the host flag to the earliest remaining joiner.
func (r *Room) remove(connID string) (*Player, bool) {
	p, ok := r.players[connID]
	if !ok {
		return nil, false
	}
	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if connID == r.hostConnID && len(r.order) > 0 {
		next := r.players[r.order[0]]
		next.IsHost = true
		r.hostConnID = next.ConnID
	}
	return p, true
}

// nameTaken compares names case-insensitively.
func (r *Room) nameTaken(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// tokenOf returns the token minted for connID once the game has started.
func (r *Room) tokenOf(connID string) (string, bool) {
	if !r.started {
		return "", false
	}
	if connID == r.hostConnID {
		return r.tokens.Host, r.tokens.Host != ""
	}
	tok, ok := r.tokens.Players[connID]
	return tok, ok
}

func (r *Room) empty() bool { return len(r.players) == 0 }

func (r *Room) host() *Player { return r.players[r.hostConnID] }

// list returns copies of the players in join order.
func (r *Room) list() []Player {
	out := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.players[id])
	}
	return out
}

func (r *Room) connIDs() []string {
	return append([]string(nil), r.order...)
}

// seats is the non-host roster handed to the assignment engine.
func (r *Room) seats() []assign.Seat {
	out := make([]assign.Seat, 0, len(r.order))
	for _, id := range r.order {
		if id == r.hostConnID {
			continue
		}
		out = append(out, assign.Seat{ConnID: id, Name: r.players[id].Name})
	}
	return out
}

func (r *Room) snapshot() Snapshot {
	return Snapshot{
		Code:        r.code,
		HostConnID:  r.hostConnID,
		Players:     r.list(),
		GameStarted: r.started,
		CreatedAt:   r.createdAt,
	}
}

// Snapshot is a read-only copy of a room handed to callers.
type Snapshot struct {
	Code        string
	HostConnID  string
	Players     []Player
	GameStarted bool
	CreatedAt   time.Time
}
