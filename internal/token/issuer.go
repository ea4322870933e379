package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"example.com/loupgarou/internal/assign"
)

var ErrNotFound = errors.New("token not found")

// Store keeps token views for the lifetime of their room. Rooms are keyed by
// RoomRef.ID; codes are recycled and may clash between instances.
type Store interface {
	Put(ctx context.Context, roomID string, views map[string]View) error
	Get(ctx context.Context, token string) (View, bool, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// RoomRef names the room tokens are minted for.
type RoomRef struct {
	ID   string
	Code string
}

// Tokens are the bearer strings minted for one started room.
type Tokens struct {
	Host     string
	HostView View
	Players  map[string]string // conn id -> token
}

type Issuer struct {
	store    Store
	newToken func() (string, error)
}

func NewIssuer(store Store) *Issuer {
	return &Issuer{store: store, newToken: randomToken}
}

// Mint issues one token per seat in res plus one for the host.
func (i *Issuer) Mint(ctx context.Context, room RoomRef, host Participant, res *assign.Result) (Tokens, error) {
	t := Tokens{Players: make(map[string]string, len(res.Seats))}
	views := make(map[string]View, len(res.Seats)+1)

	for _, s := range res.Seats {
		tok, err := i.newToken()
		if err != nil {
			return Tokens{}, fmt.Errorf("generate token: %w", err)
		}
		t.Players[s.ConnID] = tok
		views[tok] = playerView(room.Code, s, res)
	}

	hostTok, err := i.newToken()
	if err != nil {
		return Tokens{}, fmt.Errorf("generate token: %w", err)
	}
	t.Host = hostTok
	t.HostView = hostView(room.Code, host, hostTok, res, t.Players)
	views[hostTok] = t.HostView

	if err := i.store.Put(ctx, room.ID, views); err != nil {
		return Tokens{}, fmt.Errorf("store tokens: %w", err)
	}
	return t, nil
}

func (i *Issuer) Lookup(ctx context.Context, token string) (View, error) {
	if token == "" {
		return View{}, ErrNotFound
	}
	v, ok, err := i.store.Get(ctx, token)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return View{}, ErrNotFound
	}
	return v, nil
}

// Evict drops every token minted for the room with the given id.
func (i *Issuer) Evict(ctx context.Context, roomID string) error {
	return i.store.DeleteRoom(ctx, roomID)
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
