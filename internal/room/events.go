package room

import "example.com/loupgarou/internal/token"

// Outbound event names.
const (
	EventPlayerJoined   = "player-joined"
	EventPlayerLeft     = "player-left"
	EventGameStarting   = "game-starting"
	EventRoleAssigned   = "role-assigned"
	EventGameMasterView = "game-master-view"
)

// Notifier delivers events to connections. Implementations must not block
// and must not call back into the Registry.
type Notifier interface {
	Notify(connIDs []string, event string, payload any)
}

type PlayerJoinedPayload struct {
	Players   []Player `json:"players"`
	NewPlayer string   `json:"newPlayer"`
}

type PlayerLeftPayload struct {
	Players    []Player `json:"players"`
	LeftPlayer string   `json:"leftPlayer"`
}

type GameStartingPayload struct {
	Players []Player `json:"players"`
}

type RoleAssignedPayload struct {
	Token string `json:"token"`
}

type GameMasterViewPayload struct {
	Players []token.HostRow `json:"players"`
	Token   string          `json:"token"`
}
