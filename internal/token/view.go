package token

import (
	"example.com/loupgarou/internal/assign"
	"example.com/loupgarou/internal/roles"
)

// View is what a token resolves to. Players is only set for the game master.
type View struct {
	IsGameMaster     bool        `json:"isGameMaster"`
	RoomCode         string      `json:"roomCode"`
	PlayerName       string      `json:"playerName"`
	Role             *roles.Role `json:"role,omitempty"`
	BluffRole        *roles.Role `json:"bluffRole,omitempty"`
	BluffSpecialInfo *BluffInfo  `json:"bluffSpecialInfo,omitempty"`
	Players          []HostRow   `json:"players,omitempty"`
}

// HostRow is one line of the game master's table.
type HostRow struct {
	PlayerName         string              `json:"playerName"`
	SocketID           string              `json:"socketId"`
	IsHost             bool                `json:"isHost"`
	Token              string              `json:"token"`
	Role               roles.Role          `json:"role"`
	IsDrunk            bool                `json:"isDrunk"`
	RenardDetails      *RenardDetails      `json:"renardDetails,omitempty"`
	PetiteFilleDetails *PetiteFilleDetails `json:"petiteFilleDetails,omitempty"`
	BluffRole          *roles.Role         `json:"bluffRole,omitempty"`
	BluffSpecialInfo   *BluffInfo          `json:"bluffSpecialInfo,omitempty"`
	VoyanteDecoy       string              `json:"voyanteDecoy,omitempty"`
}

type RenardDetails struct {
	WerewolfRole   roles.Role `json:"werewolfRole"`
	TwoPlayerNames []string   `json:"twoPlayerNames"`
}

type PetiteFilleDetails struct {
	VillagerRole   roles.Role `json:"villagerRole"`
	TwoPlayerNames []string   `json:"twoPlayerNames"`
}

// BluffInfo is a fabricated puzzle a werewolf can recite.
type BluffInfo struct {
	Type           assign.PuzzleKind `json:"type"`
	Role           roles.Role        `json:"role"`
	TwoPlayerNames []string          `json:"twoPlayerNames"`
}

// Participant is a room member receiving a token.
type Participant struct {
	ConnID string
	Name   string
}

func playerView(roomCode string, s assign.Seat, res *assign.Result) View {
	role := res.Roles[s.ConnID]
	v := View{RoomCode: roomCode, PlayerName: s.Name, Role: &role}
	if b, ok := res.Bluffs[s.ConnID]; ok {
		v.BluffRole = &b
	}
	if p, ok := res.BluffPuzzles[s.ConnID]; ok {
		v.BluffSpecialInfo = bluffInfo(p)
	}
	return v
}

func hostView(roomCode string, host Participant, hostToken string, res *assign.Result, tokens map[string]string) View {
	rows := make([]HostRow, 0, len(res.Seats)+1)
	rows = append(rows, HostRow{
		PlayerName: host.Name,
		SocketID:   host.ConnID,
		IsHost:     true,
		Token:      hostToken,
		Role:       roles.GameMaster,
	})

	for _, s := range res.Seats {
		role := res.Roles[s.ConnID]
		row := HostRow{
			PlayerName: s.Name,
			SocketID:   s.ConnID,
			Token:      tokens[s.ConnID],
			Role:       role,
			IsDrunk:    res.Drunk == s.ConnID,
		}

		switch role.ID {
		case roles.Renard:
			if p := res.Renard; p != nil {
				row.RenardDetails = &RenardDetails{WerewolfRole: p.Role, TwoPlayerNames: p.Names[:]}
			}
		case roles.PetiteFille:
			if p := res.PetiteFille; p != nil {
				row.PetiteFilleDetails = &PetiteFilleDetails{VillagerRole: p.Role, TwoPlayerNames: p.Names[:]}
			}
		case roles.Voyante:
			if res.VoyanteDecoy != "" {
				row.VoyanteDecoy = res.Name(res.VoyanteDecoy)
			}
		}

		if b, ok := res.Bluffs[s.ConnID]; ok {
			row.BluffRole = &b
		}
		if p, ok := res.BluffPuzzles[s.ConnID]; ok {
			row.BluffSpecialInfo = bluffInfo(p)
		}
		rows = append(rows, row)
	}

	return View{
		IsGameMaster: true,
		RoomCode:     roomCode,
		PlayerName:   host.Name,
		Players:      rows,
	}
}

func bluffInfo(p assign.Puzzle) *BluffInfo {
	return &BluffInfo{Type: p.Kind, Role: p.Role, TwoPlayerNames: []string{p.Names[0], p.Names[1]}}
}
