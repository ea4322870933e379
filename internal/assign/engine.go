package assign

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"example.com/loupgarou/internal/roles"
)

const (
	MinSeats = 5
	MaxSeats = 12
)

var ErrInvalidRoster = errors.New("invalid roster size")

var (
	// seat counts that reserve a slot for the Angel
	angelCounts = []int{6, 8, 9, 11, 12}
	// 15 cannot be reached under MaxSeats; kept so the rule reads as the game defines it
	drunkCounts = []int{9, 12, 15}
)

// Seat is one non-host player taking part in the deal.
type Seat struct {
	ConnID string
	Name   string
}

type PuzzleKind string

const (
	PuzzleRenard      PuzzleKind = "renard"
	PuzzlePetiteFille PuzzleKind = "petite-fille"
)

// Puzzle shows a role and two player names, one of which holds it.
// Answer is empty for fabricated puzzles handed to werewolves.
type Puzzle struct {
	Kind   PuzzleKind
	Role   roles.Role
	Names  [2]string
	Answer string
}

// Result is the outcome of one deal. It is never mutated after Assign returns.
type Result struct {
	Seats        []Seat
	Roles        map[string]roles.Role // conn id -> role
	Drunk        string
	Renard       *Puzzle
	PetiteFille  *Puzzle
	Bluffs       map[string]roles.Role // werewolf conn id -> villager role not in play
	BluffPuzzles map[string]Puzzle     // werewolf conn id -> fabricated puzzle
	VoyanteDecoy string
}

// WerewolfCount is the number of werewolf roles dealt for n seats.
func WerewolfCount(n int) int {
	if n >= 10 {
		return 3
	}
	return 2
}

// AngelInPlay reports whether a deal for n seats includes the Angel.
func AngelInPlay(n int) bool { return slices.Contains(angelCounts, n) }

// HasDrunk reports whether a deal for n seats marks a drunk villager.
func HasDrunk(n int) bool { return slices.Contains(drunkCounts, n) }

// Assign deals roles to seats, in seat order.
func Assign(rng *rand.Rand, seats []Seat) (*Result, error) {
	n := len(seats)
	if n < MinSeats || n > MaxSeats {
		return nil, fmt.Errorf("%w: %d players, want %d-%d", ErrInvalidRoster, n, MinSeats, MaxSeats)
	}
	// puzzles identify players by name only
	if name, ok := duplicateName(seats); ok {
		return nil, fmt.Errorf("%w: name %q used twice", ErrInvalidRoster, name)
	}

	pool := buildPool(rng, n)
	pool = Shuffle(rng, pool)

	res := &Result{
		Seats:        append([]Seat(nil), seats...),
		Roles:        make(map[string]roles.Role, n),
		Bluffs:       make(map[string]roles.Role),
		BluffPuzzles: make(map[string]Puzzle),
	}
	for i, s := range seats {
		res.Roles[s.ConnID] = pool[i]
	}

	d := deal{rng: rng, res: res}
	d.pickDrunk()
	d.renardPuzzle()
	d.petiteFillePuzzle()
	d.bluffRoles(pool)
	d.bluffPuzzles()
	d.voyanteDecoy()

	return res, nil
}

func duplicateName(seats []Seat) (string, bool) {
	seen := make(map[string]bool, len(seats))
	for _, s := range seats {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return s.Name, true
		}
		seen[key] = true
	}
	return "", false
}

func buildPool(rng *rand.Rand, n int) []roles.Role {
	pool := make([]roles.Role, 0, n)
	pool = append(pool, roles.MustGet(roles.LoupGarouUltime))

	lesser := []roles.Role{roles.MustGet(roles.InfectLoup), roles.MustGet(roles.GrandLoup)}
	pool = append(pool, Draw(rng, lesser, WerewolfCount(n)-1)...)

	if AngelInPlay(n) {
		pool = append(pool, roles.MustGet(roles.Ange))
	}

	pool = append(pool, Draw(rng, villagersWithoutAngel(), n-len(pool))...)
	return pool
}

func villagersWithoutAngel() []roles.Role {
	var out []roles.Role
	for _, r := range roles.ByTeam(roles.Villagers) {
		if r.ID != roles.Ange {
			out = append(out, r)
		}
	}
	return out
}

type deal struct {
	rng *rand.Rand
	res *Result
}

func (d *deal) holder(roleID string) (Seat, bool) {
	for _, s := range d.res.Seats {
		if d.res.Roles[s.ConnID].ID == roleID {
			return s, true
		}
	}
	return Seat{}, false
}

func (d *deal) seatsWhere(keep func(Seat, roles.Role) bool) []Seat {
	var out []Seat
	for _, s := range d.res.Seats {
		if keep(s, d.res.Roles[s.ConnID]) {
			out = append(out, s)
		}
	}
	return out
}

func (d *deal) pickDrunk() {
	if !HasDrunk(len(d.res.Seats)) {
		return
	}
	villagers := d.seatsWhere(func(_ Seat, r roles.Role) bool { return r.Team == roles.Villagers })
	if s, ok := Pick(d.rng, villagers); ok {
		d.res.Drunk = s.ConnID
	}
}

// pair shuffles the true answer with a decoy name.
func (d *deal) pair(a, b string) [2]string {
	p := Shuffle(d.rng, []string{a, b})
	return [2]string{p[0], p[1]}
}

func (d *deal) renardPuzzle() {
	renard, ok := d.holder(roles.Renard)
	if !ok {
		return
	}
	wolves := d.seatsWhere(func(_ Seat, r roles.Role) bool {
		return r.IsWerewolf() && r.ID != roles.LoupGarouUltime
	})
	wolf, ok := Pick(d.rng, wolves)
	if !ok {
		return
	}
	// the decoy must not be a werewolf, or the puzzle would have two answers
	others := d.seatsWhere(func(s Seat, r roles.Role) bool {
		return s.ConnID != renard.ConnID && !r.IsWerewolf()
	})
	other, ok := Pick(d.rng, others)
	if !ok {
		return
	}
	d.res.Renard = &Puzzle{
		Kind:   PuzzleRenard,
		Role:   d.res.Roles[wolf.ConnID],
		Names:  d.pair(wolf.Name, other.Name),
		Answer: wolf.ConnID,
	}
}

func (d *deal) petiteFillePuzzle() {
	pf, ok := d.holder(roles.PetiteFille)
	if !ok {
		return
	}
	villagers := d.seatsWhere(func(s Seat, r roles.Role) bool {
		return r.Team == roles.Villagers && s.ConnID != pf.ConnID
	})
	target, ok := Pick(d.rng, villagers)
	if !ok {
		return
	}
	others := d.seatsWhere(func(s Seat, _ roles.Role) bool {
		return s.ConnID != pf.ConnID && s.ConnID != target.ConnID
	})
	other, ok := Pick(d.rng, others)
	if !ok {
		return
	}
	d.res.PetiteFille = &Puzzle{
		Kind:   PuzzlePetiteFille,
		Role:   d.res.Roles[target.ConnID],
		Names:  d.pair(target.Name, other.Name),
		Answer: target.ConnID,
	}
}

// bluffRoles hands each werewolf a villager role that is not in play. The
// Angel is never offered: its presence follows from the player count.
func (d *deal) bluffRoles(pool []roles.Role) {
	var unused []roles.Role
	for _, r := range villagersWithoutAngel() {
		if !slices.ContainsFunc(pool, func(p roles.Role) bool { return p.ID == r.ID }) {
			unused = append(unused, r)
		}
	}
	unused = Shuffle(d.rng, unused)

	for _, s := range d.res.Seats {
		if !d.res.Roles[s.ConnID].IsWerewolf() {
			continue
		}
		if len(unused) == 0 {
			return
		}
		d.res.Bluffs[s.ConnID] = unused[0]
		unused = unused[1:]
	}
}

func (d *deal) bluffPuzzles() {
	for _, s := range d.res.Seats {
		bluff, ok := d.res.Bluffs[s.ConnID]
		if !ok {
			continue
		}

		var p Puzzle
		switch bluff.ID {
		case roles.Renard:
			lesser := []roles.Role{roles.MustGet(roles.InfectLoup), roles.MustGet(roles.GrandLoup)}
			p = Puzzle{Kind: PuzzleRenard, Role: lesser[d.rng.IntN(len(lesser))]}
		case roles.PetiteFille:
			villagers := d.seatsWhere(func(_ Seat, r roles.Role) bool { return r.Team == roles.Villagers })
			v, ok := Pick(d.rng, villagers)
			if !ok {
				continue
			}
			p = Puzzle{Kind: PuzzlePetiteFille, Role: d.res.Roles[v.ConnID]}
		default:
			continue
		}

		self := s.ConnID
		others := d.seatsWhere(func(o Seat, _ roles.Role) bool { return o.ConnID != self })
		names := Draw(d.rng, others, 2)
		if len(names) < 2 {
			continue
		}
		p.Names = [2]string{names[0].Name, names[1].Name}
		d.res.BluffPuzzles[s.ConnID] = p
	}
}

func (d *deal) voyanteDecoy() {
	voyante, ok := d.holder(roles.Voyante)
	if !ok {
		return
	}
	candidates := d.seatsWhere(func(s Seat, r roles.Role) bool {
		return r.Team == roles.Villagers && r.ID != roles.Ange && s.ConnID != voyante.ConnID
	})
	if s, ok := Pick(d.rng, candidates); ok {
		d.res.VoyanteDecoy = s.ConnID
	}
}

// Name returns the display name seated at connID.
func (r *Result) Name(connID string) string {
	for _, s := range r.Seats {
		if s.ConnID == connID {
			return s.Name
		}
	}
	return ""
}
