// Package game holds the authoritative shared game state and the rules
// for mutating and viewing it. The room loop is the only writer; nothing
// in this package locks.
package game

import (
	"math/rand"
	"slices"

	"github.com/finnvold/lineup-bingo/internal/board"
)

// BoardState is one member's progress: their generated board, the cells
// they have toggled and their one-time prediction.
type BoardState struct {
	Board      []string `json:"board"`
	Selected   []int    `json:"selected"`
	Prediction []string `json:"prediction,omitempty"`
}

// Snapshot is the durable form of the game: everything that must survive
// a restart. The roster and pools are re-read from the list files on every
// boot, so they are not part of it.
type Snapshot struct {
	Revision    uint64                 `json:"revision"`
	FinalLineup []string               `json:"final_lineup,omitempty"`
	Boards      map[string]*BoardState `json:"boards"`
}

// State is the full in-memory game. Boards may hold entries for members
// dropped from the roster since the snapshot was written; those are kept
// so they persist, but views never include them.
type State struct {
	Members     []string
	Groups      []string
	Terms       []string
	FinalLineup []string
	Boards      map[string]*BoardState
	Revision    uint64
}

// New merges a loaded snapshot with the current roster. Members present in
// the snapshot keep their saved state; new members get a freshly generated
// board with no selections and no prediction.
func New(members, groups, terms []string, snap *Snapshot, rng *rand.Rand) *State {
	s := &State{
		Members: members,
		Groups:  groups,
		Terms:   terms,
		Boards:  make(map[string]*BoardState),
	}
	if snap != nil {
		s.Revision = snap.Revision
		s.FinalLineup = snap.FinalLineup
		for name, bs := range snap.Boards {
			s.Boards[name] = bs
		}
	}
	for _, name := range members {
		if _, ok := s.Boards[name]; !ok {
			s.Boards[name] = &BoardState{
				Board:    board.Generate(terms, rng),
				Selected: []int{},
			}
		}
	}
	return s
}

// Snapshot returns the durable form of the current state.
func (s *State) Snapshot() *Snapshot {
	return &Snapshot{
		Revision:    s.Revision,
		FinalLineup: s.FinalLineup,
		Boards:      s.Boards,
	}
}

// Revealed reports whether the final lineup has been submitted.
func (s *State) Revealed() bool {
	return len(s.FinalLineup) > 0
}

func (s *State) onRoster(name string) bool {
	return slices.Contains(s.Members, name)
}
