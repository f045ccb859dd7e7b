package game

import (
	"slices"

	"github.com/finnvold/lineup-bingo/internal/bingo"
)

// MemberView is the client-facing slice of one member's state. Board
// progress is always visible; prediction contents depend on who is asking
// and whether the lineup has been revealed.
type MemberView struct {
	Board        []string `json:"board"`
	Selected     []int    `json:"selected"`
	BingoCount   int      `json:"bingoCount"`
	HasPredicted bool     `json:"hasPredicted"`
	Prediction   []string `json:"prediction,omitempty"`
	Score        *int     `json:"score,omitempty"`
}

// View is the full client-facing state, masked for one viewer.
type View struct {
	Members     []string              `json:"members"`
	Groups      []string              `json:"groups"`
	FinalLineup []string              `json:"finalLineup,omitempty"`
	Revision    uint64                `json:"revision"`
	Boards      map[string]MemberView `json:"boards"`
}

// Present derives the view for one viewer. Masking, in priority order:
// after reveal everyone sees every prediction plus its score; before
// reveal a member sees their own prediction in full and everyone else's
// only as a submitted/not-submitted flag. Only roster members appear.
func Present(s *State, viewer string) View {
	v := View{
		Members:     s.Members,
		Groups:      s.Groups,
		FinalLineup: s.FinalLineup,
		Revision:    s.Revision,
		Boards:      make(map[string]MemberView, len(s.Members)),
	}
	for _, name := range s.Members {
		bs, ok := s.Boards[name]
		if !ok {
			continue
		}
		// Views outlive the loop iteration that built them (they are
		// marshaled by transport writers), so the mutable selection
		// slice is cloned. Board and Prediction never change once set.
		mv := MemberView{
			Board:        bs.Board,
			Selected:     slices.Clone(bs.Selected),
			BingoCount:   bingo.CountLines(bs.Selected),
			HasPredicted: len(bs.Prediction) > 0,
		}
		switch {
		case s.Revealed():
			mv.Prediction = bs.Prediction
			score := Score(bs.Prediction, s.FinalLineup)
			mv.Score = &score
		case name == viewer:
			mv.Prediction = bs.Prediction
		}
		v.Boards[name] = mv
	}
	return v
}
