package game

import (
	"slices"

	"github.com/finnvold/lineup-bingo/internal/bingo"
)

// PredictionSize is the required number of picks in a prediction.
const PredictionSize = 12

// ToggleResult describes an applied cell toggle. NewLines > PrevLines
// means the toggle completed at least one new bingo line.
type ToggleResult struct {
	Member    string
	Selected  []int
	PrevLines int
	NewLines  int
}

// ToggleCell flips one cell for a member. Unknown members (including
// ex-roster entries still present in storage) and out-of-range indices are
// rejected. The second return is false when nothing was applied; rejected
// mutations must produce no persist and no broadcast.
func (s *State) ToggleCell(member string, index int) (ToggleResult, bool) {
	bs, ok := s.Boards[member]
	if !ok || !s.onRoster(member) {
		return ToggleResult{}, false
	}
	if index < 0 || index >= len(bs.Board) {
		return ToggleResult{}, false
	}

	prev := bingo.CountLines(bs.Selected)
	if i := slices.Index(bs.Selected, index); i >= 0 {
		bs.Selected = slices.Delete(bs.Selected, i, i+1)
	} else {
		bs.Selected = append(bs.Selected, index)
		slices.Sort(bs.Selected)
	}
	s.Revision++

	// The result crosses goroutine boundaries on its way to transport
	// writers, so it must not alias the live selection slice.
	return ToggleResult{
		Member:    member,
		Selected:  slices.Clone(bs.Selected),
		PrevLines: prev,
		NewLines:  bingo.CountLines(bs.Selected),
	}, true
}

// SubmitPrediction stores a member's one-time prediction. Rejected when
// the member is unknown, the pick count is wrong, a prediction already
// exists, or the lineup has been revealed. Picks are stored verbatim;
// entries outside the group pool simply never score.
func (s *State) SubmitPrediction(member string, picks []string) bool {
	bs, ok := s.Boards[member]
	if !ok || !s.onRoster(member) {
		return false
	}
	if len(picks) != PredictionSize || len(bs.Prediction) > 0 || s.Revealed() {
		return false
	}
	bs.Prediction = slices.Clone(picks)
	s.Revision++
	return true
}

// Reveal fixes the final lineup. Empty lineups and repeat calls are
// rejected; once set the lineup never changes for the process lifetime.
func (s *State) Reveal(lineup []string) bool {
	if len(lineup) == 0 || s.Revealed() {
		return false
	}
	s.FinalLineup = slices.Clone(lineup)
	s.Revision++
	return true
}

// Score counts how many distinct predicted entries appear in the lineup.
// Both sides are treated as sets, so duplicated picks cannot double-count.
func Score(prediction, lineup []string) int {
	revealed := make(map[string]bool, len(lineup))
	for _, name := range lineup {
		revealed[name] = true
	}
	counted := make(map[string]bool, len(prediction))
	score := 0
	for _, pick := range prediction {
		if revealed[pick] && !counted[pick] {
			counted[pick] = true
			score++
		}
	}
	return score
}
