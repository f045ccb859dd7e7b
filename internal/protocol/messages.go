// Package protocol defines the JSON envelopes exchanged over the socket.
package protocol

import "github.com/finnvold/lineup-bingo/internal/game"

// Client -> server event types.
const (
	CmdJoin              = "join"
	CmdToggleCell        = "toggleCell"
	CmdSubmitPrediction  = "submitPrediction"
	CmdSubmitFinalLineup = "submitFinalLineup"
)

// Server -> client event types.
const (
	EvtInit              = "init"
	EvtUpdateState       = "updateState"
	EvtBingoAnnouncement = "bingoAnnouncement"
	EvtPredictionUpdate  = "predictionUpdate"
	EvtGameOver          = "gameOver"
)

// ClientMessage is the single envelope for everything a client sends;
// which fields matter depends on Type. Index is a pointer so a missing
// index is distinguishable from cell 0.
type ClientMessage struct {
	Type       string   `json:"type"`
	Name       string   `json:"name,omitempty"`
	MemberName string   `json:"memberName,omitempty"`
	Index      *int     `json:"index,omitempty"`
	Prediction []string `json:"prediction,omitempty"`
	Lineup     []string `json:"lineup,omitempty"`
}

// ServerMessage is the single envelope for everything the server sends.
// View is set on init (masked for the receiving viewer) and on gameOver
// (fully unmasked, identical for everyone).
type ServerMessage struct {
	Type            string     `json:"type"`
	View            *game.View `json:"state,omitempty"`
	MemberName      string     `json:"memberName,omitempty"`
	SelectedIndices []int      `json:"selectedIndices"`
	BingoCount      *int       `json:"bingoCount,omitempty"`
	Count           int        `json:"count,omitempty"`
	HasPredicted    *bool      `json:"hasPredicted,omitempty"`
	FinalLineup     []string   `json:"finalLineup,omitempty"`
	Revision        uint64     `json:"revision,omitempty"`
}
