// Package room runs the single shared game as an actor: one goroutine
// owns the state, processes inbound events in order and fans broadcasts
// out to every connected session. Each event is fully handled (validated,
// applied, persisted, broadcast) before the next one, so the game state
// needs no locking.
package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/finnvold/lineup-bingo/internal/game"
	"github.com/finnvold/lineup-bingo/internal/protocol"
	"github.com/finnvold/lineup-bingo/internal/snapshot"
)

// Verifier authorizes a claimed member identity on join. The game runs on
// trust-on-claim, so the default accepts everything; the interface exists
// to make that gap explicit and replaceable.
type Verifier interface {
	Verify(name string) bool
}

// AllowAll accepts any claimed identity.
type AllowAll struct{}

func (AllowAll) Verify(string) bool { return true }

type Msg interface{ isRoomMsg() }

// Join identifies a connection. The reply is a point-to-point init
// message on the connection's outbox, masked for the claimed identity.
type Join struct {
	ClientID string
	Name     string
	Outbox   chan protocol.ServerMessage
}

type Leave struct{ ClientID string }

// ToggleCell flips one cell on the named member's board.
type ToggleCell struct {
	Member string
	Index  int
}

// SubmitPrediction locks in the named member's one-time picks.
type SubmitPrediction struct {
	Member string
	Picks  []string
}

// SubmitFinalLineup is the admin reveal: fixes the results, records them
// durably and broadcasts the unmasked terminal view.
type SubmitFinalLineup struct {
	Lineup []string
}

type Shutdown struct{}

// GetState reflects internal state without data races; test hook.
type GetState struct {
	Reply chan Stats
}

type Stats struct {
	Revision   uint64
	NumClients int
	Revealed   bool
}

func (Join) isRoomMsg()              {}
func (Leave) isRoomMsg()             {}
func (ToggleCell) isRoomMsg()        {}
func (SubmitPrediction) isRoomMsg()  {}
func (SubmitFinalLineup) isRoomMsg() {}
func (Shutdown) isRoomMsg()          {}
func (GetState) isRoomMsg()          {}

type session struct {
	name   string
	outbox chan protocol.ServerMessage
}

type Room struct {
	inbox    chan Msg
	state    *game.State
	store    snapshot.Store
	verifier Verifier
	clients  map[string]*session
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, state *game.State, store snapshot.Store, verifier Verifier, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:    make(chan Msg, 64),
		state:    state,
		store:    store,
		verifier: verifier,
		clients:  make(map[string]*session),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

// Inbox is where the transport layer (and tests) send events.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				delete(r.clients, msg.ClientID)

			case ToggleCell:
				r.handleToggle(msg)

			case SubmitPrediction:
				r.handlePrediction(msg)

			case SubmitFinalLineup:
				r.handleReveal(msg)

			case GetState:
				msg.Reply <- Stats{
					Revision:   r.state.Revision,
					NumClients: len(r.clients),
					Revealed:   r.state.Revealed(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	if !r.verifier.Verify(msg.Name) {
		r.log.Warn("join rejected", zap.String("name", msg.Name))
		return
	}
	r.clients[msg.ClientID] = &session{name: msg.Name, outbox: msg.Outbox}
	view := game.Present(r.state, msg.Name)
	r.send(msg.ClientID, protocol.ServerMessage{Type: protocol.EvtInit, View: &view})
}

func (r *Room) handleToggle(msg ToggleCell) {
	res, ok := r.state.ToggleCell(msg.Member, msg.Index)
	if !ok {
		return
	}
	r.persist()

	count := res.NewLines
	r.broadcast(protocol.ServerMessage{
		Type:            protocol.EvtUpdateState,
		MemberName:      res.Member,
		SelectedIndices: res.Selected,
		BingoCount:      &count,
		Revision:        r.state.Revision,
	})
	if res.NewLines > res.PrevLines {
		r.broadcast(protocol.ServerMessage{
			Type:       protocol.EvtBingoAnnouncement,
			MemberName: res.Member,
			Count:      res.NewLines,
		})
	}
}

func (r *Room) handlePrediction(msg SubmitPrediction) {
	if !r.state.SubmitPrediction(msg.Member, msg.Picks) {
		return
	}
	r.persist()

	// Only the fact of submission goes out; the picks stay masked until
	// the reveal.
	predicted := true
	r.broadcast(protocol.ServerMessage{
		Type:         protocol.EvtPredictionUpdate,
		MemberName:   msg.Member,
		HasPredicted: &predicted,
		Revision:     r.state.Revision,
	})
}

func (r *Room) handleReveal(msg SubmitFinalLineup) {
	if !r.state.Reveal(msg.Lineup) {
		return
	}
	r.persist()
	if err := r.store.RecordLineup(r.state.FinalLineup); err != nil {
		r.log.Error("record lineup", zap.Error(err))
	}

	// Post-reveal the view is identical for every viewer.
	view := game.Present(r.state, "")
	r.broadcast(protocol.ServerMessage{
		Type:        protocol.EvtGameOver,
		FinalLineup: r.state.FinalLineup,
		View:        &view,
	})
}

// persist writes the snapshot before any broadcast goes out. A failed
// write is logged and the in-memory mutation stands; the game stays
// available and the next successful write converges the file.
func (r *Room) persist() {
	if err := r.store.Save(r.state.Snapshot()); err != nil {
		r.log.Error("persist snapshot", zap.Error(err))
	}
}

func (r *Room) send(clientID string, msg protocol.ServerMessage) {
	s := r.clients[clientID]
	if s == nil {
		return
	}
	select {
	case s.outbox <- msg:
	default:
		close(s.outbox)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg protocol.ServerMessage) {
	for id, s := range r.clients {
		select {
		case s.outbox <- msg:
		default:
			// Slow or stuck consumer: drop it rather than block the loop.
			close(s.outbox)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, s := range r.clients {
		close(s.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}
