package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/finnvold/lineup-bingo/internal/game"
	"github.com/finnvold/lineup-bingo/internal/protocol"
)

type fakeStore struct {
	mu       sync.Mutex
	saves    int
	lineups  [][]string
	failSave bool
}

func (f *fakeStore) Load() (*game.Snapshot, error) { return nil, nil }

func (f *fakeStore) Save(*game.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failSave {
		return errors.New("disk gone")
	}
	return nil
}

func (f *fakeStore) RecordLineup(lineup []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineups = append(f.lineups, lineup)
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeStore) recordedLineups() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lineups
}

var testGroups = []string{
	"g01", "g02", "g03", "g04", "g05", "g06", "g07", "g08", "g09", "g10",
	"g11", "g12", "g13", "g14", "g15", "g16", "g17", "g18", "g19", "g20",
}

func testState(members ...string) *game.State {
	terms := make([]string, 30)
	for i := range terms {
		terms[i] = fmt.Sprintf("term-%02d", i)
	}
	return game.New(members, testGroups, terms, nil, rand.New(rand.NewSource(1)))
}

// helper: receive one message with a timeout so tests never hang
func recvMsg(t *testing.T, ch <-chan protocol.ServerMessage, within time.Duration) protocol.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return protocol.ServerMessage{} // unreachable
	}
}

func recvNoMsg(t *testing.T, ch <-chan protocol.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no message within %v, got %+v", within, msg)
	case <-time.After(within):
	}
}

func recvStats(t *testing.T, ch <-chan Stats, within time.Duration) Stats {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(within):
		t.Fatalf("timed out waiting for stats")
		return Stats{} // unreachable
	}
}

func join(t *testing.T, r *Room, clientID, name string) chan protocol.ServerMessage {
	t.Helper()
	out := make(chan protocol.ServerMessage, 8)
	r.Inbox() <- Join{ClientID: clientID, Name: name, Outbox: out}
	return out
}

func TestRoom_JoinRepliesWithMaskedInit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := testState("alva", "birk")
	if !state.SubmitPrediction("alva", testGroups[:12]) {
		t.Fatalf("seed prediction failed")
	}
	r := New(ctx, state, &fakeStore{}, AllowAll{}, zap.NewNop())

	out := join(t, r, "c1", "birk")
	init := recvMsg(t, out, 100*time.Millisecond)

	if init.Type != protocol.EvtInit {
		t.Fatalf("want init, got %q", init.Type)
	}
	if init.View == nil {
		t.Fatalf("init carries no view")
	}
	alva := init.View.Boards["alva"]
	if !alva.HasPredicted {
		t.Fatalf("expected hasPredicted for alva")
	}
	if len(alva.Prediction) != 0 {
		t.Fatalf("another member's picks leaked into init: %v", alva.Prediction)
	}
	if own := init.View.Boards["birk"]; len(own.Board) != 25 {
		t.Fatalf("own board missing from init")
	}
}

func TestRoom_ToggleBroadcastsToEveryone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{}
	r := New(ctx, testState("alva", "birk"), store, AllowAll{}, zap.NewNop())

	out1 := join(t, r, "c1", "alva")
	out2 := join(t, r, "c2", "birk")
	_ = recvMsg(t, out1, 100*time.Millisecond)
	_ = recvMsg(t, out2, 100*time.Millisecond)

	r.Inbox() <- ToggleCell{Member: "alva", Index: 3}

	for _, out := range []chan protocol.ServerMessage{out1, out2} {
		msg := recvMsg(t, out, 100*time.Millisecond)
		if msg.Type != protocol.EvtUpdateState {
			t.Fatalf("want updateState, got %q", msg.Type)
		}
		if msg.MemberName != "alva" {
			t.Fatalf("want memberName alva, got %q", msg.MemberName)
		}
		if len(msg.SelectedIndices) != 1 || msg.SelectedIndices[0] != 3 {
			t.Fatalf("want selected [3], got %v", msg.SelectedIndices)
		}
	}
	if store.saveCount() != 1 {
		t.Fatalf("want exactly one persist, got %d", store.saveCount())
	}
}

func TestRoom_BingoAnnouncementOnlyOnIncrease(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, testState("alva"), &fakeStore{}, AllowAll{}, zap.NewNop())
	out := join(t, r, "c1", "alva")
	_ = recvMsg(t, out, 100*time.Millisecond)

	// Middle row completes through the free cell on the fourth toggle.
	for _, i := range []int{10, 11, 13, 14} {
		r.Inbox() <- ToggleCell{Member: "alva", Index: i}
	}
	announcements := 0
	for i := 0; i < 4; i++ {
		msg := recvMsg(t, out, 100*time.Millisecond)
		if msg.Type != protocol.EvtUpdateState {
			t.Fatalf("want updateState, got %q", msg.Type)
		}
		if i == 3 {
			bingo := recvMsg(t, out, 100*time.Millisecond)
			if bingo.Type != protocol.EvtBingoAnnouncement {
				t.Fatalf("want bingoAnnouncement after completing row, got %q", bingo.Type)
			}
			if bingo.Count != 1 {
				t.Fatalf("want count 1, got %d", bingo.Count)
			}
			announcements++
		}
	}
	if announcements != 1 {
		t.Fatalf("want exactly one announcement, got %d", announcements)
	}

	// Untoggling drops the count; no announcement.
	r.Inbox() <- ToggleCell{Member: "alva", Index: 14}
	msg := recvMsg(t, out, 100*time.Millisecond)
	if msg.Type != protocol.EvtUpdateState {
		t.Fatalf("want updateState, got %q", msg.Type)
	}
	recvNoMsg(t, out, 100*time.Millisecond)
}

func TestRoom_InvalidToggleIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{}
	r := New(ctx, testState("alva"), store, AllowAll{}, zap.NewNop())
	out := join(t, r, "c1", "alva")
	_ = recvMsg(t, out, 100*time.Millisecond)

	r.Inbox() <- ToggleCell{Member: "nobody", Index: 0}
	r.Inbox() <- ToggleCell{Member: "alva", Index: 99}

	recvNoMsg(t, out, 100*time.Millisecond)
	if store.saveCount() != 0 {
		t.Fatalf("rejected mutations must not persist; saves=%d", store.saveCount())
	}
}

func TestRoom_PredictionBroadcastNeverLeaksPicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, testState("alva", "birk"), &fakeStore{}, AllowAll{}, zap.NewNop())
	out := join(t, r, "c1", "birk")
	_ = recvMsg(t, out, 100*time.Millisecond)

	r.Inbox() <- SubmitPrediction{Member: "alva", Picks: testGroups[:12]}

	msg := recvMsg(t, out, 100*time.Millisecond)
	if msg.Type != protocol.EvtPredictionUpdate {
		t.Fatalf("want predictionUpdate, got %q", msg.Type)
	}
	if msg.HasPredicted == nil || !*msg.HasPredicted {
		t.Fatalf("want hasPredicted=true")
	}
	if msg.View != nil {
		t.Fatalf("prediction broadcast must not carry a view")
	}

	// Double submit: silence.
	r.Inbox() <- SubmitPrediction{Member: "alva", Picks: testGroups[8:20]}
	recvNoMsg(t, out, 100*time.Millisecond)
}

func TestRoom_RevealBroadcastsUnmaskedGameOver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{}
	state := testState("alva", "birk")
	r := New(ctx, state, store, AllowAll{}, zap.NewNop())

	out := join(t, r, "c1", "birk")
	_ = recvMsg(t, out, 100*time.Millisecond)

	r.Inbox() <- SubmitPrediction{Member: "alva", Picks: testGroups[:12]}
	_ = recvMsg(t, out, 100*time.Millisecond)

	lineup := testGroups[6:18]
	r.Inbox() <- SubmitFinalLineup{Lineup: lineup}

	msg := recvMsg(t, out, 100*time.Millisecond)
	if msg.Type != protocol.EvtGameOver {
		t.Fatalf("want gameOver, got %q", msg.Type)
	}
	if len(msg.FinalLineup) != 12 {
		t.Fatalf("want revealed lineup, got %v", msg.FinalLineup)
	}
	alva := msg.View.Boards["alva"]
	if len(alva.Prediction) != 12 {
		t.Fatalf("gameOver must unmask predictions, got %v", alva.Prediction)
	}
	if alva.Score == nil || *alva.Score != 6 {
		t.Fatalf("want score 6, got %v", alva.Score)
	}

	recorded := store.recordedLineups()
	if len(recorded) != 1 {
		t.Fatalf("want one lineup record, got %d", len(recorded))
	}

	// Second reveal with a different lineup: silence, state unchanged.
	r.Inbox() <- SubmitFinalLineup{Lineup: testGroups[:5]}
	recvNoMsg(t, out, 100*time.Millisecond)
	if state.FinalLineup[0] != lineup[0] {
		t.Fatalf("lineup changed after repeat reveal")
	}
}

func TestRoom_PersistFailureStillBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{failSave: true}
	r := New(ctx, testState("alva"), store, AllowAll{}, zap.NewNop())
	out := join(t, r, "c1", "alva")
	_ = recvMsg(t, out, 100*time.Millisecond)

	r.Inbox() <- ToggleCell{Member: "alva", Index: 0}

	msg := recvMsg(t, out, 100*time.Millisecond)
	if msg.Type != protocol.EvtUpdateState {
		t.Fatalf("mutation must survive a failed persist; got %q", msg.Type)
	}
}

// A broadcast is marshaled by each connection's writer goroutine while
// the loop keeps mutating state for later events. The message therefore
// must not share memory with the live selection; this fails under -race
// if it does.
func TestRoom_BroadcastsAreStableUnderConcurrentMarshal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, testState("alva"), &fakeStore{}, AllowAll{}, zap.NewNop())

	// Large enough for init plus every update and announcement, so the
	// slow-client drop can never interfere with this test.
	const toggles = 2000
	out := make(chan protocol.ServerMessage, 2*toggles+16)
	r.Inbox() <- Join{ClientID: "c1", Name: "alva", Outbox: out}
	done := make(chan struct{})
	go func() {
		defer close(done)
		updates := 0
		for msg := range out {
			if _, err := json.Marshal(msg); err != nil {
				t.Errorf("marshal broadcast: %v", err)
				return
			}
			if msg.Type == protocol.EvtUpdateState {
				if updates++; updates == toggles {
					return
				}
			}
		}
		t.Errorf("outbox closed after %d of %d updates", updates, toggles)
	}()

	for i := 0; i < toggles; i++ {
		r.Inbox() <- ToggleCell{Member: "alva", Index: i % 25}
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %d updates", toggles)
	}
}

func TestRoom_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, testState("alva"), &fakeStore{}, AllowAll{}, zap.NewNop())

	out := make(chan protocol.ServerMessage) // unbuffered: never drained
	r.Inbox() <- Join{ClientID: "c1", Name: "alva", Outbox: out}

	reply := make(chan Stats, 1)
	r.Inbox() <- GetState{Reply: reply}
	stats := recvStats(t, reply, 100*time.Millisecond)
	if stats.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", stats.NumClients)
	}
}
