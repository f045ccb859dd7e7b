package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finnvold/lineup-bingo/internal/protocol"
	"github.com/finnvold/lineup-bingo/internal/room"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
)

// Handler upgrades to a websocket and bridges it to the room. A
// connection stays anonymous until its first join event; only then does
// it receive broadcasts.
func Handler(r *room.Room, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := websocket.Accept(w, req, nil)
		if err != nil {
			log.Debug("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan protocol.ServerMessage, 16)
		joined := false
		defer func() {
			if joined {
				r.Inbox() <- room.Leave{ClientID: clientID}
			}
		}()

		// Writer goroutine: drains the outbox until the room closes it
		// (slow consumer or shutdown) or the request ends.
		writeCtx, writeCancel := context.WithCancel(req.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("encode server message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(req.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				// Clean close or any read failure: the deferred Leave
				// detaches us from the room.
				return
			}

			var cm protocol.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// Malformed payloads are dropped without a reply; absence
				// of a broadcast is the only failure signal.
				continue
			}

			switch cm.Type {
			case protocol.CmdJoin:
				// One identity per connection. The room may close the
				// outbox when dropping a slow consumer, so it must never
				// be registered twice.
				if joined {
					continue
				}
				r.Inbox() <- room.Join{ClientID: clientID, Name: cm.Name, Outbox: out}
				joined = true

			case protocol.CmdToggleCell:
				if !joined || cm.Index == nil {
					continue
				}
				r.Inbox() <- room.ToggleCell{Member: cm.MemberName, Index: *cm.Index}

			case protocol.CmdSubmitPrediction:
				if !joined {
					continue
				}
				r.Inbox() <- room.SubmitPrediction{Member: cm.MemberName, Picks: cm.Prediction}

			case protocol.CmdSubmitFinalLineup:
				if !joined {
					continue
				}
				r.Inbox() <- room.SubmitFinalLineup{Lineup: cm.Lineup}
			}
		}
	}
}
