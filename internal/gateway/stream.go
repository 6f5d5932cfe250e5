package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/flemzord/chatlist/internal/conversation"
)

const streamWriteTimeout = 5 * time.Second

// Frame types sent on a conversation stream.
const (
	FrameSnapshot = "snapshot"
	FrameChange   = "change"
)

// streamFrame is one websocket message. A snapshot carries every row; a
// change carries one structural change. A reset change is always followed by
// a fresh snapshot, and changes after it apply on top of that snapshot.
type streamFrame struct {
	Type         string               `json:"type"`
	Conversation string               `json:"conversation"`
	Rows         []rowJSON            `json:"rows,omitempty"`
	Change       *conversation.Change `json:"change,omitempty"`
}

// handleStream upgrades to a websocket and streams the changes of one
// conversation. The first frame is always a snapshot.
func (g *Gateway) handleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rows, events, cancel, err := g.manager.SubscribeSnapshot(id)
		if err != nil {
			writeError(w, err)
			return
		}
		defer func() { cancel() }()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Error("websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		// The stream is write-only; CloseRead handles pings and the close
		// handshake and cancels ctx when the client goes away.
		ctx := conn.CloseRead(r.Context())

		if err := writeSnapshot(ctx, conn, id, rows); err != nil {
			return
		}
		g.logger.Debug("stream opened", "conversation", id, "remote_addr", r.RemoteAddr)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "conversation closed")
					return
				}
				if err := g.writeChange(ctx, conn, ev); err != nil {
					return
				}
				if ev.Op != conversation.OpReset {
					continue
				}
				// Events still queued describe mutations the new snapshot
				// already holds, so the old subscription is dropped whole.
				cancel()
				rows, events, cancel, err = g.manager.SubscribeSnapshot(id)
				if err != nil {
					cancel = func() {}
					_ = conn.Close(websocket.StatusGoingAway, "conversation closed")
					return
				}
				if err := writeSnapshot(ctx, conn, id, rows); err != nil {
					return
				}
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, id string, rows []conversation.Row) error {
	return writeFrame(ctx, conn, streamFrame{
		Type:         FrameSnapshot,
		Conversation: id,
		Rows:         toRowsJSON(rows),
	})
}

func (g *Gateway) writeChange(ctx context.Context, conn *websocket.Conn, ev conversation.Event) error {
	c := ev.Change
	return writeFrame(ctx, conn, streamFrame{
		Type:         FrameChange,
		Conversation: ev.Conversation,
		Change:       &c,
	})
}

func writeFrame(ctx context.Context, conn *websocket.Conn, f streamFrame) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, f)
}
