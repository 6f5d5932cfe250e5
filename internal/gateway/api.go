package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/pkg/message"
)

// messageJSON is a record with its derived display state.
type messageJSON struct {
	Kind        message.Kind     `json:"kind"`
	Record      message.Transfer `json:"record"`
	NameVisible bool             `json:"nameVisible"`
	TimeLabel   string           `json:"timeLabel"`
}

// rowJSON is one displayed row.
type rowJSON struct {
	Position int `json:"position"`
	messageJSON
}

func toMessageJSON(rec message.Record) messageJSON {
	return messageJSON{
		Kind:        rec.Kind(),
		Record:      message.ToTransfer(rec),
		NameVisible: rec.NameVisible,
		TimeLabel:   rec.TimeLabel,
	}
}

func toRowsJSON(rows []conversation.Row) []rowJSON {
	out := make([]rowJSON, len(rows))
	for i, r := range rows {
		out[i] = rowJSON{Position: r.Position, messageJSON: toMessageJSON(r.Record)}
	}
	return out
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps conversation errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, conversation.ErrNotFound), errors.Is(err, conversation.ErrOutOfRange):
		code = http.StatusNotFound
	case errors.Is(err, conversation.ErrExists):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (g *Gateway) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func position(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		http.Error(w, "position must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return pos, true
}

func (g *Gateway) handleListConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, g.manager.Summaries())
	}
}

func (g *Gateway) handleCreateConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := g.readBody(w, r)
		if !ok {
			return
		}
		var req struct {
			ID string `json:"id"`
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, "invalid JSON body", http.StatusBadRequest)
				return
			}
		}

		id, err := g.manager.Create(r.Context(), req.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func (g *Gateway) handleDeleteConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (g *Gateway) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := g.manager.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRowsJSON(list.Rows()))
	}
}

func (g *Gateway) handleAppendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := g.readBody(w, r)
		if !ok {
			return
		}
		rec, err := message.DecodeTransfer(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		stamped, err := g.manager.Append(r.Context(), chi.URLParam(r, "id"), rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMessageJSON(stamped))
	}
}

func (g *Gateway) handleReplaceMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := g.readBody(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		recs, err := message.DecodeTransferList(body, g.logger.With("conversation", id))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := g.manager.ReplaceAll(r.Context(), id, recs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"len": len(recs)})
	}
}

func (g *Gateway) handleClearMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changed, err := g.manager.ClearAll(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
	}
}

func (g *Gateway) handleRemoveMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := position(w, r)
		if !ok {
			return
		}
		if err := g.manager.RemoveAt(r.Context(), chi.URLParam(r, "id"), pos); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
