package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/chatlist/internal/conversation"
)

// swipeRemover deletes swiped rows when swipe_to_delete is enabled.
type swipeRemover struct {
	ctx     context.Context
	g       *Gateway
	id      string
	removed bool
}

func (s *swipeRemover) OnItemSwiped(position int) {
	if !s.g.config.SwipeToDelete {
		return
	}
	if err := s.g.manager.RemoveAt(s.ctx, s.id, position); err != nil {
		s.g.logger.Warn("swipe removal failed", "conversation", s.id, "position", position, "error", err)
		return
	}
	s.removed = true
}

func (s *swipeRemover) OnSettled(int) {}

type gestureResponse struct {
	Direction string `json:"direction"`
	Removed   bool   `json:"removed"`
}

func (g *Gateway) gesture(w http.ResponseWriter, r *http.Request, settle bool) {
	pos, ok := position(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	list, err := g.manager.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, ok := list.At(pos)
	if !ok {
		writeError(w, conversation.ErrOutOfRange)
		return
	}

	// Serialized so a listener only sees the gesture of its own request.
	g.gestureMu.Lock()
	defer g.gestureMu.Unlock()

	listener := &swipeRemover{ctx: r.Context(), g: g, id: id}
	list.SetSwipeListener(listener)
	defer list.SetSwipeListener(nil)

	if settle {
		list.Settled(pos)
	} else {
		list.ItemSwiped(pos)
	}
	writeJSON(w, http.StatusOK, gestureResponse{
		Direction: conversation.SwipeDirection(rec.Kind()).String(),
		Removed:   listener.removed,
	})
}

func (g *Gateway) handleSwipe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.gesture(w, r, false)
	}
}

func (g *Gateway) handleSettle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.gesture(w, r, true)
	}
}
