package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/chatlist/internal/conversation"
)

// HealthResponse is served on /health without authentication, so it
// carries counts only.
type HealthResponse struct {
	Status        string `json:"status"`
	Conversations int    `json:"conversations"`
}

// StatusResponse is the authenticated overview on /status.
type StatusResponse struct {
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Modules       []string               `json:"compiled_modules"`
	Conversations []conversation.Summary `json:"conversations"`
	Messages      int                    `json:"messages"`
}

// handleHealth answers 503 until Start has bound the manager, which makes
// it usable as a readiness probe.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "starting"}
		code := http.StatusServiceUnavailable
		if g.manager != nil {
			resp = HealthResponse{Status: "ok", Conversations: len(g.manager.IDs())}
			code = http.StatusOK
		}
		writeJSON(w, code, resp)
	}
}

func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: int64(time.Since(g.startedAt).Seconds()),
			Modules:       compiledModules(),
			Conversations: g.manager.Summaries(),
		}
		for _, s := range resp.Conversations {
			resp.Messages += s.Len
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
