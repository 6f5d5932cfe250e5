package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/pkg/message"
)

// signatureHeaders are checked in order. The second is what GitHub-style
// senders emit; both carry "sha256=<hex>".
var signatureHeaders = []string{"X-Signature-256", "X-Hub-Signature-256"}

func (c WebhookSourceCfg) conversation(source string) string {
	if c.Conversation == "" {
		return source
	}
	return c.Conversation
}

// handleWebhook appends one transfer record per request to the source's
// conversation, creating the conversation on first delivery.
func (g *Gateway) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := chi.URLParam(r, "source")
		cfg, known := g.config.Webhooks[source]
		if !known {
			g.logger.Warn("webhook for unknown source", "source", source)
			http.Error(w, "unknown source", http.StatusNotFound)
			return
		}

		body, ok := g.readBody(w, r)
		if !ok {
			return
		}
		if cfg.Secret != "" && !validateHMAC(body, signature(r), cfg.Secret) {
			g.logger.Warn("webhook signature rejected", "source", source, "remote_addr", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		rec, err := message.DecodeTransfer(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id := cfg.conversation(source)
		if _, err := g.manager.Create(r.Context(), id); err != nil && !errors.Is(err, conversation.ErrExists) {
			writeError(w, err)
			return
		}
		stamped, err := g.manager.Append(r.Context(), id, rec)
		if err != nil {
			g.logger.Error("webhook append failed", "source", source, "conversation", id, "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMessageJSON(stamped))
	}
}

func signature(r *http.Request) string {
	for _, h := range signatureHeaders {
		if v := r.Header.Get(h); v != "" {
			return v
		}
	}
	return ""
}

// validateHMAC checks a "sha256=<hex>" signature of body.
func validateHMAC(body []byte, sig, secret string) bool {
	digest, ok := strings.CutPrefix(sig, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
