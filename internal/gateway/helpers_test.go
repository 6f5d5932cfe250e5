package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/pkg/message"
)

// newTestGateway builds a gateway bound to a fresh manager. mutate, when
// non-nil, adjusts the config before the router is built.
func newTestGateway(t *testing.T, mutate func(*Config)) (*Gateway, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := conversation.NewManager(conversation.ManagerOptions{Logger: logger})
	t.Cleanup(mgr.Close)

	g := &Gateway{logger: logger, manager: mgr, metrics: newHTTPMetrics()}
	if mutate != nil {
		mutate(&g.config)
	}
	g.config.defaults()
	if g.config.RateLimit.RPS > 0 {
		g.limiter = newLimiterPool(g.config.RateLimit)
	}
	return g, g.buildRouter()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func textTransfer(name, text string, isSender bool) message.Transfer {
	return message.ToTransfer(message.NewText(name, text, "2024-03-01T10:00:00.000Z", isSender))
}

// seed creates conversation id holding recs.
func seed(t *testing.T, g *Gateway, id string, recs ...message.Record) {
	t.Helper()
	ctx := context.Background()
	if _, err := g.manager.Create(ctx, id); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(recs) > 0 {
		if err := g.manager.ReplaceAll(ctx, id, recs); err != nil {
			t.Fatalf("ReplaceAll: %v", err)
		}
	}
}

func newRequest(method, path string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, path, body)
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
