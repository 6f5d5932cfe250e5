package gateway

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	both := AuthConfig{BearerToken: "secret-token", BasicUser: "admin", BasicPass: "pass123"}

	tests := []struct {
		name    string
		cfg     AuthConfig
		prepare func(*http.Request)
		want    int
	}{
		{
			name:    "valid bearer",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret-token") },
			want:    http.StatusOK,
		},
		{
			name:    "invalid bearer",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong-token") },
			want:    http.StatusUnauthorized,
		},
		{
			name:    "valid basic",
			cfg:     AuthConfig{BasicUser: "admin", BasicPass: "pass123"},
			prepare: func(r *http.Request) { r.SetBasicAuth("admin", "pass123") },
			want:    http.StatusOK,
		},
		{
			name:    "invalid basic",
			cfg:     AuthConfig{BasicUser: "admin", BasicPass: "pass123"},
			prepare: func(r *http.Request) { r.SetBasicAuth("admin", "nope") },
			want:    http.StatusUnauthorized,
		},
		{
			name:    "missing header",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(*http.Request) {},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "scheme is case insensitive",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "bearer secret-token") },
			want:    http.StatusOK,
		},
		{
			name:    "unsupported scheme",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Digest secret-token") },
			want:    http.StatusUnauthorized,
		},
		{
			name:    "token prefix is not enough",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") },
			want:    http.StatusUnauthorized,
		},
		{
			name:    "basic sent but only bearer configured",
			cfg:     AuthConfig{BearerToken: "secret-token"},
			prepare: func(r *http.Request) { r.SetBasicAuth("admin", "secret-token") },
			want:    http.StatusUnauthorized,
		},
		{
			name:    "basic accepted when bearer also configured",
			cfg:     both,
			prepare: func(r *http.Request) { r.SetBasicAuth("admin", "pass123") },
			want:    http.StatusOK,
		},
		{
			name:    "bearer accepted when basic also configured",
			cfg:     both,
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret-token") },
			want:    http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := authMiddleware(tt.cfg, nil)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
			tt.prepare(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if challenged := rr.Header().Get("WWW-Authenticate") != ""; challenged != (tt.want == http.StatusUnauthorized) {
				t.Errorf("WWW-Authenticate present = %v on status %d", challenged, rr.Code)
			}
		})
	}
}

func TestAuthMiddleware_LogsFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := authMiddleware(AuthConfig{BearerToken: "x"}, logger)(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/api/conversations/c1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "auth failure") || !strings.Contains(out, "/api/conversations/c1") || !strings.Contains(out, "missing authorization header") {
		t.Errorf("log = %q, want auth failure with path", out)
	}
}

func TestAuthConfig_IsConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  AuthConfig
		want bool
	}{
		{"empty", AuthConfig{}, false},
		{"bearer only", AuthConfig{BearerToken: "tok"}, true},
		{"basic complete", AuthConfig{BasicUser: "u", BasicPass: "p"}, true},
		{"basic user only", AuthConfig{BasicUser: "u"}, false},
		{"basic pass only", AuthConfig{BasicPass: "p"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
