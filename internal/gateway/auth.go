package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// authenticator holds digests of the configured credentials. Comparing
// fixed-size digests keeps the comparison time independent of the secret's
// length.
type authenticator struct {
	bearer *[sha256.Size]byte
	basic  *[sha256.Size]byte
	logger *slog.Logger
}

func newAuthenticator(cfg AuthConfig, logger *slog.Logger) *authenticator {
	a := &authenticator{logger: logger}
	if cfg.BearerToken != "" {
		d := sha256.Sum256([]byte(cfg.BearerToken))
		a.bearer = &d
	}
	if cfg.hasBasic() {
		d := basicDigest(cfg.BasicUser, cfg.BasicPass)
		a.basic = &d
	}
	return a
}

func basicDigest(user, pass string) [sha256.Size]byte {
	return sha256.Sum256([]byte(user + "\x00" + pass))
}

func matches(want *[sha256.Size]byte, got [sha256.Size]byte) bool {
	return want != nil && subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// check returns "" for an authorized request, or why it was refused.
func (a *authenticator) check(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "missing authorization header"
	}
	scheme, cred, _ := strings.Cut(header, " ")
	switch {
	case strings.EqualFold(scheme, "Bearer"):
		if matches(a.bearer, sha256.Sum256([]byte(strings.TrimSpace(cred)))) {
			return ""
		}
	case strings.EqualFold(scheme, "Basic"):
		if user, pass, ok := r.BasicAuth(); ok && matches(a.basic, basicDigest(user, pass)) {
			return ""
		}
	default:
		return "unsupported authorization scheme"
	}
	return "invalid credentials"
}

func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := a.check(r)
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}
		if a.logger != nil {
			a.logger.Warn("gateway: auth failure",
				"reason", reason,
				"remote_addr", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
			)
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="chatlist"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// authMiddleware guards a route group with the configured credentials.
func authMiddleware(cfg AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return newAuthenticator(cfg, logger).middleware
}
