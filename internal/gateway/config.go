package gateway

import (
	"cmp"
	"errors"
	"fmt"
	"net"
	"time"
)

// Config is the gateway.http section.
type Config struct {
	// Bind is the listen address, loopback by default.
	Bind string `yaml:"bind"`

	Auth      AuthConfig                  `yaml:"auth"`
	CORS      CORSConfig                  `yaml:"cors"`
	RateLimit RateLimitConfig             `yaml:"rate_limit"`
	Webhooks  map[string]WebhookSourceCfg `yaml:"webhooks"`

	// SwipeToDelete removes a received row when a swipe settles past the
	// threshold, instead of leaving the decision to the client.
	SwipeToDelete bool `yaml:"swipe_to_delete"`

	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (c *Config) defaults() {
	c.Bind = cmp.Or(c.Bind, "127.0.0.1:8080")
	c.MaxBodyBytes = cmp.Or(max(c.MaxBodyBytes, 0), 8<<20)
	c.ReadTimeout = cmp.Or(max(c.ReadTimeout, 0), 10*time.Second)
	c.WriteTimeout = cmp.Or(max(c.WriteTimeout, 0), 30*time.Second)
	c.ShutdownTimeout = cmp.Or(max(c.ShutdownTimeout, 0), 5*time.Second)
}

// validate reports every problem at once.
func (c *Config) validate() error {
	var errs []error
	if _, err := net.ResolveTCPAddr("tcp", c.Bind); err != nil {
		errs = append(errs, fmt.Errorf("bind %q: %w", c.Bind, err))
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.rps must be non-negative, got %v", c.RateLimit.RPS))
	}
	if (c.Auth.BasicUser == "") != (c.Auth.BasicPass == "") {
		errs = append(errs, errors.New("auth.basic_user and auth.basic_pass must be set together"))
	}
	for source := range c.Webhooks {
		if source == "" {
			errs = append(errs, errors.New("webhooks: empty source name"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}

// AuthConfig protects everything except /health, /metrics and webhooks.
// Bearer and Basic may both be set; either is accepted.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured reports whether any credential is complete.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || a.hasBasic()
}

func (a AuthConfig) hasBasic() bool { return a.BasicUser != "" && a.BasicPass != "" }

// CORSConfig is off while AllowedOrigins is empty.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// RateLimitConfig limits requests per client address. Zero RPS disables
// limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// WebhookSourceCfg routes POST /webhooks/{source} into a conversation.
type WebhookSourceCfg struct {
	// Conversation defaults to the source name.
	Conversation string `yaml:"conversation"`

	// Secret, when set, requires an X-Signature-256 HMAC-SHA256 header.
	Secret string `yaml:"secret"`
}
