// Package gateway serves conversations over HTTP: a JSON API, a websocket
// change stream, inbound webhooks, health, status and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/internal/core"
)

// ReloadServiceName is where the process registers its configuration
// reloader. POST /api/config/reload exists only when one is registered.
const ReloadServiceName = "reload.handler"

func init() {
	core.RegisterModule(&Gateway{})
}

var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Reloader re-reads and applies the configuration.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Gateway is the gateway.http module.
type Gateway struct {
	config  Config
	appCtx  *core.AppContext
	logger  *slog.Logger
	metrics *httpMetrics
	limiter *limiterPool

	// gestureMu serializes swipe handling so a settle cannot interleave
	// with the swipe that preceded it.
	gestureMu sync.Mutex

	manager  *conversation.Manager
	reloader Reloader

	startedAt time.Time
	server    *http.Server
	addr      net.Addr
	served    chan struct{}
}

func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return fmt.Errorf("gateway: decode config: %w", err)
	}
	return nil
}

func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger

	g.metrics = newHTTPMetrics()
	if err := g.metrics.register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("gateway: register metrics: %w", err)
	}
	if g.config.RateLimit.RPS > 0 {
		g.limiter = newLimiterPool(g.config.RateLimit)
	}
	for source, cfg := range g.config.Webhooks {
		g.logger.Debug("webhook source",
			"source", source,
			"conversation", cfg.conversation(source),
			"signed", cfg.Secret != "",
		)
	}
	if !g.config.Auth.IsConfigured() && !loopback(g.config.Bind) {
		g.logger.Warn("gateway is reachable beyond loopback without auth", "bind", g.config.Bind)
	}
	return nil
}

func (g *Gateway) Validate() error {
	return g.config.validate()
}

// Start binds the listener before returning, so a busy port fails the
// start instead of surfacing later in the log.
func (g *Gateway) Start() error {
	mgr, ok := core.ServiceAs[*conversation.Manager](g.appCtx, conversation.ServiceName)
	if !ok {
		return errors.New("gateway: conversation.lists module is required")
	}
	g.manager = mgr
	g.reloader, _ = core.ServiceAs[Reloader](g.appCtx, ReloadServiceName)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}

	g.startedAt = time.Now()
	g.addr = ln.Addr()
	g.served = make(chan struct{})
	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(g.logger.Handler(), slog.LevelWarn),
	}

	go func() {
		defer close(g.served)
		if err := g.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway stopped serving", "error", err)
		}
	}()
	g.logger.Info("gateway listening", "addr", g.addr.String(), "auth", g.config.Auth.IsConfigured())
	return nil
}

// Addr is the bound address once started, which differs from the
// configured one when the port is 0.
func (g *Gateway) Addr() net.Addr {
	return g.addr
}

// Stop drains in-flight requests for at most ShutdownTimeout. Websocket
// streams end when the conversation module closes its hubs.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	err := g.server.Shutdown(ctx)
	<-g.served
	g.server = nil
	return err
}

func loopback(bind string) bool {
	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
