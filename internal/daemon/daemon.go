// Package daemon wires the gateway together: config, logging, metrics,
// the agent engine and its tools, the session registry, routing, the
// dispatch coordinator, and the webhook transport.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/internal/config"
	"github.com/hikawa/kotori/internal/line"
	"github.com/hikawa/kotori/internal/metrics"
	"github.com/hikawa/kotori/internal/store"
	"github.com/hikawa/kotori/pkg/agent"
	"github.com/hikawa/kotori/pkg/dispatch"
	"github.com/hikawa/kotori/pkg/routing"
	"github.com/hikawa/kotori/pkg/session"
	"github.com/hikawa/kotori/pkg/tools"
	"github.com/hikawa/kotori/pkg/tools/arxiv"
	"github.com/hikawa/kotori/pkg/tools/market"
)

// newProvider is swappable in tests to avoid real API clients.
var newProvider = agent.NewProvider

// Daemon is the running gateway process.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	metrics     *metrics.Metrics
	registry    *session.Registry
	engine      *agent.ModelEngine
	router      *routing.Router
	coordinator *dispatch.Coordinator
	transcripts *store.TranscriptStore
	lineClient  *line.Client
	webhook     *line.Server
	metricsSrv  *http.Server
}

// sessionHooks feeds registry lifecycle events into the mint and drop
// counters, so they count actual registry changes rather than being
// inferred from gauge movement.
type sessionHooks struct {
	m *metrics.Metrics
}

func (h sessionHooks) SessionCreated() {
	h.m.SessionsCreated.Inc()
}

func (h sessionHooks) SessionsRemoved(n int) {
	h.m.SessionsDropped.Add(float64(n))
}

// New builds a daemon from validated config.
func New(cfg *config.Config, logger zerolog.Logger) (*Daemon, error) {
	d := &Daemon{
		cfg:     cfg,
		logger:  logger.With().Str("module", "daemon").Logger(),
		metrics: metrics.New(),
	}

	provider, err := newProvider(agent.Credentials{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create model provider: %w", err)
	}

	registry := tools.NewRegistry(logger)
	registry.Register(arxiv.NewAdapters(arxiv.NewHTTPClient("", nil), logger).Tools()...)
	registry.Register(market.NewAdapters(market.NewStooqClient("", nil), logger).Tools()...)

	d.engine = agent.NewModelEngine(agent.EngineConfig{
		Provider:    provider,
		Registry:    registry,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Logger:      logger,
	})

	d.registry = session.NewRegistry(d.engine, logger)
	d.registry.SetHooks(sessionHooks{d.metrics})

	defaultCap, routes, err := buildRoutes(d.engine, cfg.Agents)
	if err != nil {
		return nil, err
	}
	d.router = routing.NewRouter(defaultCap, logger)
	for _, r := range routes {
		d.router.Add(r.Capability, r.Keywords...)
	}

	d.coordinator = dispatch.NewCoordinator(d.registry, d.router, logger)

	if cfg.DataDir != "" {
		ts, err := store.Open(filepath.Join(cfg.DataDir, "transcripts.db"))
		if err != nil {
			return nil, fmt.Errorf("open transcript store: %w", err)
		}
		d.transcripts = ts
	}

	d.lineClient = line.NewClient(cfg.Line.APIEndpoint, cfg.Line.ChannelToken, logger)
	d.webhook = line.NewServer(line.ServerConfig{
		Addr:          fmt.Sprintf("%s:%d", cfg.Webhook.Host, cfg.Webhook.Port),
		ChannelSecret: cfg.Line.ChannelSecret,
		Timeout:       time.Duration(cfg.Webhook.Timeout) * time.Second,
		Handler:       d.HandleTextEvent,
		Metrics:       d.metrics,
		Logger:        logger,
	})

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.metrics.Handler())
		d.metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
	}

	return d, nil
}

// buildRoutes turns agent configs into capabilities plus a routing
// table. The default capability is the one flagged default, else the
// first with no keywords.
func buildRoutes(engine agent.Engine, agents []config.AgentConfig) (*agent.Capability, []routing.Route, error) {
	var defaultCap *agent.Capability
	var routes []routing.Route

	for _, a := range agents {
		capability := agent.NewCapability(engine, a.ID, a.Description, a.Instruction, a.Tools)
		if a.Default || len(a.Keywords) == 0 {
			if defaultCap == nil {
				defaultCap = capability
			}
			continue
		}
		routes = append(routes, routing.Route{Capability: capability, Keywords: a.Keywords})
	}
	if defaultCap == nil {
		return nil, nil, fmt.Errorf("no default capability configured")
	}
	return defaultCap, routes, nil
}

// Run starts the servers and maintenance tasks, blocking until the
// context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- d.webhook.Start()
	}()

	if d.metricsSrv != nil {
		go func() {
			d.logger.Info().Str("addr", d.metricsSrv.Addr).Msg("metrics server listening")
			if err := d.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	stopSweep, err := d.startSweeper()
	if err != nil {
		return err
	}
	defer stopSweep()

	d.logger.Info().Msg("gateway started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.webhook.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn().Err(err).Msg("webhook shutdown failed")
	}
	if d.metricsSrv != nil {
		if err := d.metricsSrv.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn().Err(err).Msg("metrics shutdown failed")
		}
	}
	if d.transcripts != nil {
		if err := d.transcripts.Close(); err != nil {
			d.logger.Warn().Err(err).Msg("transcript store close failed")
		}
	}
	d.logger.Info().Msg("gateway stopped")
	return nil
}

// ApplyConfig swaps in the reloadable parts of a new config. Only the
// routing table is hot-swappable; credential or provider changes need a
// restart.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	defaultCap, routes, err := buildRoutes(d.engine, cfg.Agents)
	if err != nil {
		d.logger.Warn().Err(err).Msg("reloaded agent set rejected")
		return
	}
	d.router.SetRoutes(defaultCap, routes)
}
