package line

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/internal/metrics"
	"github.com/hikawa/kotori/internal/tracing"
)

// maxBodyBytes bounds webhook request bodies.
const maxBodyBytes = 1 << 20

// Handler processes one normalized text event. It runs on its own
// goroutine per event; the webhook response does not wait for it.
type Handler func(ctx context.Context, ev TextEvent)

// Server is the webhook ingress. It authenticates requests against the
// channel secret, normalizes text message events, and hands them to the
// handler concurrently; the platform gets its 200 immediately.
type Server struct {
	channelSecret string
	handler       Handler
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	srv           *http.Server
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Addr          string
	ChannelSecret string
	Timeout       time.Duration
	Handler       Handler
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

// NewServer creates the webhook server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		channelSecret: cfg.ChannelSecret,
		handler:       cfg.Handler,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With().Str("module", "webhook").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("webhook server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	if !verifySignature(body, r.Header.Get("X-Line-Signature"), s.channelSecret) {
		if s.metrics != nil {
			s.metrics.WebhookRejectedTotal.Inc()
		}
		s.logger.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	for _, ev := range payload.Events {
		s.routeEvent(ev)
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Server) routeEvent(ev Event) {
	if ev.Type != "message" {
		if s.metrics != nil {
			s.metrics.WebhookEventsTotal.WithLabelValues(ev.Type).Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.WebhookEventsTotal.WithLabelValues("message/" + ev.Message.Type).Inc()
	}
	// Image and other non-text messages produce no dispatch.
	if ev.Message.Type != "text" {
		return
	}
	if ev.Source.UserID == "" || ev.Message.Text == "" {
		return
	}

	text := TextEvent{
		UserID:     ev.Source.UserID,
		ReplyToken: ev.ReplyToken,
		Text:       ev.Message.Text,
	}

	ctx := tracing.WithRequestID(context.Background(), tracing.NewRequestID())
	ctx = tracing.WithTraceID(ctx, tracing.NewTraceID())
	ctx = tracing.WithUserID(ctx, text.UserID)

	go s.handler(ctx, text)
}
