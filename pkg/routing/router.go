// Package routing selects which agent capability handles an utterance.
// Routing is a pure function of the utterance text and a static keyword
// table; the table can be swapped wholesale when configuration reloads.
package routing

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/pkg/agent"
)

// Route binds a capability to the keywords that claim an utterance.
type Route struct {
	Capability *agent.Capability
	Keywords   []string
}

// Router picks a capability per utterance. With a single capability it
// always returns it; with several, the first route whose keyword set
// matches (case-insensitive substring) wins, and the default capability
// catches everything else.
type Router struct {
	mu         sync.RWMutex
	defaultCap *agent.Capability
	routes     []Route
	logger     zerolog.Logger
}

// NewRouter creates a router with the given default capability.
func NewRouter(defaultCap *agent.Capability, logger zerolog.Logger) *Router {
	return &Router{
		defaultCap: defaultCap,
		logger:     logger.With().Str("module", "routing").Logger(),
	}
}

// Add appends a keyword route. Order matters: earlier routes win.
func (r *Router) Add(capability *agent.Capability, keywords ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, Route{Capability: capability, Keywords: keywords})
}

// SetRoutes replaces the whole routing table. Used on config reload.
func (r *Router) SetRoutes(defaultCap *agent.Capability, routes []Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultCap = defaultCap
	r.routes = routes
	r.logger.Info().Int("routes", len(routes)).Msg("routing table replaced")
}

// Select returns the capability for an utterance.
func (r *Router) Select(text string) *agent.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowered := strings.ToLower(text)
	for _, route := range r.routes {
		for _, kw := range route.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(kw)) {
				r.logger.Debug().Str("capability", route.Capability.Name).Str("keyword", kw).Msg("utterance routed by keyword")
				return route.Capability
			}
		}
	}
	return r.defaultCap
}
