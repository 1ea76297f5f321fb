// Package config defines the gateway configuration and its loader.
package config

import (
	"encoding/json"
	"fmt"
)

// Config is the main gateway configuration.
type Config struct {
	// Line holds the messaging-platform credentials.
	Line LineConfig `json:"line" mapstructure:"line"`

	// Agents are the capabilities available for dispatch.
	Agents []AgentConfig `json:"agents" mapstructure:"agents"`

	// AI selects and authenticates the model provider.
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Webhook configures the inbound HTTP server.
	Webhook WebhookConfig `json:"webhook" mapstructure:"webhook"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Session configures registry behavior.
	Session SessionConfig `json:"session" mapstructure:"session"`

	// Logging configures the process logger.
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// DataDir is where the transcript database lives.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// LineConfig holds LINE Messaging API credentials.
type LineConfig struct {
	ChannelSecret string `json:"channel_secret" mapstructure:"channel_secret"`
	ChannelToken  string `json:"channel_token" mapstructure:"channel_token"`
	// APIEndpoint overrides the Messaging API base URL; empty selects
	// the public endpoint.
	APIEndpoint string `json:"api_endpoint" mapstructure:"api_endpoint"`
}

// AgentConfig describes one capability.
type AgentConfig struct {
	ID          string   `json:"id" mapstructure:"id"`
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Instruction string   `json:"instruction" mapstructure:"instruction"`
	Tools       []string `json:"tools" mapstructure:"tools"`
	// Keywords claim utterances for this capability. The capability
	// with no keywords (or Default=true) is the fallback.
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	Default  bool     `json:"default" mapstructure:"default"`
}

// AIConfig holds model provider configuration.
type AIConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	Model       string  `json:"model" mapstructure:"model"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// WebhookConfig holds the inbound HTTP server settings.
type WebhookConfig struct {
	Host    string `json:"host" mapstructure:"host"`
	Port    int    `json:"port" mapstructure:"port"`
	Timeout int    `json:"timeout" mapstructure:"timeout"` // seconds
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	Port    int  `json:"port" mapstructure:"port"`
}

// SessionConfig tunes registry maintenance. Sweep is off by default;
// sessions then live for the whole process lifetime.
type SessionConfig struct {
	Sweep SweepConfig `json:"sweep" mapstructure:"sweep"`
}

// SweepConfig gates the scheduled idle-session sweep.
type SweepConfig struct {
	Mode        string `json:"mode" mapstructure:"mode"` // off, idle
	IdleMinutes int    `json:"idle_minutes" mapstructure:"idle_minutes"`
	Schedule    string `json:"schedule" mapstructure:"schedule"` // cron expression
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a config with default values: one arXiv-focused
// default agent and one keyword-routed stock agent, sweep off, webhook
// on :3000, metrics on :9090.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-20250514",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Webhook: WebhookConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			Timeout: 30,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Session: SessionConfig{
			Sweep: SweepConfig{
				Mode:        "off",
				IdleMinutes: 720,
				Schedule:    "@every 30m",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  false,
		},
		Agents: []AgentConfig{
			{
				ID:          "arxiv",
				Name:        "arXiv Agent",
				Description: "Searches arXiv, summarizes papers, and answers questions about them.",
				Instruction: defaultArxivInstruction,
				Tools:       []string{"search_arxiv_papers", "summarize_arxiv_paper", "answer_paper_question"},
				Default:     true,
			},
			{
				ID:          "stocks",
				Name:        "Stock Agent",
				Description: "Answers stock price and performance questions.",
				Instruction: defaultStockInstruction,
				Tools:       []string{"get_stock_price", "get_price_change_percent", "get_best_performing"},
				Keywords:    []string{"stock", "price", "ticker", "share", "nasdaq", "performing"},
			},
		},
	}
}

const defaultArxivInstruction = `You are an AI assistant specializing in the arXiv repository.
Users can ask you to:
1. Search for papers with the search_arxiv_papers tool.
2. Summarize a specific paper given its URL or arXiv ID with the summarize_arxiv_paper tool; the summary is the paper's abstract.
3. Answer questions about a specific paper with the answer_paper_question tool.

Provide clear and concise answers. If a tool returns an error or no information, inform the user politely.
When providing paper details, include the title, authors, abstract, and arXiv ID.`

const defaultStockInstruction = `You are an AI assistant for stock-market questions.
Use get_stock_price for current prices, get_price_change_percent for performance over a period,
and get_best_performing to compare a list of symbols. Relay tool errors politely.`

// String returns a JSON rendering of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks the configuration for startup.
func (c *Config) Validate() error {
	if c.Line.ChannelSecret == "" {
		return fmt.Errorf("line channel_secret is required")
	}
	if c.Line.ChannelToken == "" {
		return fmt.Errorf("line channel_token is required")
	}

	if c.AI.Provider != "anthropic" && c.AI.Provider != "openai" {
		return fmt.Errorf("invalid AI provider %q (must be: anthropic, openai)", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI api_key is required")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required")
	}

	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}
	defaults := 0
	for i, a := range c.Agents {
		if a.ID == "" {
			return fmt.Errorf("agent %d: ID is required", i)
		}
		if a.Instruction == "" {
			return fmt.Errorf("agent %s: instruction is required", a.ID)
		}
		if a.Default || len(a.Keywords) == 0 {
			defaults++
		}
	}
	if defaults == 0 {
		return fmt.Errorf("one agent must be the default (no keywords or default=true)")
	}

	if mode := c.Session.Sweep.Mode; mode != "" && mode != "off" && mode != "idle" {
		return fmt.Errorf("invalid session sweep mode %q (must be: off, idle)", mode)
	}
	if c.Session.Sweep.Mode == "idle" && c.Session.Sweep.IdleMinutes <= 0 {
		return fmt.Errorf("session sweep idle_minutes must be positive")
	}

	return nil
}
