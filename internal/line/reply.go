package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIEndpoint = "https://api.line.me"

// Client delivers replies through the Messaging API.
type Client struct {
	endpoint     string
	channelToken string
	http         *http.Client
	logger       zerolog.Logger
}

// NewClient creates a reply client. An empty endpoint selects the public
// Messaging API.
func NewClient(endpoint, channelToken string, logger zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = defaultAPIEndpoint
	}
	return &Client{
		endpoint:     endpoint,
		channelToken: channelToken,
		http:         &http.Client{Timeout: 15 * time.Second},
		logger:       logger.With().Str("module", "line-client").Logger(),
	}
}

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends one text message back for a reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v2/bot/message/reply", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("reply rejected with status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
