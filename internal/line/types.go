// Package line implements the messaging-platform boundary: webhook
// ingress with signature verification, and the reply client.
package line

// WebhookPayload is the body of a webhook POST from the platform.
type WebhookPayload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only message events with text content
// reach the dispatch layer; everything else is acknowledged and ignored.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Timestamp  int64   `json:"timestamp"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
}

// Source identifies the correspondent.
type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// Message is the message body of a message event.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextEvent is the normalized inbound unit handed to the dispatcher.
type TextEvent struct {
	UserID     string
	ReplyToken string
	Text       string
}
