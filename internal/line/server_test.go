package line

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikawa/kotori/internal/tracing"
)

const testSecret = "test-channel-secret"

type eventSink struct {
	mu     sync.Mutex
	events []TextEvent
	ctxs   []context.Context
	seen   chan struct{}
}

func newEventSink() *eventSink {
	return &eventSink{seen: make(chan struct{}, 16)}
}

func (s *eventSink) handle(ctx context.Context, ev TextEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.ctxs = append(s.ctxs, ctx)
	s.mu.Unlock()
	s.seen <- struct{}{}
}

func (s *eventSink) wait(t *testing.T) TextEvent {
	t.Helper()
	select {
	case <-s.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

func newTestServer(sink *eventSink) *Server {
	return NewServer(ServerConfig{
		ChannelSecret: testSecret,
		Handler:       sink.handle,
		Logger:        zerolog.Nop(),
	})
}

func postCallback(t *testing.T, s *Server, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	if sign {
		req.Header.Set("X-Line-Signature", computeSignature([]byte(body), testSecret))
	}
	rec := httptest.NewRecorder()
	s.handleCallback(rec, req)
	return rec
}

func TestServer_Callback_DispatchesTextEvent(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	body := `{"destination":"xyz","events":[{"type":"message","replyToken":"rt-1","source":{"type":"user","userId":"U123"},"message":{"id":"m1","type":"text","text":"hello"}}]}`
	rec := postCallback(t, s, body, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	ev := sink.wait(t)
	assert.Equal(t, "U123", ev.UserID)
	assert.Equal(t, "rt-1", ev.ReplyToken)
	assert.Equal(t, "hello", ev.Text)
}

func TestServer_Callback_BadSignature(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	body := `{"events":[{"type":"message","source":{"userId":"U123"},"message":{"type":"text","text":"hello"}}]}`
	rec := postCallback(t, s, body, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sink.events)
}

func TestServer_Callback_WrongSignature(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	body := `{"events":[]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", computeSignature([]byte("other body"), testSecret))
	rec := httptest.NewRecorder()
	s.handleCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Callback_IgnoresNonTextMessages(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	body := `{"events":[
		{"type":"message","replyToken":"rt-1","source":{"userId":"U123"},"message":{"id":"m1","type":"image"}},
		{"type":"follow","source":{"userId":"U123"}},
		{"type":"message","replyToken":"rt-2","source":{"userId":"U123"},"message":{"id":"m2","type":"text","text":"after the image"}}
	]}`
	rec := postCallback(t, s, body, true)

	assert.Equal(t, http.StatusOK, rec.Code)

	// Only the text event reaches the handler.
	ev := sink.wait(t)
	assert.Equal(t, "after the image", ev.Text)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.events, 1)
}

func TestServer_Callback_MalformedPayload(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	rec := postCallback(t, s, "{not json", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Callback_MethodNotAllowed(t *testing.T) {
	s := newTestServer(newEventSink())

	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	rec := httptest.NewRecorder()
	s.handleCallback(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Callback_HandlerContextCarriesIdentity(t *testing.T) {
	sink := newEventSink()
	s := newTestServer(sink)

	body := `{"events":[{"type":"message","replyToken":"rt","source":{"userId":"U9"},"message":{"type":"text","text":"hi"}}]}`
	postCallback(t, s, body, true)
	sink.wait(t)

	sink.mu.Lock()
	ctx := sink.ctxs[0]
	sink.mu.Unlock()

	assert.Equal(t, "U9", tracing.GetUserID(ctx))
	assert.NotEmpty(t, tracing.GetRequestID(ctx))
	assert.NotEmpty(t, tracing.GetTraceID(ctx))
}

func TestVerifySignature(t *testing.T) {
	body := []byte("payload")

	require.True(t, verifySignature(body, computeSignature(body, testSecret), testSecret))
	assert.False(t, verifySignature(body, computeSignature(body, "other secret"), testSecret))
	assert.False(t, verifySignature(body, "", testSecret))
	assert.False(t, verifySignature(body, computeSignature(body, testSecret), ""))
}
