package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkamau/habaribot/internal/config"
	"github.com/mkamau/habaribot/internal/observability"
	"github.com/mkamau/habaribot/internal/protocol"
)

type echoBot struct {
	lastConversationID string
	lastText           string
}

func (b *echoBot) HandleTurn(_ context.Context, conversationID, text string) ([]protocol.BotMessage, error) {
	b.lastConversationID = conversationID
	b.lastText = text
	return []protocol.BotMessage{
		{Type: protocol.TypeBotMessage, Text: "echo: " + text, InputHint: protocol.HintExpectingInput},
	}, nil
}

func testMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	return observability.NewMetrics("test_httpapi_" + time.Now().Format("150405") + "_" + fmt.Sprint(time.Now().Nanosecond()))
}

func TestMessagesWebhookRoundTrip(t *testing.T) {
	bot := &echoBot{}
	srv := New(config.Config{}, bot, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(protocol.UserMessage{
		Type:           protocol.TypeUserMessage,
		ConversationID: "c1",
		Text:           "check the weather",
	})
	res, err := http.Post(ts.URL+"/api/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var parsed struct {
		ConversationID string                `json:"conversation_id"`
		Replies        []protocol.BotMessage `json:"replies"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.ConversationID != "c1" {
		t.Fatalf("conversation_id = %q, want c1", parsed.ConversationID)
	}
	if len(parsed.Replies) != 1 || parsed.Replies[0].Text != "echo: check the weather" {
		t.Fatalf("replies = %+v", parsed.Replies)
	}
	if bot.lastText != "check the weather" {
		t.Fatalf("bot received %q", bot.lastText)
	}
}

func TestMessagesWebhookAssignsConversationID(t *testing.T) {
	bot := &echoBot{}
	srv := New(config.Config{}, bot, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/messages", "application/json",
		strings.NewReader(`{"type":"user_message","text":"hi"}`))
	if err != nil {
		t.Fatalf("post error = %v", err)
	}
	defer res.Body.Close()

	var parsed struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.ConversationID == "" {
		t.Fatalf("conversation_id not assigned for first contact")
	}
	if bot.lastConversationID != parsed.ConversationID {
		t.Fatalf("bot conversation = %q, response = %q", bot.lastConversationID, parsed.ConversationID)
	}
}

func TestMessagesWebhookRejectsEmptyText(t *testing.T) {
	srv := New(config.Config{}, &echoBot{}, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/messages", "application/json",
		strings.NewReader(`{"type":"user_message","conversation_id":"c1","text":""}`))
	if err != nil {
		t.Fatalf("post error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := New(config.Config{}, &echoBot{}, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	bot := &echoBot{}
	srv := New(config.Config{AllowAnyOrigin: true}, bot, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	err = conn.WriteJSON(protocol.UserMessage{
		Type:           protocol.TypeUserMessage,
		ConversationID: "ws-1",
		Text:           "hello",
	})
	if err != nil {
		t.Fatalf("write error = %v", err)
	}

	var reply protocol.BotMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read error = %v", err)
	}
	if reply.Text != "echo: hello" {
		t.Fatalf("reply text = %q", reply.Text)
	}
	if reply.ConversationID != "ws-1" {
		t.Fatalf("reply conversation = %q, want ws-1", reply.ConversationID)
	}
}

func TestChatWSRejectsMalformedMessage(t *testing.T) {
	srv := New(config.Config{AllowAnyOrigin: true}, &echoBot{}, testMetrics(t))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"user_message"}`)); err != nil {
		t.Fatalf("write error = %v", err)
	}

	var event protocol.ErrorEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read error = %v", err)
	}
	if event.Code != "invalid_client_message" {
		t.Fatalf("error code = %q, want invalid_client_message", event.Code)
	}
}
