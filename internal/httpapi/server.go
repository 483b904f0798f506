package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mkamau/habaribot/internal/config"
	"github.com/mkamau/habaribot/internal/observability"
	"github.com/mkamau/habaribot/internal/protocol"
)

// TurnHandler processes one inbound conversational turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, conversationID, text string) ([]protocol.BotMessage, error)
}

type Server struct {
	cfg      config.Config
	bot      TurnHandler
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, bot TurnHandler, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		bot:     bot,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/messages", s.handleMessages)
	r.Get("/api/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type messagesResponse struct {
	ConversationID string                `json:"conversation_id"`
	Replies        []protocol.BotMessage `json:"replies"`
}

// handleMessages is the webhook: one user message in, the turn's replies out.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var msg protocol.UserMessage
	if err := decodeJSON(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	if strings.TrimSpace(msg.ConversationID) == "" {
		// First contact without an ID starts a fresh conversation.
		msg.ConversationID = uuid.NewString()
	}

	replies, err := s.bot.HandleTurn(r.Context(), msg.ConversationID, msg.Text)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "turn_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, messagesResponse{
		ConversationID: msg.ConversationID,
		Replies:        replies,
	})
}

// handleChatWS runs an interactive chat over one websocket connection.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			})
			continue
		}
		s.metrics.WSMessages.WithLabelValues("inbound", string(msg.Type)).Inc()

		replies, err := s.bot.HandleTurn(r.Context(), msg.ConversationID, msg.Text)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: msg.ConversationID,
				Code:           "turn_failed",
				Detail:         err.Error(),
			})
			continue
		}

		for _, reply := range replies {
			reply.ConversationID = msg.ConversationID
			if !s.writeWS(conn, reply) {
				return
			}
			s.metrics.WSMessages.WithLabelValues("outbound", string(reply.Type)).Inc()
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v) == nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
