package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mkamau/habaribot/internal/cards"
)

// MessageType identifies chat payload variants.
type MessageType string

const (
	TypeUserMessage MessageType = "user_message"
	TypeBotMessage  MessageType = "bot_message"
	TypeErrorEvent  MessageType = "error_event"
)

// InputHint tells the client whether the bot expects a reply to a message.
type InputHint string

const (
	HintExpectingInput InputHint = "expectingInput"
	HintIgnoringInput  InputHint = "ignoringInput"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserMessage is one inbound conversational turn.
type UserMessage struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Text           string      `json:"text"`
}

// BotMessage is one outbound reply. Card is set only for card replies.
type BotMessage struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Text           string      `json:"text,omitempty"`
	Suggestions    []string    `json:"suggestions,omitempty"`
	InputHint      InputHint   `json:"input_hint,omitempty"`
	Card           *cards.Card `json:"card,omitempty"`
}

type ErrorEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Code           string      `json:"code"`
	Detail         string      `json:"detail"`
}

// ParseClientMessage decodes and validates one inbound websocket payload.
func ParseClientMessage(raw []byte) (UserMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return UserMessage{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserMessage:
		var msg UserMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return UserMessage{}, err
		}
		if strings.TrimSpace(msg.ConversationID) == "" {
			return UserMessage{}, errors.New("invalid user_message: missing conversation_id")
		}
		if strings.TrimSpace(msg.Text) == "" {
			return UserMessage{}, errors.New("invalid user_message: missing text")
		}
		return msg, nil
	default:
		return UserMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}
