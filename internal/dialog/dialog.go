// Package dialog implements the bot's conversation core: a persisted stack
// of waterfall dialogs with slot filling, suspension across turns, and
// cancel/help interrupts.
//
// Each dialog is a fixed sequence of steps. A step either falls through with
// a value for the next step, suspends awaiting the next user message, pushes
// a child dialog, or ends the dialog with a result that resumes the parent
// at its next step. The whole stack (dialog id, step index, slot values per
// frame) is serialized between turns, so a conversation may stay suspended
// indefinitely.
package dialog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkamau/habaribot/internal/cards"
	"github.com/mkamau/habaribot/internal/protocol"
	"github.com/mkamau/habaribot/internal/state"
)

// Turn collects the outbound replies of one conversational turn and gives
// steps access to conversation-level state. Replies are fresh values per
// turn; nothing here is shared between conversations.
type Turn struct {
	Conversation *state.Conversation
	replies      []protocol.BotMessage
}

func NewTurn(conv *state.Conversation) *Turn {
	return &Turn{Conversation: conv}
}

// Say sends plain text that expects no reply.
func (t *Turn) Say(text string) {
	t.replies = append(t.replies, protocol.BotMessage{
		Type:      protocol.TypeBotMessage,
		Text:      text,
		InputHint: protocol.HintIgnoringInput,
	})
}

// Prompt sends text with suggested actions and marks the turn as expecting
// the user's answer.
func (t *Turn) Prompt(text string, suggestions ...string) {
	t.replies = append(t.replies, protocol.BotMessage{
		Type:        protocol.TypeBotMessage,
		Text:        text,
		Suggestions: suggestions,
		InputHint:   protocol.HintExpectingInput,
	})
}

// SendCard sends a card attachment.
func (t *Turn) SendCard(c *cards.Card) {
	t.replies = append(t.replies, protocol.BotMessage{
		Type:      protocol.TypeBotMessage,
		Card:      c,
		InputHint: protocol.HintIgnoringInput,
	})
}

// Replies returns everything sent during this turn, in order.
func (t *Turn) Replies() []protocol.BotMessage {
	return t.replies
}

type outcomeKind int

const (
	kindSuspend outcomeKind = iota
	kindNext
	kindBegin
	kindReplace
	kindEnd
)

// Outcome is what a dialog step decided to do with the turn.
type Outcome struct {
	kind   outcomeKind
	value  any
	dialog string
	seed   any
}

// Suspend pauses the dialog until the next user message, which will be
// delivered to the following step.
func Suspend() Outcome { return Outcome{kind: kindSuspend} }

// Next falls through to the following step immediately, passing value as
// its input.
func Next(value any) Outcome { return Outcome{kind: kindNext, value: value} }

// Begin pushes the named dialog with the given seed slots. When the child
// ends, its result becomes the input of this dialog's next step.
func Begin(dialogID string, seed any) Outcome {
	return Outcome{kind: kindBegin, dialog: dialogID, seed: seed}
}

// Replace restarts the current frame as the named dialog from step zero.
func Replace(dialogID string, seed any) Outcome {
	return Outcome{kind: kindReplace, dialog: dialogID, seed: seed}
}

// End pops the dialog, handing result to the parent. A nil result signals
// the dialog ended without producing anything.
func End(result any) Outcome { return Outcome{kind: kindEnd, value: result} }

// Dialog is one registered dialog. Step functions receive the frame they
// own and only ever see their own slots.
type Dialog interface {
	ID() string
	// Interruptible dialogs get the cancel/help check before their own
	// step processing.
	Interruptible() bool
	Run(ctx context.Context, t *Turn, f *state.Frame, input any) (Outcome, error)
}

func getSlots(f *state.Frame, v any) error {
	if len(f.Slots) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Slots, v); err != nil {
		return fmt.Errorf("decode %s slots: %w", f.Dialog, err)
	}
	return nil
}

func putSlots(f *state.Frame, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s slots: %w", f.Dialog, err)
	}
	f.Slots = blob
	return nil
}
