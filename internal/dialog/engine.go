package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkamau/habaribot/internal/state"
)

const (
	cancelCommand = "cancel"
	helpCommand   = "help"

	cancelAck = "Cancelling..."
)

// Engine owns the dialog registry and drives one conversation turn at a
// time: it resumes the suspended frame at the top of the stack, or starts
// the root dialog when the conversation is idle.
type Engine struct {
	root    string
	dialogs map[string]Dialog
}

// NewEngine registers the given dialogs. The first one is the root started
// on idle conversations.
func NewEngine(root Dialog, others ...Dialog) *Engine {
	e := &Engine{
		root:    root.ID(),
		dialogs: map[string]Dialog{root.ID(): root},
	}
	for _, d := range others {
		e.dialogs[d.ID()] = d
	}
	return e
}

// HandleTurn processes one inbound message against the conversation held by
// the turn. On return the conversation's stack reflects where the dialogs
// suspended; the caller persists it.
func (e *Engine) HandleTurn(ctx context.Context, t *Turn, text string) error {
	conv := t.Conversation

	top := conv.Top()
	if top == nil {
		conv.Push(state.Frame{Dialog: e.root})
		return e.run(ctx, t, nil)
	}

	d, ok := e.dialogs[top.Dialog]
	if !ok {
		return fmt.Errorf("unknown dialog %q on stack", top.Dialog)
	}

	if d.Interruptible() {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case cancelCommand:
			t.Say(cancelAck)
			conv.Pop()
			// The parent resumes as if the dialog ended with no result.
			return e.run(ctx, t, nil)
		case helpCommand, "?":
			// Help runs to completion on top of the interrupted dialog,
			// which stays suspended at the exact step it was on.
			return e.runInline(ctx, t, helpDialogID)
		}
	}

	return e.run(ctx, t, text)
}

// run applies step outcomes until a dialog suspends or the stack empties.
func (e *Engine) run(ctx context.Context, t *Turn, input any) error {
	conv := t.Conversation

	for {
		top := conv.Top()
		if top == nil {
			return nil
		}

		d, ok := e.dialogs[top.Dialog]
		if !ok {
			return fmt.Errorf("unknown dialog %q on stack", top.Dialog)
		}

		out, err := d.Run(ctx, t, top, input)
		if err != nil {
			return err
		}

		switch out.kind {
		case kindSuspend:
			// The next user message belongs to the following step.
			top.Step++
			return nil
		case kindNext:
			top.Step++
			input = out.value
		case kindBegin:
			// Advance the parent now; the child's result will resume it
			// at the next step.
			top.Step++
			frame := state.Frame{Dialog: out.dialog}
			if out.seed != nil {
				if err := putSlots(&frame, out.seed); err != nil {
					return err
				}
			}
			conv.Push(frame)
			input = nil
		case kindReplace:
			frame := state.Frame{Dialog: out.dialog}
			if out.seed != nil {
				if err := putSlots(&frame, out.seed); err != nil {
					return err
				}
			}
			*top = frame
			input = nil
		case kindEnd:
			conv.Pop()
			input = out.value
		default:
			return fmt.Errorf("dialog %q returned unknown outcome", top.Dialog)
		}
	}
}

// runInline executes a dialog to completion on a scratch frame, leaving the
// conversation stack untouched. Used for the help interrupt.
func (e *Engine) runInline(ctx context.Context, t *Turn, dialogID string) error {
	d, ok := e.dialogs[dialogID]
	if !ok {
		return fmt.Errorf("unknown dialog %q", dialogID)
	}

	frame := state.Frame{Dialog: dialogID}
	var input any
	for {
		out, err := d.Run(ctx, t, &frame, input)
		if err != nil {
			return err
		}
		switch out.kind {
		case kindNext:
			frame.Step++
			input = out.value
		case kindEnd, kindSuspend:
			return nil
		default:
			return fmt.Errorf("dialog %q cannot %v while interrupting", dialogID, out.kind)
		}
	}
}
