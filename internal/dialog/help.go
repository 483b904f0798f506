package dialog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkamau/habaribot/internal/cards"
	"github.com/mkamau/habaribot/internal/state"
)

const helpDialogID = "help"

const helpHintMessage = "Here is what I can do for you:"

// HelpDialog shows the usage card and ends immediately, handing back
// whatever seed it was given. It never calls out and never suspends.
type HelpDialog struct{}

func NewHelpDialog() *HelpDialog { return &HelpDialog{} }

func (d *HelpDialog) ID() string          { return helpDialogID }
func (d *HelpDialog) Interruptible() bool { return true }

func (d *HelpDialog) Run(_ context.Context, t *Turn, f *state.Frame, _ any) (Outcome, error) {
	if f.Step != 0 {
		return Outcome{}, fmt.Errorf("help dialog has no step %d", f.Step)
	}

	t.Say(helpHintMessage)
	t.SendCard(cards.Help())

	if len(f.Slots) == 0 {
		return End(nil), nil
	}
	var seed map[string]any
	if err := json.Unmarshal(f.Slots, &seed); err != nil {
		return Outcome{}, fmt.Errorf("decode help seed: %w", err)
	}
	return End(seed), nil
}
