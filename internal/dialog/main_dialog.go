package dialog

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/mkamau/habaribot/internal/cards"
	"github.com/mkamau/habaribot/internal/recognize"
	"github.com/mkamau/habaribot/internal/state"
)

const mainDialogID = "main"

const (
	greetingMessage = "Hi there! What can I help you with today?\nSay something like \"**check the weather for London**\" or \"**Help**\""
	restartMessage  = "What else can I do for you?"

	recognizerUnavailableNote = "NOTE: intent recognition is not configured. " +
		"Add LUIS_APP_ID, LUIS_API_KEY and LUIS_API_HOSTNAME to the .env file to enable all capabilities."

	didntUnderstandMessage = "Sorry, I didn't get that. Please try asking in a different way " +
		"eg, \"check weather, check the weather for Nairobi\""
)

// MainDialog is the top-level menu: it greets, classifies intent, dispatches
// to the matching slot-filling dialog, and formats whatever comes back.
type MainDialog struct {
	// recognizer is nil when intent recognition is unavailable; the dialog
	// then skips straight to the weather path.
	recognizer recognize.Recognizer

	// OnIntent, when set, observes every classified intent.
	OnIntent func(recognize.Intent)
}

func NewMainDialog(recognizer recognize.Recognizer) *MainDialog {
	return &MainDialog{recognizer: recognizer}
}

func (d *MainDialog) ID() string          { return mainDialogID }
func (d *MainDialog) Interruptible() bool { return false }

func (d *MainDialog) Run(ctx context.Context, t *Turn, f *state.Frame, input any) (Outcome, error) {
	switch f.Step {
	case 0:
		return d.introStep(t)
	case 1:
		return d.actStep(ctx, t, input)
	case 2:
		return d.finalStep(t, input)
	default:
		return Outcome{}, fmt.Errorf("main dialog has no step %d", f.Step)
	}
}

func (d *MainDialog) introStep(t *Turn) (Outcome, error) {
	if d.recognizer == nil {
		t.Say(recognizerUnavailableNote)
		return Next(nil), nil
	}

	msg := greetingMessage
	if t.Conversation.RestartMessage != "" {
		msg = t.Conversation.RestartMessage
		t.Conversation.RestartMessage = ""
	}
	t.Prompt(msg, "check the weather", "check covid statistics", "help")
	return Suspend(), nil
}

func (d *MainDialog) actStep(ctx context.Context, t *Turn, input any) (Outcome, error) {
	if d.recognizer == nil {
		return Begin(weatherDialogID, weatherSlots{}), nil
	}

	text, _ := input.(string)
	result, err := d.recognizer.Recognize(ctx, text)
	if err != nil {
		// A failing recognizer must not kill the turn; treat the
		// utterance as unrecognized.
		log.Printf("recognizer error: %v", err)
		result = recognize.Result{Intent: recognize.IntentNone}
	}
	d.notifyIntent(result.Intent)

	switch result.Intent {
	case recognize.IntentCheckWeather:
		return Begin(weatherDialogID, weatherSlots{Location: result.City}), nil
	case recognize.IntentCheckCovidStat:
		return Begin(covidDialogID, covidSlots{Name: result.Country}), nil
	case recognize.IntentHelp:
		return Begin(helpDialogID, nil), nil
	default:
		t.Say(didntUnderstandMessage)
		return Next(nil), nil
	}
}

func (d *MainDialog) finalStep(t *Turn, input any) (Outcome, error) {
	switch result := input.(type) {
	case WeatherOutcome:
		temp := int(math.Floor(result.Weather.TempKelvin - 273.15))
		t.Say(fmt.Sprintf("The weather in **%s** is **%s** and the temperature is **%d**° Celsius today.",
			titleCase(result.Location), result.Weather.Description, temp))
	case CovidOutcome:
		title := "COVID-19 statistics for " + titleCase(result.Name)
		if result.World {
			title = "COVID-19 statistics for the world"
		}
		t.SendCard(cards.CovidStats(title, formatLastUpdate(result.Stats.LastUpdate),
			result.Stats.Confirmed, result.Stats.Recovered, result.Stats.Deaths))
	}

	t.Conversation.RestartMessage = restartMessage
	return Replace(mainDialogID, nil), nil
}

func (d *MainDialog) notifyIntent(intent recognize.Intent) {
	if d.OnIntent != nil {
		d.OnIntent(intent)
	}
}

// titleCase uppercases the first letter only, leaving the rest untouched.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatLastUpdate renders the upstream timestamp human-readably, falling
// back to the raw value when it is not RFC 3339.
func formatLastUpdate(raw string) string {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return ts.Format("02 Jan 2006 15:04 MST")
}
