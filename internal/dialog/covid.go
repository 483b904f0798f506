package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkamau/habaribot/internal/countries"
	"github.com/mkamau/habaribot/internal/state"
	"github.com/mkamau/habaribot/internal/upstream"
)

const covidDialogID = "covid"

const (
	covidPromptMessage    = "Which country do you want to search the statistics for?"
	invalidCountryMessage = "Sorry, I couldn't find that. Please enter a valid full Country name"
)

// CovidService is the statistics lookup the dialog depends on.
type CovidService interface {
	StatsByCountryCode(ctx context.Context, iso2 string) (upstream.Stats, error)
	WorldBrief(ctx context.Context) (upstream.Stats, error)
}

// CovidOutcome is what the covid dialog returns to its caller.
type CovidOutcome struct {
	Name  string
	World bool
	Stats upstream.Stats
}

type covidSlots struct {
	Name  string          `json:"name,omitempty"`
	World bool            `json:"world,omitempty"`
	Stats *upstream.Stats `json:"stats,omitempty"`
}

// CovidDialog collects a country name and fetches its COVID-19 statistics.
// Steps: await country, fetch stats, done.
type CovidDialog struct {
	stats CovidService
	// worldBrief enables the "all" alias for aggregate world statistics.
	worldBrief bool
}

func NewCovidDialog(stats CovidService, worldBrief bool) *CovidDialog {
	return &CovidDialog{stats: stats, worldBrief: worldBrief}
}

func (d *CovidDialog) ID() string          { return covidDialogID }
func (d *CovidDialog) Interruptible() bool { return true }

func (d *CovidDialog) Run(ctx context.Context, t *Turn, f *state.Frame, input any) (Outcome, error) {
	var slots covidSlots
	if err := getSlots(f, &slots); err != nil {
		return Outcome{}, err
	}

	switch f.Step {
	case 0:
		if strings.TrimSpace(slots.Name) == "" {
			suggestions := []string{"Kenya", "USA", "United Kingdom"}
			if d.worldBrief {
				suggestions = append([]string{"All"}, suggestions...)
			}
			t.Prompt(covidPromptMessage, suggestions...)
			return Suspend(), nil
		}
		return Next(slots.Name), nil

	case 1:
		raw, _ := input.(string)
		return d.fetchStep(ctx, t, f, slots, raw)

	case 2:
		if slots.Stats == nil {
			return End(nil), nil
		}
		return End(CovidOutcome{Name: slots.Name, World: slots.World, Stats: *slots.Stats}), nil

	default:
		return Outcome{}, fmt.Errorf("covid dialog has no step %d", f.Step)
	}
}

func (d *CovidDialog) fetchStep(ctx context.Context, t *Turn, f *state.Frame, slots covidSlots, raw string) (Outcome, error) {
	name := strings.TrimSpace(raw)
	lower := strings.ToLower(name)

	if lower == "usa" {
		name = "United States of America"
	}

	if d.worldBrief && lower == "all" {
		stats, err := d.stats.WorldBrief(ctx)
		if err != nil {
			t.Say(invalidCountryMessage)
			return End(nil), nil
		}
		slots.Name = "the world"
		slots.World = true
		slots.Stats = &stats
		if err := putSlots(f, slots); err != nil {
			return Outcome{}, err
		}
		return Next(nil), nil
	}

	// The code lookup uses the normalized name, not the raw reply, so that
	// aliases like "usa" resolve before hitting the table.
	code, ok := countries.Code(name)
	if !ok {
		t.Say(invalidCountryMessage)
		return End(nil), nil
	}

	stats, err := d.stats.StatsByCountryCode(ctx, code)
	if err != nil {
		t.Say(invalidCountryMessage)
		return End(nil), nil
	}

	slots.Name = name
	slots.Stats = &stats
	if err := putSlots(f, slots); err != nil {
		return Outcome{}, err
	}
	return Next(nil), nil
}
