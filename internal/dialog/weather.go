package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkamau/habaribot/internal/state"
	"github.com/mkamau/habaribot/internal/upstream"
)

const weatherDialogID = "weather"

const (
	weatherPromptMessage = "Which city would you like to search the weather for?"
	invalidCityMessage   = "Sorry, I couldn't find that. Please enter a valid City"
)

// WeatherService is the weather lookup the dialog depends on.
type WeatherService interface {
	CurrentByCity(ctx context.Context, city string) (upstream.Weather, error)
}

// WeatherOutcome is what the weather dialog returns to its caller.
type WeatherOutcome struct {
	Location string
	Weather  upstream.Weather
}

type weatherSlots struct {
	Location string            `json:"location,omitempty"`
	Weather  *upstream.Weather `json:"weather,omitempty"`
}

// WeatherDialog collects a city name and fetches its current weather.
// Steps: await city, fetch weather, done.
type WeatherDialog struct {
	weather WeatherService
}

func NewWeatherDialog(weather WeatherService) *WeatherDialog {
	return &WeatherDialog{weather: weather}
}

func (d *WeatherDialog) ID() string          { return weatherDialogID }
func (d *WeatherDialog) Interruptible() bool { return true }

func (d *WeatherDialog) Run(ctx context.Context, t *Turn, f *state.Frame, input any) (Outcome, error) {
	var slots weatherSlots
	if err := getSlots(f, &slots); err != nil {
		return Outcome{}, err
	}

	switch f.Step {
	case 0:
		if strings.TrimSpace(slots.Location) == "" {
			t.Prompt(weatherPromptMessage, "Nairobi", "Dubai", "London", "Lagos")
			return Suspend(), nil
		}
		return Next(slots.Location), nil

	case 1:
		city, _ := input.(string)
		slots.Location = strings.TrimSpace(city)

		weather, err := d.weather.CurrentByCity(ctx, slots.Location)
		if err != nil {
			t.Say(invalidCityMessage)
			return End(nil), nil
		}

		slots.Weather = &weather
		if err := putSlots(f, slots); err != nil {
			return Outcome{}, err
		}
		return Next(nil), nil

	case 2:
		if slots.Weather == nil {
			return End(nil), nil
		}
		return End(WeatherOutcome{Location: slots.Location, Weather: *slots.Weather}), nil

	default:
		return Outcome{}, fmt.Errorf("weather dialog has no step %d", f.Step)
	}
}
