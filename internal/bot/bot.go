// Package bot is the turn runtime: it serializes turns per conversation,
// restores and persists dialog state around each one, and turns engine
// failures into user-facing messages instead of dead conversations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mkamau/habaribot/internal/dialog"
	"github.com/mkamau/habaribot/internal/observability"
	"github.com/mkamau/habaribot/internal/protocol"
	"github.com/mkamau/habaribot/internal/recognize"
	"github.com/mkamau/habaribot/internal/state"
)

const (
	turnErrorMessage   = "The bot encounted an error or bug."
	turnRestartMessage = "Our Technicians are working on this. Please restart the conversation"
)

// Config lists the bot's collaborators. Store, Weather, Covid and Metrics
// are required; Recognizer may be nil for the degraded path.
type Config struct {
	Recognizer recognize.Recognizer
	Weather    dialog.WeatherService
	Covid      dialog.CovidService
	Store      state.Store
	Metrics    *observability.Metrics

	CovidWorldBrief bool
}

// Bot processes inbound messages one turn at a time per conversation.
type Bot struct {
	store   state.Store
	engine  *dialog.Engine
	metrics *observability.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires the dialog set. Missing required collaborators are a
// configuration error and abort construction.
func New(cfg Config) (*Bot, error) {
	if cfg.Store == nil {
		return nil, errors.New("bot: missing required state store")
	}
	if cfg.Weather == nil {
		return nil, errors.New("bot: missing required weather client")
	}
	if cfg.Covid == nil {
		return nil, errors.New("bot: missing required covid client")
	}
	if cfg.Metrics == nil {
		return nil, errors.New("bot: missing required metrics")
	}

	weather := &instrumentedWeather{svc: cfg.Weather, metrics: cfg.Metrics}
	covid := &instrumentedCovid{svc: cfg.Covid, metrics: cfg.Metrics}

	main := dialog.NewMainDialog(cfg.Recognizer)
	main.OnIntent = func(intent recognize.Intent) {
		cfg.Metrics.IntentsTotal.WithLabelValues(string(intent)).Inc()
	}

	engine := dialog.NewEngine(
		main,
		dialog.NewWeatherDialog(weather),
		dialog.NewCovidDialog(covid, cfg.CovidWorldBrief),
		dialog.NewHelpDialog(),
	)

	return &Bot{
		store:   cfg.Store,
		engine:  engine,
		metrics: cfg.Metrics,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// HandleTurn runs one inbound message to completion and returns the replies
// to send. Turns for the same conversation are strictly sequential; distinct
// conversations proceed concurrently.
func (b *Bot) HandleTurn(ctx context.Context, conversationID, text string) ([]protocol.BotMessage, error) {
	lock := b.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	b.metrics.ActiveTurns.Inc()
	defer b.metrics.ActiveTurns.Dec()
	start := time.Now()

	conv, err := b.store.Load(ctx, conversationID)
	if errors.Is(err, state.ErrNotFound) {
		conv = &state.Conversation{ID: conversationID}
		b.metrics.ConversationsStarted.Inc()
	} else if err != nil {
		b.metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}

	turn := dialog.NewTurn(conv)
	if err := b.engine.HandleTurn(ctx, turn, text); err != nil {
		// A turn must never kill the conversation runtime: tell the user,
		// clear the broken stack, start over next turn.
		log.Printf("turn error for conversation %s: %v", conversationID, err)
		b.metrics.TurnsTotal.WithLabelValues("error").Inc()

		conv.Stack = nil
		conv.RestartMessage = ""
		if saveErr := b.store.Save(ctx, conv); saveErr != nil {
			log.Printf("save after turn error for conversation %s: %v", conversationID, saveErr)
		}
		return []protocol.BotMessage{
			{Type: protocol.TypeBotMessage, Text: turnErrorMessage, InputHint: protocol.HintExpectingInput},
			{Type: protocol.TypeBotMessage, Text: turnRestartMessage, InputHint: protocol.HintExpectingInput},
		}, nil
	}

	if err := b.store.Save(ctx, conv); err != nil {
		b.metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save conversation %s: %w", conversationID, err)
	}

	b.metrics.TurnsTotal.WithLabelValues("ok").Inc()
	b.metrics.ObserveTurnLatency(time.Since(start))
	return turn.Replies(), nil
}

func (b *Bot) conversationLock(conversationID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[conversationID] = lock
	}
	return lock
}
