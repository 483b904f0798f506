package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	conv := &Conversation{
		ID: "c1",
		Stack: []Frame{
			{Dialog: "main", Step: 1},
			{Dialog: "weather", Step: 0, Slots: json.RawMessage(`{"location":"Nairobi"}`)},
		},
		RestartMessage: "What else can I do for you?",
	}
	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Stack) != 2 {
		t.Fatalf("stack depth = %d, want 2", len(got.Stack))
	}
	if got.Top().Dialog != "weather" {
		t.Fatalf("top dialog = %q, want weather", got.Top().Dialog)
	}
	if string(got.Top().Slots) != `{"location":"Nairobi"}` {
		t.Fatalf("top slots = %s", got.Top().Slots)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not set on save")
	}
}

func TestInMemoryStoreMiss(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestConversationStackOps(t *testing.T) {
	c := &Conversation{ID: "c1"}
	if c.Top() != nil {
		t.Fatalf("Top() on empty stack = %+v, want nil", c.Top())
	}
	if _, ok := c.Pop(); ok {
		t.Fatalf("Pop() on empty stack ok = true")
	}

	c.Push(Frame{Dialog: "main"})
	c.Push(Frame{Dialog: "weather", Step: 1})
	if c.Top().Dialog != "weather" {
		t.Fatalf("Top() = %q, want weather", c.Top().Dialog)
	}

	f, ok := c.Pop()
	if !ok || f.Dialog != "weather" || f.Step != 1 {
		t.Fatalf("Pop() = %+v, %v", f, ok)
	}
	if c.Top().Dialog != "main" {
		t.Fatalf("Top() after pop = %q, want main", c.Top().Dialog)
	}
}
