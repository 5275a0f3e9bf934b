package repository

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/errors"
)

const testPGN = `[Event "Casual Game"]
[White "A"]
[Black "B"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 1-0`

func TestParseGameSplitsPlies(t *testing.T) {
	parsed, err := ParseGame(testPGN)
	if err != nil {
		t.Fatalf("ParseGame: %v", err)
	}

	if parsed.ID == "" {
		t.Error("parsed game should get an id")
	}
	if parsed.Headers["Event"] != "Casual Game" {
		t.Errorf("Event header = %q", parsed.Headers["Event"])
	}
	if len(parsed.Moves) != 4 {
		t.Fatalf("got %d moves, want 4", len(parsed.Moves))
	}

	first := parsed.Moves[0]
	if first.Ply != 1 || first.SAN != "e4" || first.UCI != "e2e4" {
		t.Errorf("first move = %+v", first)
	}
	if !strings.Contains(first.FEN, " b ") {
		t.Errorf("position after e4 should have black to move, got %q", first.FEN)
	}
	if parsed.Moves[2].SAN != "Nf3" {
		t.Errorf("third move = %q, want Nf3", parsed.Moves[2].SAN)
	}
}

func TestParseGameRejectsGarbage(t *testing.T) {
	if _, err := ParseGame("not a pgn at all %%"); err == nil {
		t.Fatal("garbage PGN should not parse")
	}
}

func TestMemoryGameStoreRoundTrip(t *testing.T) {
	repo := NewGameRepository(nil, zap.NewNop().Sugar())
	ctx := context.Background()

	parsed, err := ParseGame(testPGN)
	if err != nil {
		t.Fatalf("ParseGame: %v", err)
	}
	if err := repo.Save(ctx, parsed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Get(ctx, parsed.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.ID != parsed.ID || len(loaded.Moves) != len(parsed.Moves) {
		t.Errorf("round trip mismatch: %+v", loaded)
	}

	if _, err := repo.Get(ctx, "missing"); err != errors.ErrGameNotFound {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}
