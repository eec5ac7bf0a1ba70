package storage

import (
	"context"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/eval"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), logger)
	return store, mr
}

func TestRedisStorage_Transcript(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	id := uuid.New()

	turns := []chat.Turn{
		{Speaker: chat.SpeakerPlayer, Text: "Hello there"},
		{Speaker: chat.SpeakerNPC, Text: "Well met, traveler!"},
	}

	if err := store.SaveTranscript(ctx, id, turns); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	loaded, err := store.LoadTranscript(ctx, id)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Loaded %d turns, want 2", len(loaded))
	}
	if loaded[1].Text != "Well met, traveler!" {
		t.Errorf("turn text = %q", loaded[1].Text)
	}
}

func TestRedisStorage_LoadMissingTranscript(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() {
		_ = store.Close()
	}()

	loaded, err := store.LoadTranscript(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing transcript, got %v", loaded)
	}
}

func TestRedisStorage_RecordMetrics(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	id := uuid.New()

	m := &eval.Metrics{Perplexity: 12.5, BLEU1: 0.4, METEOR: 0.3, Distinct1: 1.0}
	if err := store.RecordMetrics(ctx, id, m); err != nil {
		t.Fatalf("RecordMetrics failed: %v", err)
	}

	// Infinite perplexity must serialize (as null) rather than fail.
	inf := &eval.Metrics{Perplexity: math.Inf(1), BLEU1: 0.1}
	if err := store.RecordMetrics(ctx, id, inf); err != nil {
		t.Fatalf("RecordMetrics with +Inf perplexity failed: %v", err)
	}

	entries, err := mr.List("metrics:" + id.String())
	if err != nil {
		t.Fatalf("Failed to read metrics list: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Recorded %d entries, want 2", len(entries))
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer func() {
		_ = store.Close()
	}()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Expected ping error after server close")
	}
}
