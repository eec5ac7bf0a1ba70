package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/eval"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	PingFunc           func(ctx context.Context) error
	SaveTranscriptFunc func(ctx context.Context, id uuid.UUID, turns []chat.Turn) error

	transcripts map[uuid.UUID][]chat.Turn
	metrics     map[uuid.UUID][]*eval.Metrics

	mu sync.Mutex
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new in-memory mock store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		transcripts: make(map[uuid.UUID][]chat.Turn),
		metrics:     make(map[uuid.UUID][]*eval.Metrics),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockStorage) SaveTranscript(ctx context.Context, id uuid.UUID, turns []chat.Turn) error {
	if m.SaveTranscriptFunc != nil {
		return m.SaveTranscriptFunc(ctx, id, turns)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	m.transcripts[id] = copied
	return nil
}

func (m *MockStorage) LoadTranscript(ctx context.Context, id uuid.UUID) ([]chat.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcripts[id], nil
}

func (m *MockStorage) RecordMetrics(ctx context.Context, id uuid.UUID, metrics *eval.Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[id] = append(m.metrics[id], metrics)
	return nil
}

// RecordedMetrics returns all metrics recorded for a conversation.
func (m *MockStorage) RecordedMetrics(id uuid.UUID) []*eval.Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics[id]
}

func (m *MockStorage) Close() error {
	return nil
}
