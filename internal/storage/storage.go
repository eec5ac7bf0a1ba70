package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/eval"
)

// Storage persists conversation transcripts and evaluation telemetry.
// It is entirely optional to the dialogue engine: a nil store disables
// telemetry without changing engine behavior.
type Storage interface {
	// Ping tests the connection.
	Ping(ctx context.Context) error

	// SaveTranscript stores the full turn sequence for a conversation.
	SaveTranscript(ctx context.Context, id uuid.UUID, turns []chat.Turn) error

	// LoadTranscript retrieves a stored transcript, or nil if absent.
	LoadTranscript(ctx context.Context, id uuid.UUID) ([]chat.Turn, error)

	// RecordMetrics appends one evaluation measurement for a conversation.
	RecordMetrics(ctx context.Context, id uuid.UUID, m *eval.Metrics) error

	// Close closes the connection.
	Close() error
}
