package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/eval"
)

// Generator is the generation backend surface the engine depends on.
// internal/services.LLMService satisfies it.
type Generator interface {
	Generate(ctx context.Context, req *chat.GenerationRequest) (*chat.GenerateOutput, error)
}

// Telemetry receives transcripts and evaluation metrics off the dialogue
// path. A nil Telemetry disables recording. internal/storage.Storage
// satisfies it.
type Telemetry interface {
	SaveTranscript(ctx context.Context, id uuid.UUID, turns []chat.Turn) error
	RecordMetrics(ctx context.Context, id uuid.UUID, m *eval.Metrics) error
}

// worker runs generation calls on background goroutines and deposits
// exactly one immutable GenerationResult per dispatch into the mailbox.
// It never returns an error to the controller: backend failure, timeout
// and malformed output all converge to a displayable fallback result.
type worker struct {
	backend   Generator
	telemetry Telemetry
	timeout   time.Duration
	logger    *slog.Logger
}

// dispatch starts one background generation for req. The controller
// guarantees at most one outstanding dispatch per conversation; the mailbox
// has capacity one, so the send below can never block.
func (w *worker) dispatch(req *chat.GenerationRequest, mailbox chan<- chat.GenerationResult) {
	go func() {
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		res := chat.GenerationResult{
			ConversationID: req.ConversationID,
			Mood:           chat.DefaultMood,
		}

		out, err := w.backend.Generate(ctx, req)
		if err != nil {
			w.logger.Warn("Generation backend failed, substituting fallback",
				"conversation_id", req.ConversationID.String(),
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			res.Reply = chat.UnavailableReply
			res.Fallback = true
		} else {
			res.Mood, res.Reply = chat.ParseReply(out.Text)
			res.LogProbs = out.LogProbs
			w.logger.Debug("Generation completed",
				"conversation_id", req.ConversationID.String(),
				"mood", res.Mood,
				"duration_ms", time.Since(start).Milliseconds())
		}

		select {
		case mailbox <- res:
		default:
			// Should be unreachable while the one-outstanding-dispatch
			// contract holds.
			w.logger.Error("Mailbox full, dropping generation result",
				"conversation_id", req.ConversationID.String())
		}

		// Advisory metrics run after delivery so they can never delay
		// the dialogue path.
		if !res.Fallback {
			w.evaluate(req, &res)
		}
	}()
}

// evaluate computes and records text-quality metrics for a finalized reply.
// Failures are logged and swallowed.
func (w *worker) evaluate(req *chat.GenerationRequest, res *chat.GenerationResult) {
	m, err := eval.Evaluate(res.Reply, req.PlayerText, res.LogProbs)
	if err != nil {
		w.logger.Debug("Evaluation skipped",
			"conversation_id", req.ConversationID.String(),
			"error", err)
		return
	}

	w.logger.Info("Reply evaluation",
		"conversation_id", req.ConversationID.String(),
		"perplexity", m.Perplexity,
		"bleu_1", m.BLEU1,
		"meteor", m.METEOR,
		"distinct_1", m.Distinct1)

	if w.telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.telemetry.RecordMetrics(ctx, req.ConversationID, m); err != nil {
		w.logger.Warn("Failed to record evaluation metrics",
			"conversation_id", req.ConversationID.String(),
			"error", err)
	}
}
