package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// SpeakerPlayer tags a history turn spoken by the player.
	SpeakerPlayer = "player"

	// SpeakerNPC tags a history turn spoken by the NPC.
	SpeakerNPC = "npc"
)

// Turn is a single tagged entry in an NPC's conversation history.
type Turn struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
}

// GenerationRequest carries everything the generation worker needs to
// produce one NPC reply. The history is a snapshot copy; the worker never
// touches live NPC state.
type GenerationRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	PlayerText     string    `json:"player_text"`
	SystemPrompt   string    `json:"system_prompt"`
	History        []Turn    `json:"history,omitempty"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
}

// GenerationResult is the sole unit handed back across the thread boundary.
// It is immutable once written to the mailbox. ConversationID lets the
// controller discard results that arrive for an ended conversation.
type GenerationResult struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Reply          string    `json:"reply"`
	Mood           string    `json:"mood"`

	// LogProbs holds backend-reported per-token log-probabilities of the
	// reply, when the backend provides them. Consumed only by the
	// evaluation harness.
	LogProbs []float64 `json:"log_probs,omitempty"`

	// Fallback marks results synthesized from a backend failure or
	// timeout rather than real model output.
	Fallback bool `json:"fallback,omitempty"`
}

// GenerateOutput is the raw product of one backend generation call, before
// the response parser extracts the (mood, reply) pair.
type GenerateOutput struct {
	// Text is the unparsed model output, expected (but not guaranteed)
	// to contain the Mood:/Reply: labeled lines.
	Text string

	// LogProbs holds per-token log-probabilities when the backend
	// reports them. Nil otherwise.
	LogProbs []float64
}

func (r *GenerationRequest) Validate() error {
	if r.ConversationID == uuid.Nil {
		return fmt.Errorf("conversation id is required")
	}
	if r.PlayerText == "" {
		return fmt.Errorf("player text cannot be empty")
	}
	if r.SystemPrompt == "" {
		return fmt.Errorf("system prompt cannot be empty")
	}
	return nil
}
