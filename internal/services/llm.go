package services

import (
	"context"

	"github.com/jrj02/npc-dialogue/pkg/chat"
)

// GenerateOutput is the raw backend product; aliased from the wire-contract
// package so provider implementations satisfy conversation.Generator.
type GenerateOutput = chat.GenerateOutput

// LLMService is the interface the generation worker calls. Implementations
// must be safe to call from a background goroutine.
type LLMService interface {
	// InitModel prepares the model on startup (pulling it if needed).
	InitModel(ctx context.Context, modelName string) error

	// Generate produces one completion for the request.
	Generate(ctx context.Context, req *chat.GenerationRequest) (*chat.GenerateOutput, error)

	// IsModelReady checks whether the model can serve requests.
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}

// message is the role/content shape shared by the Ollama and
// OpenAI-compatible chat APIs.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// buildMessages converts a GenerationRequest into the chat-message array the
// provider APIs consume: system prompt, history snapshot, then the player's
// latest text.
func buildMessages(req *chat.GenerationRequest) []message {
	msgs := make([]message, 0, len(req.History)+2)
	msgs = append(msgs, message{Role: roleSystem, Content: req.SystemPrompt})
	for _, turn := range req.History {
		role := roleUser
		if turn.Speaker == chat.SpeakerNPC {
			role = roleAssistant
		}
		msgs = append(msgs, message{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, message{Role: roleUser, Content: req.PlayerText})
	return msgs
}
