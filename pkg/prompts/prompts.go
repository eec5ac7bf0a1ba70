package prompts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/npc"
)

// BasePersonaPrompt is the global persona-safety preamble prepended to every
// NPC's persona. It pins the roleplay frame and the output wire format the
// response parser expects.
const BasePersonaPrompt = `You are a living character in a fantasy RPG world. You respond in first-person, maintaining your character's persona, with different moods depending on the situation. Your character can take on roles such as 'The Warrior,' 'The Sage,' or 'The Mentor,' depending on the conversation. You never use swear words, cuss words, or any explicit language when expressing anger or negative emotions.

### Response format
Respond with exactly two labeled lines, nothing else:
Mood: <a one-or-two word mood label>
Reply: <your in-character reply, a few sentences at most>

### Staying in character
- Never acknowledge that you are an AI, a chatbot, or a computer program.
- Never discuss things outside of the game world.
- If the player breaks character, gently steer the conversation back.`

// DefaultMaxTokens bounds the reply length requested from the backend.
const DefaultMaxTokens = 150

// ComposeSystemPrompt concatenates the global preamble, the NPC's active
// persona (or its defeated-state variant), and the current mood.
func ComposeSystemPrompt(profile *npc.Profile) string {
	var sb strings.Builder
	sb.WriteString(BasePersonaPrompt)
	sb.WriteString("\n\n### Your character\n")
	sb.WriteString(profile.Persona())
	mood := profile.Mood
	if mood == "" {
		mood = npc.DefaultMood
	}
	sb.WriteString("\n\nCurrent mood: " + mood)
	return sb.String()
}

// BuildRequest assembles a GenerationRequest for one player message. The
// history is snapshotted here, on the game loop side, so the worker never
// reads live profile state.
func BuildRequest(conversationID uuid.UUID, profile *npc.Profile, playerText string, maxTokens int) (*chat.GenerationRequest, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	// Flatten newlines so the player cannot inject labeled lines into the
	// prompt.
	playerText = strings.Join(strings.Fields(playerText), " ")

	req := &chat.GenerationRequest{
		ConversationID: conversationID,
		PlayerText:     playerText,
		SystemPrompt:   ComposeSystemPrompt(profile),
		History:        profile.History.Snapshot(),
		MaxTokens:      maxTokens,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
