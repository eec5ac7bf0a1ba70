package prompts

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/npc"
)

func testProfile(t *testing.T) *npc.Profile {
	t.Helper()
	p, err := npc.NewProfile(&npc.ProfileSpec{
		ID:              "kara",
		Name:            "Kara",
		Persona:         "You are Kara, a proud monster tamer.",
		DefeatedPersona: "You are Kara, humbled after your defeat.",
	})
	if err != nil {
		t.Fatalf("failed to build profile: %v", err)
	}
	return p
}

func TestComposeSystemPrompt(t *testing.T) {
	p := testProfile(t)
	p.Mood = "suspicious"

	prompt := ComposeSystemPrompt(p)

	if !strings.HasPrefix(prompt, BasePersonaPrompt) {
		t.Error("Prompt must begin with the global preamble")
	}
	if !strings.Contains(prompt, "You are Kara, a proud monster tamer.") {
		t.Error("Prompt must contain the persona")
	}
	if !strings.Contains(prompt, "Current mood: suspicious") {
		t.Error("Prompt must contain the current mood")
	}
}

func TestComposeSystemPrompt_DefeatedVariant(t *testing.T) {
	p := testProfile(t)
	p.Defeated = true

	prompt := ComposeSystemPrompt(p)
	if !strings.Contains(prompt, "humbled after your defeat") {
		t.Error("Defeated profiles must use the defeated persona variant")
	}
}

func TestComposeSystemPrompt_EmptyMood(t *testing.T) {
	p := testProfile(t)
	p.Mood = ""

	if !strings.Contains(ComposeSystemPrompt(p), "Current mood: neutral") {
		t.Error("Empty mood must fall back to neutral")
	}
}

func TestBuildRequest(t *testing.T) {
	p := testProfile(t)
	p.History.Append(chat.SpeakerPlayer, "hello")
	p.History.Append(chat.SpeakerNPC, "well met")

	id := uuid.New()
	req, err := BuildRequest(id, p, "Tell me about\nthe shrine", 0)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.ConversationID != id {
		t.Error("ConversationID not carried through")
	}
	if req.PlayerText != "Tell me about the shrine" {
		t.Errorf("PlayerText = %q, newlines should be flattened", req.PlayerText)
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", req.MaxTokens, DefaultMaxTokens)
	}
	if len(req.History) != 2 {
		t.Errorf("History snapshot has %d turns, want 2", len(req.History))
	}

	// Snapshot must not alias live history.
	p.History.Append(chat.SpeakerPlayer, "another")
	if len(req.History) != 2 {
		t.Error("Request history must be a snapshot, not a live reference")
	}
}

func TestBuildRequest_EmptyText(t *testing.T) {
	if _, err := BuildRequest(uuid.New(), testProfile(t), "   ", 0); err == nil {
		t.Error("Expected validation error for empty player text")
	}
}
