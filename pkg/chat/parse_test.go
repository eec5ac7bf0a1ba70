package chat

import "testing"

func TestParseReply_BothLabels(t *testing.T) {
	mood, reply := ParseReply("Mood: happy\nReply: Well met, traveler!")
	if mood != "happy" {
		t.Errorf("mood = %q, want happy", mood)
	}
	if reply != "Well met, traveler!" {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseReply_ReverseOrderAndNoise(t *testing.T) {
	raw := "Some preamble the model added\nREPLY: Greetings.\nnonsense line\nmood: wary\nMood: ignored-second-occurrence"
	mood, reply := ParseReply(raw)
	if mood != "wary" {
		t.Errorf("mood = %q, want wary (first occurrence wins)", mood)
	}
	if reply != "Greetings." {
		t.Errorf("reply = %q, want Greetings.", reply)
	}
}

func TestParseReply_MissingMood(t *testing.T) {
	mood, reply := ParseReply("Reply: The road north is dangerous.")
	if mood != DefaultMood {
		t.Errorf("mood = %q, want %q", mood, DefaultMood)
	}
	if reply != "The road north is dangerous." {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseReply_MissingReply(t *testing.T) {
	mood, reply := ParseReply("Mood: pensive\nThe model rambled without a label.")
	if mood != "pensive" {
		t.Errorf("mood = %q, want pensive", mood)
	}
	if reply != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestParseReply_EmptyInput(t *testing.T) {
	mood, reply := ParseReply("")
	if mood != DefaultMood || reply != FallbackReply {
		t.Errorf("got (%q, %q), want defaults", mood, reply)
	}
}

func TestParseReply_BannedPhrase(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"ai disclosure", "Mood: furious\nReply: I am an AI and cannot discuss that."},
		{"language model", "Reply: As a language model I cannot feel anger."},
		{"npc mention", "Mood: calm\nReply: I'm just an NPC in this game."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, reply := ParseReply(tc.raw)
			if reply != OutOfCharacterReply {
				t.Errorf("reply = %q, want out-of-character fallback", reply)
			}
		})
	}
}

func TestParseReply_BannedPhraseKeepsMood(t *testing.T) {
	// Mood and reply fallbacks are independent.
	mood, reply := ParseReply("Mood: furious\nReply: I am an AI and cannot discuss that.")
	if mood != "furious" {
		t.Errorf("mood = %q, want furious", mood)
	}
	if reply != OutOfCharacterReply {
		t.Errorf("reply = %q, want out-of-character fallback", reply)
	}
}

func TestContainsBannedPhrase_CleanText(t *testing.T) {
	clean := []string{
		"Well met, traveler!",
		"I said wait by the gate.", // "ai" inside words must not match
		"The rain falls on the plains.",
	}
	for _, text := range clean {
		if ContainsBannedPhrase(text) {
			t.Errorf("false positive on %q", text)
		}
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	req := &GenerationRequest{PlayerText: "hi", SystemPrompt: "persona"}
	if err := req.Validate(); err == nil {
		t.Error("Expected error for missing conversation id")
	}
}
