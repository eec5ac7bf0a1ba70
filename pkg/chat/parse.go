package chat

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMood is used when the model emits no Mood label.
	DefaultMood = "neutral"

	// FallbackReply is substituted when the model emits no usable Reply
	// line.
	FallbackReply = "Hmm... I need a moment to think."

	// OutOfCharacterReply is substituted when the reply trips the banned
	// phrase filter.
	OutOfCharacterReply = "Forgive me, my mind wandered. What were we talking about?"

	// UnavailableReply is substituted when the backend fails or times out.
	UnavailableReply = "Sorry, I can't talk right now."
)

// bannedPhrases signal the generator broke character with a self-referential
// AI disclosure. Matched case-insensitively as substrings of the final reply.
var bannedPhrases = []string{
	"i am an ai",
	"as an ai",
	"i am a chatbot",
	"i am a program",
	"i am artificial",
	"i do not have a name",
	"as a language model",
	"npc",
	" ai ",
}

// ParseReply extracts a (mood, reply) pair from raw model output.
//
// The model is instructed to emit two labeled lines, "Mood: <label>" and
// "Reply: <sentence>", in either order, possibly with other lines between
// them. Labels match case-insensitively by prefix and the first occurrence
// of each wins. A missing mood defaults to DefaultMood; a missing or empty
// reply is replaced with FallbackReply. Independently, a reply containing a
// banned phrase is replaced with OutOfCharacterReply. Both substitutions
// may fire on the same output.
func ParseReply(raw string) (mood, reply string) {
	mood = ""
	reply = ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case mood == "" && strings.HasPrefix(lower, "mood:"):
			mood = strings.TrimSpace(line[len("mood:"):])
		case reply == "" && strings.HasPrefix(lower, "reply:"):
			reply = strings.TrimSpace(line[len("reply:"):])
		}
	}

	if mood == "" {
		mood = DefaultMood
	}
	if reply == "" {
		reply = FallbackReply
	}
	if ContainsBannedPhrase(reply) {
		reply = OutOfCharacterReply
	}
	return mood, reply
}

// ContainsBannedPhrase reports whether text contains any phrase from the
// out-of-character list, matched case-insensitively.
func ContainsBannedPhrase(text string) bool {
	lower := cases.Lower(language.English).String(text)
	// Pad so word-ish entries like " ai " can match at the edges.
	padded := " " + lower + " "
	for _, phrase := range bannedPhrases {
		if strings.Contains(padded, phrase) {
			return true
		}
	}
	return false
}
