package npc

import "github.com/jrj02/npc-dialogue/pkg/chat"

// MaxHistoryTurns bounds conversational memory to the last 3 exchanges
// (player + npc turn each).
const MaxHistoryTurns = 6

// History is the ordered, bounded conversation log owned by an NPC profile.
// It is not safe for concurrent use; the conversation controller serializes
// all appends on the polling side.
type History struct {
	turns []chat.Turn
}

// Append pushes a turn and evicts the oldest entries FIFO so that at most
// MaxHistoryTurns are retained.
func (h *History) Append(speaker, text string) {
	h.turns = append(h.turns, chat.Turn{Speaker: speaker, Text: text})
	if len(h.turns) > MaxHistoryTurns {
		h.turns = h.turns[len(h.turns)-MaxHistoryTurns:]
	}
}

// Snapshot returns a copy of the retained turns, oldest first. The copy is
// what crosses the thread boundary inside a GenerationRequest.
func (h *History) Snapshot() []chat.Turn {
	if len(h.turns) == 0 {
		return nil
	}
	out := make([]chat.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Clear drops all retained turns.
func (h *History) Clear() {
	h.turns = nil
}
