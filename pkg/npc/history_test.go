package npc

import (
	"fmt"
	"testing"

	"github.com/jrj02/npc-dialogue/pkg/chat"
)

func TestHistory_Bound(t *testing.T) {
	var h History

	for i := 0; i < 20; i++ {
		h.Append(chat.SpeakerPlayer, fmt.Sprintf("line %d", i))
	}

	if h.Len() != MaxHistoryTurns {
		t.Fatalf("Len = %d, want %d", h.Len(), MaxHistoryTurns)
	}

	// The retained entries are exactly the most recent ones, in order.
	snap := h.Snapshot()
	for i, turn := range snap {
		want := fmt.Sprintf("line %d", 20-MaxHistoryTurns+i)
		if turn.Text != want {
			t.Errorf("turn %d = %q, want %q", i, turn.Text, want)
		}
	}
}

func TestHistory_UnderBound(t *testing.T) {
	var h History
	h.Append(chat.SpeakerPlayer, "hello")
	h.Append(chat.SpeakerNPC, "well met")

	if h.Len() != 2 {
		t.Errorf("Len = %d, want 2", h.Len())
	}
	snap := h.Snapshot()
	if snap[0].Speaker != chat.SpeakerPlayer || snap[1].Speaker != chat.SpeakerNPC {
		t.Errorf("unexpected speaker order: %+v", snap)
	}
}

func TestHistory_SnapshotIsCopy(t *testing.T) {
	var h History
	h.Append(chat.SpeakerPlayer, "original")

	snap := h.Snapshot()
	snap[0].Text = "mutated"

	if h.Snapshot()[0].Text != "original" {
		t.Error("Snapshot must not alias internal storage")
	}
}

func TestHistory_EmptySnapshot(t *testing.T) {
	var h History
	if h.Snapshot() != nil {
		t.Error("Expected nil snapshot for empty history")
	}
}
