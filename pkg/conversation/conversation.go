// Package conversation implements the player–NPC dialogue engine: a
// poll-based state machine driven once per frame by the host game loop,
// with generation calls running on a background goroutine and results
// delivered through a single-slot mailbox.
package conversation

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/dialog"
	"github.com/jrj02/npc-dialogue/pkg/npc"
)

// State identifies one phase of a conversation's lifecycle.
type State string

const (
	StateIdle            State = "idle"
	StateCollectingInput State = "collecting_input"
	StateGenerating      State = "generating"
	StateDisplaying      State = "displaying"
	StateBattlePending   State = "battle_pending"
	StateEnded           State = "ended"
)

// Named signals returned on invalid operations. The host may log them but
// must never crash on them.
var (
	ErrAlreadyInConversation = errors.New("player is already in a conversation")
	ErrInvalidNPC            = errors.New("target npc is invalid")
	ErrNoConversation        = errors.New("no active conversation")
	ErrRequestInFlight       = errors.New("a generation request is already in flight")
	ErrInvalidState          = errors.New("operation not valid in current state")
)

// ThinkingPlaceholder is the transient page shown while a generation call
// is in flight.
const ThinkingPlaceholder = "... Thinking"

// Conversation is one bounded dialogue session between a player and an NPC.
// Created by Controller.Start and destroyed when the state machine reaches
// StateEnded.
type Conversation struct {
	ID       uuid.UUID
	Profile  *npc.Profile
	PlayerID string

	// mailbox is this conversation's single result slot. One capacity-1
	// channel per conversation: a result for a cancelled conversation lands
	// in that conversation's own dead slot and can never shadow a newer
	// conversation's result.
	mailbox chan chat.GenerationResult

	state     State
	pages     []dialog.Page
	pageIndex int

	inFlight       bool
	battleFlagged  bool
	lastPlayerText string
}

// State returns the conversation's current lifecycle phase.
func (c *Conversation) State() State {
	return c.state
}

// CurrentPage returns the visible page text, or "" when nothing is shown.
func (c *Conversation) CurrentPage() string {
	if c.pageIndex < 0 || c.pageIndex >= len(c.pages) {
		return ""
	}
	return c.pages[c.pageIndex].String()
}

// PageCount returns the number of pages in the current display phase.
func (c *Conversation) PageCount() int {
	return len(c.pages)
}

// setPages replaces the page sequence wholesale and resets the index.
// Page sequences are never mutated in place.
func (c *Conversation) setPages(pages []dialog.Page) {
	c.pages = pages
	c.pageIndex = 0
}

// Update is the per-frame UI payload handed back to the host loop.
type Update struct {
	// Page is the text of the currently visible page, empty when no
	// dialog should be drawn.
	Page string

	// PageIndex and PageCount describe paging progress for the
	// "press space to continue" affordance.
	PageIndex int
	PageCount int

	// AwaitingInput tells the host to open its text input widget.
	AwaitingInput bool

	// Ended signals that the conversation is over and the dialog surface
	// should be torn down.
	Ended bool
}
