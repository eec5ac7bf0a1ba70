package conversation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/dialog"
	"github.com/jrj02/npc-dialogue/pkg/npc"
	"github.com/jrj02/npc-dialogue/pkg/prompts"
	"github.com/jrj02/npc-dialogue/pkg/sentiment"
)

// DefaultGenTimeout bounds one backend generation call. Expiry converges to
// the same fallback reply as a backend failure.
const DefaultGenTimeout = 30 * time.Second

// Config carries the controller's injected dependencies and tuning.
// Backend is required; everything else has working defaults.
type Config struct {
	Backend   Generator
	Telemetry Telemetry // optional
	Logger    *slog.Logger

	GenTimeout   time.Duration
	MaxTokens    int
	WrapWidth    int
	MaxPageLines int
}

// Controller is the conversation state machine. It owns at most one active
// Conversation per player and is the only writer of NPC mood and history:
// the background worker communicates exclusively through immutable
// GenerationResult values on the conversation's mailbox channel, and the
// controller applies them on the polling side.
//
// All methods must be called from the host's update loop; only the mailboxes
// cross the thread boundary.
type Controller struct {
	worker    *worker
	analyzer  *sentiment.Analyzer
	telemetry Telemetry
	logger    *slog.Logger

	maxTokens    int
	wrapWidth    int
	maxPageLines int

	current       *Conversation
	pendingBattle bool
}

// New creates a Controller. The backend is required.
func New(cfg Config) (*Controller, error) {
	if cfg.Backend == nil {
		return nil, errors.New("generation backend is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.GenTimeout
	if timeout <= 0 {
		timeout = DefaultGenTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = prompts.DefaultMaxTokens
	}

	return &Controller{
		worker: &worker{
			backend:   cfg.Backend,
			telemetry: cfg.Telemetry,
			timeout:   timeout,
			logger:    log,
		},
		analyzer:     sentiment.NewAnalyzer(),
		telemetry:    cfg.Telemetry,
		logger:       log,
		maxTokens:    maxTokens,
		wrapWidth:    cfg.WrapWidth,
		maxPageLines: cfg.MaxPageLines,
	}, nil
}

// Current returns the active conversation, or nil.
func (ctl *Controller) Current() *Conversation {
	return ctl.current
}

// Start begins a conversation with an NPC. The host is expected to block
// player movement and open its input collector when this succeeds.
func (ctl *Controller) Start(profile *npc.Profile, playerID string) (*Conversation, error) {
	if ctl.current != nil && ctl.current.state != StateEnded {
		return nil, ErrAlreadyInConversation
	}
	if profile == nil {
		return nil, ErrInvalidNPC
	}

	conv := &Conversation{
		ID:       uuid.New(),
		Profile:  profile,
		PlayerID: playerID,
		mailbox:  make(chan chat.GenerationResult, 1),
		state:    StateCollectingInput,
	}
	ctl.current = conv

	ctl.logger.Info("Conversation started",
		"conversation_id", conv.ID.String(),
		"npc", profile.Spec.Name,
		"player_id", playerID)
	return conv, nil
}

// SubmitPlayerText accepts the player's finalized input, shows the thinking
// placeholder, and dispatches exactly one background generation. Valid only
// in StateCollectingInput.
func (ctl *Controller) SubmitPlayerText(text string) (*Update, error) {
	c := ctl.current
	if c == nil {
		return nil, ErrNoConversation
	}
	switch c.state {
	case StateCollectingInput:
		// proceed
	case StateGenerating:
		return nil, ErrRequestInFlight
	default:
		return nil, ErrInvalidState
	}

	req, err := prompts.BuildRequest(c.ID, c.Profile, text, ctl.maxTokens)
	if err != nil {
		return nil, err
	}

	c.lastPlayerText = req.PlayerText
	c.state = StateGenerating
	c.inFlight = true
	c.setPages([]dialog.Page{dialog.Page(ThinkingPlaceholder)})

	ctl.worker.dispatch(req, c.mailbox)
	return ctl.update(c), nil
}

// Poll is called once per frame by the host loop. It consumes at most one
// result from the active conversation's mailbox, applies it to NPC state,
// and reports what to draw. Returns nil when no conversation exists.
// Results for cancelled conversations sit in their own abandoned mailboxes
// and are never read.
func (ctl *Controller) Poll() *Update {
	c := ctl.current
	if c == nil {
		return nil
	}

	select {
	case res := <-c.mailbox:
		if res.ConversationID != c.ID {
			// Unreachable while dispatch only ever targets its own
			// conversation's mailbox; the ID tag stays as a guard.
			ctl.logger.Debug("Dropping stale generation result",
				"conversation_id", res.ConversationID.String())
			break
		}
		ctl.apply(c, res)
	default:
	}

	return ctl.update(c)
}

// apply delivers one generation result: the only place NPC mood and history
// are mutated after a reply.
func (ctl *Controller) apply(c *Conversation, res chat.GenerationResult) {
	c.inFlight = false

	c.Profile.Mood = res.Mood
	c.Profile.History.Append(chat.SpeakerPlayer, c.lastPlayerText)
	c.Profile.History.Append(chat.SpeakerNPC, res.Reply)

	pages := dialog.Paginate(res.Reply, ctl.wrapWidth, ctl.maxPageLines)
	if len(pages) == 0 {
		// Nothing displayable; treat as no dialogue and close.
		ctl.end(c)
		return
	}
	c.setPages(pages)
	c.state = StateDisplaying

	// One-shot per conversation: once flagged, never re-evaluated.
	if !c.battleFlagged {
		score := ctl.analyzer.Score(res.Reply)
		if sentiment.ShouldEscalate(score) {
			c.battleFlagged = true
			ctl.logger.Info("Reply flagged for escalation",
				"conversation_id", c.ID.String(),
				"npc", c.Profile.Spec.Name,
				"compound", score.Compound,
				"negative", score.Negative)
		}
	}

	ctl.saveTranscript(c)
}

// AdvancePage shows the next page. After the last page it returns the
// conversation to input collection, or ends it when a battle has been
// flagged. Valid only in StateDisplaying.
func (ctl *Controller) AdvancePage() (*Update, error) {
	c := ctl.current
	if c == nil {
		return nil, ErrNoConversation
	}
	if c.state != StateDisplaying {
		return nil, ErrInvalidState
	}

	c.pageIndex++
	if c.pageIndex < len(c.pages) {
		return ctl.update(c), nil
	}

	if c.battleFlagged {
		c.state = StateBattlePending
		ctl.end(c)
		return &Update{Ended: true}, nil
	}

	// Back to input for another round.
	c.setPages(nil)
	c.state = StateCollectingInput
	return ctl.update(c), nil
}

// Cancel forces the conversation to StateEnded from any state. An in-flight
// generation is not interrupted; its result is discarded when it lands.
func (ctl *Controller) Cancel() error {
	c := ctl.current
	if c == nil {
		return ErrNoConversation
	}
	ctl.logger.Info("Conversation cancelled",
		"conversation_id", c.ID.String(),
		"state", string(c.state))
	ctl.end(c)
	return nil
}

// ConsumePendingBattle reports whether a flagged battle should now begin.
// It returns true at most once per flagged conversation, after the dialog
// has closed, and clears the marker.
func (ctl *Controller) ConsumePendingBattle() bool {
	if !ctl.pendingBattle {
		return false
	}
	if ctl.current != nil && ctl.current.state != StateEnded {
		return false
	}
	ctl.pendingBattle = false
	return true
}

// end finishes the conversation and destroys it. An in-flight generation
// still delivers into the conversation's own mailbox, which nothing reads
// after this point.
func (ctl *Controller) end(c *Conversation) {
	if c.battleFlagged {
		ctl.pendingBattle = true
	}
	c.state = StateEnded
	ctl.saveTranscript(c)
	ctl.current = nil
}

func (ctl *Controller) saveTranscript(c *Conversation) {
	if ctl.telemetry == nil {
		return
	}
	turns := c.Profile.History.Snapshot()
	if len(turns) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctl.telemetry.SaveTranscript(ctx, c.ID, turns); err != nil {
		ctl.logger.Warn("Failed to save transcript",
			"conversation_id", c.ID.String(),
			"error", err)
	}
}

func (ctl *Controller) update(c *Conversation) *Update {
	u := &Update{
		PageIndex: c.pageIndex,
		PageCount: len(c.pages),
	}
	switch c.state {
	case StateCollectingInput:
		u.AwaitingInput = true
	case StateGenerating, StateDisplaying:
		u.Page = c.CurrentPage()
	case StateEnded, StateBattlePending:
		u.Ended = true
	}
	return u
}
