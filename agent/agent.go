// Agent loop implementation.
//
// This is THE canonical turn state machine. One user turn runs
// Requesting -> HandlingInvocations and terminates at Done (final text),
// AwaitingConfirmation (pending writes), or the iteration cap.
//
// Information Hiding:
// - Loop internals and stop-reason handling hidden
// - Engine communication hidden
// - Confirmation bookkeeping hidden behind the two entry points

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/richinex/gridagent/conversation"
	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/sheets"
	"github.com/richinex/gridagent/storage"
	"github.com/richinex/gridagent/tools"
)

const defaultSystemPrompt = `You are a spreadsheet assistant. You help the user read, modify, and chart data in their Google Sheet using the available tools.

Guidelines:
- Read before you write: inspect the relevant range or metadata before proposing a mutation.
- Mutating operations (write_range, append_row, clear_range, create_chart) require user confirmation; request them and wait for the outcome.
- When an operation is denied, do not retry it unless the user asks.
- Answer concisely, referring to ranges in A1 notation.`

// continuationPrompt keeps the engine anchored after each read outcome.
const continuationPrompt = "What next?"

// truncationNudge is appended when the engine stopped on max_tokens:
// its tool calls have already been honored and it should pick up where
// it left off rather than repeat them.
const truncationNudge = "Your previous reply was cut off by the output limit. The tool calls you already made have been executed; continue from where you left off without repeating them."

// Config holds agent configuration.
type Config struct {
	// SystemPrompt guides the agent's behavior. Empty uses the default
	// spreadsheet prompt.
	SystemPrompt string

	// MaxIterations caps engine calls per turn.
	MaxIterations int

	// ContextLimit and ResponseReserve define the compaction budget:
	// history presented to the engine is bounded by their difference.
	ContextLimit    int
	ResponseReserve int

	// SummaryBudget bounds the transcript fed to history summarization.
	SummaryBudget int
}

// DefaultConfig returns a working configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:   10,
		ContextLimit:    180000,
		ResponseReserve: 8192,
		SummaryBudget:   4000,
	}
}

// Agent drives the multi-turn tool-invocation loop against the engine.
type Agent struct {
	engine     llm.Engine
	dispatcher *tools.Dispatcher
	registry   *conversation.Registry
	compactor  *conversation.Compactor
	audit      *storage.AuditLog
	system     string
	maxIter    int
	logger     *slog.Logger
}

// New creates an agent for the given engine and configuration.
func New(engine llm.Engine, cfg Config) *Agent {
	system := cfg.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	// Unset fields fall back to working defaults. A zero context limit
	// would otherwise give the compactor a zero budget and evict the
	// whole log, user message included.
	def := DefaultConfig()
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = def.MaxIterations
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = def.ContextLimit
	}
	if cfg.ResponseReserve <= 0 {
		cfg.ResponseReserve = def.ResponseReserve
	}
	if cfg.ResponseReserve >= cfg.ContextLimit {
		// Keep the compaction budget positive even when the reserve was
		// configured at or above the limit.
		cfg.ResponseReserve = cfg.ContextLimit / 2
	}
	if cfg.SummaryBudget <= 0 {
		cfg.SummaryBudget = def.SummaryBudget
	}

	logger := slog.Default()
	return &Agent{
		engine:     engine,
		dispatcher: tools.NewDispatcher(logger),
		registry:   conversation.NewRegistry(),
		compactor: &conversation.Compactor{
			Budget:        cfg.ContextLimit - cfg.ResponseReserve,
			SummaryBudget: cfg.SummaryBudget,
			Summarizer:    llm.NewSummarizer(engine),
			Logger:        logger,
		},
		system:  system,
		maxIter: maxIter,
		logger:  logger,
	}
}

// WithAuditLog enables write-operation auditing.
func (a *Agent) WithAuditLog(audit *storage.AuditLog) *Agent {
	a.audit = audit
	return a
}

// WithLogger overrides the default logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	a.logger = logger
	a.dispatcher = tools.NewDispatcher(logger)
	a.compactor.Logger = logger
	return a
}

// HandleUserMessage runs one user turn to completion or to a
// confirmation gate. Conversation state is created lazily for new ids;
// an empty id maps to the default conversation.
func (a *Agent) HandleUserMessage(ctx context.Context, text, conversationID string, sheet sheets.Client) (TurnResult, error) {
	st := a.registry.Get(conversationID, sheet)
	st.Lock()
	defer st.Unlock()

	st.Append(llm.UserText(text))
	return a.runLoop(ctx, st)
}

// ResolveConfirmation resolves previously pending write invocations with
// one decision, then re-enters the loop if nothing remains pending.
func (a *Agent) ResolveConfirmation(ctx context.Context, conversationID string, invocationIDs []string, approved bool) (TurnResult, error) {
	st, ok := a.registry.Lookup(conversationID)
	if !ok {
		return TurnResult{}, fmt.Errorf("unknown conversation %q", conversationID)
	}
	st.Lock()
	defer st.Unlock()

	resolved := st.ResolvePending(invocationIDs)
	if len(resolved) == 0 {
		return TurnResult{}, fmt.Errorf("no pending invocations match the given ids")
	}

	for _, p := range resolved {
		inv := llm.ToolUseBlock{ID: p.ID, Name: p.Name, Input: p.Input}

		var outcome tools.Outcome
		decision := storage.DecisionDenied
		if approved {
			decision = storage.DecisionApproved
			outcome = a.dispatcher.Execute(ctx, inv, st.Sheet())
		} else {
			outcome = tools.Outcome{Content: "Denied by user. The operation was not executed."}
		}

		// The invocation enters the log only now that a decision
		// exists, immediately followed by its outcome, so the pairing
		// invariant holds at every point.
		st.Append(llm.Message{Role: llm.RoleAssistant, Blocks: []llm.ContentBlock{inv}})
		st.Append(llm.Message{Role: llm.RoleUser, Blocks: []llm.ContentBlock{
			llm.ToolResultBlock{ToolUseID: inv.ID, Content: outcome.Content, IsError: outcome.IsError},
		}})

		a.recordAudit(ctx, st.ID(), p, decision, outcome)
	}

	// The engine may have requested several writes in one turn; if the
	// caller resolved only some, ask again for the rest without calling
	// the engine.
	if st.HasPending() {
		return confirmationRequired(st), nil
	}
	return a.runLoop(ctx, st)
}

// runLoop drives repeated engine calls until the engine signals
// completion, a confirmation gate is hit, or the iteration cap.
func (a *Agent) runLoop(ctx context.Context, st *conversation.State) (TurnResult, error) {
	catalog := tools.Catalog()

	for iteration := 0; iteration < a.maxIter; iteration++ {
		history := a.compactor.ForAPI(ctx, st.Messages())

		resp, err := a.engine.Complete(ctx, llm.Request{
			System:   a.system,
			Messages: history,
			Tools:    catalog,
		})
		if err != nil {
			// Fatal for the turn; state is left as appended up to the
			// failing call.
			return TurnResult{}, err
		}

		// Text is appended before any invocation handling: invocations
		// trail text in the engine's output and the log must preserve
		// that order.
		text, invocations := splitResponse(resp)
		if text != "" {
			st.Append(llm.AssistantText(text))
		}

		for _, inv := range invocations {
			outcome := a.dispatcher.Dispatch(ctx, inv, st.Sheet(), st)
			if outcome.Pending {
				// Deferred from the log entirely until resolved.
				continue
			}
			st.Append(llm.Message{Role: llm.RoleAssistant, Blocks: []llm.ContentBlock{inv}})
			st.Append(llm.Message{Role: llm.RoleUser, Blocks: []llm.ContentBlock{
				llm.ToolResultBlock{ToolUseID: inv.ID, Content: outcome.Content, IsError: outcome.IsError},
				llm.TextBlock{Text: continuationPrompt},
			}})
		}

		if st.HasPending() {
			a.logger.Info("turn awaiting confirmation",
				"conversation", st.ID(), "pending", len(st.Pending()))
			return confirmationRequired(st), nil
		}

		switch resp.StopReason {
		case llm.StopEndTurn:
			if text == "" {
				text = "Done."
			}
			return TurnResult{Type: TurnMessage, Text: text}, nil
		case llm.StopMaxTokens:
			st.Append(llm.UserText(truncationNudge))
		}
	}

	return TurnResult{}, &IterationLimitError{Iterations: a.maxIter}
}

func (a *Agent) recordAudit(ctx context.Context, conversationID string, p conversation.PendingInvocation, decision storage.Decision, outcome tools.Outcome) {
	if a.audit == nil {
		return
	}
	entry := storage.NewEntry(conversationID, p.ID, p.Name, string(p.Input), decision, outcome.Content, outcome.IsError)
	if err := a.audit.Record(ctx, entry); err != nil {
		// Best-effort: auditing never fails the turn.
		a.logger.Warn("failed to record audit entry", "error", err)
	}
}

// splitResponse separates the engine response into its concatenated text
// and its tool invocations, preserving invocation order.
func splitResponse(resp llm.Response) (string, []llm.ToolUseBlock) {
	var text strings.Builder
	var invocations []llm.ToolUseBlock
	for _, block := range resp.Blocks {
		switch b := block.(type) {
		case llm.TextBlock:
			text.WriteString(b.Text)
		case llm.ToolUseBlock:
			invocations = append(invocations, b)
		}
	}
	return strings.TrimSpace(text.String()), invocations
}

func confirmationRequired(st *conversation.State) TurnResult {
	pending := st.Pending()
	summaries := make([]PendingSummary, len(pending))
	for i, p := range pending {
		summaries[i] = PendingSummary{ID: p.ID, Operation: p.Name, Params: p.Input}
	}
	return TurnResult{Type: TurnConfirmationRequired, Pending: summaries}
}
