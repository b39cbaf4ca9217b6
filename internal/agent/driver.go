package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentrt/runtime/internal/observability"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

// DefaultMaxLLMMessages is the conversation-length cap used when a
// DriverConfig leaves MaxLLMMessages unset (spec §6).
const DefaultMaxLLMMessages = 200

// DefaultChunkSize is the streaming flush granularity used when a
// RunRequest leaves ChunkSize unset (spec §6: "typical 64-256 characters").
const DefaultChunkSize = 128

// DefaultMaxOutputTokens is the sampling cap used when a RunRequest leaves
// MaxOutputTokens unset. Anthropic's Messages API rejects max_tokens <= 0,
// so every request needs a positive value even when the caller has no
// opinion (spec §4.4, §6 sampling knobs).
const DefaultMaxOutputTokens = 4096

// DriverConfig holds the knobs that apply across every call a Driver
// handles (spec §6 Configuration and knobs).
type DriverConfig struct {
	MaxLLMMessages int
	ChunkSize      int
	Logger         *slog.Logger

	// Metrics, if set, receives Driver/Scheduler/governor instrumentation
	// (spec SPEC_FULL.md Domain Stack). A nil Metrics disables recording.
	Metrics *observability.Metrics
}

func (c DriverConfig) withDefaults() DriverConfig {
	if c.MaxLLMMessages <= 0 {
		c.MaxLLMMessages = DefaultMaxLLMMessages
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// RunRequest is one top-level (or recursive-step) invocation of the Driver
// (spec §4.4 "per-invocation inputs").
type RunRequest struct {
	Model     string
	ActionKey string
	MaxDepth  int

	// Messages are the system/user messages the calling operation owns;
	// they are prepended, unaltered, to every request this call makes.
	// ToolCallContext.Messages (grafted, with orphan cleanup) follow them.
	Messages []chatmodel.Message

	// Sampling knobs (spec §4.4 "per-invocation inputs", §6 request body
	// fields). MaxOutputTokens <= 0 falls back to DefaultMaxOutputTokens;
	// the rest are passed through as zero values when unset.
	MaxOutputTokens      int
	Temperature          float64
	FrequencyPenalty     float64
	ReasoningEffort      string
	EnableThinking       bool
	ThinkingBudgetTokens int

	StructuredSchema map[string]any

	// StreamSink receives flushed text chunks as they arrive. May be nil.
	StreamSink func(string)

	// ToolCallContext carries state from a prior recursive step. Nil on a
	// fresh top-level call.
	ToolCallContext *chatmodel.ToolCallContext
}

// RunResult is what one Run call (which may have iterated through several
// tool-calling rounds internally) returns.
type RunResult struct {
	Text            string
	ToolCallContext *chatmodel.ToolCallContext
	Done            bool
}

// Driver is the inference loop described in spec §4.4: it streams chat
// completions, accumulates tool-call deltas, dispatches them through the
// Scheduler, and re-enters inference with the extended history until
// completion or a stop condition. It is implemented as an explicit loop
// rather than recursion (spec §9 design note) so stack depth is bounded
// regardless of maxDepth.
type Driver struct {
	provider   LLMProvider
	registry   *ToolRegistry
	scheduler  *Scheduler
	config     DriverConfig
	repetition *ToolRepetitionDetector
	completion *CompletionDetector
}

// NewDriver wires a Driver from a provider and registry. A fresh
// ToolRepetitionDetector is created; it lives for the Driver's lifetime,
// matching LoopDetectionState's "lifetime of one operation" (spec §3).
func NewDriver(provider LLMProvider, registry *ToolRegistry, config DriverConfig) *Driver {
	cfg := config.withDefaults()
	return &Driver{
		provider:   provider,
		registry:   registry,
		scheduler:  NewScheduler(registry).WithMetrics(cfg.Metrics),
		config:     cfg,
		repetition: NewToolRepetitionDetector(),
		completion: NewCompletionDetector(registry),
	}
}

// Run drives one operation to completion (spec §4.4, §9 Recursion ->
// iteration). Each iteration of the for-loop corresponds to one recursive
// step of the source algorithm.
func (d *Driver) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	toolCtx := req.ToolCallContext
	if toolCtx == nil {
		toolCtx = chatmodel.NewToolCallContext()
	}
	if d.config.Metrics != nil {
		defer func() { d.config.Metrics.DriverDepth.Observe(float64(toolCtx.Depth)) }()
	}

	for {
		grafted := GraftHistory(d.config.Logger, toolCtx.Messages)
		full := make([]chatmodel.Message, 0, len(req.Messages)+len(grafted))
		full = append(full, req.Messages...)
		full = append(full, grafted...)

		// Guard 1: message-count cap.
		if len(full) > d.config.MaxLLMMessages {
			return nil, &LoopError{Phase: PhaseGuards, Depth: toolCtx.Depth, Cause: ErrRateLimitExceeded}
		}

		// Guard 2: recursion depth cap.
		if req.MaxDepth > 0 && toolCtx.Depth >= req.MaxDepth {
			if req.StructuredSchema != nil {
				return nil, &LoopError{Phase: PhaseGuards, Depth: toolCtx.Depth, Cause: ErrDepthExceeded}
			}
			return &RunResult{
				Text:            "max depth reached",
				ToolCallContext: toolCtx,
				Done:            true,
			}, nil
		}

		result, recurse, err := d.runOneTurn(ctx, req, toolCtx, full)
		if err != nil {
			return nil, err
		}
		toolCtx = result.ToolCallContext
		if !recurse {
			return result, nil
		}
	}
}

// runOneTurn performs one stream-then-execute round: it streams a single
// completion, accumulates tool calls, and if any were emitted, dispatches
// them through the Scheduler and folds the results into a new
// ToolCallContext. recurse is true when the caller should loop again with
// the returned context (spec §4.4 Recursion).
func (d *Driver) runOneTurn(
	ctx context.Context,
	req RunRequest,
	toolCtx *chatmodel.ToolCallContext,
	full []chatmodel.Message,
) (*RunResult, bool, error) {
	maxOutputTokens := req.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	creq := CompletionRequest{
		Model:                req.Model,
		Messages:             OptimizeMessages(full),
		Tools:                d.registry.AsLLMTools(),
		MaxOutputTokens:      maxOutputTokens,
		Temperature:          req.Temperature,
		FrequencyPenalty:     req.FrequencyPenalty,
		ReasoningEffort:      req.ReasoningEffort,
		EnableThinking:       req.EnableThinking,
		ThinkingBudgetTokens: req.ThinkingBudgetTokens,
		StructuredSchema:     req.StructuredSchema,
	}

	if d.config.Metrics != nil {
		d.config.Metrics.DriverIterations.Inc()
	}
	stepCtx, span := observability.StartDriverStep(ctx, req.ActionKey, toolCtx.Depth)
	defer span.End()

	localCtx, cancelLocal := context.WithCancel(stepCtx)
	defer cancelLocal()

	var text strings.Builder
	flushed := 0
	acc := NewDeltaAccumulator()
	trd := NewTextRepetitionDetector(cancelLocal)
	var textRepErr *LoopError
	var chunkErr error

	err := d.provider.Complete(localCtx, creq, func(chunk CompletionChunk) {
		if chunk.Err != nil {
			chunkErr = chunk.Err
			return
		}
		if chunk.Text != "" {
			text.WriteString(chunk.Text)
			if textRepErr == nil {
				if e := trd.Append(chunk.Text); e != nil {
					textRepErr = e
				}
			}
			if req.StreamSink != nil {
				s := text.String()
				if len(s)-flushed >= d.config.ChunkSize || chunk.Done {
					req.StreamSink(s[flushed:])
					flushed = len(s)
				}
			}
		}
		if chunk.ToolCallDelta != nil {
			acc.Add(*chunk.ToolCallDelta)
		}
	})

	if req.StreamSink != nil && text.Len() > flushed {
		req.StreamSink(text.String()[flushed:])
	}

	if textRepErr != nil {
		if d.config.Metrics != nil {
			d.config.Metrics.TextRepetitionTrips.Inc()
		}
		textRepErr.Iteration = toolCtx.Depth
		return nil, false, textRepErr
	}
	if ctx.Err() != nil {
		return nil, false, &LoopError{
			Phase: PhaseStream, Depth: toolCtx.Depth,
			Cause: ErrUserAbort, Partial: text.String(),
		}
	}
	if chunkErr != nil {
		return nil, false, fmt.Errorf("agent: provider %s: %w", d.provider.Name(), chunkErr)
	}
	if err != nil {
		return nil, false, fmt.Errorf("agent: provider %s: %w", d.provider.Name(), err)
	}

	toolCalls := acc.Finalize()
	if len(toolCalls) == 0 {
		finalText := text.String()
		if req.StructuredSchema != nil {
			if err := validateStructured(finalText, req.StructuredSchema); err != nil {
				return nil, false, &SchemaValidationError{RawContent: finalText, Cause: err}
			}
		}
		// The final assistant reply joins the history without advancing depth.
		finalCtx := &chatmodel.ToolCallContext{
			Messages:      append([]chatmodel.Message(nil), toolCtx.Messages...),
			Depth:         toolCtx.Depth,
			Completion:    toolCtx.Completion,
			WarningIssued: toolCtx.WarningIssued,
		}
		if finalText != "" {
			finalCtx.Messages = append(finalCtx.Messages, chatmodel.NewAssistantMessage(finalText, nil))
		}
		return &RunResult{Text: finalText, ToolCallContext: finalCtx, Done: true}, false, nil
	}

	pending := make([]PendingCall, len(toolCalls))
	for i, tc := range toolCalls {
		pending[i] = PendingCall{ID: tc.ID, Name: tc.Name, Args: tc.Arguments}
	}
	results := d.scheduler.RunBatch(ctx, req.ActionKey, pending)

	// Observe runs against the Scheduler's parsed CallResult.Args rather than
	// at the Scheduler's pre-dispatch parse step, so the repetition window's
	// timestamps trail the handler by one RunBatch round-trip rather than
	// leading it (spec §4.5 names the handler boundary, not the parse step).
	for i := range results {
		if results[i].IsError {
			continue
		}
		if warning := d.repetition.Observe(results[i].Name, results[i].Args); warning != "" {
			results[i].Result = InjectWarning(results[i].Result, warning)
			toolCtx.WarningIssued = true
			if d.config.Metrics != nil {
				d.config.Metrics.ToolRepetitionWarns.Inc()
			}
		}
	}

	appended := make([]chatmodel.Message, 0, len(results)+1)
	appended = append(appended, chatmodel.NewAssistantMessage(text.String(), toolCalls))
	for _, r := range results {
		appended = append(appended, r.ToolMessage())
	}

	nextCtx := toolCtx.Step(appended)

	if sig := d.completion.Scan(results); sig != nil {
		if d.config.Metrics != nil {
			d.config.Metrics.CompletionSignals.WithLabelValues(sig.ToolName).Inc()
		}
		nextCtx.Completion = sig
		final := sig.Summary
		if final == "" {
			final = text.String()
		}
		return &RunResult{Text: final, ToolCallContext: nextCtx, Done: true}, false, nil
	}

	if !anyProducedResult(results) {
		return &RunResult{Text: text.String(), ToolCallContext: nextCtx, Done: true}, false, nil
	}

	return &RunResult{Text: text.String(), ToolCallContext: nextCtx}, true, nil
}

// anyProducedResult reports whether at least one executed call produced a
// result, per spec §4.4: "if no calls produced results... return the
// current content."
func anyProducedResult(results []CallResult) bool {
	for _, r := range results {
		if !r.IsError {
			return true
		}
	}
	return false
}

// validateStructured parses content as JSON and validates it against the
// requested schema (spec §4.4 structured-output finalization: "parse the
// content against the schema... via strict JSON").
func validateStructured(content string, schema map[string]any) error {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return fmt.Errorf("content is not valid JSON: %w", err)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal structured-output schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	const url = "mem://structured-output.json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("add structured-output schema resource: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("compile structured-output schema: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("structured output did not match schema: %w", err)
	}
	return nil
}
