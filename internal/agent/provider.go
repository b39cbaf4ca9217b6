package agent

import (
	"context"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// CompletionRequest is the provider-agnostic request the Driver builds for
// one streaming call (spec §4.4 request construction, §6 wire fields).
type CompletionRequest struct {
	Model              string
	Messages           []chatmodel.Message
	Tools              []LLMToolDescriptor
	MaxOutputTokens    int
	Temperature        float64
	FrequencyPenalty   float64
	ReasoningEffort    string // empty when the model is marked non-reasoning
	EnableThinking     bool
	ThinkingBudgetTokens int
	StructuredSchema   map[string]any // optional, spec §4.4 finalization
}

// CompletionChunk is one streamed fragment of a completion (spec §6:
// choices[0].delta.{content, tool_calls}, finish_reason).
type CompletionChunk struct {
	Text         string
	ToolCallDelta *ToolCallDelta
	FinishReason string
	Done         bool
	Err          error

	InputTokens  int
	OutputTokens int
}

// LLMProvider is the contract the Driver streams completions through (spec
// §6 LLM transport; grounded on the teacher's provider abstraction so
// OpenAI- and Anthropic-shaped backends share one call site).
type LLMProvider interface {
	Name() string
	// Complete streams chunks to sink until the response is exhausted or
	// ctx is canceled. It returns once streaming is complete (sink has
	// received a chunk with Done true or Err set).
	Complete(ctx context.Context, req CompletionRequest, sink func(CompletionChunk)) error
}
