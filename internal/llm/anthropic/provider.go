// Package anthropic implements agent.LLMProvider against the Anthropic
// Messages API via github.com/anthropics/anthropic-sdk-go, exercising the
// provider-specific "thinking" extension (spec §6).
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

// Provider is the secondary LLMProvider, grounded on the same
// agent.LLMProvider contract as the OpenAI provider but translating
// Anthropic's content-block event stream into the runtime's chunk shape.
type Provider struct {
	client anthropic.Client
}

// New builds a Provider from an API key and optional AI-gateway base URL.
func New(apiKey, baseURL string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Provider{client: anthropic.NewClient(opts...)}
}

func (p *Provider) Name() string { return "anthropic" }

// Complete streams a completion, translating Anthropic's content-block
// delta events into agent.CompletionChunk (spec §4.4, §6).
func (p *Provider) Complete(ctx context.Context, req agent.CompletionRequest, sink func(agent.CompletionChunk)) error {
	params := toWireParams(req)

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	// toolNames tracks the function name declared at each content-block
	// index's content_block_start, since input_json_delta events that
	// follow carry only the argument fragment.
	toolNames := make(map[int64]string)

	for stream.Next() {
		event := stream.Current()

		switch variant := event.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if tu, ok := variant.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				toolNames[variant.Index] = tu.Name
				idx := int(variant.Index)
				id := tu.ID
				sink(agent.CompletionChunk{
					ToolCallDelta: &agent.ToolCallDelta{ID: &id, Index: &idx, Name: tu.Name},
				})
			}

		case anthropic.ContentBlockDeltaEvent:
			switch delta := variant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				sink(agent.CompletionChunk{Text: delta.Text})
			case anthropic.InputJSONDelta:
				idx := int(variant.Index)
				sink(agent.CompletionChunk{
					ToolCallDelta: &agent.ToolCallDelta{Index: &idx, ArgChunk: delta.PartialJSON},
				})
			}

		case anthropic.MessageDeltaEvent:
			if string(variant.Delta.StopReason) != "" {
				sink(agent.CompletionChunk{FinishReason: string(variant.Delta.StopReason)})
			}

		case anthropic.MessageStopEvent:
			sink(agent.CompletionChunk{Done: true})
		}
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		sink(agent.CompletionChunk{Err: err, Done: true})
		return err
	}
	return nil
}

func toWireParams(req agent.CompletionRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxOutputTokens),
	}

	var system string
	for _, m := range req.Messages {
		if m.Role == chatmodel.RoleSystem {
			system = m.Text
			continue
		}
		params.Messages = append(params.Messages, toWireMessage(m))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if req.EnableThinking {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(req.ThinkingBudgetTokens))
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParamOfTool(
			anthropic.ToolInputSchemaParam{Properties: t.Function.Parameters["properties"]},
			t.Function.Name,
		))
	}

	return params
}

func toWireMessage(m chatmodel.Message) anthropic.MessageParam {
	switch m.Role {
	case chatmodel.RoleTool:
		return anthropic.NewUserMessage(
			anthropic.NewToolResultBlock(m.ToolCallID, m.Text, false),
		)
	case chatmodel.RoleAssistant:
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
		if m.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(m.Text))
		}
		for _, tc := range m.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, args, tc.Name))
		}
		return anthropic.NewAssistantMessage(blocks...)
	default:
		return anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text))
	}
}
