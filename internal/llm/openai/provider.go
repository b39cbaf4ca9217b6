// Package openai implements agent.LLMProvider against an OpenAI-compatible
// chat-completions endpoint via github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"errors"
	"io"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

// Provider is the primary LLMProvider: it speaks the wire format spec §6
// describes most literally (choices[0].delta.{content, tool_calls},
// finish_reason).
type Provider struct {
	client *openaisdk.Client
}

// New builds a Provider from an API key and optional AI-gateway base URL
// (spec §6: "Provider credentials: per-provider API key... optional
// AI-gateway base URL + token").
func New(apiKey, baseURL string) *Provider {
	cfg := openaisdk.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{client: openaisdk.NewClientWithConfig(cfg)}
}

func (p *Provider) Name() string { return "openai" }

// Complete streams a completion, translating each chunk into an
// agent.CompletionChunk and feeding it to sink (spec §4.4 streaming delta
// accumulation; spec §6 wire fields).
func (p *Provider) Complete(ctx context.Context, req agent.CompletionRequest, sink func(agent.CompletionChunk)) error {
	wireReq := toWireRequest(req)

	stream, err := p.client.CreateChatCompletionStream(ctx, wireReq)
	if err != nil {
		sink(agent.CompletionChunk{Err: err, Done: true})
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			sink(agent.CompletionChunk{Done: true})
			return nil
		}
		if err != nil {
			sink(agent.CompletionChunk{Err: err, Done: true})
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]

		chunk := agent.CompletionChunk{
			Text:         choice.Delta.Content,
			FinishReason: string(choice.FinishReason),
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
		if chunk.Text != "" {
			sink(chunk)
		}
		for _, tc := range choice.Delta.ToolCalls {
			sink(agent.CompletionChunk{ToolCallDelta: toDelta(tc)})
		}
		if choice.FinishReason != "" {
			sink(agent.CompletionChunk{FinishReason: string(choice.FinishReason)})
		}
	}
}

func toDelta(tc openaisdk.ToolCall) *agent.ToolCallDelta {
	d := &agent.ToolCallDelta{
		Name:     tc.Function.Name,
		ArgChunk: tc.Function.Arguments,
	}
	if tc.Index != nil {
		idx := *tc.Index
		d.Index = &idx
	}
	if tc.ID != "" {
		id := tc.ID
		d.ID = &id
	}
	return d
}

func toWireRequest(req agent.CompletionRequest) openaisdk.ChatCompletionRequest {
	wire := openaisdk.ChatCompletionRequest{
		Model:            req.Model,
		Stream:           true,
		MaxTokens:        req.MaxOutputTokens,
		Temperature:      float32(req.Temperature),
		FrequencyPenalty: float32(req.FrequencyPenalty),
		ToolChoice:       "auto",
	}
	if req.ReasoningEffort != "" {
		wire.ReasoningEffort = req.ReasoningEffort
	}

	wire.Messages = make([]openaisdk.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		wire.Messages = append(wire.Messages, toWireMessage(m))
	}

	if len(req.Tools) > 0 {
		wire.Tools = make([]openaisdk.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			wire.Tools = append(wire.Tools, openaisdk.Tool{
				Type: openaisdk.ToolTypeFunction,
				Function: &openaisdk.FunctionDefinition{
					Name:        t.Function.Name,
					Description: t.Function.Description,
					Parameters:  t.Function.Parameters,
				},
			})
		}
	}
	return wire
}

func toWireMessage(m chatmodel.Message) openaisdk.ChatCompletionMessage {
	wm := openaisdk.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Text,
		Name:       m.ToolName,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		wm.ToolCalls = append(wm.ToolCalls, openaisdk.ToolCall{
			ID:   tc.ID,
			Type: openaisdk.ToolTypeFunction,
			Function: openaisdk.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return wm
}
