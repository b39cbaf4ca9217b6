package agent

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// GraftHistory filters prior messages before they're appended to a new
// request, dropping orphan tool messages and empty tool-call lists (spec
// §4.4 "History grafting with orphan cleanup", invariant I1). It mirrors
// the teacher's transcript_repair.go walk: track the set of valid tool-call
// ids introduced by the most recent assistant message, clearing it whenever
// a new assistant message arrives, and drop any tool message whose id isn't
// in that set.
func GraftHistory(logger *slog.Logger, msgs []chatmodel.Message) []chatmodel.Message {
	out := make([]chatmodel.Message, 0, len(msgs))
	pending := make(map[string]struct{})

	for _, m := range msgs {
		switch m.Role {
		case chatmodel.RoleAssistant:
			valid := chatmodel.ValidToolCalls(m.ToolCalls)
			m.ToolCalls = nil // M3: never store the empty slice
			if len(valid) > 0 {
				m.ToolCalls = valid
			}
			pending = make(map[string]struct{}, len(valid))
			for _, tc := range valid {
				pending[tc.ID] = struct{}{}
			}
			out = append(out, m)

		case chatmodel.RoleTool:
			if _, ok := pending[m.ToolCallID]; !ok || m.ToolName == "" {
				if logger != nil {
					logger.Warn("dropping orphan tool message",
						"tool_call_id", m.ToolCallID, "tool_name", m.ToolName)
				}
				continue
			}
			delete(pending, m.ToolCallID)
			out = append(out, m)

		default:
			out = append(out, m)
		}
	}
	return out
}

var blankLineRun = regexp.MustCompile(`\n{4,}`)

// OptimizeMessage trims trailing whitespace and collapses runs of 4+ blank
// lines to 3 (spec §4.4 request construction). It is idempotent (R2):
// OptimizeMessage(OptimizeMessage(m)) == OptimizeMessage(m).
func OptimizeMessage(m chatmodel.Message) chatmodel.Message {
	m.Text = optimizeText(m.Text)
	for i := range m.Parts {
		if m.Parts[i].Type == "text" {
			m.Parts[i].Text = optimizeText(m.Parts[i].Text)
		}
	}
	return m
}

func optimizeText(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	return blankLineRun.ReplaceAllString(s, "\n\n\n")
}

// OptimizeMessages applies OptimizeMessage to every message in order.
func OptimizeMessages(msgs []chatmodel.Message) []chatmodel.Message {
	out := make([]chatmodel.Message, len(msgs))
	for i, m := range msgs {
		out[i] = OptimizeMessage(m)
	}
	return out
}
