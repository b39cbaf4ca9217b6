package agent

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// --- Completion Detector (spec §4.5) ---------------------------------------

// CompletionDetector recognizes designated completion-signal tool calls and
// produces the CompletionSignal that ends recursion (I6).
type CompletionDetector struct {
	registry *ToolRegistry
}

// NewCompletionDetector binds a detector to the registry whose completion-
// tool set it consults.
func NewCompletionDetector(registry *ToolRegistry) *CompletionDetector {
	return &CompletionDetector{registry: registry}
}

// Scan walks results in order; the first call whose name is a completion
// tool produces the signal. Its summary is the result's "message" field
// when present and string-valued (spec §4.5).
func (d *CompletionDetector) Scan(results []CallResult) *chatmodel.CompletionSignal {
	for _, r := range results {
		if !d.registry.IsCompletionTool(r.Name) {
			continue
		}
		sig := &chatmodel.CompletionSignal{
			Fired:     true,
			ToolName:  r.Name,
			Timestamp: time.Now(),
		}
		if obj, ok := r.Result.(map[string]any); ok {
			if msg, ok := obj["message"].(string); ok {
				sig.Summary = msg
			}
		}
		return sig
	}
	return nil
}

// --- Tool-Repetition Detector (spec §4.5) ----------------------------------

const (
	toolRepetitionWindow    = 2 * time.Minute
	toolRepetitionCap       = 1000
	toolRepetitionThreshold = 2 // >= 2 prior matches triggers a warning on the 3rd call
)

type repetitionRecord struct {
	toolName string
	args     string
	at       time.Time
}

// ToolRepetitionDetector maintains the sliding-window FIFO of recent calls
// and injects a loop warning once a call repeats too often (spec §4.5,
// I8). It is safe for concurrent use since the Scheduler may invoke tools
// from the same wave concurrently.
type ToolRepetitionDetector struct {
	mu       sync.Mutex
	records  []repetitionRecord
	warnings int
}

// NewToolRepetitionDetector returns an empty detector for one operation's
// LoopDetectionState.
func NewToolRepetitionDetector() *ToolRepetitionDetector {
	return &ToolRepetitionDetector{}
}

// Observe canonicalizes args and records the call, returning a non-empty
// warning string if this is the third or later occurrence of the same
// {toolName, canonicalArgs} pair within the window.
func (d *ToolRepetitionDetector) Observe(toolName string, args map[string]any) string {
	canon := canonicalizeArgs(args)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.expireLocked(now)

	matches := 0
	for _, r := range d.records {
		if r.toolName == toolName && r.args == canon {
			matches++
		}
	}

	d.records = append(d.records, repetitionRecord{toolName: toolName, args: canon, at: now})
	if len(d.records) > toolRepetitionCap {
		d.records = d.records[len(d.records)-toolRepetitionCap:]
	}

	if matches >= toolRepetitionThreshold {
		d.warnings++
		return loopWarningText(toolName)
	}
	return ""
}

// Warnings returns how many loop warnings have been issued this operation.
func (d *ToolRepetitionDetector) Warnings() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.warnings
}

func (d *ToolRepetitionDetector) expireLocked(now time.Time) {
	cutoff := now.Add(-toolRepetitionWindow)
	i := 0
	for ; i < len(d.records); i++ {
		if d.records[i].at.After(cutoff) {
			break
		}
	}
	if i > 0 {
		d.records = d.records[i:]
	}
}

func loopWarningText(toolName string) string {
	return "Loop warning: " + toolName + " has been called repeatedly with the same arguments. " +
		"Call the completion tool, stop, or change your approach."
}

// InjectWarning merges the warning into a tool's result per spec §4.5:
// prepended for string results, merged under "loopWarning" for object
// results.
func InjectWarning(result any, warning string) any {
	if warning == "" {
		return result
	}
	switch v := result.(type) {
	case string:
		return warning + "\n\n" + v
	case map[string]any:
		out := make(map[string]any, len(v)+1)
		for k, val := range v {
			out[k] = val
		}
		out["loopWarning"] = warning
		return out
	case nil:
		return map[string]any{"loopWarning": warning}
	default:
		return map[string]any{"loopWarning": warning, "result": v}
	}
}

// canonicalizeArgs sorts object keys lexicographically and JSON-encodes the
// result (spec §4.5, R1). It falls back to a shape fingerprint if encoding
// fails (cyclic values cannot occur in JSON-decoded args, but the fallback
// keeps canonicalization total).
func canonicalizeArgs(args map[string]any) string {
	canon := canonicalizeValue(args)
	b, err := json.Marshal(canon)
	if err != nil {
		return shapeFingerprint(args)
	}
	return string(b)
}

func canonicalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]keyValue, 0, len(keys))
		for _, k := range keys {
			out = append(out, keyValue{Key: k, Value: canonicalizeValue(t[k])})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return t
	}
}

// keyValue renders as a 2-element JSON array, giving map canonicalization a
// deterministic, order-preserving encoding despite Go's randomized map
// iteration and JSON's unordered object encoding.
type keyValue struct {
	Key   string
	Value any
}

func (kv keyValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{kv.Key, kv.Value})
}

func shapeFingerprint(v any) string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := "{"
		for i, k := range keys {
			if i > 0 {
				s += ","
			}
			s += k
		}
		return s + "}"
	case []any:
		return "[array]"
	default:
		return "scalar"
	}
}
