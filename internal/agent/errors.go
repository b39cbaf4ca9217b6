package agent

import (
	"errors"
	"fmt"
)

// LoopPhase identifies where in the Driver's guard/request/stream/recurse
// sequence an error originated, for log correlation.
type LoopPhase string

const (
	PhaseGuards    LoopPhase = "guards"
	PhaseRequest   LoopPhase = "request"
	PhaseStream    LoopPhase = "stream"
	PhaseExecute   LoopPhase = "execute"
	PhaseRecurse   LoopPhase = "recurse"
	PhaseFinalize  LoopPhase = "finalize"
)

// Sentinel errors callers may match with errors.Is.
var (
	ErrRateLimitExceeded    = errors.New("agent: rate limit exceeded")
	ErrSecurityViolation    = errors.New("agent: security violation")
	ErrDepthExceeded        = errors.New("agent: recursion depth exceeded")
	ErrUserAbort            = errors.New("agent: aborted by caller")
	ErrTextRepetition       = errors.New("agent: text repetition detected")
	ErrSchemaValidation     = errors.New("agent: structured output failed schema validation")
)

// LoopError wraps a sentinel with the phase/iteration/depth context the
// Driver had when the error occurred (spec §7 error taxonomy).
type LoopError struct {
	Phase     LoopPhase
	Iteration int
	Depth     int
	Cause     error
	// Partial carries any accumulated text the caller should not lose,
	// e.g. for UserAbort or TextRepetition (spec §7).
	Partial string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("agent: %s at iteration %d depth %d: %v", e.Phase, e.Iteration, e.Depth, e.Cause)
}

func (e *LoopError) Unwrap() error { return e.Cause }

// Retryable reports whether the runtime considers this failure safe to
// retry the same turn with (TextRepetition is retryable; the rest are not).
func (e *LoopError) Retryable() bool {
	return errors.Is(e.Cause, ErrTextRepetition)
}

// ToolErrorKind classifies why a tool call failed to produce a usable
// result (spec §7: ToolParseFailure, ToolHandlerFailure).
type ToolErrorKind int

const (
	ToolParseFailure ToolErrorKind = iota
	ToolHandlerFailure
)

func (k ToolErrorKind) String() string {
	switch k {
	case ToolParseFailure:
		return "tool_parse_failure"
	case ToolHandlerFailure:
		return "tool_handler_failure"
	default:
		return "unknown"
	}
}

// ToolError is the structured error recorded as a tool call's result when
// its arguments fail to parse or its handler fails (spec §4.3, §7: "A
// handler that throws returns {name, id, args, result: {error: message}}").
type ToolError struct {
	Kind     ToolErrorKind
	ToolName string
	CallID   string
	Cause    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("agent: tool %q (%s) call %s: %v", e.ToolName, e.Kind, e.CallID, e.Cause)
}

func (e *ToolError) Unwrap() error { return e.Cause }

// AsResult renders the error as the {"error": message} shape the spec
// requires a failed tool call's result to take.
func (e *ToolError) AsResult() map[string]any {
	return map[string]any{"error": e.Cause.Error()}
}

// SchemaValidationError carries the raw model output that failed to
// validate against a requested structured-output schema (spec §4.4, §7).
type SchemaValidationError struct {
	RawContent string
	Cause      error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("agent: structured output validation failed: %v", e.Cause)
}

func (e *SchemaValidationError) Unwrap() error { return errors.Join(ErrSchemaValidation, e.Cause) }
