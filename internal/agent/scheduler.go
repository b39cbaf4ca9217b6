package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agentrt/runtime/internal/observability"
	"github.com/agentrt/runtime/internal/resources"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

// PendingCall is one tool call emitted by the model, still carrying its raw
// JSON argument string (spec §4.3 Scheduler input).
type PendingCall struct {
	ID   string
	Name string
	Args string
}

// CallResult is one tool call's outcome, tagged with its original position
// so the Scheduler can restore emission order regardless of wave
// completion order (spec §5 ordering guarantees, I5).
type CallResult struct {
	Index   int
	ID      string
	Name    string
	Args    map[string]any
	Result  any
	IsError bool
}

// ToolMessage renders the result as the tool-role message the Driver
// appends to history (spec §4.4: content is the JSON-serialized result, or
// the literal string "done" if nullish).
func (r CallResult) ToolMessage() chatmodel.Message {
	content := "done"
	if r.Result != nil {
		if b, err := json.Marshal(r.Result); err == nil {
			content = string(b)
		}
	}
	return chatmodel.NewToolMessage(r.ID, r.Name, content)
}

// Scheduler partitions a batch of pending tool calls into conflict-free
// waves and dispatches each wave concurrently (spec §4.3, §5). It is the
// component the teacher's flat-concurrency Executor lacks: a resource-
// footprint-aware grouping that serializes only calls that actually
// conflict.
type Scheduler struct {
	registry *ToolRegistry
	metrics  *observability.Metrics
}

// NewScheduler returns a Scheduler bound to registry.
func NewScheduler(registry *ToolRegistry) *Scheduler {
	return &Scheduler{registry: registry}
}

// WithMetrics attaches a Metrics bundle the Scheduler records wave,
// conflict, and tool-latency observations to. A nil m disables recording.
func (s *Scheduler) WithMetrics(m *observability.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// callPlan is a parsed, resource-resolved pending call ready for dispatch.
type callPlan struct {
	index     int
	call      PendingCall
	args      map[string]any
	footprint resources.Footprint
	parseErr  error
}

// RunBatch executes calls, returning one CallResult per call in original
// emission order (I5), having internally dispatched non-conflicting calls
// concurrently within each wave (I3) and never dispatching any call twice
// (I4). If ctx is canceled, in-flight calls are signaled to stop; calls not
// yet started are not dispatched and are recorded as canceled errors.
// actionKey labels the scheduler-wave/conflict metrics this batch records.
func (s *Scheduler) RunBatch(ctx context.Context, actionKey string, calls []PendingCall) []CallResult {
	plans := make([]*callPlan, len(calls))
	results := make([]CallResult, len(calls))

	for i, c := range calls {
		plans[i] = &callPlan{index: i, call: c}
		if len(c.Args) > MaxToolArgsSize {
			err := fmt.Errorf("arguments exceed %d bytes", MaxToolArgsSize)
			plans[i].parseErr = err
			results[i] = CallResult{
				Index: i, ID: c.ID, Name: c.Name, IsError: true,
				Result: (&ToolError{Kind: ToolParseFailure, ToolName: c.Name, CallID: c.ID, Cause: err}).AsResult(),
			}
			continue
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(c.Args), &args); err != nil {
			plans[i].parseErr = err
			results[i] = CallResult{
				Index: i, ID: c.ID, Name: c.Name, IsError: true,
				Result: (&ToolError{Kind: ToolParseFailure, ToolName: c.Name, CallID: c.ID, Cause: err}).AsResult(),
			}
			continue
		}
		plans[i].args = args

		tool, ok := s.registry.Get(c.Name)
		if !ok {
			err := fmt.Errorf("unknown tool %q", c.Name)
			plans[i].parseErr = err
			results[i] = CallResult{
				Index: i, ID: c.ID, Name: c.Name, IsError: true,
				Result: (&ToolError{Kind: ToolHandlerFailure, ToolName: c.Name, CallID: c.ID, Cause: err}).AsResult(),
			}
			continue
		}

		// Validate before resolving resources, so a malformed call never
		// reaches a tool's resolver or handler (spec §4.2).
		if err := s.registry.ValidateArgs(c.Name, args); err != nil {
			plans[i].parseErr = err
			results[i] = CallResult{
				Index: i, ID: c.ID, Name: c.Name, IsError: true,
				Result: (&ToolError{Kind: ToolParseFailure, ToolName: c.Name, CallID: c.ID, Cause: err}).AsResult(),
			}
			continue
		}

		plans[i].footprint = tool.ResolveResources(args)
	}

	pending := make([]*callPlan, 0, len(plans))
	for _, p := range plans {
		if p.parseErr == nil {
			pending = append(pending, p)
		}
	}

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			// Pending calls are not started; cancellation is recorded so the
			// caller can distinguish them from executed results.
			for _, p := range pending {
				results[p.index] = CallResult{
					Index: p.index, ID: p.call.ID, Name: p.call.Name, IsError: true,
					Result: map[string]any{"error": ctx.Err().Error()},
				}
			}
			return results
		default:
		}

		wave, rest := nextWave(pending)
		if s.metrics != nil {
			s.metrics.SchedulerWaves.WithLabelValues(actionKey).Inc()
			if len(rest) > 0 {
				s.metrics.SchedulerConflicts.WithLabelValues(actionKey).Add(float64(len(rest)))
			}
		}
		waveCtx, span := observability.StartSchedulerWave(ctx, len(wave))
		s.runWave(waveCtx, wave, results)
		span.End()
		pending = rest
	}

	return results
}

// nextWave greedily grows a wave from the front of pending, in original
// order, adding each call whose footprint conflicts with none already
// admitted to the wave (spec §4.3: "process calls in their original
// order... a call may be dispatched in the current wave iff its footprint
// conflicts with none of the currently-running calls").
func nextWave(pending []*callPlan) (wave, rest []*callPlan) {
	admitted := make([]bool, len(pending))
	for i, p := range pending {
		conflicts := false
		for j := 0; j < i; j++ {
			if admitted[j] && resources.Conflicts(pending[j].footprint, p.footprint) {
				conflicts = true
				break
			}
		}
		if !conflicts {
			admitted[i] = true
			wave = append(wave, p)
		}
	}
	for i, p := range pending {
		if !admitted[i] {
			rest = append(rest, p)
		}
	}
	return wave, rest
}

// runWave dispatches every call in wave concurrently and blocks until all
// have finished, writing each outcome into results at its original index.
func (s *Scheduler) runWave(ctx context.Context, wave []*callPlan, results []CallResult) {
	var wg sync.WaitGroup
	for _, p := range wave {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[p.index] = s.invoke(ctx, p)
		}()
	}
	wg.Wait()
}

// invoke runs one tool's lifecycle hooks and handler, translating a panic
// or returned error into the {error: message} shape (spec §4.3 Errors).
func (s *Scheduler) invoke(ctx context.Context, p *callPlan) (res CallResult) {
	tool, _ := s.registry.Get(p.call.Name)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			tool.OnComplete(ctx, nil, err)
			res = CallResult{
				Index: p.index, ID: p.call.ID, Name: p.call.Name, Args: p.args, IsError: true,
				Result: (&ToolError{Kind: ToolHandlerFailure, ToolName: p.call.Name, CallID: p.call.ID, Cause: err}).AsResult(),
			}
		}
	}()

	tool.OnStart(ctx, p.args)
	start := time.Now()
	out, err := tool.Run(ctx, p.args)
	if s.metrics != nil {
		s.metrics.ToolLatency.WithLabelValues(p.call.Name).Observe(time.Since(start).Seconds())
	}
	tool.OnComplete(ctx, out, err)
	if err != nil {
		return CallResult{
			Index: p.index, ID: p.call.ID, Name: p.call.Name, Args: p.args, IsError: true,
			Result: (&ToolError{Kind: ToolHandlerFailure, ToolName: p.call.Name, CallID: p.call.ID, Cause: err}).AsResult(),
		}
	}
	return CallResult{Index: p.index, ID: p.call.ID, Name: p.call.Name, Args: p.args, Result: out}
}
