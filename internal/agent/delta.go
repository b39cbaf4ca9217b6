package agent

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// ToolCallDelta is one streamed fragment of a tool call, as emitted by an
// LLMProvider chunk (spec §4.4 streaming delta accumulation). Any field may
// be absent: ID and Index are pointers so "not present in this delta" is
// distinguishable from "present with a zero value".
type ToolCallDelta struct {
	ID       *string
	Index    *int
	Name     string
	ArgChunk string
}

// deltaEntry is one accumulating tool-call record, reachable by index, by
// id, or both (spec §9: "model both as integer-keyed and string-keyed maps
// sharing value pointers").
type deltaEntry struct {
	id       string
	index    *int
	name     string
	args     string
	order    int
	complete bool // true once args parsed as complete JSON at least once
}

// DeltaAccumulator assembles streamed tool-call deltas into a final,
// correctly ordered tool-call list (spec §4.4, invariant I2).
type DeltaAccumulator struct {
	byIndex map[int]*deltaEntry
	byID    map[string]*deltaEntry
	order   int
}

// NewDeltaAccumulator returns an empty accumulator for one streaming
// response.
func NewDeltaAccumulator() *DeltaAccumulator {
	return &DeltaAccumulator{
		byIndex: make(map[int]*deltaEntry),
		byID:    make(map[string]*deltaEntry),
	}
}

// Add folds one delta into the accumulator.
func (a *DeltaAccumulator) Add(d ToolCallDelta) {
	entry := a.lookup(d)
	if entry == nil {
		entry = &deltaEntry{
			id:    provisionalID(d.Index),
			order: a.order,
		}
		a.order++
		a.byID[entry.id] = entry
	}

	if d.ID != nil && *d.ID != "" && *d.ID != entry.id {
		// A real id arrived after we minted a provisional one; rebind.
		delete(a.byID, entry.id)
		entry.id = *d.ID
		a.byID[entry.id] = entry
	}

	if d.Index != nil && entry.index == nil {
		idx := *d.Index
		entry.index = &idx
		a.byIndex[idx] = entry
	}

	if d.Name != "" {
		entry.name = d.Name
	}

	if d.ArgChunk != "" {
		if entry.complete {
			// Duplicate protection: once the running string already parses
			// as complete JSON, further chunks are discarded (spec §4.4
			// step 5).
			return
		}
		entry.args += d.ArgChunk
		if isCompleteJSON(entry.args) {
			entry.complete = true
		}
	}
}

// lookup finds an existing entry for d by id first, then by index (spec
// §4.4). The id is consulted only when the delta carries one that is
// already known; otherwise the index, when present, resolves the entry.
func (a *DeltaAccumulator) lookup(d ToolCallDelta) *deltaEntry {
	if d.ID != nil {
		if e, ok := a.byID[*d.ID]; ok {
			return e
		}
	}
	if d.Index != nil {
		if e, ok := a.byIndex[*d.Index]; ok {
			return e
		}
	}
	return nil
}

// Finalize assembles the final tool-call list: sorted by index when any
// entry carries one, otherwise by insertion order, dropping entries with
// empty function names (spec §4.4 end-of-stream assembly, I2).
func (a *DeltaAccumulator) Finalize() []chatmodel.ToolCallStub {
	entries := make([]*deltaEntry, 0, len(a.byID))
	seen := make(map[*deltaEntry]struct{})
	for _, e := range a.byID {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}

	anyIndexed := false
	for _, e := range entries {
		if e.index != nil {
			anyIndexed = true
			break
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if anyIndexed {
			ii, ij := indexOrMax(entries[i]), indexOrMax(entries[j])
			if ii != ij {
				return ii < ij
			}
		}
		return entries[i].order < entries[j].order
	})

	out := make([]chatmodel.ToolCallStub, 0, len(entries))
	for _, e := range entries {
		if e.name == "" {
			continue
		}
		out = append(out, chatmodel.ToolCallStub{ID: e.id, Name: e.name, Arguments: e.args})
	}
	return out
}

func indexOrMax(e *deltaEntry) int {
	if e.index == nil {
		return int(^uint(0) >> 1)
	}
	return *e.index
}

func isCompleteJSON(s string) bool {
	if s == "" {
		return false
	}
	var v any
	return json.Unmarshal([]byte(s), &v) == nil
}

// provisionalID mints a placeholder id for an entry discovered before the
// provider sends a real one (spec §4.4: "tool_<timestamp>_<index-or-
// position>_<rand>").
func provisionalID(index *int) string {
	pos := "x"
	if index != nil {
		pos = fmt.Sprintf("%d", *index)
	}
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("tool_%d_%s_%x", time.Now().UnixNano(), pos, b)
}
