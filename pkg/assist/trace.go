package assist

import (
	"sort"
	"sync"
)

type TraceEventKind string

const (
	TraceEventQueriedSkillIDs    TraceEventKind = "queried_skill_ids"
	TraceEventQueriedEmployeeIDs TraceEventKind = "queried_employee_ids"

	TraceEventToolCall TraceEventKind = "tool_call"
)

// TraceEvent is an extensible event envelope for assistant tracing.
// Additive changes to this struct are backward compatible for implementers.
type TraceEvent struct {
	Kind TraceEventKind

	SkillIDs    []string
	EmployeeIDs []string

	ToolName      string
	ToolArguments string
	DurationMs    int64
	Error         string
}

// Tracer is a sink for assistant tracing events.
//
// Implementers can forward events to logs, telemetry, or custom
// post-processing pipelines.
type Tracer interface {
	Record(event TraceEvent)
}

// MultiTracer fan-outs trace events to multiple tracers.
type MultiTracer []Tracer

func (m MultiTracer) Record(event TraceEvent) {
	for _, t := range m {
		if t == nil {
			continue
		}
		t.Record(event)
	}
}

func RecordQueriedSkillIDs(t Tracer, ids ...string) {
	if t == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventQueriedSkillIDs, SkillIDs: ids})
}

func RecordQueriedEmployeeIDs(t Tracer, ids ...string) {
	if t == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventQueriedEmployeeIDs, EmployeeIDs: ids})
}

func RecordToolCall(t Tracer, name, arguments string, durationMs int64, err error) {
	if t == nil {
		return
	}
	event := TraceEvent{
		Kind:          TraceEventToolCall,
		ToolName:      name,
		ToolArguments: arguments,
		DurationMs:    durationMs,
	}
	if err != nil {
		event.Error = err.Error()
	}
	t.Record(event)
}

// ToolCallRecord is one recorded tool invocation, in execution order.
type ToolCallRecord struct {
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// SearchTrace collects which skills and employees an assistant answer was
// built from, plus the tool calls it made along the way.
//
// This backs the explainability block of the chat response, so a client can
// show "who was considered" next to the answer.
//
// SearchTrace is safe for concurrent use.
type SearchTrace struct {
	mu sync.Mutex

	queriedSkillIDs    map[string]struct{}
	queriedEmployeeIDs map[string]struct{}
	toolCalls          []ToolCallRecord
}

type SearchTraceSnapshot struct {
	QueriedSkillIDs    []string         `json:"queried_skill_ids"`
	QueriedEmployeeIDs []string         `json:"queried_employee_ids"`
	ToolCalls          []ToolCallRecord `json:"tool_calls,omitempty"`
}

func NewSearchTrace() *SearchTrace {
	return &SearchTrace{
		queriedSkillIDs:    make(map[string]struct{}),
		queriedEmployeeIDs: make(map[string]struct{}),
	}
}

func (t *SearchTrace) Record(event TraceEvent) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case TraceEventQueriedSkillIDs:
		for _, id := range event.SkillIDs {
			if id == "" {
				continue
			}
			t.queriedSkillIDs[id] = struct{}{}
		}
	case TraceEventQueriedEmployeeIDs:
		for _, id := range event.EmployeeIDs {
			if id == "" {
				continue
			}
			t.queriedEmployeeIDs[id] = struct{}{}
		}
	case TraceEventToolCall:
		t.toolCalls = append(t.toolCalls, ToolCallRecord{
			Name:       event.ToolName,
			Arguments:  event.ToolArguments,
			DurationMs: event.DurationMs,
			Error:      event.Error,
		})
	default:
		return
	}
}

func (t *SearchTrace) Snapshot() SearchTraceSnapshot {
	if t == nil {
		return SearchTraceSnapshot{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := SearchTraceSnapshot{
		QueriedSkillIDs:    make([]string, 0, len(t.queriedSkillIDs)),
		QueriedEmployeeIDs: make([]string, 0, len(t.queriedEmployeeIDs)),
		ToolCalls:          append([]ToolCallRecord{}, t.toolCalls...),
	}

	for id := range t.queriedSkillIDs {
		s.QueriedSkillIDs = append(s.QueriedSkillIDs, id)
	}
	for id := range t.queriedEmployeeIDs {
		s.QueriedEmployeeIDs = append(s.QueriedEmployeeIDs, id)
	}

	sort.Strings(s.QueriedSkillIDs)
	sort.Strings(s.QueriedEmployeeIDs)

	return s
}
