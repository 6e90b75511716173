package feed

import (
	"context"
	"sync"

	"github.com/boardpulse/boardpulse/internal/sse"
)

const (
	transcriptCap = 50
	activityCap   = 50
	rosterCap     = 200
)

// NewChatController builds the chat transcript surface: the is_chat half of
// the memory stream, oldest first.
func NewChatController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []ChatMessage)) *Controller[ChatMessage] {
	return newMemoryController(h, bo, onUpdate, SurfaceChat, true)
}

// NewNotesController builds the notes transcript surface: the non-chat half
// of the memory stream, oldest first.
func NewNotesController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []ChatMessage)) *Controller[ChatMessage] {
	return newMemoryController(h, bo, onUpdate, SurfaceNotes, false)
}

func newMemoryController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []ChatMessage), surface Surface, isChat bool) *Controller[ChatMessage] {
	return NewController(ControllerConfig[ChatMessage]{
		Surface: surface,
		Options: MergeOptions[ChatMessage]{
			Order:  OldestFirst,
			Cap:    transcriptCap,
			Filter: func(m ChatMessage) bool { return m.IsChat == isChat },
		},
		Fetch: func(ctx context.Context, limit, offset int) ([]ChatMessage, int, error) {
			msgs, err := h.Memories(ctx, isChat, limit, offset)
			return msgs, len(msgs), err
		},
		Ingest: func(f sse.Frame) []ChatMessage {
			if f.Event != EventMemory {
				return nil
			}
			m := decodeMemory(f.Data)
			if m == nil || m.ID == "" {
				return nil
			}
			return []ChatMessage{*m}
		},
		StreamURL: func(since string) string { return h.StreamURL(surface, since) },
		Backoff:   bo,
		OnUpdate:  onUpdate,
	})
}

// NewActivityController builds the unified live feed: heterogeneous task,
// approval, agent, and chat events normalized into one newest-first
// timeline. Previous-record state for the agent and approval state machines
// lives here and is primed from the rosters, best-effort.
func NewActivityController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []Item)) *Controller[Item] {
	st := &activityState{
		agents:    make(map[string]AgentRecord),
		approvals: make(map[string]ApprovalRecord),
	}
	return NewController(ControllerConfig[Item]{
		Surface: SurfaceActivity,
		Options: MergeOptions[Item]{Order: NewestFirst, Cap: activityCap},
		Prime:   func(ctx context.Context) { st.prime(ctx, h) },
		Fetch: func(ctx context.Context, limit, offset int) ([]Item, int, error) {
			recs, err := h.Activity(ctx, limit, offset)
			if err != nil {
				return nil, 0, err
			}
			items := make([]Item, 0, len(recs))
			for _, r := range recs {
				if it := NormalizeActivity(r); it != nil {
					items = append(items, *it)
				}
			}
			return items, len(recs), nil
		},
		Ingest:    st.ingest,
		StreamURL: func(since string) string { return h.StreamURL(SurfaceActivity, since) },
		Backoff:   bo,
		OnUpdate:  onUpdate,
	})
}

// NewTaskController builds the task roster surface.
func NewTaskController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []TaskRecord)) *Controller[TaskRecord] {
	return NewController(ControllerConfig[TaskRecord]{
		Surface: SurfaceTasks,
		Options: MergeOptions[TaskRecord]{Order: NewestFirst, Cap: rosterCap},
		Fetch: func(ctx context.Context, limit, offset int) ([]TaskRecord, int, error) {
			recs, err := h.Tasks(ctx, limit, offset)
			return recs, len(recs), err
		},
		Ingest: func(f sse.Frame) []TaskRecord {
			if f.Event != EventTask {
				return nil
			}
			env := decodeTask(f.Data)
			if env == nil || env.Task == nil || env.Task.ID == "" {
				return nil
			}
			return []TaskRecord{*env.Task}
		},
		StreamURL: func(since string) string { return h.StreamURL(SurfaceTasks, since) },
		Backoff:   bo,
		OnUpdate:  onUpdate,
	})
}

// NewApprovalController builds the approval roster surface.
func NewApprovalController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []ApprovalRecord)) *Controller[ApprovalRecord] {
	return NewController(ControllerConfig[ApprovalRecord]{
		Surface: SurfaceApprovals,
		Options: MergeOptions[ApprovalRecord]{Order: NewestFirst, Cap: rosterCap},
		Fetch: func(ctx context.Context, limit, offset int) ([]ApprovalRecord, int, error) {
			recs, err := h.Approvals(ctx, limit, offset)
			return recs, len(recs), err
		},
		Ingest: func(f sse.Frame) []ApprovalRecord {
			if f.Event != EventApproval {
				return nil
			}
			rec := decodeApproval(f.Data)
			if rec == nil || rec.ID == "" {
				return nil
			}
			return []ApprovalRecord{*rec}
		},
		StreamURL: func(since string) string { return h.StreamURL(SurfaceApprovals, since) },
		Backoff:   bo,
		OnUpdate:  onUpdate,
	})
}

// NewAgentController builds the agent roster surface.
func NewAgentController(h History, bo sse.BackoffConfig, onUpdate func(Surface, []AgentRecord)) *Controller[AgentRecord] {
	return NewController(ControllerConfig[AgentRecord]{
		Surface: SurfaceAgents,
		Options: MergeOptions[AgentRecord]{Order: NewestFirst, Cap: rosterCap},
		Fetch: func(ctx context.Context, limit, offset int) ([]AgentRecord, int, error) {
			recs, err := h.Agents(ctx, limit, offset)
			return recs, len(recs), err
		},
		Ingest: func(f sse.Frame) []AgentRecord {
			if f.Event != EventAgent {
				return nil
			}
			rec := decodeAgent(f.Data)
			if rec == nil || rec.ID == "" {
				return nil
			}
			return []AgentRecord{*rec}
		},
		StreamURL: func(since string) string { return h.StreamURL(SurfaceAgents, since) },
		Backoff:   bo,
		OnUpdate:  onUpdate,
	})
}

// activityState tracks the last-seen agent and approval records so the
// normalizer's (previous, current) contract can be satisfied from a stream
// of snapshots. Guarded by its own mutex: frames may arrive from the
// subscription and attached sources concurrently.
type activityState struct {
	mu        sync.Mutex
	agents    map[string]AgentRecord
	approvals map[string]ApprovalRecord
}

// prime seeds previous-record state from the current rosters so a snapshot
// of an already-known agent or approval is not misreported as created.
func (s *activityState) prime(ctx context.Context, h History) {
	if agents, err := h.Agents(ctx, defaultPageSize, 0); err == nil {
		s.mu.Lock()
		for _, a := range agents {
			s.agents[a.ID] = a
		}
		s.mu.Unlock()
	}
	if approvals, err := h.Approvals(ctx, defaultPageSize, 0); err == nil {
		s.mu.Lock()
		for _, a := range approvals {
			s.approvals[a.ID] = a
		}
		s.mu.Unlock()
	}
}

func (s *activityState) ingest(f sse.Frame) []Item {
	var item *Item
	switch f.Event {
	case EventMemory:
		m := decodeMemory(f.Data)
		if m == nil || m.ID == "" {
			return nil
		}
		item = NormalizeMemory(*m)
	case EventTask:
		env := decodeTask(f.Data)
		switch {
		case env == nil:
			return nil
		case env.Comment != nil && env.Comment.ID != "":
			item = NormalizeComment(*env.Comment)
		case env.Activity != nil && env.Activity.ID != "":
			item = NormalizeActivity(*env.Activity)
		default:
			return nil
		}
	case EventApproval:
		rec := decodeApproval(f.Data)
		if rec == nil || rec.ID == "" {
			return nil
		}
		s.mu.Lock()
		var prev *ApprovalRecord
		if p, ok := s.approvals[rec.ID]; ok {
			prev = &p
		}
		item = NormalizeApproval(prev, *rec)
		s.approvals[rec.ID] = *rec
		s.mu.Unlock()
	case EventAgent:
		rec := decodeAgent(f.Data)
		if rec == nil || rec.ID == "" {
			return nil
		}
		s.mu.Lock()
		var prev *AgentRecord
		if p, ok := s.agents[rec.ID]; ok {
			prev = &p
		}
		item = NormalizeAgent(prev, *rec)
		s.agents[rec.ID] = *rec
		s.mu.Unlock()
	default:
		// Unknown event names are ignored, not errors.
		return nil
	}
	if item == nil {
		return nil
	}
	return []Item{*item}
}
