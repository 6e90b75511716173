package feed

import "testing"

func TestNormalizeActivityAllowList(t *testing.T) {
	tests := []struct {
		eventType string
		want      Kind
		dropped   bool
	}{
		{"task.created", KindTaskCreated, false},
		{"task.updated", KindTaskUpdated, false},
		{"task.status_changed", KindTaskStatusChanged, false},
		{"task.comment", KindTaskComment, false},
		{"task.archived", "", true},
		{"admin.audit", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got := NormalizeActivity(ActivityRecord{ID: "e1", EventType: tt.eventType, CreatedAt: "2024-01-01T00:00:00Z"})
		if tt.dropped {
			if got != nil {
				t.Errorf("%q: got %+v, want dropped", tt.eventType, got)
			}
			continue
		}
		if got == nil || got.Kind != tt.want {
			t.Errorf("%q: got %+v, want kind %s", tt.eventType, got, tt.want)
		}
	}
}

func TestNormalizeMemoryCommandHeuristic(t *testing.T) {
	chat := NormalizeMemory(ChatMessage{ID: "m1", CreatedAt: "2024-01-01T00:00:00Z", Content: "hello"})
	if chat.Kind != KindBoardChat {
		t.Fatalf("got %s, want board.chat", chat.Kind)
	}
	cmd := NormalizeMemory(ChatMessage{ID: "m2", CreatedAt: "2024-01-01T00:00:00Z", Content: "/assign t1"})
	if cmd.Kind != KindBoardCommand {
		t.Fatalf("got %s, want board.command", cmd.Kind)
	}
	if chat.ID != "memory:m1" {
		t.Fatalf("id %q not source-prefixed", chat.ID)
	}
}

func TestNormalizeAgentTransitions(t *testing.T) {
	base := AgentRecord{ID: "a1", Name: "scout", Status: "provisioning", CreatedAt: "2024-01-01T00:00:00Z"}

	tests := []struct {
		name string
		prev *AgentRecord
		cur  AgentRecord
		want Kind
		none bool
	}{
		{
			name: "first sighting",
			prev: nil,
			cur:  base,
			want: KindAgentCreated,
		},
		{
			name: "provisioning to online emits exactly online",
			prev: &base,
			cur:  AgentRecord{ID: "a1", Name: "scout", Status: "online", CreatedAt: base.CreatedAt, UpdatedAt: "2024-01-01T00:01:00Z"},
			want: KindAgentOnline,
		},
		{
			name: "online to offline",
			prev: &AgentRecord{ID: "a1", Name: "scout", Status: "online", CreatedAt: base.CreatedAt},
			cur:  AgentRecord{ID: "a1", Name: "scout", Status: "offline", CreatedAt: base.CreatedAt},
			want: KindAgentOffline,
		},
		{
			name: "status change to neither online nor offline",
			prev: &AgentRecord{ID: "a1", Name: "scout", Status: "online", CreatedAt: base.CreatedAt},
			cur:  AgentRecord{ID: "a1", Name: "scout", Status: "degraded", CreatedAt: base.CreatedAt},
			want: KindAgentUpdated,
		},
		{
			name: "rename",
			prev: &base,
			cur:  AgentRecord{ID: "a1", Name: "scout-2", Status: "provisioning", CreatedAt: base.CreatedAt},
			want: KindAgentUpdated,
		},
		{
			name: "lead flag flip",
			prev: &base,
			cur:  AgentRecord{ID: "a1", Name: "scout", Status: "provisioning", IsLead: true, CreatedAt: base.CreatedAt},
			want: KindAgentUpdated,
		},
		{
			name: "no meaningful change",
			prev: &base,
			cur:  base,
			none: true,
		},
		{
			name: "status case difference is not a change",
			prev: &base,
			cur:  AgentRecord{ID: "a1", Name: "scout", Status: "Provisioning", CreatedAt: base.CreatedAt},
			none: true,
		},
	}
	for _, tt := range tests {
		got := NormalizeAgent(tt.prev, tt.cur)
		if tt.none {
			if got != nil {
				t.Errorf("%s: got %+v, want nil", tt.name, got)
			}
			continue
		}
		if got == nil || got.Kind != tt.want {
			t.Errorf("%s: got %+v, want kind %s", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeApprovalTransitions(t *testing.T) {
	pending := ApprovalRecord{ID: "ap1", Title: "deploy", Status: "pending", CreatedAt: "2024-01-01T00:00:00Z"}

	t.Run("pending to approved uses resolved_at", func(t *testing.T) {
		cur := ApprovalRecord{ID: "ap1", Title: "deploy", Status: "approved", CreatedAt: pending.CreatedAt, ResolvedAt: "2024-01-01T00:05:00Z"}
		got := NormalizeApproval(&pending, cur)
		if got == nil || got.Kind != KindApprovalApproved {
			t.Fatalf("got %+v, want approval.approved", got)
		}
		if got.CreatedAt != "2024-01-01T00:05:00Z" {
			t.Fatalf("timestamped %q, want resolved_at", got.CreatedAt)
		}
	})

	t.Run("terminal without resolved_at falls back to created_at", func(t *testing.T) {
		cur := ApprovalRecord{ID: "ap1", Status: "rejected", CreatedAt: pending.CreatedAt}
		got := NormalizeApproval(&pending, cur)
		if got == nil || got.Kind != KindApprovalRejected {
			t.Fatalf("got %+v, want approval.rejected", got)
		}
		if got.CreatedAt != pending.CreatedAt {
			t.Fatalf("timestamped %q, want created_at fallback", got.CreatedAt)
		}
	})

	t.Run("first seen pending", func(t *testing.T) {
		got := NormalizeApproval(nil, pending)
		if got == nil || got.Kind != KindApprovalCreated {
			t.Fatalf("got %+v, want approval.created", got)
		}
		if got.CreatedAt != pending.CreatedAt {
			t.Fatalf("creation case timestamped %q, want created_at", got.CreatedAt)
		}
	})

	t.Run("first seen already terminal", func(t *testing.T) {
		cur := ApprovalRecord{ID: "ap2", Status: "approved", CreatedAt: "2024-01-01T00:00:00Z", ResolvedAt: "2024-01-01T00:03:00Z"}
		got := NormalizeApproval(nil, cur)
		if got == nil || got.Kind != KindApprovalApproved {
			t.Fatalf("got %+v, want approval.approved for terminal first sighting", got)
		}
	})

	t.Run("unchanged status emits nothing", func(t *testing.T) {
		if got := NormalizeApproval(&pending, pending); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})

	t.Run("non-terminal status change", func(t *testing.T) {
		cur := ApprovalRecord{ID: "ap1", Status: "escalated", CreatedAt: pending.CreatedAt}
		got := NormalizeApproval(&pending, cur)
		if got == nil || got.Kind != KindApprovalUpdated {
			t.Fatalf("got %+v, want approval.updated", got)
		}
	})
}
