// Package feed implements the resilient live-activity feed engine: it turns
// history fetches and live event-stream frames into ordered, deduplicated,
// bounded views, and keeps them eventually consistent across reconnects.
package feed

// Surface identifies one view fed by a controller.
type Surface string

const (
	SurfaceChat      Surface = "chat"
	SurfaceNotes     Surface = "notes"
	SurfaceActivity  Surface = "activity"
	SurfaceTasks     Surface = "tasks"
	SurfaceApprovals Surface = "approvals"
	SurfaceAgents    Surface = "agents"
)

// Kind is the event type of a feed item. The set is closed: the normalizer
// drops anything outside it.
type Kind string

const (
	KindTaskComment       Kind = "task.comment"
	KindTaskCreated       Kind = "task.created"
	KindTaskUpdated       Kind = "task.updated"
	KindTaskStatusChanged Kind = "task.status_changed"
	KindBoardChat         Kind = "board.chat"
	KindBoardCommand      Kind = "board.command"
	KindAgentCreated      Kind = "agent.created"
	KindAgentOnline       Kind = "agent.online"
	KindAgentOffline      Kind = "agent.offline"
	KindAgentUpdated      Kind = "agent.updated"
	KindApprovalCreated   Kind = "approval.created"
	KindApprovalUpdated   Kind = "approval.updated"
	KindApprovalApproved  Kind = "approval.approved"
	KindApprovalRejected  Kind = "approval.rejected"
)

// Item is one entry in the unified live feed. IDs are prefixed by source
// kind (e.g. "agent:<id>:online:<ts>") so items from different sources can
// never collide, and the same logical event carries the same id whether it
// arrived via history fetch or the live stream.
type Item struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Kind      Kind   `json:"event_type"`
	Message   string `json:"message,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Key implements Keyed.
func (i Item) Key() string { return i.ID }

// Timestamp implements Keyed.
func (i Item) Timestamp() string { return i.CreatedAt }

// ChatMessage is a chat or note entry from the board memory stream. IsChat
// partitions one stream into the two transcript views; a message belongs to
// exactly one of them.
type ChatMessage struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"created_at"`
	Content   string   `json:"content"`
	Source    string   `json:"source,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	IsChat    bool     `json:"is_chat"`
}

// Key implements Keyed.
func (m ChatMessage) Key() string { return m.ID }

// Timestamp implements Keyed.
func (m ChatMessage) Timestamp() string { return m.CreatedAt }

// ActivityRecord is a raw task-activity event from the API or stream. Only
// event types in the feed's closed allow-list pass normalization.
type ActivityRecord struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	Title     string `json:"title,omitempty"`
}

// CommentRecord is a raw task comment.
type CommentRecord struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message"`
	AgentID   string `json:"agent_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
}

// TaskRecord is a raw task roster entry.
type TaskRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	AssigneeID string `json:"assignee_id,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Key implements Keyed.
func (t TaskRecord) Key() string { return t.ID }

// Timestamp implements Keyed.
func (t TaskRecord) Timestamp() string {
	if t.UpdatedAt != "" {
		return t.UpdatedAt
	}
	return t.CreatedAt
}

// AgentRecord is a raw agent roster entry.
type AgentRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	IsLead    bool   `json:"is_lead,omitempty"`
	Identity  string `json:"identity_profile,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Key implements Keyed.
func (a AgentRecord) Key() string { return a.ID }

// Timestamp implements Keyed.
func (a AgentRecord) Timestamp() string {
	if a.UpdatedAt != "" {
		return a.UpdatedAt
	}
	return a.CreatedAt
}

// ApprovalRecord is a raw approval entry.
type ApprovalRecord struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Status      string `json:"status"`
	RequestedBy string `json:"requested_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	ResolvedAt  string `json:"resolved_at,omitempty"`
}

// Key implements Keyed.
func (a ApprovalRecord) Key() string { return a.ID }

// Timestamp implements Keyed.
func (a ApprovalRecord) Timestamp() string {
	if a.ResolvedAt != "" {
		return a.ResolvedAt
	}
	return a.CreatedAt
}
