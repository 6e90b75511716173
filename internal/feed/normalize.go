package feed

import (
	"fmt"
	"strings"
)

// activityAllowList is the closed set of generic activity event types that
// surface in the feed. Everything else (internal or administrative events)
// is dropped.
var activityAllowList = map[Kind]bool{
	KindTaskComment:       true,
	KindTaskCreated:       true,
	KindTaskUpdated:       true,
	KindTaskStatusChanged: true,
}

// NormalizeActivity passes a generic activity event through if its type is
// in the allow-list, else returns nil.
func NormalizeActivity(ev ActivityRecord) *Item {
	kind := Kind(ev.EventType)
	if !activityAllowList[kind] {
		return nil
	}
	return &Item{
		ID:        "activity:" + ev.ID,
		CreatedAt: ev.CreatedAt,
		Kind:      kind,
		Message:   ev.Message,
		AgentID:   ev.AgentID,
		ActorName: ev.ActorName,
		TaskID:    ev.TaskID,
		Title:     ev.Title,
	}
}

// NormalizeComment turns a task comment into a task.comment item.
func NormalizeComment(c CommentRecord) *Item {
	return &Item{
		ID:        "comment:" + c.ID,
		CreatedAt: c.CreatedAt,
		Kind:      KindTaskComment,
		Message:   c.Message,
		AgentID:   c.AgentID,
		ActorName: c.ActorName,
		TaskID:    c.TaskID,
	}
}

// NormalizeMemory classifies a chat/notes entry. Content starting with "/"
// is a board command; this is a leading-slash heuristic, not a command
// parser.
func NormalizeMemory(m ChatMessage) *Item {
	kind := KindBoardChat
	if strings.HasPrefix(m.Content, "/") {
		kind = KindBoardCommand
	}
	return &Item{
		ID:        "memory:" + m.ID,
		CreatedAt: m.CreatedAt,
		Kind:      kind,
		Message:   m.Content,
		ActorName: m.Source,
	}
}

// NormalizeAgent decides the presence event for an agent snapshot given the
// previously known record, or nil when nothing meaningful changed. Pure:
// callers own the previous-record bookkeeping.
func NormalizeAgent(prev *AgentRecord, cur AgentRecord) *Item {
	curStatus := normStatus(cur.Status)

	var kind Kind
	switch {
	case prev == nil:
		kind = KindAgentCreated
	case normStatus(prev.Status) != curStatus && curStatus == "online":
		kind = KindAgentOnline
	case normStatus(prev.Status) != curStatus && curStatus == "offline":
		kind = KindAgentOffline
	case normStatus(prev.Status) != curStatus,
		prev.Name != cur.Name,
		prev.IsLead != cur.IsLead,
		prev.Identity != cur.Identity:
		kind = KindAgentUpdated
	default:
		return nil
	}

	ts := cur.Timestamp()
	return &Item{
		ID:        fmt.Sprintf("agent:%s:%s:%s", cur.ID, agentVerb(kind), ts),
		CreatedAt: ts,
		Kind:      kind,
		Message:   agentMessage(kind, cur),
		AgentID:   cur.ID,
		ActorName: cur.Name,
	}
}

func agentVerb(k Kind) string {
	return strings.TrimPrefix(string(k), "agent.")
}

func agentMessage(k Kind, a AgentRecord) string {
	name := a.Name
	if name == "" {
		name = a.ID
	}
	switch k {
	case KindAgentCreated:
		return name + " joined the board"
	case KindAgentOnline:
		return name + " came online"
	case KindAgentOffline:
		return name + " went offline"
	default:
		return name + " was updated"
	}
}

// NormalizeApproval decides the feed event for an approval snapshot given
// the previously known record. A record first seen already in a terminal
// status yields the terminal kind rather than approval.created; an unchanged
// status yields nil. The creation case is timestamped by created_at, every
// other case by resolved_at falling back to created_at.
func NormalizeApproval(prev *ApprovalRecord, cur ApprovalRecord) *Item {
	curStatus := normStatus(cur.Status)

	var kind Kind
	switch {
	case prev == nil:
		switch curStatus {
		case "approved":
			kind = KindApprovalApproved
		case "rejected", "denied":
			kind = KindApprovalRejected
		default:
			kind = KindApprovalCreated
		}
	case normStatus(prev.Status) == curStatus:
		return nil
	case curStatus == "approved":
		kind = KindApprovalApproved
	case curStatus == "rejected", curStatus == "denied":
		kind = KindApprovalRejected
	default:
		kind = KindApprovalUpdated
	}

	ts := cur.CreatedAt
	if kind != KindApprovalCreated && cur.ResolvedAt != "" {
		ts = cur.ResolvedAt
	}
	return &Item{
		ID:        fmt.Sprintf("approval:%s:%s:%s", cur.ID, approvalVerb(kind), ts),
		CreatedAt: ts,
		Kind:      kind,
		Message:   approvalMessage(kind, cur),
		ActorName: cur.RequestedBy,
		TaskID:    cur.TaskID,
		Title:     cur.Title,
	}
}

func approvalVerb(k Kind) string {
	return strings.TrimPrefix(string(k), "approval.")
}

func approvalMessage(k Kind, a ApprovalRecord) string {
	title := a.Title
	if title == "" {
		title = a.ID
	}
	switch k {
	case KindApprovalCreated:
		return "Approval requested: " + title
	case KindApprovalApproved:
		return "Approved: " + title
	case KindApprovalRejected:
		return "Rejected: " + title
	default:
		return "Approval updated: " + title
	}
}

func normStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
