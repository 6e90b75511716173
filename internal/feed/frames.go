package feed

import "encoding/json"

// Stream event names consumed by the engine. Frames with any other name
// are ignored, not treated as errors.
const (
	EventMemory   = "memory"
	EventTask     = "task"
	EventApproval = "approval"
	EventAgent    = "agent"
)

// memoryEnvelope is the wire shape of a memory frame.
type memoryEnvelope struct {
	Memory *ChatMessage `json:"memory"`
}

// taskEnvelope is the wire shape of a task frame. Exactly which of the
// optional payloads is present depends on the event.
type taskEnvelope struct {
	Type     string          `json:"type,omitempty"`
	Activity *ActivityRecord `json:"activity,omitempty"`
	Task     *TaskRecord     `json:"task,omitempty"`
	Comment  *CommentRecord  `json:"comment,omitempty"`
}

// approvalEnvelope is the wire shape of an approval frame.
type approvalEnvelope struct {
	Approval   *ApprovalRecord `json:"approval,omitempty"`
	TaskCounts map[string]int  `json:"task_counts,omitempty"`
}

// agentEnvelope is the wire shape of an agent frame.
type agentEnvelope struct {
	Agent *AgentRecord `json:"agent"`
}

func decodeMemory(data string) *ChatMessage {
	var env memoryEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil
	}
	return env.Memory
}

func decodeTask(data string) *taskEnvelope {
	var env taskEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil
	}
	return &env
}

func decodeApproval(data string) *ApprovalRecord {
	var env approvalEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil
	}
	return env.Approval
}

func decodeAgent(data string) *AgentRecord {
	var env agentEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil
	}
	return env.Agent
}
