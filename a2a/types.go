// Package a2a implements the Agent-to-Agent (A2A) protocol task lifecycle
// (spec §4.5). Specification: https://a2a-protocol.org/
package a2a

// TaskStatus is the lifecycle state of a tracked task; its string value is
// what appears in the task's JSON "status" field.
type TaskStatus string

const (
	TaskStatusPending       TaskStatus = "pending"
	TaskStatusInProgress    TaskStatus = "in_progress"
	TaskStatusInputRequired TaskStatus = "input_required"
	TaskStatusCompleted     TaskStatus = "completed"
	TaskStatusFailed        TaskStatus = "failed"
	TaskStatusCancelled     TaskStatus = "cancelled"
)
