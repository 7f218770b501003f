package a2a

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/errs"
)

// A2aTask is one unit of asynchronous agent work tracked by the Executor
// (spec §4.5). Status transitions: pending → in_progress → {completed|
// failed|cancelled}; cancelled is reachable only from pending or
// in_progress. CreatedAt never changes; UpdatedAt advances on every
// transition.
type A2aTask struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId,omitempty"`
	AgentPath string     `json:"agentPath"`
	Message   string     `json:"message"`
	Status    TaskStatus `json:"status"`
	Result    string     `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	cancel context.CancelFunc `json:"-"`
}

func (t *A2aTask) clone() *A2aTask {
	c := *t
	c.cancel = nil
	return &c
}

// A2aStreamEvent is one unit of a task's SSE-shaped event stream (spec
// §4.5). The first event a subscriber receives is a status event carrying
// the task's status at the moment it subscribed, which is pending, in_progress
// or a terminal status, not necessarily in_progress. The last event is
// complete; a failed task's complete event is preceded by an error event.
type A2aStreamEvent struct {
	Type   string      `json:"type"`
	TaskID string      `json:"taskId"`
	Data   interface{} `json:"data"`
}

const (
	StreamEventStatus   = "status"
	StreamEventText     = "text"
	StreamEventArtifact = "artifact"
	StreamEventError    = "error"
	StreamEventComplete = "complete"
)

// DefaultTaskRetention is the default cutoff cleanupOldTasks applies when the
// caller does not specify one (spec §4.5).
const DefaultTaskRetention = time.Hour

// Executor runs agent turns as asynchronously tracked, streamable tasks
// (spec §4.5). It is grounded on the teacher's Server.executeTask
// background-goroutine pattern (server.go) and its in-memory task map, with
// the status enum, streaming, and GC semantics rebuilt to match the task
// state machine the spec requires.
type Executor struct {
	registry *agent.AgentRegistry

	mu    sync.RWMutex
	tasks map[string]*A2aTask

	subMu sync.Mutex
	subs  map[string][]chan A2aStreamEvent
}

// NewExecutor builds an Executor that runs tasks against registry.
func NewExecutor(registry *agent.AgentRegistry) *Executor {
	return &Executor{
		registry: registry,
		tasks:    make(map[string]*A2aTask),
		subs:     make(map[string][]chan A2aStreamEvent),
	}
}

// CreateTask validates agentPath against the registry, records a pending
// task, and schedules its background execution, returning the task
// descriptor immediately (spec §4.5).
func (e *Executor) CreateTask(agentPath, message, contextID string) (*A2aTask, error) {
	if !e.registry.Has(agentPath) {
		return nil, errs.AgentNotFound(agentPath)
	}

	now := time.Now()
	task := &A2aTask{
		TaskID:    uuid.New().String(),
		ContextID: contextID,
		AgentPath: agentPath,
		Message:   message,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	e.mu.Lock()
	e.tasks[task.TaskID] = task
	snapshot := task.clone()
	e.mu.Unlock()

	go e.run(task)

	return snapshot, nil
}

// GetTask returns a point-in-time snapshot of the task, or a TaskNotFound
// error.
func (e *Executor) GetTask(taskID string) (*A2aTask, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	task, ok := e.tasks[taskID]
	if !ok {
		return nil, errs.TaskNotFound(taskID)
	}
	return task.clone(), nil
}

// ListTasks returns snapshots of every tracked task, optionally filtered to
// one agentPath (an empty agentPath returns every task).
func (e *Executor) ListTasks(agentPath string) []*A2aTask {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tasks := make([]*A2aTask, 0, len(e.tasks))
	for _, task := range e.tasks {
		if agentPath != "" && task.AgentPath != agentPath {
			continue
		}
		tasks = append(tasks, task.clone())
	}
	return tasks
}

// CancelTask transitions taskID to cancelled if it is still pending or
// in_progress, signalling the in-flight execution to abort cooperatively,
// and reports whether the cancellation took effect (spec §4.5).
func (e *Executor) CancelTask(taskID string) (bool, error) {
	e.mu.Lock()
	task, ok := e.tasks[taskID]
	if !ok {
		e.mu.Unlock()
		return false, errs.TaskNotFound(taskID)
	}
	if task.Status != TaskStatusPending && task.Status != TaskStatusInProgress {
		e.mu.Unlock()
		return false, nil
	}

	task.Status = TaskStatusCancelled
	task.UpdatedAt = time.Now()
	cancel := task.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	e.publish(taskID, A2aStreamEvent{Type: StreamEventStatus, TaskID: taskID, Data: TaskStatusCancelled})
	e.publish(taskID, A2aStreamEvent{Type: StreamEventComplete, TaskID: taskID, Data: TaskStatusCancelled})
	e.closeSubs(taskID)

	return true, nil
}

// CleanupOldTasks deletes terminal tasks (completed or failed; cancelled is
// retained) whose last update is older than maxAge, returning the count
// removed (spec §4.5).
func (e *Executor) CleanupOldTasks(maxAge time.Duration) int {
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for id, task := range e.tasks {
		if task.Status != TaskStatusCompleted && task.Status != TaskStatusFailed {
			continue
		}
		if now.Sub(task.UpdatedAt) > maxAge {
			delete(e.tasks, id)
			removed++
		}
	}
	return removed
}

// Stream subscribes to taskID's event stream. A task already in a terminal
// state yields its final status followed by a close; otherwise the returned
// channel is primed with the current status before any live event, so the
// first event observed is always a status event.
func (e *Executor) Stream(taskID string) (<-chan A2aStreamEvent, error) {
	e.mu.RLock()
	task, ok := e.tasks[taskID]
	var status TaskStatus
	if ok {
		status = task.Status
	}
	e.mu.RUnlock()
	if !ok {
		return nil, errs.TaskNotFound(taskID)
	}

	ch := make(chan A2aStreamEvent, 8)

	e.subMu.Lock()
	switch status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		e.subMu.Unlock()
		ch <- A2aStreamEvent{Type: StreamEventStatus, TaskID: taskID, Data: status}
		ch <- A2aStreamEvent{Type: StreamEventComplete, TaskID: taskID, Data: status}
		close(ch)
	default:
		ch <- A2aStreamEvent{Type: StreamEventStatus, TaskID: taskID, Data: status}
		e.subs[taskID] = append(e.subs[taskID], ch)
		e.subMu.Unlock()
	}

	return ch, nil
}

func (e *Executor) run(task *A2aTask) {
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if task.Status != TaskStatusPending {
		e.mu.Unlock()
		cancel()
		return
	}
	task.cancel = cancel
	task.Status = TaskStatusInProgress
	task.UpdatedAt = time.Now()
	e.mu.Unlock()

	e.publish(task.TaskID, A2aStreamEvent{Type: StreamEventStatus, TaskID: task.TaskID, Data: TaskStatusInProgress})

	a, err := e.registry.GetAgent(task.AgentPath)
	if err != nil {
		e.fail(task, err.Error())
		return
	}

	output, err := a.Execute(ctx, agent.ChatInput{Message: task.Message, ConversationID: task.ContextID})

	e.mu.RLock()
	preempted := task.Status == TaskStatusCancelled
	e.mu.RUnlock()
	if preempted {
		return
	}

	if err != nil {
		e.fail(task, err.Error())
		return
	}

	e.complete(task, output.Text)
}

func (e *Executor) fail(task *A2aTask, message string) {
	e.mu.Lock()
	task.Status = TaskStatusFailed
	task.Error = message
	task.UpdatedAt = time.Now()
	e.mu.Unlock()

	e.publish(task.TaskID, A2aStreamEvent{Type: StreamEventError, TaskID: task.TaskID, Data: message})
	e.publish(task.TaskID, A2aStreamEvent{Type: StreamEventComplete, TaskID: task.TaskID, Data: TaskStatusFailed})
	e.closeSubs(task.TaskID)
}

func (e *Executor) complete(task *A2aTask, result string) {
	e.mu.Lock()
	task.Status = TaskStatusCompleted
	task.Result = result
	task.UpdatedAt = time.Now()
	e.mu.Unlock()

	e.publish(task.TaskID, A2aStreamEvent{Type: StreamEventText, TaskID: task.TaskID, Data: result})
	e.publish(task.TaskID, A2aStreamEvent{Type: StreamEventComplete, TaskID: task.TaskID, Data: TaskStatusCompleted})
	e.closeSubs(task.TaskID)
}

func (e *Executor) publish(taskID string, event A2aStreamEvent) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs[taskID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (e *Executor) closeSubs(taskID string) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs[taskID] {
		close(ch)
	}
	delete(e.subs, taskID)
}
