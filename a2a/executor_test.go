package a2a

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/config"
)

func newTestExecutor(t *testing.T, paths ...string) *Executor {
	t.Helper()
	reg := agent.NewAgentRegistry()
	for _, p := range paths {
		cfg := &config.AgentConfig{
			ID:           p + "-id",
			Path:         p,
			Name:         p,
			Provider:     config.ProviderNative,
			Model:        "claude-sonnet-4-20250514",
			SystemPrompt: "you are a test agent",
			ProviderConfig: &config.ProviderConfig{
				APIKey: "test-key",
			},
		}
		require.NoError(t, reg.Register(cfg))
	}
	return NewExecutor(reg)
}

func TestCreateTaskRejectsUnknownAgent(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.CreateTask("no-such-agent", "hi", "")
	assert.Error(t, err)
}

func TestCreateTaskStartsPendingThenTransitionsOutOfPending(t *testing.T) {
	exec := newTestExecutor(t, "assistant")

	task, err := exec.CreateTask("assistant", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.NotEmpty(t, task.TaskID)

	assert.Eventually(t, func() bool {
		got, err := exec.GetTask(task.TaskID)
		require.NoError(t, err)
		return got.Status == TaskStatusCompleted || got.Status == TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond, "task should leave pending/in_progress eventually")
}

func TestGetTaskUnknownIDReturnsNotFound(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.GetTask("does-not-exist")
	assert.Error(t, err)
}

func TestListTasksFiltersByAgentPath(t *testing.T) {
	exec := newTestExecutor(t, "assistant", "researcher")

	_, err := exec.CreateTask("assistant", "hi", "")
	require.NoError(t, err)
	_, err = exec.CreateTask("researcher", "hi", "")
	require.NoError(t, err)

	all := exec.ListTasks("")
	assert.Len(t, all, 2)

	onlyAssistant := exec.ListTasks("assistant")
	require.Len(t, onlyAssistant, 1)
	assert.Equal(t, "assistant", onlyAssistant[0].AgentPath)
}

func TestCancelTaskUnknownIDReturnsNotFound(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.CancelTask("does-not-exist")
	assert.Error(t, err)
}

func TestCancelTaskTerminalIsNoOp(t *testing.T) {
	exec := newTestExecutor(t, "assistant")
	task, err := exec.CreateTask("assistant", "hi", "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := exec.GetTask(task.TaskID)
		return got.Status == TaskStatusCompleted || got.Status == TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond)

	cancelled, err := exec.CancelTask(task.TaskID)
	require.NoError(t, err)
	assert.False(t, cancelled, "a terminal task cannot be cancelled")
}

func TestStreamUnknownTaskReturnsNotFound(t *testing.T) {
	exec := newTestExecutor(t)
	_, err := exec.Stream("does-not-exist")
	assert.Error(t, err)
}

func TestStreamTerminalTaskYieldsStatusThenClose(t *testing.T) {
	exec := newTestExecutor(t, "assistant")
	task, err := exec.CreateTask("assistant", "hi", "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := exec.GetTask(task.TaskID)
		return got.Status == TaskStatusCompleted || got.Status == TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond)

	events, err := exec.Stream(task.TaskID)
	require.NoError(t, err)

	var got []A2aStreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, StreamEventStatus, got[0].Type)
	assert.Equal(t, StreamEventComplete, got[1].Type)
}

func TestCleanupOldTasksRemovesOnlyOldTerminalTasks(t *testing.T) {
	exec := newTestExecutor(t, "assistant")
	task, err := exec.CreateTask("assistant", "hi", "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := exec.GetTask(task.TaskID)
		return got.Status == TaskStatusCompleted || got.Status == TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond)

	removed := exec.CleanupOldTasks(time.Hour)
	assert.Equal(t, 0, removed, "a freshly-finished task is not old enough to reap")

	removed = exec.CleanupOldTasks(0)
	assert.Equal(t, 1, removed, "a zero retention window reaps immediately")

	_, err = exec.GetTask(task.TaskID)
	assert.Error(t, err)
}

func TestTaskCloneIsIndependentOfInternalState(t *testing.T) {
	exec := newTestExecutor(t, "assistant")
	task, err := exec.CreateTask("assistant", "hi", "")
	require.NoError(t, err)

	snapshot, err := exec.GetTask(task.TaskID)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := exec.GetTask(task.TaskID)
		return got.Status == TaskStatusCompleted || got.Status == TaskStatusFailed
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, TaskStatusPending, snapshot.Status, "earlier snapshot must not mutate")
}
