package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrelay/agentrelay/a2a"
	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/discovery"
)

func newTestServer(t *testing.T, paths ...string) *Server {
	t.Helper()
	reg := agent.NewAgentRegistry()
	for _, p := range paths {
		cfg := &config.AgentConfig{
			ID:           p + "-id",
			Path:         p,
			Name:         p,
			Description:  "test agent " + p,
			Provider:     config.ProviderNative,
			Model:        "claude-sonnet-4-20250514",
			SystemPrompt: "you are a test agent",
			ProviderConfig: &config.ProviderConfig{
				APIKey: "test-key",
			},
		}
		require.NoError(t, reg.Register(cfg))
	}
	executor := a2a.NewExecutor(reg)
	gen := discovery.NewGenerator(reg, "agentrelay", "test service", "0.0.0-test", "http://localhost:8080")
	return NewServer(reg, executor, gen, nil)
}

func doRequest(t *testing.T, srv *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(payload))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agentrelay_http_requests_total")
}

func TestServiceCardEndpoint(t *testing.T) {
	srv := newTestServer(t, "assistant")
	rec := doRequest(t, srv, http.MethodGet, "/.well-known/agent.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var card discovery.ServiceCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "agentrelay", card.Name)
}

func TestAgentCardEndpointNotFoundForUnknownAgent(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/.well-known/agents/nope/agent.json", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAgentsEndpoint(t *testing.T) {
	srv := newTestServer(t, "assistant", "researcher")
	rec := doRequest(t, srv, http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Agents []config.Summary `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Agents, 2)
}

func TestGetAgentEndpoint(t *testing.T) {
	srv := newTestServer(t, "assistant")

	rec := doRequest(t, srv, http.MethodGet, "/agents/assistant", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary config.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "assistant", summary.Path)

	rec = doRequest(t, srv, http.MethodGet, "/agents/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	srv := newTestServer(t, "assistant")

	rec := doRequest(t, srv, http.MethodPost, "/a2a/tasks", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/a2a/tasks", map[string]string{
		"agentPath": "does-not-exist",
		"message":   "hi",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskSchedulesAndReturnsPending(t *testing.T) {
	srv := newTestServer(t, "assistant")

	rec := doRequest(t, srv, http.MethodPost, "/a2a/tasks", map[string]string{
		"agentPath": "assistant",
		"message":   "hi",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["taskId"])
	assert.Equal(t, "pending", body["status"])
}

func TestGetTaskUnknownReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/a2a/tasks/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelTaskUnknownReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/a2a/tasks/does-not-exist/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasksEmptyWhenNoneCreated(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/a2a/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	tasks, ok := body["tasks"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, tasks)
}
