package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		APIHost:        "test-host",
		CPUTimeLimit:   2,
		RequestTimeout: 5 * time.Second,
	}, noop.NewTracerProvider().Tracer("test"), zap.NewNop())
}

func TestExecuteAccepted(t *testing.T) {
	var gotReq submissionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("base64_encoded"))
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "test-host", r.Header.Get("X-RapidAPI-Host"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"stdout": "8\n",
			"status": map[string]any{"id": 3, "description": "Accepted"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Execute(context.Background(), Run{
		SourceCode:     "print(sum(map(int, input().split())))",
		LanguageID:     71,
		Stdin:          "3 5",
		ExpectedOutput: "8",
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted())
	assert.Equal(t, "Accepted", result.Verdict)
	assert.Equal(t, "8\n", result.Stdout)
	assert.Empty(t, result.Diagnostic)

	assert.Equal(t, 71, gotReq.LanguageID)
	assert.Equal(t, "3 5", gotReq.Stdin)
	assert.Equal(t, "8", gotReq.ExpectedOutput)
	assert.Equal(t, 2.0, gotReq.CPUTimeLimit)
}

func TestExecuteDiagnosticPrefersStderr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stderr":         "IndexError: list index out of range",
			"compile_output": "should not be used",
			"status":         map[string]any{"id": 11, "description": "Runtime Error (NZEC)"},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Execute(context.Background(), Run{LanguageID: 71})
	require.NoError(t, err)

	assert.False(t, result.Accepted())
	assert.Equal(t, "Runtime Error (NZEC)", result.Verdict)
	assert.Equal(t, "IndexError: list index out of range", result.Diagnostic)
}

func TestExecuteDiagnosticFallsBackToCompileOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"compile_output": "main.c:1: error: expected ';'",
			"status":         map[string]any{"id": 6, "description": "Compilation Error"},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Execute(context.Background(), Run{LanguageID: 50})
	require.NoError(t, err)

	assert.Equal(t, "main.c:1: error: expected ';'", result.Diagnostic)
}

func TestExecuteDiagnosticFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stdout": "9\n",
			"status": map[string]any{"id": 4, "description": "Wrong Answer"},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Execute(context.Background(), Run{LanguageID: 71})
	require.NoError(t, err)

	assert.Equal(t, "Wrong Answer", result.Verdict)
	assert.Equal(t, "Wrong Answer", result.Diagnostic)
}

func TestExecuteUpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Execute(context.Background(), Run{LanguageID: 71})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
}

func TestExecuteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result, err := newTestClient(server.URL).Execute(context.Background(), Run{LanguageID: 71})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrJudgeUnavailable)
}

func TestExecuteOmitsRapidAPIHeadersWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-RapidAPI-Key"))
		assert.Empty(t, r.Header.Get("X-RapidAPI-Host"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"id": 3, "description": "Accepted"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
	}, noop.NewTracerProvider().Tracer("test"), zap.NewNop())

	_, err := client.Execute(context.Background(), Run{LanguageID: 71})
	require.NoError(t, err)
}
