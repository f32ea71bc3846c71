package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dispatch/internal/config"
	"github.com/shaiso/Dispatch/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_ListRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs", r.URL.Path)
		assert.Equal(t, "FAILED", r.URL.Query().Get("status"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "r1", "status": "FAILED", "message": "boom"}},
			"page": map[string]int{"limit": 5, "offset": 0, "count": 1},
		})
	}))
	defer srv.Close()

	runs, page, err := NewClient(srv.URL).ListRuns(ListRunsOpts{Status: "FAILED", Limit: 5})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Message)
	assert.Equal(t, Page{Limit: 5, Count: 1}, page)
}

func TestClient_ErrorCarriesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]string{"code": "UNAVAILABLE", "message": "run history is disabled", "request_id": "req-3"},
		})
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL).ListRuns(ListRunsOpts{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "req-3", apiErr.RequestID)
	assert.Equal(t, "UNAVAILABLE: run history is disabled (request req-3)", err.Error())
}

func TestOutput_RunsSuggestsNextOffset(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutputTo(false, &stdout, &stderr)

	runs := []RunResponse{
		{ID: "r1", Reason: "schedule", Status: "SUCCEEDED", DurationMs: 1500},
		{ID: "r2", Reason: "manual", Status: "FAILED"},
	}
	out.Runs(runs, Page{Limit: 2, Offset: 4, Count: 2})

	assert.Contains(t, stdout.String(), "1.5s")
	assert.Contains(t, stdout.String(), "r2")
	assert.Equal(t, "More runs may exist: --offset 6\n", stderr.String())

	stderr.Reset()
	out.Runs(runs[:1], Page{Limit: 2, Count: 1})
	assert.Empty(t, stderr.String())
}

func TestOutput_RunCardSkipsEmptyFields(t *testing.T) {
	var stdout bytes.Buffer
	NewOutputTo(false, &stdout, io.Discard).Run(&RunResponse{ID: "r1", Status: "STARTED"})

	assert.Contains(t, stdout.String(), "Status:")
	assert.NotContains(t, stdout.String(), "Finished:")
}

func TestOutput_OutcomeJSON(t *testing.T) {
	var stdout bytes.Buffer
	NewOutputTo(true, &stdout, io.Discard).Outcome(domain.Failure("boom", nil))

	var got map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, map[string]string{"status": "FAILED", "message": "boom"}, got)
}

func TestClient_GetRun_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "run not found"},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetRun("x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND: run not found", err.Error())
}

func TestClient_Trigger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusAccepted, map[string]any{
			"data": map[string]string{"job": "questionnaire-dispatch", "reason": body["reason"]},
		})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Trigger("ops")
	require.NoError(t, err)
	assert.Equal(t, "ops", resp.Reason)
}

func TestTriggerCmd_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": map[string]string{"code": "CONFLICT", "message": "a run is already queued"},
		})
	}))
	defer srv.Close()

	var stderr bytes.Buffer
	cmd := NewTriggerCmd(
		func() *Client { return NewClient(srv.URL) },
		func() *Output { return NewOutputTo(false, io.Discard, &stderr) },
	)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "already queued")
}

func TestScheduleNextCmd(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewScheduleCmd(
		func() (*config.Config, error) { return config.Default(), nil },
		nil,
		func() *Output { return NewOutputTo(true, &stdout, io.Discard) },
	)
	cmd.SetArgs([]string{"next", "--count", "3", "--cron", "@hourly"})

	require.NoError(t, cmd.Execute())

	var runs []nextRun
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &runs))
	require.Len(t, runs, 3)
	assert.Equal(t, float64(1), runs[1].At.Sub(runs[0].At).Hours())
}

// referralStub — Referral API без работы: create и send отвечают 204.
func referralStub(t *testing.T, sendStatus int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		if strings.HasSuffix(r.URL.Path, "/send") && sendStatus != http.StatusNoContent {
			w.WriteHeader(sendStatus)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Referral.BaseURL = baseURL
	cfg.Referral.CreatePath = "/create"
	cfg.Referral.SendPath = "/send"
	cfg.Referral.APIKey = "secret"
	return cfg
}

func TestRunOnce(t *testing.T) {
	srv := referralStub(t, http.StatusNoContent)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	outcome, err := runOnce(context.Background(), testConfig(srv.URL), logger)
	require.NoError(t, err)
	assert.True(t, outcome.IsSuccess())
	assert.Equal(t, "Sent questionnaires: 0. Failed questionnaires: 0. Iterations: 1.", outcome.Message)
}

func TestRunCmd_FailureExitsWithError(t *testing.T) {
	srv := referralStub(t, http.StatusServiceUnavailable)
	defer srv.Close()

	var stderr bytes.Buffer
	cmd := NewRunCmd(
		func() (*config.Config, error) { return testConfig(srv.URL), nil },
		func() *Output { return NewOutputTo(false, io.Discard, &stderr) },
	)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, stderr.String(), "Run failed: POST to '/send' - 'ServiceUnavailable'")
}
