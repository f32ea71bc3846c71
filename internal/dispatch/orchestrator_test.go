package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/referral"
)

func runConfig(maxIterations int) domain.RunConfiguration {
	return domain.RunConfiguration{
		BaseURL:           "http://referral.test",
		CreatePath:        createPath,
		SendPath:          sendPath,
		MaximumIterations: maxIterations,
		APIKey:            apiKey,
	}
}

func invocation() domain.Invocation {
	now := time.Now()
	return domain.Invocation{Job: "questionnaire-dispatch", Reason: "manual", ScheduledAt: now, StartedAt: now}
}

func TestRun_CreateErrorStatus_SendNeverCalled(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {jsonResponse(http.StatusInternalServerError, "boom")},
	}}
	reporter := &recordingReporter{}
	logger, _ := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

	assert.False(t, outcome.IsSuccess())
	assert.Equal(t, "POST to '/api/questionnaires/create' - 'InternalServerError': 'boom'.", outcome.Message)
	assert.ErrorIs(t, outcome.Cause, ErrHTTPStatus)
	assert.Equal(t, 0, poster.count(sendPath))
	assert.Equal(t, []string{"started", "failed"}, reporter.calls)
	assert.Equal(t, []string{outcome.Message}, reporter.messages)
}

func TestRun_NaturalCompletion(t *testing.T) {
	tests := []struct {
		items          int
		wantIterations int
	}{
		{0, 1},
		{1, 2},
		{250, 2},
		{251, 3},
		{600, 4},
		{1000, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.items), func(t *testing.T) {
			api := &fakeReferralAPI{pending: tt.items}
			client := newFakeAPI(t, api)
			reporter := &recordingReporter{}
			logger, _ := newTestLogger()

			outcome := New(Config{Client: client, Logger: logger}).Run(context.Background(), runConfig(100), invocation(), reporter)

			require.True(t, outcome.IsSuccess(), outcome.Message)
			assert.Equal(t,
				fmt.Sprintf("Sent questionnaires: %d. Failed questionnaires: 0. Iterations: %d.", tt.items, tt.wantIterations),
				outcome.Message)
			assert.Equal(t, tt.wantIterations, api.createCalls)
			assert.Equal(t, tt.wantIterations, api.sendCalls)
			assert.Equal(t, []string{"started", "succeeded"}, reporter.calls)
		})
	}
}

func TestRun_StrictCreateSendOrdering(t *testing.T) {
	api := &fakeReferralAPI{pending: 600}
	client := newFakeAPI(t, api)
	logger, _ := newTestLogger()

	New(Config{Client: client, Logger: logger}).Run(context.Background(), runConfig(100), invocation(), &recordingReporter{})

	want := strings.Repeat("create send ", 4)
	assert.Equal(t, strings.TrimSpace(want), strings.Join(api.order, " "))
}

func TestRun_ExceedsMaxIterations(t *testing.T) {
	for _, limit := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max %d", limit), func(t *testing.T) {
			api := &fakeReferralAPI{pending: 100_000}
			client := newFakeAPI(t, api)
			reporter := &recordingReporter{}
			logger, _ := newTestLogger()

			outcome := New(Config{Client: client, Logger: logger}).Run(context.Background(), runConfig(limit), invocation(), reporter)

			require.False(t, outcome.IsSuccess())
			assert.Equal(t,
				fmt.Sprintf("Exceeded max iterations of '%d'. Sent questionnaires: %d. Failed questionnaires: 0. Iterations: %d.",
					limit, limit*batchCap, limit+1),
				outcome.Message)
			assert.ErrorIs(t, outcome.Cause, ErrMaxIterationsExceeded)
			assert.Equal(t, limit+1, api.createCalls)
			assert.Equal(t, limit+1, api.sendCalls)
			assert.Equal(t, []string{"started", "failed"}, reporter.calls)
		})
	}
}

func TestRun_ExceededWinsOverCompletionOnSameIteration(t *testing.T) {
	// 2 цикла нужны для завершения, граница 1: второй цикл и превышает
	// границу, и завершает работу — побеждает превышение.
	api := &fakeReferralAPI{pending: 10}
	client := newFakeAPI(t, api)
	logger, _ := newTestLogger()

	outcome := New(Config{Client: client, Logger: logger}).Run(context.Background(), runConfig(1), invocation(), &recordingReporter{})

	assert.Equal(t, "Exceeded max iterations of '1'. Sent questionnaires: 10. Failed questionnaires: 0. Iterations: 2.", outcome.Message)
}

func TestRun_AccumulatesFailedCounts(t *testing.T) {
	api := &fakeReferralAPI{pending: 500, failEvery: 50}
	client := newFakeAPI(t, api)
	logger, _ := newTestLogger()

	outcome := New(Config{Client: client, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), &recordingReporter{})

	require.True(t, outcome.IsSuccess())
	assert.Equal(t, "Sent questionnaires: 490. Failed questionnaires: 10. Iterations: 3.", outcome.Message)
}

func TestRun_CreateBatchErrors(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {jsonResponse(http.StatusOK, `{"createdCount":5,"errorCount":1,"errors":["patient 42 has no email"]}`)},
	}}
	reporter := &recordingReporter{}
	logger, logs := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

	assert.Equal(t, "POST to '/api/questionnaires/create' - 1 errors: 'patient 42 has no email'.", outcome.Message)
	assert.ErrorIs(t, outcome.Cause, ErrBatchErrors)
	assert.Contains(t, logs.String(), "Number of questionnaires created: 5.")
	assert.Equal(t, 0, poster.count(sendPath))
	assert.Equal(t, []string{"started", "failed"}, reporter.calls)
}

func TestRun_CreateBatchErrors_JoinsMessages(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {jsonResponse(http.StatusOK, `{"createdCount":0,"errorCount":2,"errors":["a","b"]}`)},
	}}
	logger, _ := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), &recordingReporter{})

	assert.Equal(t, "POST to '/api/questionnaires/create' - 2 errors: 'a, b'.", outcome.Message)
}

func TestRun_NothingToDo(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {noContent()},
		sendPath:   {noContent()},
	}}
	reporter := &recordingReporter{}
	logger, logs := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

	assert.True(t, outcome.IsSuccess())
	assert.Equal(t, "Sent questionnaires: 0. Failed questionnaires: 0. Iterations: 1.", outcome.Message)
	assert.Equal(t, 1, strings.Count(logs.String(), "Zero questionnaires to send."))
	assert.Equal(t, []string{"started", "succeeded"}, reporter.calls)
}

func TestRun_SendNothingToSendFlag(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {jsonResponse(http.StatusOK, `{"createdCount":3,"errorCount":0,"errors":[]}`), noContent()},
		sendPath:   {jsonResponse(http.StatusOK, `{"sentCount":99,"failedCount":1,"nothingToSend":true}`), jsonResponse(http.StatusOK, `{"sentCount":3,"failedCount":0}`)},
	}}
	logger, logs := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), &recordingReporter{})

	assert.Equal(t, "Sent questionnaires: 3. Failed questionnaires: 0. Iterations: 2.", outcome.Message)
	assert.Equal(t, 1, strings.Count(logs.String(), "Zero questionnaires to send."))
}

func TestRun_MalformedCreate(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "not json", `{"createdCount":"many"}`} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			poster := &scriptedPoster{responses: map[string][]*referral.Response{
				createPath: {jsonResponse(http.StatusCreated, body)},
			}}
			reporter := &recordingReporter{}
			logger, logs := newTestLogger()

			outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

			assert.Equal(t, "POST to '/api/questionnaires/create' - 'BadRequest': ''.", outcome.Message)
			assert.ErrorIs(t, outcome.Cause, ErrMalformedResponse)
			assert.Contains(t, logs.String(), "failed to decode response")
			assert.Equal(t, 0, poster.count(sendPath))
			assert.Equal(t, []string{"started", "failed"}, reporter.calls)
		})
	}
}

func TestRun_MalformedSend(t *testing.T) {
	for _, body := range []string{"{", "null"} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			poster := &scriptedPoster{responses: map[string][]*referral.Response{
				createPath: {noContent()},
				sendPath:   {jsonResponse(http.StatusOK, body)},
			}}
			reporter := &recordingReporter{}
			logger, logs := newTestLogger()

			outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

			assert.False(t, outcome.IsSuccess())
			assert.Equal(t, "POST to '/api/questionnaires/send' - invalid response body.", outcome.Message)
			assert.ErrorIs(t, outcome.Cause, ErrMalformedResponse)
			assert.Contains(t, logs.String(), "failed to decode response")
			assert.Equal(t, 1, poster.count(sendPath))
			assert.Equal(t, []string{"started", "failed"}, reporter.calls)
		})
	}
}

func TestRun_SendErrorStatus(t *testing.T) {
	poster := &scriptedPoster{responses: map[string][]*referral.Response{
		createPath: {jsonResponse(http.StatusOK, `{"createdCount":1,"errorCount":0}`)},
		sendPath:   {jsonResponse(http.StatusServiceUnavailable, "down")},
	}}
	logger, _ := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), &recordingReporter{})

	assert.Equal(t, "POST to '/api/questionnaires/send' - 'ServiceUnavailable': 'down'.", outcome.Message)
	assert.Equal(t, []string{createPath, sendPath}, poster.calls)
}

func TestRun_TransportError(t *testing.T) {
	poster := &scriptedPoster{errs: map[string]error{
		createPath: errors.New("connection refused"),
	}}
	reporter := &recordingReporter{}
	logger, _ := newTestLogger()

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), reporter)

	assert.False(t, outcome.IsSuccess())
	assert.ErrorIs(t, outcome.Cause, ErrTransport)
	assert.Contains(t, outcome.Message, "POST to '/api/questionnaires/create' - transport error")
	assert.Equal(t, []string{"started", "failed"}, reporter.calls)
}

func TestRun_PastDueLogsWarning(t *testing.T) {
	poster := &scriptedPoster{}
	logger, logs := newTestLogger()

	inv := invocation()
	inv.ScheduledAt = inv.StartedAt.Add(-5 * time.Minute)
	inv.PastDue = true

	outcome := New(Config{Client: poster, Logger: logger}).Run(context.Background(), runConfig(10), inv, &recordingReporter{})

	assert.True(t, outcome.IsSuccess())
	assert.Contains(t, logs.String(), "job is running late")
	assert.Contains(t, logs.String(), "job=questionnaire-dispatch")
}

func TestRun_OnTimeDoesNotWarn(t *testing.T) {
	logger, logs := newTestLogger()

	New(Config{Client: &scriptedPoster{}, Logger: logger}).Run(context.Background(), runConfig(10), invocation(), &recordingReporter{})

	assert.NotContains(t, logs.String(), "job is running late")
}
