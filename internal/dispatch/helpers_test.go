package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dispatch/internal/referral"
)

const (
	createPath = "/api/questionnaires/create"
	sendPath   = "/api/questionnaires/send"
	apiKey     = "test-key"
	batchCap   = 250
)

// recordingReporter запоминает порядок сигналов.
type recordingReporter struct {
	calls    []string
	messages []string
}

func (r *recordingReporter) Started(context.Context) {
	r.calls = append(r.calls, "started")
}

func (r *recordingReporter) Succeeded(_ context.Context, message string) {
	r.calls = append(r.calls, "succeeded")
	r.messages = append(r.messages, message)
}

func (r *recordingReporter) Failed(_ context.Context, message string) {
	r.calls = append(r.calls, "failed")
	r.messages = append(r.messages, message)
}

// scriptedPoster отдаёт заранее заданные ответы по пути.
// Когда ответы для пути кончаются, повторяется последний.
type scriptedPoster struct {
	responses map[string][]*referral.Response
	errs      map[string]error
	calls     []string
}

func (p *scriptedPoster) Post(_ context.Context, path string) (*referral.Response, error) {
	p.calls = append(p.calls, path)
	if err := p.errs[path]; err != nil {
		return nil, err
	}

	queue := p.responses[path]
	if len(queue) == 0 {
		return &referral.Response{StatusCode: http.StatusNoContent}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		p.responses[path] = queue[1:]
	}
	return resp, nil
}

func (p *scriptedPoster) count(path string) int {
	n := 0
	for _, c := range p.calls {
		if c == path {
			n++
		}
	}
	return n
}

func jsonResponse(status int, body string) *referral.Response {
	return &referral.Response{StatusCode: status, Body: []byte(body)}
}

func noContent() *referral.Response {
	return &referral.Response{StatusCode: http.StatusNoContent}
}

// fakeReferralAPI моделирует Referral API: create создаёт до 250 анкет
// за вызов, а отправить можно только анкеты, созданные до текущего
// create (они становятся доступны на следующем вызове create).
type fakeReferralAPI struct {
	mu          sync.Mutex
	pending     int
	justCreated int
	ready       int
	failEvery   int // каждая N-я отправленная анкета считается неудачной

	createCalls int
	sendCalls   int
	order       []string
}

func (f *fakeReferralAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+createPath, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		assert.Equal(t, apiKey, r.Header.Get("X-Api-Key"))

		f.createCalls++
		f.order = append(f.order, "create")

		f.ready += f.justCreated
		f.justCreated = 0
		if f.pending == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		n := min(batchCap, f.pending)
		f.pending -= n
		f.justCreated = n
		json.NewEncoder(w).Encode(map[string]any{"createdCount": n, "errorCount": 0, "errors": []string{}})
	})

	mux.HandleFunc("POST "+sendPath, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		assert.Equal(t, apiKey, r.Header.Get("X-Api-Key"))

		f.sendCalls++
		f.order = append(f.order, "send")

		if f.ready == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		failed := 0
		if f.failEvery > 0 {
			failed = f.ready / f.failEvery
		}
		sent := f.ready - failed
		f.ready = 0
		json.NewEncoder(w).Encode(map[string]any{"sentCount": sent, "failedCount": failed, "nothingToSend": false})
	})

	return mux
}

// newFakeAPI поднимает httptest сервер и клиент к нему.
func newFakeAPI(t *testing.T, api *fakeReferralAPI) *referral.Client {
	t.Helper()

	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	client, err := referral.NewClient(referral.Config{BaseURL: server.URL, APIKey: apiKey})
	require.NoError(t, err)
	return client
}

// newTestLogger пишет текстовый лог в буфер.
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
