package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/scoresplit/internal/dispatcher"
	"github.com/local/scoresplit/internal/store"
)

type fakeQueue struct {
	enqueued  [][]byte
	cancelled []string
	pingErr   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, payload []byte) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

func (f *fakeQueue) CancelJob(ctx context.Context, jobID string) error {
	f.cancelled = append(f.cancelled, jobID)
	return nil
}

func (f *fakeQueue) Ping(ctx context.Context) error { return f.pingErr }

type fakeStatus struct {
	statuses map[string]store.Status
}

func (f *fakeStatus) Set(ctx context.Context, jobID string, st store.Status) error {
	if f.statuses == nil {
		f.statuses = make(map[string]store.Status)
	}
	f.statuses[jobID] = st
	return nil
}

func (f *fakeStatus) Get(ctx context.Context, jobID string) (store.Status, bool, error) {
	st, ok := f.statuses[jobID]
	return st, ok, nil
}

func newTestServer() (*Server, *fakeQueue, *fakeStatus, *http.ServeMux) {
	q := &fakeQueue{}
	st := &fakeStatus{}
	s := New(q, st)
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s, q, st, mux
}

func TestSubmitJob(t *testing.T) {
	_, q, st, mux := newTestServer()

	body := `{"file_path": "/scores/sym5.pdf", "output_dir": "parts", "metadata": {"composer": "Beethoven"}}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp submitResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.NotEmpty(t, resp.JobID)

	require.Len(t, q.enqueued, 1)
	var job dispatcher.Job
	require.NoError(t, json.Unmarshal(q.enqueued[0], &job))
	assert.Equal(t, resp.JobID, job.JobID)
	assert.Equal(t, "/scores/sym5.pdf", job.FileRef)
	assert.Equal(t, "parts", job.OutputDir)
	assert.Equal(t, "Beethoven", job.Metadata["composer"])

	got, ok := st.statuses[resp.JobID]
	require.True(t, ok)
	assert.Equal(t, "queued", got.Status)
}

func TestSubmitJobValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing file ref", `{"output_dir": "parts"}`, http.StatusBadRequest},
		{"invalid json", `{nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, mux := newTestServer()
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestJobStatus(t *testing.T) {
	_, _, st, mux := newTestServer()
	require.NoError(t, st.Set(context.Background(), "abc", store.Status{Status: "done", Progress: 100}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got store.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestJobStatusNotFound(t *testing.T) {
	_, _, _, mux := newTestServer()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelJob(t *testing.T) {
	_, q, _, mux := newTestServer()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/jobs/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc"}, q.cancelled)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		_, _, _, mux := newTestServer()
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("queue down", func(t *testing.T) {
		q := &fakeQueue{pingErr: fmt.Errorf("redis gone")}
		s := New(q, &fakeStatus{})
		mux := http.NewServeMux()
		s.RegisterRoutes(mux)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
