package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard/internal/rbac"
)

type memorySink struct {
	mu      sync.Mutex
	records []Record
	err     error
	block   chan struct{}
}

func (s *memorySink) Append(ctx context.Context, rec Record) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) all() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

type countingObserver struct {
	mu       sync.Mutex
	allowed  int
	denied   int
	failures int
}

func (o *countingObserver) ObserveAuditDecision(allowed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if allowed {
		o.allowed++
	} else {
		o.denied++
	}
}

func (o *countingObserver) ObserveAuditWriteFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter(i *Interceptor) chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(i.Middleware)
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("[]"))
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "out of scope", http.StatusForbidden)
			})
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			})
		})
	})
	return r
}

func serve(t *testing.T, h http.Handler, method, target string, p *rbac.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if p != nil {
		req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func waitFor(t *testing.T, i *Interceptor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, i.Wait(ctx))
}

func TestInterceptorRecordsAllowedRequest(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), WithClock(func() time.Time { return fixedNow }))
	r := newTestRouter(i)

	rec := serve(t, r, http.MethodPut, "/api/tasks/42", &rbac.Principal{ID: 7, Role: rbac.RoleAdmin, OrganizationID: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	waitFor(t, i)

	records := sink.all()
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, http.MethodPut, got.Action)
	assert.Equal(t, "/api/tasks/{id}", got.Resource)
	require.NotNil(t, got.ResourceID)
	assert.Equal(t, int64(42), *got.ResourceID)
	assert.True(t, got.Allowed)
	assert.Equal(t, fixedNow, got.Timestamp)
}

func TestInterceptorRecordsDeniedRequest(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := newTestRouter(i)

	rec := serve(t, r, http.MethodDelete, "/api/tasks/9", &rbac.Principal{ID: 3, Role: rbac.RoleViewer, OrganizationID: 5})
	require.Equal(t, http.StatusForbidden, rec.Code)
	waitFor(t, i)

	records := sink.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].Allowed)
	assert.Equal(t, http.MethodDelete, records[0].Action)
}

func TestInterceptorRecordsAnonymousAsZero(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := newTestRouter(i)

	serve(t, r, http.MethodGet, "/api/tasks", nil)
	waitFor(t, i)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].UserID)
	assert.True(t, records[0].Anonymous())
	assert.Nil(t, records[0].ResourceID)
}

func TestInterceptorRecordsPanicAsDeniedAndRepanics(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := newTestRouter(i)

	assert.PanicsWithValue(t, "boom", func() {
		serve(t, r, http.MethodPost, "/api/tasks", &rbac.Principal{ID: 1, Role: rbac.RoleOwner, OrganizationID: 1})
	})
	waitFor(t, i)

	records := sink.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].Allowed)
	assert.Equal(t, http.MethodPost, records[0].Action)
}

func TestInterceptorSwallowsSinkFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	var logs bytes.Buffer
	obs := &countingObserver{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&logs, nil)), WithObserver(obs))
	r := newTestRouter(i)

	rec := serve(t, r, http.MethodGet, "/api/tasks", &rbac.Principal{ID: 2, Role: rbac.RoleAdmin, OrganizationID: 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
	waitFor(t, i)

	assert.Empty(t, sink.all())
	assert.Contains(t, logs.String(), "audit write failed")
	assert.Equal(t, 1, obs.failures)
	assert.Equal(t, 1, obs.allowed)
}

func TestInterceptorAbsorbsSinkPanic(t *testing.T) {
	obs := &countingObserver{}
	sink := SinkFunc(func(ctx context.Context, rec Record) error { panic("driver bug") })
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), WithObserver(obs))

	rec := serve(t, newTestRouter(i), http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	waitFor(t, i)
	assert.Equal(t, 1, obs.failures)
}

func TestInterceptorDoesNotBlockOnSlowSink(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	rec := serve(t, newTestRouter(i), http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, i.Wait(ctx), context.DeadlineExceeded)

	close(sink.block)
	waitFor(t, i)
	assert.Len(t, sink.all(), 1)
}

func TestInterceptorMirrorsDecisionToLog(t *testing.T) {
	var logs bytes.Buffer
	i := NewInterceptor(&memorySink{}, slog.New(slog.NewTextHandler(&logs, nil)))

	serve(t, newTestRouter(i), http.MethodDelete, "/api/tasks/9", nil)
	waitFor(t, i)

	out := logs.String()
	assert.Contains(t, out, "msg=audit")
	assert.Contains(t, out, "user=anon")
	assert.Contains(t, out, "allowed=false")
	assert.Contains(t, out, "resource_id=9")
}

func TestInterceptorOneRecordPerRequest(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := newTestRouter(i)

	var wg sync.WaitGroup
	for n := 0; n < 25; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(t, r, http.MethodGet, "/api/tasks", nil)
		}()
	}
	wg.Wait()
	waitFor(t, i)
	assert.Len(t, sink.all(), 25)
}

func TestInterceptorIgnoresNonNumericID(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	serve(t, newTestRouter(i), http.MethodPut, "/api/tasks/abc", nil)
	waitFor(t, i)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Nil(t, records[0].ResourceID)
}

func TestInterceptorWaitDuringTraffic(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := newTestRouter(i)

	const requests = 200
	var wg sync.WaitGroup
	for n := 0; n < requests; n++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			serve(t, r, http.MethodGet, "/api/tasks", nil)
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
			defer cancel()
			_ = i.Wait(ctx)
		}()
	}
	wg.Wait()
	waitFor(t, i)
	assert.Len(t, sink.all(), requests)
}

func TestInterceptorWritesInlineAfterWait(t *testing.T) {
	sink := &memorySink{}
	i := NewInterceptor(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	waitFor(t, i)

	serve(t, newTestRouter(i), http.MethodPut, "/api/tasks/3", &rbac.Principal{ID: 4, Role: rbac.RoleOwner, OrganizationID: 1})

	records := sink.all()
	require.Len(t, records, 1)
	assert.True(t, records[0].Allowed)
}
