package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskboard/taskboard/internal/rbac"
)

const defaultWriteTimeout = 5 * time.Second

// Observer receives audit outcomes for metrics.
type Observer interface {
	ObserveAuditDecision(allowed bool)
	ObserveAuditWriteFailure()
}

// Option customises an Interceptor.
type Option func(*Interceptor)

// WithObserver reports decisions and write failures to o.
func WithObserver(o Observer) Option {
	return func(i *Interceptor) { i.observer = o }
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) Option {
	return func(i *Interceptor) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) {
		if now != nil {
			i.now = now
		}
	}
}

// Interceptor emits exactly one audit record for every request it wraps.
// Writes happen off the request path and their failures never reach the caller.
type Interceptor struct {
	sink     Sink
	logger   *slog.Logger
	observer Observer
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// NewInterceptor constructs an interceptor writing to sink.
func NewInterceptor(sink Sink, logger *slog.Logger, opts ...Option) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Interceptor{
		sink:    sink,
		logger:  logger,
		timeout: defaultWriteTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Middleware wraps next. A request is allowed when the handler returns with a
// status below 400; errors and panics are recorded as denied.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Record{UserID: rbac.ActorID(r.Context()), Action: r.Method}
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		completed := false
		defer func() {
			rec.Resource, rec.ResourceID = resourceOf(r)
			rec.Allowed = completed && sw.status < http.StatusBadRequest
			rec.Timestamp = i.now().UTC()
			i.dispatch(r.Context(), rec)
		}()
		next.ServeHTTP(sw, r)
		completed = true
	})
}

// Wait blocks until every pending write has finished or ctx is done. Records
// dispatched after Wait has been called are written on the request goroutine.
func (i *Interceptor) Wait(ctx context.Context) error {
	i.mu.Lock()
	i.closing = true
	i.mu.Unlock()

	done := make(chan struct{})
	go func() {
		i.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Interceptor) dispatch(ctx context.Context, rec Record) {
	i.mirror(rec)
	if i.observer != nil {
		i.observer.ObserveAuditDecision(rec.Allowed)
	}
	if i.sink == nil {
		return
	}

	// Add must not race with inflight.Wait once draining has begun.
	i.mu.Lock()
	if i.closing {
		i.mu.Unlock()
		i.persist(ctx, rec)
		return
	}
	i.inflight.Add(1)
	i.mu.Unlock()

	go func() {
		defer i.inflight.Done()
		i.persist(ctx, rec)
	}()
}

func (i *Interceptor) persist(ctx context.Context, rec Record) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.timeout)
	defer cancel()
	if err := i.write(writeCtx, rec); err != nil {
		i.logger.Error("audit write failed",
			slog.Any("error", err),
			slog.Int64("user_id", rec.UserID),
			slog.String("action", rec.Action),
			slog.String("resource", rec.Resource),
		)
		if i.observer != nil {
			i.observer.ObserveAuditWriteFailure()
		}
	}
}

func (i *Interceptor) write(ctx context.Context, rec Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("audit sink panic: %v", p)
		}
	}()
	return i.sink.Append(ctx, rec)
}

func (i *Interceptor) mirror(rec Record) {
	user := "anon"
	if !rec.Anonymous() {
		user = strconv.FormatInt(rec.UserID, 10)
	}
	attrs := []any{
		slog.String("user", user),
		slog.Bool("allowed", rec.Allowed),
		slog.String("action", rec.Action),
		slog.String("resource", rec.Resource),
	}
	if rec.ResourceID != nil {
		attrs = append(attrs, slog.Int64("resource_id", *rec.ResourceID))
	}
	i.logger.Info("audit", attrs...)
}

// resourceOf prefers the matched route template so records group by endpoint.
func resourceOf(r *http.Request) (string, *int64) {
	resource := r.URL.Path
	var id *int64
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			resource = pattern
		}
		if raw := rctx.URLParam("id"); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				id = &v
			}
		}
	}
	return resource, id
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
