// Package audit records one access decision per API request and exposes the
// resulting trail to auditors.
package audit

import (
	"context"
	"time"
)

// Record is a single audit trail entry.
type Record struct {
	ID         int64     `json:"id,omitempty"`
	UserID     int64     `json:"userId"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *int64    `json:"resourceId,omitempty"`
	Allowed    bool      `json:"allowed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Anonymous reports whether the request carried no authenticated principal.
func (r Record) Anonymous() bool {
	return r.UserID == 0
}

// Sink persists audit records. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rec Record) error

// Append calls f.
func (f SinkFunc) Append(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}
