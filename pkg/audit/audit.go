package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Storage persists audit events. Implementations should be append-only.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// Logger builds audit events and hands them to storage.
type Logger struct {
	storage Storage
	now     func() time.Time
}

// NewLogger creates an audit logger writing to the given storage.
func NewLogger(storage Storage) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &Logger{storage: storage, now: time.Now}
}

// Log records a successful action.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.store(ctx, action, ResultSuccess, "", opts)
}

// LogError records a failed action together with its error.
func (l *Logger) LogError(ctx context.Context, action string, cause error, opts ...EventOption) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return l.store(ctx, action, ResultFailure, msg, opts)
}

func (l *Logger) store(ctx context.Context, action string, result Result, errMsg string, opts []EventOption) error {
	event := Event{
		ID:        uuid.New(),
		Action:    action,
		Result:    result,
		Error:     errMsg,
		CreatedAt: l.now(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

// SlogStorage writes audit events to a structured logger. It satisfies
// Storage for deployments where the log pipeline is the audit trail.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a Storage that emits events via slog.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	if log == nil {
		log = slog.Default()
	}
	return &SlogStorage{log: log}
}

func (s *SlogStorage) Store(ctx context.Context, event Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID.String()),
		slog.String("action", event.Action),
		slog.String("result", string(event.Result)),
		slog.Time("created_at", event.CreatedAt),
	}
	if event.TenantID != uuid.Nil {
		attrs = append(attrs, slog.String("tenant_id", event.TenantID.String()))
	}
	if event.UserID != uuid.Nil {
		attrs = append(attrs, slog.String("user_id", event.UserID.String()))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.String(k, v))
	}

	level := slog.LevelInfo
	if event.Result == ResultFailure {
		level = slog.LevelWarn
	}
	s.log.LogAttrs(ctx, level, "audit", attrs...)
	return nil
}
