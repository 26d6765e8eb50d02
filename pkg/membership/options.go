package membership

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
)

// Option configures the Service.
type Option func(*Service)

// WithNotifier sets the collaborator that receives invitation events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithAuditLogger records membership mutations to the audit trail.
func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.auditor = l
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInvitationTTL sets the default invitation lifetime used when Invite is
// called with a non-positive ttl.
func WithInvitationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
