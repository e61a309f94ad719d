package ports

import (
	"context"

	"issuetracker/internal/domain/issue"
)

// AuditPublisher forwards persisted audit entries to an external channel.
// Delivery is best-effort; callers log and drop errors.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, entry issue.AuditEntry) error
}
