package issues

import (
	"context"
	"encoding/json"
	"log/slog"

	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/ports"
)

// recordAudit appends an audit entry after the mutation has committed. Failures are
// logged and swallowed: the mutation already succeeded.
func (s *Service) recordAudit(ctx context.Context, issueID uint64, action issue.AuditAction, details any) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.issues.audit"),
		slog.Uint64("issue_id", issueID),
		slog.String("action", string(action)),
	)

	raw, err := json.Marshal(details)
	if err != nil {
		logging.Warn(logCtx, "encode audit details failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	entry, err := s.repo.AppendAuditEntry(ctx, ports.AuditCreate{
		IssueID:   issueID,
		Action:    action,
		Details:   raw,
		CreatedAt: s.now(),
	})
	if err != nil {
		logging.Warn(logCtx, "append audit entry failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAudit(ctx, entry); err != nil {
		logging.Warn(logCtx, "publish audit entry failed", slog.Any("err", errs.Loggable(err)))
	}
}
