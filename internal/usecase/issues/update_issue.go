package issues

import (
	"context"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/ports"
)

// UpdateIssue applies a partial update guarded by the caller's expected version.
//
// The version comparison runs before any field is applied, and the store repeats it in
// the write itself, so two writers holding the same stale version cannot both succeed.
// The returned issue is read back inside the same transaction; an error always means
// nothing was committed.
func (s *Service) UpdateIssue(ctx context.Context, input UpdateIssueInput) (issue.Issue, error) {
	if err := s.ready(ctx); err != nil {
		return issue.Issue{}, err
	}
	if err := input.Patch.Validate(); err != nil {
		return issue.Issue{}, err
	}

	var before, after issue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetIssue(txCtx, input.IssueID)
		if err != nil {
			return err
		}
		if current.Version != input.ExpectedVersion {
			return issue.ErrVersionConflict
		}
		before = current

		next := current
		input.Patch.Apply(&next, s.now())
		if err := s.repo.UpdateIssueFields(txCtx, input.IssueID, input.ExpectedVersion, ports.IssueFieldsUpdate{
			Title:       next.Title,
			Description: next.Description,
			Status:      next.Status,
			ClosedAt:    next.ClosedAt,
		}); err != nil {
			return err
		}

		after, err = s.repo.GetIssue(txCtx, input.IssueID)
		return err
	}); err != nil {
		return issue.Issue{}, err
	}

	s.recordAudit(ctx, input.IssueID, issue.AuditUpdate, issue.UpdateDetails{
		Before: issue.SnapshotOf(before),
		After:  input.Patch.Submitted(),
	})
	return after, nil
}
