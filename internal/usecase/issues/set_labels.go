package issues

import (
	"context"

	"issuetracker/internal/domain/issue"
)

// SetLabels replaces the issue's label set with the labels that resolve from LabelIDs.
// Unresolved ids are dropped silently and the version is not bumped. The audit entry
// records the ids as requested.
func (s *Service) SetLabels(ctx context.Context, input SetLabelsInput) (issue.Issue, error) {
	if err := s.ready(ctx); err != nil {
		return issue.Issue{}, err
	}

	var before []uint64
	var after issue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetIssue(txCtx, input.IssueID)
		if err != nil {
			return err
		}
		before = current.LabelIDs()

		resolved, err := s.repo.FindLabels(txCtx, input.LabelIDs)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceIssueLabels(txCtx, []uint64{input.IssueID}, labelIDsOf(resolved)); err != nil {
			return err
		}

		after, err = s.repo.GetIssue(txCtx, input.IssueID)
		return err
	}); err != nil {
		return issue.Issue{}, err
	}

	s.recordAudit(ctx, input.IssueID, issue.AuditLabelUpdate, issue.NewLabelUpdateDetails(before, input.LabelIDs))
	return after, nil
}
