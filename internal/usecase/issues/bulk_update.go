package issues

import (
	"context"
	"strings"

	"issuetracker/internal/domain/issue"
)

// BulkUpdate applies one status and/or label change to every named issue in a single
// transaction. Every reference is checked before anything is written: one unknown issue
// or label id rejects the whole batch. Each touched issue's version is bumped. The
// closed_at rule is not applied here and no audit entries are written.
func (s *Service) BulkUpdate(ctx context.Context, input BulkUpdateInput) (BulkUpdateResult, error) {
	if err := s.ready(ctx); err != nil {
		return BulkUpdateResult{}, err
	}

	var status *issue.Status
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := issue.ParseStatus(input.Status)
		if err != nil {
			return BulkUpdateResult{}, err
		}
		status = &parsed
	}

	var result BulkUpdateResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ExistingIssueIDs(txCtx, input.IssueIDs)
		if err != nil {
			return err
		}
		if len(existing) != len(input.IssueIDs) {
			return issue.ErrSomeIssuesNotFound
		}

		requestedLabels, replaceLabels := input.LabelIDs.Get()
		var labelIDs []uint64
		if replaceLabels {
			labels, err := s.repo.FindLabels(txCtx, requestedLabels)
			if err != nil {
				return err
			}
			if len(labels) != len(requestedLabels) {
				return issue.ErrInvalidLabelID
			}
			labelIDs = labelIDsOf(labels)
		}

		updated, err := s.repo.BumpIssues(txCtx, existing, status)
		if err != nil {
			return err
		}
		if replaceLabels {
			if err := s.repo.ReplaceIssueLabels(txCtx, existing, labelIDs); err != nil {
				return err
			}
		}

		result.Updated = updated
		return nil
	}); err != nil {
		return BulkUpdateResult{}, err
	}

	return result, nil
}
