package issues

import (
	"context"
	"errors"
	"strings"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/ports"
)

// CreateIssue stores a new issue at version 1 and records CREATE_ISSUE. closed_at starts
// unset whatever the initial status is. Unknown label ids are dropped.
func (s *Service) CreateIssue(ctx context.Context, input CreateIssueInput) (issue.Issue, error) {
	if err := s.ready(ctx); err != nil {
		return issue.Issue{}, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return issue.Issue{}, issue.ErrTitleRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return issue.Issue{}, issue.ErrDescriptionRequired
	}

	status := issue.StatusOpen
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := issue.ParseStatus(input.Status)
		if err != nil {
			return issue.Issue{}, err
		}
		status = parsed
	}

	var created issue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.AssigneeID != nil {
			if _, err := s.repo.GetUser(txCtx, *input.AssigneeID); err != nil {
				if errors.Is(err, issue.ErrUserNotFound) {
					return issue.ErrUnknownAssignee
				}
				return err
			}
		}

		labels, err := s.repo.FindLabels(txCtx, input.LabelIDs)
		if err != nil {
			return err
		}

		created, err = s.repo.CreateIssue(txCtx, ports.IssueCreate{
			Title:       input.Title,
			Description: input.Description,
			Status:      status,
			AssigneeID:  input.AssigneeID,
			LabelIDs:    labelIDsOf(labels),
			CreatedAt:   s.now(),
		})
		return err
	}); err != nil {
		return issue.Issue{}, err
	}

	s.recordAudit(ctx, created.IssueID, issue.AuditCreateIssue, issue.CreateDetails{Title: input.Title})
	return created, nil
}
