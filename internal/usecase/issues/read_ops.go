package issues

import (
	"context"
	"strings"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/ports"
)

func (s *Service) GetIssue(ctx context.Context, issueID uint64) (issue.Issue, error) {
	if err := s.ready(ctx); err != nil {
		return issue.Issue{}, err
	}
	return s.repo.GetIssue(ctx, issueID)
}

// ListIssues returns newest issues first. With LabelIDs set, an issue matches when it
// carries any of them.
func (s *Service) ListIssues(ctx context.Context, input ListIssuesInput) ([]issue.Issue, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	filter := ports.IssueFilter{LabelIDs: input.LabelIDs}
	if strings.TrimSpace(input.Status) != "" {
		status, err := issue.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return s.repo.ListIssues(ctx, filter)
}

func (s *Service) ListComments(ctx context.Context, issueID uint64) ([]issue.Comment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, issueID)
}

func (s *Service) ListAuditEntries(ctx context.Context, issueID uint64) ([]issue.AuditEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	return s.repo.ListAuditEntries(ctx, issueID)
}

func (s *Service) ListLabels(ctx context.Context) ([]issue.Label, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListLabels(ctx)
}

func (s *Service) ListUsers(ctx context.Context) ([]issue.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}
