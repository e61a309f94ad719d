package issues

import (
	"context"
	"strings"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/ports"
)

// AddComment appends a comment and records COMMENT with the new comment id.
func (s *Service) AddComment(ctx context.Context, input AddCommentInput) (issue.Comment, error) {
	if err := s.ready(ctx); err != nil {
		return issue.Comment{}, err
	}
	if strings.TrimSpace(input.Body) == "" {
		return issue.Comment{}, issue.ErrBodyRequired
	}

	var created issue.Comment
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetIssue(txCtx, input.IssueID); err != nil {
			return err
		}

		var err error
		created, err = s.repo.CreateComment(txCtx, ports.CommentCreate{
			IssueID:   input.IssueID,
			Body:      input.Body,
			CreatedAt: s.now(),
		})
		return err
	}); err != nil {
		return issue.Comment{}, err
	}

	s.recordAudit(ctx, input.IssueID, issue.AuditComment, issue.CommentDetails{CommentID: created.CommentID})
	return created, nil
}
