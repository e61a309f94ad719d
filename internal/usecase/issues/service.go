package issues

import (
	"context"
	"errors"
	"time"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/ports"
)

var (
	errRepositoryRequired = errors.New("issue repository is required")
	errUnitOfWorkRequired = errors.New("issue unit of work is required")
)

type Service struct {
	repo      ports.IssueRepository
	uow       ports.UnitOfWork
	publisher ports.AuditPublisher
	now       func() time.Time
}

// NewService wires issue usecases. publisher may be nil, in which case audit entries
// are only persisted.
func NewService(repo ports.IssueRepository, uow ports.UnitOfWork, publisher ports.AuditPublisher) *Service {
	return &Service{
		repo:      repo,
		uow:       uow,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateIssueInput struct {
	Title       string
	Description string
	Status      string
	LabelIDs    []uint64
	AssigneeID  *uint64
}

type UpdateIssueInput struct {
	IssueID         uint64
	ExpectedVersion int64
	Patch           issue.Patch
}

type SetLabelsInput struct {
	IssueID  uint64
	LabelIDs []uint64
}

// BulkUpdateInput leaves status untouched when Status is empty and labels untouched when
// LabelIDs is unset. A set but empty LabelIDs clears every label.
type BulkUpdateInput struct {
	IssueIDs []uint64
	Status   string
	LabelIDs issue.Field[[]uint64]
}

type BulkUpdateResult struct {
	Updated int64 `json:"updated"`
}

type AddCommentInput struct {
	IssueID uint64
	Body    string
}

type ListIssuesInput struct {
	Status   string
	LabelIDs []uint64
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepositoryRequired
	}
	if s.uow == nil {
		return errUnitOfWorkRequired
	}
	return nil
}

func labelIDsOf(labels []issue.Label) []uint64 {
	ids := make([]uint64, 0, len(labels))
	for _, label := range labels {
		ids = append(ids, label.LabelID)
	}
	return ids
}
