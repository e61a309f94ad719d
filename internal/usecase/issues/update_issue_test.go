package issues

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	sqliterepo "issuetracker/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "issuetracker/internal/infrastructure/persistence/sqlite/uow"
)

// readBackFailingRepo answers the first GetIssue and fails every later one.
type readBackFailingRepo struct {
	*sqliterepo.IssueRepository
	reads *int
}

func (r readBackFailingRepo) GetIssue(ctx context.Context, issueID uint64) (issue.Issue, error) {
	*r.reads++
	if *r.reads > 1 {
		return issue.Issue{}, errors.New("read replica gone")
	}
	return r.IssueRepository.GetIssue(ctx, issueID)
}

func TestUpdateIssueCloseBumpsVersionAndStampsClosedAt(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, CreateIssueInput{Title: "Fix login bug", Description: "SSO broken", Status: "OPEN"})
	if created.Version != 1 || created.ClosedAt != nil {
		t.Fatalf("created = version %d closed_at %v", created.Version, created.ClosedAt)
	}

	closedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(closedAt)

	updated, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Status: issue.Set(issue.StatusClosed)},
	})
	if err != nil {
		t.Fatalf("UpdateIssue() error = %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2", updated.Version)
	}
	if updated.ClosedAt == nil || !updated.ClosedAt.Equal(closedAt) {
		t.Fatalf("closed_at = %v, want %v", updated.ClosedAt, closedAt)
	}
	if updated.Title != "Fix login bug" {
		t.Fatalf("title = %q, want untouched", updated.Title)
	}

	entries, err := svc.ListAuditEntries(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("ListAuditEntries() error = %v", err)
	}
	var updates []issue.AuditEntry
	for _, entry := range entries {
		if entry.Action == issue.AuditUpdate {
			updates = append(updates, entry)
		}
	}
	if len(updates) != 1 {
		t.Fatalf("UPDATE audit entries = %d, want 1", len(updates))
	}

	var details struct {
		Before issue.FieldSnapshot `json:"before"`
		After  map[string]string   `json:"after"`
	}
	if err := json.Unmarshal(updates[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Before.Status != issue.StatusOpen || details.Before.Title != "Fix login bug" {
		t.Fatalf("before = %+v", details.Before)
	}
	if len(details.After) != 1 || details.After["status"] != "CLOSED" {
		t.Fatalf("after = %v, want only the submitted status", details.After)
	}
}

func TestUpdateIssueStaleVersionConflicts(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, CreateIssueInput{Title: "shared"})
	atTwo, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Description: issue.Set("v2")},
	})
	if err != nil {
		t.Fatalf("UpdateIssue(v1) error = %v", err)
	}

	// Both callers read version 2; A wins.
	if _, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: atTwo.Version,
		Patch:           issue.Patch{Title: issue.Set("from A")},
	}); err != nil {
		t.Fatalf("UpdateIssue(A) error = %v", err)
	}

	_, err = svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: atTwo.Version,
		Patch:           issue.Patch{Title: issue.Set("from B"), Status: issue.Set(issue.StatusClosed)},
	})
	if !errors.Is(err, issue.ErrVersionConflict) {
		t.Fatalf("UpdateIssue(B) error = %v, want version conflict", err)
	}
	if errs.KindOf(err) != errs.KindVersionConflict {
		t.Fatalf("kind = %q, want %q", errs.KindOf(err), errs.KindVersionConflict)
	}

	current, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if current.Version != 3 || current.Title != "from A" || current.Status != issue.StatusOpen || current.ClosedAt != nil {
		t.Fatalf("current = %+v, want A's changes at version 3", current)
	}
	if got := auditActions(t, svc, created.IssueID); len(got) != 3 {
		t.Fatalf("audit actions = %v, want create + two updates", got)
	}
}

func TestUpdateIssueNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.UpdateIssue(context.Background(), UpdateIssueInput{
		IssueID:         404,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Title: issue.Set("x")},
	})
	if !errors.Is(err, issue.ErrIssueNotFound) || !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("UpdateIssue() error = %v, want issue not found", err)
	}
}

func TestUpdateIssueRejectsInvalidPatchBeforeWriting(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateIssueInput{Title: "t"})

	_, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Status: issue.Set(issue.Status("DONE"))},
	})
	if !errors.Is(err, issue.ErrInvalidStatus) {
		t.Fatalf("UpdateIssue() error = %v, want invalid status", err)
	}

	current, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if current.Version != 1 {
		t.Fatalf("version = %d, want unchanged 1", current.Version)
	}
}

func TestUpdateIssueReopenClearsClosedAt(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateIssueInput{Title: "t"})

	closed, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Status: issue.Set(issue.StatusClosed)},
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	firstClosedAt := *closed.ClosedAt

	svc.now = fixedClock(firstClosedAt.Add(time.Hour))
	again, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 2,
		Patch:           issue.Patch{Status: issue.Set(issue.StatusClosed)},
	})
	if err != nil {
		t.Fatalf("close again: %v", err)
	}
	if again.ClosedAt == nil || !again.ClosedAt.Equal(firstClosedAt) {
		t.Fatalf("closed_at = %v, want first stamp %v kept", again.ClosedAt, firstClosedAt)
	}

	reopened, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 3,
		Patch:           issue.Patch{Status: issue.Set(issue.StatusInProgress)},
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.ClosedAt != nil || reopened.Version != 4 {
		t.Fatalf("reopened = version %d closed_at %v", reopened.Version, reopened.ClosedAt)
	}
}

func TestUpdateIssueEmptyPatchStillBumpsVersion(t *testing.T) {
	svc, _, _ := setupService(t)
	created := mustCreate(t, svc, CreateIssueInput{Title: "t"})

	updated, err := svc.UpdateIssue(context.Background(), UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
	})
	if err != nil {
		t.Fatalf("UpdateIssue() error = %v", err)
	}
	if updated.Version != 2 || updated.Title != "t" {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestUpdateIssueReadBackFailureCommitsNothing(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateIssueInput{Title: "t"})

	reads := 0
	failing := NewService(
		readBackFailingRepo{IssueRepository: sqliterepo.NewIssueRepository(db), reads: &reads},
		sqliteuow.NewUnitOfWork(db),
		nil,
	)

	_, err := failing.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Title: issue.Set("renamed")},
	})
	if err == nil {
		t.Fatal("UpdateIssue() succeeded, want read-back error")
	}

	stored, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if stored.Version != 1 || stored.Title != "t" {
		t.Fatalf("stored = version %d title %q, want untouched issue", stored.Version, stored.Title)
	}
	if got := auditActions(t, svc, created.IssueID); len(got) != 1 || got[0] != issue.AuditCreateIssue {
		t.Fatalf("audit actions = %v, want only CREATE_ISSUE", got)
	}

	updated, err := svc.UpdateIssue(ctx, UpdateIssueInput{
		IssueID:         created.IssueID,
		ExpectedVersion: 1,
		Patch:           issue.Patch{Title: issue.Set("renamed")},
	})
	if err != nil {
		t.Fatalf("retry UpdateIssue() error = %v", err)
	}
	if updated.Version != 2 || updated.Title != "renamed" {
		t.Fatalf("retry = version %d title %q", updated.Version, updated.Title)
	}
}
