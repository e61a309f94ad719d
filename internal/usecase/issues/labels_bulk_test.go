package issues

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
)

func TestSetLabelsReplacesSetWithoutBumpingVersion(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	catalog := seedCatalog(t, svc)
	bug, feature, ui := catalog.Labels[0].LabelID, catalog.Labels[1].LabelID, catalog.Labels[2].LabelID

	created := mustCreate(t, svc, CreateIssueInput{Title: "t", LabelIDs: []uint64{bug, feature}})

	updated, err := svc.SetLabels(ctx, SetLabelsInput{IssueID: created.IssueID, LabelIDs: []uint64{ui, 999}})
	if err != nil {
		t.Fatalf("SetLabels() error = %v", err)
	}
	if got := updated.LabelIDs(); !reflect.DeepEqual(got, []uint64{ui}) {
		t.Fatalf("labels = %v, want [%d]", got, ui)
	}
	if updated.Version != 1 {
		t.Fatalf("version = %d, want 1", updated.Version)
	}

	entries, err := svc.ListAuditEntries(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("ListAuditEntries() error = %v", err)
	}
	if entries[0].Action != issue.AuditLabelUpdate {
		t.Fatalf("newest audit = %s, want LABEL_UPDATE", entries[0].Action)
	}
	var details issue.LabelUpdateDetails
	if err := json.Unmarshal(entries[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if !reflect.DeepEqual(details.Before, []uint64{bug, feature}) {
		t.Fatalf("before = %v", details.Before)
	}
	if !reflect.DeepEqual(details.After, []uint64{ui, 999}) {
		t.Fatalf("after = %v, want requested ids", details.After)
	}

	cleared, err := svc.SetLabels(ctx, SetLabelsInput{IssueID: created.IssueID, LabelIDs: []uint64{}})
	if err != nil {
		t.Fatalf("SetLabels(empty) error = %v", err)
	}
	if len(cleared.Labels) != 0 {
		t.Fatalf("labels = %v, want none", cleared.Labels)
	}
}

func TestSetLabelsNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.SetLabels(context.Background(), SetLabelsInput{IssueID: 9, LabelIDs: []uint64{1}})
	if !errors.Is(err, issue.ErrIssueNotFound) {
		t.Fatalf("SetLabels() error = %v, want issue not found", err)
	}
}

func TestBulkUpdateUnknownIssueChangesNothing(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, CreateIssueInput{Title: "one"})
	second := mustCreate(t, svc, CreateIssueInput{Title: "two"})

	_, err := svc.BulkUpdate(ctx, BulkUpdateInput{
		IssueIDs: []uint64{first.IssueID, second.IssueID, 999},
		Status:   "CLOSED",
	})
	if !errors.Is(err, issue.ErrSomeIssuesNotFound) || !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("BulkUpdate() error = %v, want some issues not found", err)
	}

	for _, id := range []uint64{first.IssueID, second.IssueID} {
		current, err := svc.GetIssue(ctx, id)
		if err != nil {
			t.Fatalf("GetIssue(%d) error = %v", id, err)
		}
		if current.Version != 1 || current.Status != issue.StatusOpen {
			t.Fatalf("issue %d = version %d status %s, want untouched", id, current.Version, current.Status)
		}
	}
}

func TestBulkUpdateUnknownLabelChangesNothing(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	catalog := seedCatalog(t, svc)

	created := mustCreate(t, svc, CreateIssueInput{Title: "one", LabelIDs: []uint64{catalog.Labels[0].LabelID}})

	_, err := svc.BulkUpdate(ctx, BulkUpdateInput{
		IssueIDs: []uint64{created.IssueID},
		LabelIDs: issue.Set([]uint64{catalog.Labels[1].LabelID, 999}),
	})
	if !errors.Is(err, issue.ErrInvalidLabelID) {
		t.Fatalf("BulkUpdate() error = %v, want invalid label id", err)
	}

	current, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if current.Version != 1 || !reflect.DeepEqual(current.LabelIDs(), []uint64{catalog.Labels[0].LabelID}) {
		t.Fatalf("issue = %+v, want untouched", current)
	}
}

func TestBulkUpdateBumpsEveryIssue(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()
	catalog := seedCatalog(t, svc)
	ui := catalog.Labels[2].LabelID

	first := mustCreate(t, svc, CreateIssueInput{Title: "one", LabelIDs: []uint64{catalog.Labels[0].LabelID}})
	second := mustCreate(t, svc, CreateIssueInput{Title: "two"})
	published := len(publisher.entries)

	result, err := svc.BulkUpdate(ctx, BulkUpdateInput{
		IssueIDs: []uint64{first.IssueID, second.IssueID},
		Status:   "CLOSED",
		LabelIDs: issue.Set([]uint64{ui}),
	})
	if err != nil {
		t.Fatalf("BulkUpdate() error = %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("updated = %d, want 2", result.Updated)
	}

	for _, id := range []uint64{first.IssueID, second.IssueID} {
		current, err := svc.GetIssue(ctx, id)
		if err != nil {
			t.Fatalf("GetIssue(%d) error = %v", id, err)
		}
		if current.Version != 2 || current.Status != issue.StatusClosed {
			t.Fatalf("issue %d = version %d status %s", id, current.Version, current.Status)
		}
		if current.ClosedAt != nil {
			t.Fatalf("issue %d closed_at = %v, bulk path leaves it alone", id, current.ClosedAt)
		}
		if !reflect.DeepEqual(current.LabelIDs(), []uint64{ui}) {
			t.Fatalf("issue %d labels = %v", id, current.LabelIDs())
		}
		if got := auditActions(t, svc, id); len(got) != 1 {
			t.Fatalf("issue %d audit = %v, want only CREATE_ISSUE", id, got)
		}
	}
	if len(publisher.entries) != published {
		t.Fatalf("bulk update published audit entries")
	}
}

func TestBulkUpdateLabelsOnlyStillBumpsVersion(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	catalog := seedCatalog(t, svc)

	created := mustCreate(t, svc, CreateIssueInput{Title: "one", Status: "IN_PROGRESS", LabelIDs: []uint64{catalog.Labels[0].LabelID}})

	if _, err := svc.BulkUpdate(ctx, BulkUpdateInput{
		IssueIDs: []uint64{created.IssueID},
		LabelIDs: issue.Set([]uint64{}),
	}); err != nil {
		t.Fatalf("BulkUpdate() error = %v", err)
	}

	current, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if current.Version != 2 || current.Status != issue.StatusInProgress || len(current.Labels) != 0 {
		t.Fatalf("issue = %+v, want version 2, status kept, labels cleared", current)
	}
}

func TestBulkUpdateRejectsInvalidStatus(t *testing.T) {
	svc, _, _ := setupService(t)
	created := mustCreate(t, svc, CreateIssueInput{Title: "one"})

	_, err := svc.BulkUpdate(context.Background(), BulkUpdateInput{
		IssueIDs: []uint64{created.IssueID},
		Status:   "ARCHIVED",
	})
	if !errors.Is(err, issue.ErrInvalidStatus) {
		t.Fatalf("BulkUpdate() error = %v, want invalid status", err)
	}
}

func TestAddCommentRecordsAudit(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateIssueInput{Title: "t"})

	comment, err := svc.AddComment(ctx, AddCommentInput{IssueID: created.IssueID, Body: "looking into it"})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	comments, err := svc.ListComments(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 1 || comments[0].CommentID != comment.CommentID || comments[0].Body != "looking into it" {
		t.Fatalf("comments = %+v", comments)
	}

	entries, err := svc.ListAuditEntries(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("ListAuditEntries() error = %v", err)
	}
	var details issue.CommentDetails
	if err := json.Unmarshal(entries[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if entries[0].Action != issue.AuditComment || details.CommentID != comment.CommentID {
		t.Fatalf("newest audit = %s %+v", entries[0].Action, details)
	}

	if _, err := svc.AddComment(ctx, AddCommentInput{IssueID: created.IssueID, Body: "   "}); !errors.Is(err, issue.ErrBodyRequired) {
		t.Fatalf("AddComment(blank) error = %v, want body required", err)
	}
	if _, err := svc.AddComment(ctx, AddCommentInput{IssueID: 77, Body: "x"}); !errors.Is(err, issue.ErrIssueNotFound) {
		t.Fatalf("AddComment(missing) error = %v, want issue not found", err)
	}
	if _, err := svc.ListComments(ctx, 77); !errors.Is(err, issue.ErrIssueNotFound) {
		t.Fatalf("ListComments(missing) error = %v, want issue not found", err)
	}
}

func TestListIssuesFilters(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	catalog := seedCatalog(t, svc)
	bug, feature := catalog.Labels[0].LabelID, catalog.Labels[1].LabelID

	first := mustCreate(t, svc, CreateIssueInput{Title: "first", LabelIDs: []uint64{bug, feature}})
	second := mustCreate(t, svc, CreateIssueInput{Title: "second", Status: "CLOSED", LabelIDs: []uint64{feature}})
	mustCreate(t, svc, CreateIssueInput{Title: "third"})

	all, err := svc.ListIssues(ctx, ListIssuesInput{})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(all) != 3 || all[0].Title != "third" {
		t.Fatalf("all = %d issues, first %q; want newest first", len(all), all[0].Title)
	}

	labelled, err := svc.ListIssues(ctx, ListIssuesInput{LabelIDs: []uint64{bug, feature}})
	if err != nil {
		t.Fatalf("ListIssues(labels) error = %v", err)
	}
	if len(labelled) != 2 || labelled[0].IssueID != second.IssueID || labelled[1].IssueID != first.IssueID {
		t.Fatalf("labelled = %+v, want second then first without duplicates", labelled)
	}

	closed, err := svc.ListIssues(ctx, ListIssuesInput{Status: "CLOSED"})
	if err != nil {
		t.Fatalf("ListIssues(status) error = %v", err)
	}
	if len(closed) != 1 || closed[0].IssueID != second.IssueID {
		t.Fatalf("closed = %+v", closed)
	}

	if _, err := svc.ListIssues(ctx, ListIssuesInput{Status: "nope"}); !errors.Is(err, issue.ErrInvalidStatus) {
		t.Fatalf("ListIssues(bad status) error = %v", err)
	}
}
