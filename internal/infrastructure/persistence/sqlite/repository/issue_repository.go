package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/infrastructure/persistence/sqlite/model"
	"issuetracker/internal/ports"
)

type IssueRepository struct {
	db *gorm.DB
}

var _ ports.IssueRepository = (*IssueRepository)(nil)

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// inTx runs fn inside the caller's transaction, or a fresh one when ctx carries none.
func (r *IssueRepository) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ports.TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}

func (r *IssueRepository) GetIssue(ctx context.Context, issueID uint64) (issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Issue{}, err
	}

	var row model.Issue
	if err := db.Preload("Assignee").Where("issue_id = ?", issueID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return issue.Issue{}, issue.ErrIssueNotFound
		}
		return issue.Issue{}, errs.Wrap(err, "query issue")
	}

	labels, err := labelsByIssue(db, []uint64{row.IssueID})
	if err != nil {
		return issue.Issue{}, err
	}
	return mapIssue(row, labels[row.IssueID]), nil
}

func (r *IssueRepository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Preload("Assignee").Model(&model.Issue{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if len(filter.LabelIDs) > 0 {
		sub := db.Model(&model.IssueLabel{}).
			Select("issue_id").
			Where("label_id IN ?", filter.LabelIDs)
		query = query.Where("issue_id IN (?)", sub)
	}

	var rows []model.Issue
	if err := query.Order("created_at desc").Order("issue_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues")
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.IssueID)
	}
	labels, err := labelsByIssue(db, ids)
	if err != nil {
		return nil, err
	}

	items := make([]issue.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row, labels[row.IssueID]))
	}
	return items, nil
}

func (r *IssueRepository) ExistingIssueIDs(ctx context.Context, issueIDs []uint64) ([]uint64, error) {
	if len(issueIDs) == 0 {
		return nil, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	if err := db.Model(&model.Issue{}).
		Where("issue_id IN ?", issueIDs).
		Order("issue_id asc").
		Pluck("issue_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query issue ids")
	}
	return ids, nil
}

func (r *IssueRepository) CreateIssue(ctx context.Context, input ports.IssueCreate) (issue.Issue, error) {
	var created issue.Issue
	err := r.inTx(ctx, func(txCtx context.Context) error {
		db, err := r.dbFromContext(txCtx)
		if err != nil {
			return err
		}

		row := model.Issue{
			Title:       input.Title,
			Description: input.Description,
			Status:      string(input.Status),
			AssigneeID:  input.AssigneeID,
			Version:     1,
			CreatedAt:   input.CreatedAt,
		}
		if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert issue")
		}

		if err := insertIssueLabels(db, []uint64{row.IssueID}, input.LabelIDs); err != nil {
			return err
		}

		created, err = r.GetIssue(txCtx, row.IssueID)
		return err
	})
	if err != nil {
		return issue.Issue{}, err
	}
	return created, nil
}

func (r *IssueRepository) UpdateIssueFields(ctx context.Context, issueID uint64, expectedVersion int64, fields ports.IssueFieldsUpdate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var closedAt any
	if fields.ClosedAt != nil {
		closedAt = fields.ClosedAt.UTC()
	}

	// Compare-and-swap on version: a concurrent writer that got there first leaves
	// zero matching rows.
	result := db.Model(&model.Issue{}).
		Where("issue_id = ? AND version = ?", issueID, expectedVersion).
		Updates(map[string]any{
			"title":       fields.Title,
			"description": fields.Description,
			"status":      string(fields.Status),
			"closed_at":   closedAt,
			"version":     gorm.Expr("version + ?", 1),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&model.Issue{}).Where("issue_id = ?", issueID).Count(&count).Error; err != nil {
		return errs.Wrap(err, "count issue")
	}
	if count == 0 {
		return issue.ErrIssueNotFound
	}
	return issue.ErrVersionConflict
}

func (r *IssueRepository) BumpIssues(ctx context.Context, issueIDs []uint64, status *issue.Status) (int64, error) {
	if len(issueIDs) == 0 {
		return 0, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	updates := map[string]any{
		"version": gorm.Expr("version + ?", 1),
	}
	if status != nil {
		updates["status"] = string(*status)
	}

	result := db.Model(&model.Issue{}).Where("issue_id IN ?", issueIDs).Updates(updates)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "bulk update issues")
	}
	return result.RowsAffected, nil
}

func (r *IssueRepository) ReplaceIssueLabels(ctx context.Context, issueIDs []uint64, labelIDs []uint64) error {
	if len(issueIDs) == 0 {
		return nil
	}

	return r.inTx(ctx, func(txCtx context.Context) error {
		db, err := r.dbFromContext(txCtx)
		if err != nil {
			return err
		}

		if err := db.Where("issue_id IN ?", issueIDs).Delete(&model.IssueLabel{}).Error; err != nil {
			return errs.Wrap(err, "delete issue labels")
		}
		return insertIssueLabels(db, issueIDs, labelIDs)
	})
}

func (r *IssueRepository) CreateComment(ctx context.Context, input ports.CommentCreate) (issue.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Comment{}, err
	}

	row := model.Comment{
		IssueID:   input.IssueID,
		Body:      input.Body,
		CreatedAt: input.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return issue.Comment{}, errs.Wrap(err, "insert comment")
	}
	return mapComment(row), nil
}

func (r *IssueRepository) ListComments(ctx context.Context, issueID uint64) ([]issue.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Comment
	if err := db.
		Where("issue_id = ?", issueID).
		Order("created_at asc").
		Order("comment_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query comments")
	}

	items := make([]issue.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapComment(row))
	}
	return items, nil
}

func (r *IssueRepository) AppendAuditEntry(ctx context.Context, input ports.AuditCreate) (issue.AuditEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.AuditEntry{}, err
	}

	row := model.AuditLog{
		IssueID:     input.IssueID,
		Action:      string(input.Action),
		DetailsJSON: string(input.Details),
		CreatedAt:   input.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return issue.AuditEntry{}, errs.Wrap(err, "insert audit log")
	}
	return mapAuditLog(row), nil
}

func (r *IssueRepository) ListAuditEntries(ctx context.Context, issueID uint64) ([]issue.AuditEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AuditLog
	if err := db.
		Where("issue_id = ?", issueID).
		Order("created_at desc").
		Order("audit_id desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query audit logs")
	}

	items := make([]issue.AuditEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAuditLog(row))
	}
	return items, nil
}

func (r *IssueRepository) ListLabels(ctx context.Context) ([]issue.Label, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Label
	if err := db.Order("label_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query labels")
	}
	return mapLabels(rows), nil
}

func (r *IssueRepository) FindLabels(ctx context.Context, labelIDs []uint64) ([]issue.Label, error) {
	if len(labelIDs) == 0 {
		return nil, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Label
	if err := db.Where("label_id IN ?", labelIDs).Order("label_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query labels by id")
	}
	return mapLabels(rows), nil
}

func (r *IssueRepository) UpsertLabel(ctx context.Context, name string) (issue.Label, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Label{}, err
	}

	row := model.Label{Name: name}
	if err := db.Where(model.Label{Name: name}).FirstOrCreate(&row).Error; err != nil {
		return issue.Label{}, errs.Wrap(err, "upsert label")
	}
	return issue.Label{LabelID: row.LabelID, Name: row.Name}, nil
}

func (r *IssueRepository) ListUsers(ctx context.Context) ([]issue.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.User
	if err := db.Order("user_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query users")
	}

	items := make([]issue.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, issue.User{UserID: row.UserID, Name: row.Name})
	}
	return items, nil
}

func (r *IssueRepository) GetUser(ctx context.Context, userID uint64) (issue.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.User{}, err
	}

	var row model.User
	if err := db.Where("user_id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return issue.User{}, issue.ErrUserNotFound
		}
		return issue.User{}, errs.Wrap(err, "query user")
	}
	return issue.User{UserID: row.UserID, Name: row.Name}, nil
}

func (r *IssueRepository) UpsertUser(ctx context.Context, name string) (issue.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.User{}, err
	}

	row := model.User{Name: name}
	if err := db.Where(model.User{Name: name}).FirstOrCreate(&row).Error; err != nil {
		return issue.User{}, errs.Wrap(err, "upsert user")
	}
	return issue.User{UserID: row.UserID, Name: row.Name}, nil
}

func insertIssueLabels(db *gorm.DB, issueIDs []uint64, labelIDs []uint64) error {
	if len(issueIDs) == 0 || len(labelIDs) == 0 {
		return nil
	}

	rows := make([]model.IssueLabel, 0, len(issueIDs)*len(labelIDs))
	for _, issueID := range issueIDs {
		for _, labelID := range labelIDs {
			rows = append(rows, model.IssueLabel{IssueID: issueID, LabelID: labelID})
		}
	}

	if err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert issue labels")
	}
	return nil
}

type issueLabelRow struct {
	IssueID uint64
	LabelID uint64
	Name    string
}

func labelsByIssue(db *gorm.DB, issueIDs []uint64) (map[uint64][]issue.Label, error) {
	out := make(map[uint64][]issue.Label, len(issueIDs))
	if len(issueIDs) == 0 {
		return out, nil
	}

	var rows []issueLabelRow
	if err := db.Table("issue_labels").
		Select("issue_labels.issue_id, labels.label_id, labels.name").
		Joins("JOIN labels ON labels.label_id = issue_labels.label_id").
		Where("issue_labels.issue_id IN ?", issueIDs).
		Order("labels.label_id asc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issue labels")
	}

	for _, row := range rows {
		out[row.IssueID] = append(out[row.IssueID], issue.Label{LabelID: row.LabelID, Name: row.Name})
	}
	return out, nil
}

func mapIssue(row model.Issue, labels []issue.Label) issue.Issue {
	if labels == nil {
		labels = []issue.Label{}
	}

	out := issue.Issue{
		IssueID:     row.IssueID,
		Title:       row.Title,
		Description: row.Description,
		Status:      issue.Status(row.Status),
		AssigneeID:  row.AssigneeID,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		ClosedAt:    row.ClosedAt,
		Labels:      labels,
	}
	if row.Assignee != nil {
		out.Assignee = &issue.User{UserID: row.Assignee.UserID, Name: row.Assignee.Name}
	}
	return out
}

func mapComment(row model.Comment) issue.Comment {
	return issue.Comment{
		CommentID: row.CommentID,
		IssueID:   row.IssueID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
	}
}

func mapAuditLog(row model.AuditLog) issue.AuditEntry {
	var details json.RawMessage
	if row.DetailsJSON != "" {
		details = json.RawMessage(row.DetailsJSON)
	}
	return issue.AuditEntry{
		AuditID:   row.AuditID,
		IssueID:   row.IssueID,
		Action:    issue.AuditAction(row.Action),
		Details:   details,
		CreatedAt: row.CreatedAt,
	}
}

func mapLabels(rows []model.Label) []issue.Label {
	items := make([]issue.Label, 0, len(rows))
	for _, row := range rows {
		items = append(items, issue.Label{LabelID: row.LabelID, Name: row.Name})
	}
	return items
}
