package issues

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/ports"
)

// firstDataRow is the reported number of the first record after the header.
const firstDataRow = 2

type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors"`
}

// ImportIssues creates one issue per valid CSV row. Columns are matched by header name:
// title, description and an optional status. A bad row is reported and skipped without
// touching the others; each row is written inside its own savepoint so a failed insert
// is rolled back alone. All created rows commit together at the end, and a failure of
// that commit fails the whole import. Imported issues get no audit entries.
func (s *Service) ImportIssues(ctx context.Context, source io.Reader) (ImportResult, error) {
	if err := s.ready(ctx); err != nil {
		return ImportResult{}, err
	}
	if source == nil {
		return ImportResult{}, errs.Validationf("csv source is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.issues.import"))

	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1

	result := ImportResult{Errors: []ImportError{}}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return ImportResult{}, errs.Validationf("malformed csv header: %v", err)
	}
	columns := indexColumns(header)

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for row := firstDataRow; ; row++ {
			if err := txCtx.Err(); err != nil {
				return errs.Wrap(err, "check context")
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return errs.Validationf("malformed csv at row %d: %v", row, err)
			}

			candidate := issue.NewImportRow(
				row,
				columns.cell(record, "title"),
				columns.cell(record, "description"),
				columns.status(record),
			)
			status, problem := candidate.Check()
			if problem != "" {
				result.Errors = append(result.Errors, ImportError{Row: row, Error: problem})
				continue
			}

			if err := s.uow.WithTx(txCtx, func(rowCtx context.Context) error {
				_, err := s.repo.CreateIssue(rowCtx, ports.IssueCreate{
					Title:       candidate.Title,
					Description: candidate.Description,
					Status:      status,
					CreatedAt:   s.now(),
				})
				return err
			}); err != nil {
				logging.Warn(logCtx, "import row failed", slog.Int("row", row), slog.Any("err", errs.Loggable(err)))
				result.Errors = append(result.Errors, ImportError{Row: row, Error: err.Error()})
				continue
			}
			result.Created++
		}
	}); err != nil {
		if errs.KindOf(err) == errs.KindValidation {
			return ImportResult{}, err
		}
		return ImportResult{}, errs.Persistence(err, "commit import")
	}

	result.Failed = len(result.Errors)
	logging.Info(logCtx, "import finished", slog.Int("created", result.Created), slog.Int("failed", result.Failed))
	return result, nil
}

type csvColumns map[string]int

func indexColumns(header []string) csvColumns {
	columns := make(csvColumns, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

// status defaults to OPEN only when the source has no status column at all.
func (c csvColumns) status(record []string) string {
	if _, ok := c["status"]; !ok {
		return string(issue.StatusOpen)
	}
	return c.cell(record, "status")
}

// cell returns "" for a missing column or a short record.
func (c csvColumns) cell(record []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
