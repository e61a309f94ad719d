package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/usecase/issues"
)

// IssueService is the set of usecases exposed over HTTP.
type IssueService interface {
	CreateIssue(ctx context.Context, input issues.CreateIssueInput) (issue.Issue, error)
	GetIssue(ctx context.Context, issueID uint64) (issue.Issue, error)
	ListIssues(ctx context.Context, input issues.ListIssuesInput) ([]issue.Issue, error)
	UpdateIssue(ctx context.Context, input issues.UpdateIssueInput) (issue.Issue, error)
	SetLabels(ctx context.Context, input issues.SetLabelsInput) (issue.Issue, error)
	BulkUpdate(ctx context.Context, input issues.BulkUpdateInput) (issues.BulkUpdateResult, error)
	ImportIssues(ctx context.Context, source io.Reader) (issues.ImportResult, error)
	AddComment(ctx context.Context, input issues.AddCommentInput) (issue.Comment, error)
	ListComments(ctx context.Context, issueID uint64) ([]issue.Comment, error)
	ListAuditEntries(ctx context.Context, issueID uint64) ([]issue.AuditEntry, error)
	ListLabels(ctx context.Context) ([]issue.Label, error)
	ListUsers(ctx context.Context) ([]issue.User, error)
}

var _ IssueService = (*issues.Service)(nil)

type Options struct {
	AllowedOrigins []string
	// MaxUploadBytes caps CSV imports. Zero means 10 MiB.
	MaxUploadBytes int64
}

type Server struct {
	svc  IssueService
	opts Options
}

func NewServer(svc IssueService, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{svc: svc, opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.opts.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/issues", func(r chi.Router) {
		r.Get("/", s.listIssues)
		r.Post("/", s.createIssue)
		r.Post("/bulk-update", s.bulkUpdate)
		r.Post("/import", s.importIssues)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getIssue)
			r.Patch("/", s.updateIssue)
			r.Put("/labels", s.setLabels)
			r.Get("/comments", s.listComments)
			r.Post("/comments", s.addComment)
			r.Get("/audit-logs", s.listAuditLogs)
		})
	})

	r.Get("/labels", s.listLabels)
	r.Get("/users", s.listUsers)

	return r
}
