package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/usecase/issues"
)

const errInvalidJSON = "invalid JSON"

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return
	}

	created, err := s.svc.CreateIssue(r.Context(), issues.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		LabelIDs:    req.LabelIDs,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	found, err := s.svc.GetIssue(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// listIssues accepts label_ids repeated or comma separated.
func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var labelIDs []uint64
	for _, raw := range query["label_ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid label id %q", part))
				return
			}
			labelIDs = append(labelIDs, id)
		}
	}

	items, err := s.svc.ListIssues(r.Context(), issues.ListIssuesInput{
		Status:   query.Get("status"),
		LabelIDs: labelIDs,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return
	}

	input, err := decodeUpdate(id, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.UpdateIssue(r.Context(), input)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// decodeUpdate turns a key-presence map into a patch. Omitted keys stay unset; an
// explicit null is rejected rather than treated as omitted.
func decodeUpdate(issueID uint64, body map[string]json.RawMessage) (issues.UpdateIssueInput, error) {
	input := issues.UpdateIssueInput{IssueID: issueID}

	rawVersion, ok := body["version"]
	if !ok || isNull(rawVersion) {
		return input, errors.New("version is required")
	}
	if err := json.Unmarshal(rawVersion, &input.ExpectedVersion); err != nil {
		return input, errors.New("version must be an integer")
	}

	for _, field := range []string{"title", "description", "status"} {
		raw, present := body[field]
		if !present {
			continue
		}
		if isNull(raw) {
			return input, fmt.Errorf("%s must not be null", field)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return input, fmt.Errorf("%s must be a string", field)
		}

		switch field {
		case "title":
			input.Patch.Title = issue.Set(value)
		case "description":
			input.Patch.Description = issue.Set(value)
		case "status":
			input.Patch.Status = issue.Set(issue.Status(value))
		}
	}
	return input, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (s *Server) setLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	var req SetLabelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return
	}
	if req.LabelIDs == nil {
		writeError(w, http.StatusBadRequest, "label_ids is required")
		return
	}

	updated, err := s.svc.SetLabels(r.Context(), issues.SetLabelsInput{IssueID: id, LabelIDs: *req.LabelIDs})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return
	}
	if req.IssueIDs == nil {
		writeError(w, http.StatusBadRequest, "issue_ids is required")
		return
	}

	input := issues.BulkUpdateInput{IssueIDs: *req.IssueIDs}
	if req.Status != nil {
		input.Status = *req.Status
	}
	if req.LabelIDs != nil {
		input.LabelIDs = issue.Set(*req.LabelIDs)
	}

	result, err := s.svc.BulkUpdate(r.Context(), input)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) importIssues(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files allowed")
		return
	}

	result, err := s.svc.ImportIssues(r.Context(), file)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return
	}

	created, err := s.svc.AddComment(r.Context(), issues.AddCommentInput{IssueID: id, Body: req.Body})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	items, err := s.svc.ListComments(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := issueIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	items, err := s.svc.ListAuditEntries(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) listLabels(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListLabels(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
