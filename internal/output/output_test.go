package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuetracker/internal/domain/issue"
)

func newTestUI(t *testing.T) (*UI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return New(out, errOut), out, errOut
}

func sampleIssue() issue.Issue {
	return issue.Issue{
		IssueID:   12,
		Title:     "Fix login bug",
		Status:    issue.StatusInProgress,
		Version:   3,
		Assignee:  &issue.User{UserID: 1, Name: "alice"},
		CreatedAt: time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC),
		Labels:    []issue.Label{{LabelID: 1, Name: "bug"}, {LabelID: 2, Name: "ui"}},
	}
}

func TestSuccessAndWarning(t *testing.T) {
	u, out, errOut := newTestUI(t)
	u.Success("created %d", 4)
	u.Warning("row %d skipped", 3)

	assert.Contains(t, out.String(), "created 4")
	assert.Contains(t, errOut.String(), "row 3 skipped")
}

func TestIssueTable(t *testing.T) {
	u, out, _ := newTestUI(t)
	require.NoError(t, u.IssueTable([]issue.Issue{sampleIssue()}))

	text := out.String()
	assert.Contains(t, text, "Fix login bug")
	assert.Contains(t, text, "IN_PROGRESS")
	assert.Contains(t, text, "bug,ui")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "2026-05-01 08:30:00")
}

func TestStructuredYAMLUsesJSONNames(t *testing.T) {
	u, out, _ := newTestUI(t)
	require.NoError(t, u.Structured("yaml", sampleIssue()))

	text := out.String()
	assert.Contains(t, text, "id: 12")
	assert.Contains(t, text, "closed_at: null")
	assert.Contains(t, text, "name: alice")
}

func TestStructuredJSONAndUnknownFormat(t *testing.T) {
	u, out, _ := newTestUI(t)
	require.NoError(t, u.Structured("json", map[string]int{"updated": 2}))
	assert.Contains(t, out.String(), `"updated": 2`)

	assert.Error(t, u.Structured("xml", nil))
}
