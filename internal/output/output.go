package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"issuetracker/internal/domain/issue"
)

// UI renders command results for a terminal.
type UI struct {
	Out    io.Writer
	ErrOut io.Writer
}

func New(out io.Writer, errOut io.Writer) *UI {
	return &UI{Out: out, ErrOut: errOut}
}

var (
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// StatusColor returns the status colored for a terminal.
func StatusColor(status issue.Status) string {
	s := string(status)
	switch status {
	case issue.StatusOpen:
		return green(s)
	case issue.StatusInProgress:
		return yellow(s)
	case issue.StatusClosed:
		return red(s)
	default:
		return s
	}
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Structured writes v as indented JSON or as YAML. YAML keys follow the JSON field names.
func (u *UI) Structured(format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		_, err = fmt.Fprintln(u.Out, string(raw))
		return err
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(u.Out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func (u *UI) IssueTable(items []issue.Issue) error {
	table := u.Table([]string{"ID", "STATUS", "VERSION", "TITLE", "ASSIGNEE", "LABELS", "CREATED"})
	for _, item := range items {
		assignee := "-"
		if item.Assignee != nil {
			assignee = item.Assignee.Name
		}
		_ = table.Append([]string{
			cyan(strconv.FormatUint(item.IssueID, 10)),
			StatusColor(item.Status),
			strconv.FormatInt(item.Version, 10),
			item.Title,
			assignee,
			labelNames(item.Labels),
			item.CreatedAt.Format(time.DateTime),
		})
	}
	return table.Render()
}

func (u *UI) CommentTable(items []issue.Comment) error {
	table := u.Table([]string{"ID", "CREATED", "BODY"})
	for _, item := range items {
		_ = table.Append([]string{
			strconv.FormatUint(item.CommentID, 10),
			item.CreatedAt.Format(time.DateTime),
			item.Body,
		})
	}
	return table.Render()
}

func (u *UI) AuditTable(items []issue.AuditEntry) error {
	table := u.Table([]string{"ID", "ACTION", "CREATED", "DETAILS"})
	for _, item := range items {
		_ = table.Append([]string{
			strconv.FormatUint(item.AuditID, 10),
			string(item.Action),
			item.CreatedAt.Format(time.DateTime),
			string(item.Details),
		})
	}
	return table.Render()
}

func labelNames(labels []issue.Label) string {
	if len(labels) == 0 {
		return "-"
	}
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return strings.Join(names, ",")
}
