package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"issuetracker/internal/bootstrap"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/usecase/issues"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Create, edit and inspect issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		input, err := createInputFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		created, err := svc.CreateIssue(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "create issue")
		}
		return renderIssue(cmd, created, fmt.Sprintf("created issue #%d", created.IssueID))
	}),
}

var issueShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		id, err := parseIssueID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		found, err := svc.GetIssue(cmd.Context(), id)
		if err != nil {
			return errs.Wrap(err, "get issue")
		}
		return renderIssue(cmd, found, "")
	}),
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		status, _ := cmd.Flags().GetString("status")
		labelIDs, _ := cmd.Flags().GetUintSlice("label")

		items, err := svc.ListIssues(cmd.Context(), issues.ListIssuesInput{
			Status:   status,
			LabelIDs: toUint64s(labelIDs),
		})
		if err != nil {
			return errs.Wrap(err, "list issues")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, items)
		}
		return ui.IssueTable(items)
	}),
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update title, description or status of an issue",
	Long:  "Only the flags given on the command line are applied. --version must match the stored version.",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		input, err := updateInputFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		ctx := logging.WithAttrs(cmd.Context(), slog.Uint64("issue_id", input.IssueID))

		updated, err := svc.UpdateIssue(ctx, input)
		if err != nil {
			if errors.Is(err, issue.ErrVersionConflict) {
				logging.Warn(ctx, "issue changed since it was read", slog.Int64("expected_version", input.ExpectedVersion))
			}
			return errs.Wrap(err, "update issue")
		}
		return renderIssue(cmd, updated, fmt.Sprintf("updated issue #%d to version %d", updated.IssueID, updated.Version))
	}),
}

var issueLabelsCmd = &cobra.Command{
	Use:   "labels <id>",
	Short: "Replace the label set of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		id, err := parseIssueID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		labelIDs, err := labelsFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		if !labelIDs.IsSet() {
			return errors.New("set --label or --clear")
		}
		ids, _ := labelIDs.Get()

		updated, err := svc.SetLabels(cmd.Context(), issues.SetLabelsInput{IssueID: id, LabelIDs: ids})
		if err != nil {
			return errs.Wrap(err, "set labels")
		}
		return renderIssue(cmd, updated, fmt.Sprintf("issue #%d now has %d labels", updated.IssueID, len(updated.Labels)))
	}),
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <id>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		id, err := parseIssueID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		body, err := resolveBody(cmd)
		if err != nil {
			return err
		}

		created, err := svc.AddComment(cmd.Context(), issues.AddCommentInput{IssueID: id, Body: body})
		if err != nil {
			return errs.Wrap(err, "add comment")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, created)
		}
		ui.Success("comment #%d added to issue #%d", created.CommentID, id)
		return nil
	}),
}

var issueCommentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "List comments of an issue, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		id, err := parseIssueID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		items, err := svc.ListComments(cmd.Context(), id)
		if err != nil {
			return errs.Wrap(err, "list comments")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, items)
		}
		return ui.CommentTable(items)
	}),
}

var issueAuditCmd = &cobra.Command{
	Use:   "audit <id>",
	Short: "List the audit trail of an issue, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		id, err := parseIssueID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		items, err := svc.ListAuditEntries(cmd.Context(), id)
		if err != nil {
			return errs.Wrap(err, "list audit entries")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, items)
		}
		return ui.AuditTable(items)
	}),
}

var issueBulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update",
	Short: "Apply one status and/or label set to several issues atomically",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		input, err := bulkInputFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		result, err := svc.BulkUpdate(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "bulk update")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, result)
		}
		ui.Success("updated %d issues", result.Updated)
		return nil
	}),
}

var issueImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import issues from a CSV file with title, description and status columns",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *issues.Service) error {
		path := cmd.Flags().Arg(0)
		ctx := logging.WithAttrs(cmd.Context(), slog.String("file", path))

		file, err := os.Open(path)
		if err != nil {
			return errs.Wrapf(err, "open %q", path)
		}
		defer file.Close()

		result, err := svc.ImportIssues(ctx, file)
		if err != nil {
			logging.Error(ctx, "import failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import issues")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, result)
		}
		for _, rowErr := range result.Errors {
			ui.Warning("row %d: %s", rowErr.Row, rowErr.Error)
		}
		ui.Success("imported %d issues, %d failed", result.Created, result.Failed)
		return nil
	}),
}

func renderIssue(cmd *cobra.Command, item issue.Issue, message string) error {
	ui := newUI(cmd)
	if structured() {
		return ui.Structured(outputFormat, item)
	}
	if message != "" {
		ui.Success("%s", message)
	}
	return ui.IssueTable([]issue.Issue{item})
}

func parseIssueID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid issue id %q", raw)
	}
	return id, nil
}

func createInputFromFlags(flags *pflag.FlagSet) (issues.CreateIssueInput, error) {
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	status, _ := flags.GetString("status")
	labelIDs, _ := flags.GetUintSlice("label")

	input := issues.CreateIssueInput{
		Title:       title,
		Description: description,
		Status:      status,
		LabelIDs:    toUint64s(labelIDs),
	}
	if flags.Changed("assignee") {
		assignee, err := flags.GetUint64("assignee")
		if err != nil {
			return input, err
		}
		input.AssigneeID = &assignee
	}
	return input, nil
}

// updateInputFromFlags turns the flags the user actually set into a patch.
func updateInputFromFlags(flags *pflag.FlagSet) (issues.UpdateIssueInput, error) {
	id, err := parseIssueID(flags.Arg(0))
	if err != nil {
		return issues.UpdateIssueInput{}, err
	}
	if !flags.Changed("version") {
		return issues.UpdateIssueInput{}, errors.New("--version is required")
	}
	version, err := flags.GetInt64("version")
	if err != nil {
		return issues.UpdateIssueInput{}, err
	}

	input := issues.UpdateIssueInput{IssueID: id, ExpectedVersion: version}
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		input.Patch.Title = issue.Set(title)
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		input.Patch.Description = issue.Set(description)
	}
	if flags.Changed("status") {
		status, _ := flags.GetString("status")
		input.Patch.Status = issue.Set(issue.Status(strings.ToUpper(status)))
	}
	return input, nil
}

// labelsFromFlags reads --label and --clear. Neither flag leaves the labels unset.
func labelsFromFlags(flags *pflag.FlagSet) (issue.Field[[]uint64], error) {
	clearLabels, _ := flags.GetBool("clear")
	if clearLabels && flags.Changed("label") {
		return issue.Field[[]uint64]{}, errors.New("--label and --clear are mutually exclusive")
	}
	if clearLabels {
		return issue.Set([]uint64{}), nil
	}
	if flags.Changed("label") {
		labelIDs, _ := flags.GetUintSlice("label")
		return issue.Set(toUint64s(labelIDs)), nil
	}
	return issue.Field[[]uint64]{}, nil
}

func bulkInputFromFlags(flags *pflag.FlagSet) (issues.BulkUpdateInput, error) {
	ids, _ := flags.GetUintSlice("id")
	if len(ids) == 0 {
		return issues.BulkUpdateInput{}, errors.New("--id is required")
	}
	status, _ := flags.GetString("status")
	labelIDs, err := labelsFromFlags(flags)
	if err != nil {
		return issues.BulkUpdateInput{}, err
	}

	return issues.BulkUpdateInput{
		IssueIDs: toUint64s(ids),
		Status:   strings.ToUpper(status),
		LabelIDs: labelIDs,
	}, nil
}

func resolveBody(cmd *cobra.Command) (string, error) {
	inlineBody, _ := cmd.Flags().GetString("body")
	bodyFile, _ := cmd.Flags().GetString("body-file")

	if strings.TrimSpace(inlineBody) != "" && strings.TrimSpace(bodyFile) != "" {
		return "", errors.New("body and body-file are mutually exclusive")
	}

	if strings.TrimSpace(bodyFile) != "" {
		raw, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", errs.Wrapf(err, "read body file %q", bodyFile)
		}
		inlineBody = string(raw)
	}
	return inlineBody, nil
}

func toUint64s(values []uint) []uint64 {
	if values == nil {
		return nil
	}
	out := make([]uint64, 0, len(values))
	for _, v := range values {
		out = append(out, uint64(v))
	}
	return out
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueLabelsCmd)
	issueCmd.AddCommand(issueCommentCmd)
	issueCmd.AddCommand(issueCommentsCmd)
	issueCmd.AddCommand(issueAuditCmd)
	issueCmd.AddCommand(issueBulkUpdateCmd)
	issueCmd.AddCommand(issueImportCmd)

	issueCreateCmd.Flags().String("title", "", "Issue title")
	issueCreateCmd.Flags().String("description", "", "Issue description")
	issueCreateCmd.Flags().String("status", "", "Initial status (OPEN|IN_PROGRESS|CLOSED, default OPEN)")
	issueCreateCmd.Flags().UintSlice("label", nil, "Label id(s)")
	issueCreateCmd.Flags().Uint64("assignee", 0, "Assignee user id")
	_ = issueCreateCmd.MarkFlagRequired("title")

	issueListCmd.Flags().String("status", "", "Filter by status")
	issueListCmd.Flags().UintSlice("label", nil, "Filter by label id(s), matching any")

	issueUpdateCmd.Flags().Int64("version", 0, "Version the update is based on")
	issueUpdateCmd.Flags().String("title", "", "New title")
	issueUpdateCmd.Flags().String("description", "", "New description")
	issueUpdateCmd.Flags().String("status", "", "New status (OPEN|IN_PROGRESS|CLOSED)")

	issueLabelsCmd.Flags().UintSlice("label", nil, "Label id(s) making up the new set")
	issueLabelsCmd.Flags().Bool("clear", false, "Remove every label")

	issueCommentCmd.Flags().String("body", "", "Comment content")
	issueCommentCmd.Flags().String("body-file", "", "Path to comment markdown file")

	issueBulkUpdateCmd.Flags().UintSlice("id", nil, "Issue id(s) to update")
	issueBulkUpdateCmd.Flags().String("status", "", "Status to apply to every issue")
	issueBulkUpdateCmd.Flags().UintSlice("label", nil, "Label id(s) replacing every issue's labels")
	issueBulkUpdateCmd.Flags().Bool("clear", false, "Remove every label from the issues")
}
