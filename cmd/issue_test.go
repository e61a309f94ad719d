package cmd

import (
	"testing"

	"github.com/spf13/pflag"

	"issuetracker/internal/domain/issue"
)

func updateFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("update", pflag.ContinueOnError)
	flags.Int64("version", 0, "")
	flags.String("title", "", "")
	flags.String("description", "", "")
	flags.String("status", "", "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func bulkFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("bulk-update", pflag.ContinueOnError)
	flags.UintSlice("id", nil, "")
	flags.String("status", "", "")
	flags.UintSlice("label", nil, "")
	flags.Bool("clear", false, "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestUpdateInputFromFlagsOnlyAppliesChangedFlags(t *testing.T) {
	input, err := updateInputFromFlags(updateFlags(t, "7", "--version", "3", "--status", "closed"))
	if err != nil {
		t.Fatalf("updateInputFromFlags() error = %v", err)
	}

	if input.IssueID != 7 || input.ExpectedVersion != 3 {
		t.Fatalf("input = %+v, want issue 7 at version 3", input)
	}
	if status, ok := input.Patch.Status.Get(); !ok || status != issue.StatusClosed {
		t.Fatalf("status = %q (set=%v), want CLOSED", status, ok)
	}
	if input.Patch.Title.IsSet() || input.Patch.Description.IsSet() {
		t.Fatalf("title/description should stay unset: %+v", input.Patch)
	}
}

func TestUpdateInputFromFlagsKeepsExplicitEmptyTitle(t *testing.T) {
	input, err := updateInputFromFlags(updateFlags(t, "7", "--version", "1", "--title", ""))
	if err != nil {
		t.Fatalf("updateInputFromFlags() error = %v", err)
	}
	if !input.Patch.Title.IsSet() {
		t.Fatal("explicit --title \"\" must be part of the patch")
	}
	if err := input.Patch.Validate(); err != issue.ErrTitleRequired {
		t.Fatalf("Validate() error = %v, want ErrTitleRequired", err)
	}
}

func TestUpdateInputFromFlagsRequiresVersionAndID(t *testing.T) {
	if _, err := updateInputFromFlags(updateFlags(t, "7", "--title", "x")); err == nil {
		t.Fatal("expected error without --version")
	}
	if _, err := updateInputFromFlags(updateFlags(t, "abc", "--version", "1")); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestBulkInputFromFlags(t *testing.T) {
	input, err := bulkInputFromFlags(bulkFlags(t, "--id", "1,2", "--status", "in_progress"))
	if err != nil {
		t.Fatalf("bulkInputFromFlags() error = %v", err)
	}
	if len(input.IssueIDs) != 2 || input.Status != "IN_PROGRESS" {
		t.Fatalf("input = %+v", input)
	}
	if input.LabelIDs.IsSet() {
		t.Fatal("labels should be unset without --label or --clear")
	}

	input, err = bulkInputFromFlags(bulkFlags(t, "--id", "1", "--clear"))
	if err != nil {
		t.Fatalf("bulkInputFromFlags() error = %v", err)
	}
	if ids, ok := input.LabelIDs.Get(); !ok || len(ids) != 0 {
		t.Fatalf("--clear should set an empty label list, got %v (set=%v)", ids, ok)
	}

	if _, err := bulkInputFromFlags(bulkFlags(t, "--id", "1", "--clear", "--label", "2")); err == nil {
		t.Fatal("expected error for --label with --clear")
	}
	if _, err := bulkInputFromFlags(bulkFlags(t, "--status", "OPEN")); err == nil {
		t.Fatal("expected error without --id")
	}
}

func TestParseIssueID(t *testing.T) {
	cases := map[string]uint64{"12": 12, "#12": 12, " 3 ": 3}
	for raw, want := range cases {
		got, err := parseIssueID(raw)
		if err != nil || got != want {
			t.Fatalf("parseIssueID(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}
	for _, raw := range []string{"", "0", "-1", "x"} {
		if _, err := parseIssueID(raw); err == nil {
			t.Fatalf("parseIssueID(%q) expected error", raw)
		}
	}
}
