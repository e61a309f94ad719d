package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	notFound := NotFoundf("issue %d not found", 7)
	cases := []struct {
		err  error
		want Kind
	}{
		{err: nil, want: ""},
		{err: Wrap(notFound, "load issue"), want: KindNotFound},
		{err: fmt.Errorf("update: %w", Conflictf("version conflict")), want: KindVersionConflict},
		{err: Validationf("title is required"), want: KindValidation},
		{err: errors.New("disk I/O error"), want: KindPersistence},
		{err: Persistence(errors.New("locked"), "commit import"), want: KindPersistence},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestCategorizedSentinelIdentity(t *testing.T) {
	sentinel := Validationf("invalid status")
	wrapped := fmt.Errorf("%w: %q", sentinel, "DONE")

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("errors.Is(wrapped, sentinel) = false")
	}
	if !errors.Is(wrapped, ErrValidation) {
		t.Fatalf("errors.Is(wrapped, ErrValidation) = false")
	}
	if errors.Is(wrapped, Validationf("invalid status")) {
		t.Fatalf("distinct sentinels with the same message must not match")
	}
	if wrapped.Error() != `invalid status: "DONE"` {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Persistence(cause, "commit import")

	if !errors.Is(err, cause) || !errors.Is(err, ErrPersistence) {
		t.Fatalf("Persistence() chain broken: %v", err)
	}
	if err.Error() != "commit import: database is locked" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if Persistence(nil, "noop") != nil {
		t.Fatalf("Persistence(nil) should be nil")
	}
}

func TestErrorChainStrings(t *testing.T) {
	err := Wrapf(Wrap(errors.New("root"), "inner"), "outer %d", 1)
	chain := ErrorChainStrings(err)
	if len(chain) != 3 || chain[2] != "root" {
		t.Fatalf("ErrorChainStrings() = %#v", chain)
	}
}
