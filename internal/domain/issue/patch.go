package issue

import (
	"strings"
	"time"
)

// Field is a presence-tagged value. An unset Field is never applied, so a value that
// merely defaulted to its zero value cannot overwrite stored data.
type Field[T any] struct {
	value T
	set   bool
}

func Set[T any](value T) Field[T] {
	return Field[T]{value: value, set: true}
}

func (f Field[T]) Get() (T, bool) { return f.value, f.set }

func (f Field[T]) IsSet() bool { return f.set }

// Patch is a partial update of an issue's editable fields.
type Patch struct {
	Title       Field[string]
	Description Field[string]
	Status      Field[Status]
}

func (p Patch) Validate() error {
	if title, ok := p.Title.Get(); ok && strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if description, ok := p.Description.Get(); ok && strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if status, ok := p.Status.Get(); ok && !status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply writes the present fields onto issue. Version is left to the store, which
// increments it as part of the compare-and-swap write.
func (p Patch) Apply(issue *Issue, now time.Time) {
	if title, ok := p.Title.Get(); ok {
		issue.Title = title
	}
	if description, ok := p.Description.Get(); ok {
		issue.Description = description
	}
	if status, ok := p.Status.Get(); ok {
		ApplyStatus(issue, status, now)
	}
}

// Submitted returns the present fields keyed by their wire names.
func (p Patch) Submitted() map[string]any {
	out := make(map[string]any, 3)
	if title, ok := p.Title.Get(); ok {
		out["title"] = title
	}
	if description, ok := p.Description.Get(); ok {
		out["description"] = description
	}
	if status, ok := p.Status.Get(); ok {
		out["status"] = status
	}
	return out
}

// ApplyStatus moves issue to target and keeps closed_at consistent with it.
// The rule looks only at the target: CLOSED stamps closed_at once, anything else clears it.
func ApplyStatus(issue *Issue, target Status, now time.Time) {
	if target == StatusClosed {
		if issue.ClosedAt == nil {
			closedAt := now
			issue.ClosedAt = &closedAt
		}
	} else {
		issue.ClosedAt = nil
	}
	issue.Status = target
}
