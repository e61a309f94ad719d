package issue

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

var allowedStatuses = map[Status]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusClosed:     {},
}

// ParseStatus accepts only the exact upper-case names. Surrounding whitespace is ignored.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

func (s Status) Valid() bool {
	_, ok := allowedStatuses[s]
	return ok
}

func (s Status) String() string { return string(s) }
