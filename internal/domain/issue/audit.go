package issue

// FieldSnapshot is the "before" image recorded for an UPDATE.
type FieldSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

func SnapshotOf(issue Issue) FieldSnapshot {
	return FieldSnapshot{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
	}
}

type CreateDetails struct {
	Title string `json:"title"`
}

type UpdateDetails struct {
	Before FieldSnapshot  `json:"before"`
	After  map[string]any `json:"after"`
}

// LabelUpdateDetails keeps the requested ids in After, including ones that did not resolve.
type LabelUpdateDetails struct {
	Before []uint64 `json:"before"`
	After  []uint64 `json:"after"`
}

type CommentDetails struct {
	CommentID uint64 `json:"comment_id"`
}

func NewLabelUpdateDetails(before []uint64, requested []uint64) LabelUpdateDetails {
	if before == nil {
		before = []uint64{}
	}
	after := make([]uint64, len(requested))
	copy(after, requested)
	return LabelUpdateDetails{Before: before, After: after}
}
