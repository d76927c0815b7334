package queue

type TaskType string

const (
	TaskTypeTextSubmitted      TaskType = "text_submitted"
	TaskTypeCorrectionAccepted TaskType = "correction_accepted"
	TaskTypeCorrectionRejected TaskType = "correction_rejected"
	TaskTypeDocumentSaved      TaskType = "document_saved"
	TaskTypeTextTransformed    TaskType = "text_transformed"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeTextSubmitted, TaskTypeCorrectionAccepted, TaskTypeCorrectionRejected, TaskTypeDocumentSaved,
		TaskTypeTextTransformed:
		return true
	}
	return false
}

// Event is something that happened in an editing session and is processed
// out of band by the worker.
type Event struct {
	TaskType         TaskType
	UserID           int64
	EditingSessionID string
	DocumentID       *int64
	// Cost is the number of tokens the action was charged.
	Cost int
	// Original, Correction and Reason describe a reviewed suggestion.
	Original   string
	Correction string
	Reason     string
	TraceID    *string
	Attempt    int
}
