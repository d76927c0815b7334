package model

import (
	"time"

	"editflow.app/server/internal/editor"
)

// EditingSession is the server-side state of one open editor: the blacklist
// snapshot taken at start, the current reconciled segments and the review
// cursor. Applied, Discarded and Miss describe the last reconciliation.
// It lives in redis, not postgres.
type EditingSession struct {
	ID         string                 `json:"id" msgpack:"id"`
	UserID     int64                  `json:"user_id" msgpack:"uid"`
	DocumentID *int64                 `json:"document_id,omitempty" msgpack:"did,omitempty"`
	Title      string                 `json:"title" msgpack:"title"`
	Blacklist  []string               `json:"-" msgpack:"bl"`
	Segments   []editor.SegmentRecord `json:"segments" msgpack:"seg"`
	Cursor     int                    `json:"cursor" msgpack:"cur"`
	Applied    int                    `json:"applied" msgpack:"app"`
	Discarded  int                    `json:"discarded" msgpack:"dis"`
	Miss       string                 `json:"miss,omitempty" msgpack:"miss,omitempty"`
	CreatedAt  time.Time              `json:"created_at" msgpack:"cat"`
	UpdatedAt  time.Time              `json:"updated_at" msgpack:"uat"`
}

// Review rebuilds the state machine from the stored segments.
func (s *EditingSession) Review() (*editor.Review, error) {
	segments, err := editor.FromRecords(s.Segments)
	if err != nil {
		return nil, err
	}
	return editor.RestoreReview(segments, s.Cursor), nil
}

// SetReview stores the state machine back into the session.
func (s *EditingSession) SetReview(r *editor.Review) {
	s.Segments = editor.ToRecords(r.Segments())
	s.Cursor = r.Cursor()
}

// Replace discards the current review and starts over with segments.
func (s *EditingSession) Replace(segments []editor.Segment) {
	s.Segments = editor.ToRecords(segments)
	s.Cursor = 0
	s.Applied = 0
	s.Discarded = 0
	s.Miss = ""
}

func (s *EditingSession) Text() string {
	segments, err := editor.FromRecords(s.Segments)
	if err != nil {
		return ""
	}
	return editor.Materialize(segments)
}
