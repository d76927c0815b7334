// Package editor holds the correction engine behind an editing session: the
// blacklist censor, the segment reconciler that merges flagged error spans
// into a typed partition of the text, and the review state machine that walks
// the user through each suggestion.
//
// Everything in this package is pure and synchronous. Network calls, storage
// and billing live at the service layer.
package editor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSpan is returned when an error span from the correction
	// service is missing its flagged text or correction.
	ErrInvalidSpan = errors.New("invalid error span")

	// ErrSpanNotFound reports that a flagged substring could not be located
	// at or after the reconciliation cursor.
	ErrSpanNotFound = errors.New("error span not found in text")

	// ErrCursorOutOfRange is returned by accept/reject once every error
	// segment has been reviewed.
	ErrCursorOutOfRange = errors.New("selection cursor out of range")

	// ErrInvalidSegment is returned when a stored segment record cannot be
	// decoded back into a segment.
	ErrInvalidSegment = errors.New("invalid segment record")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type SegmentType string

const (
	TypeNormal SegmentType = "normal"
	TypeError  SegmentType = "error"
)

// Segment is a contiguous slice of reconciled text. It is implemented only by
// NormalSegment and ErrorSegment.
type Segment interface {
	Source() string
	Type() SegmentType
	isSegment()
}

type NormalSegment struct {
	Text string
}

func (s NormalSegment) Source() string    { return s.Text }
func (s NormalSegment) Type() SegmentType { return TypeNormal }
func (NormalSegment) isSegment()          {}

type ErrorSegment struct {
	Text       string
	Correction string
	Status     Status
}

func (s ErrorSegment) Source() string    { return s.Text }
func (s ErrorSegment) Type() SegmentType { return TypeError }
func (ErrorSegment) isSegment()          {}

// ErrorSpan is one flagged error as returned by the grammar-correction
// service. Position is informational; the reconciler locates spans by search
// unless position hints are enabled.
type ErrorSpan struct {
	Error      string `json:"error"`
	Correction string `json:"correction"`
	Position   *int   `json:"position,omitempty"`
}

func (s ErrorSpan) Validate() error {
	if s.Error == "" {
		return fmt.Errorf("%w: empty error text", ErrInvalidSpan)
	}
	return nil
}

// SegmentRecord is the flat form of a segment used on the wire and in the
// session store.
type SegmentRecord struct {
	Type       SegmentType `json:"type" msgpack:"t"`
	Text       string      `json:"text" msgpack:"x"`
	Correction string      `json:"correction,omitempty" msgpack:"c,omitempty"`
	Status     Status      `json:"status,omitempty" msgpack:"s,omitempty"`
}

func ToRecords(segments []Segment) []SegmentRecord {
	records := make([]SegmentRecord, len(segments))
	for i, seg := range segments {
		switch s := seg.(type) {
		case NormalSegment:
			records[i] = SegmentRecord{Type: TypeNormal, Text: s.Text}
		case ErrorSegment:
			records[i] = SegmentRecord{
				Type:       TypeError,
				Text:       s.Text,
				Correction: s.Correction,
				Status:     s.Status,
			}
		}
	}
	return records
}

func FromRecords(records []SegmentRecord) ([]Segment, error) {
	segments := make([]Segment, len(records))
	for i, rec := range records {
		switch rec.Type {
		case TypeNormal:
			segments[i] = NormalSegment{Text: rec.Text}
		case TypeError:
			if !rec.Status.Valid() {
				return nil, fmt.Errorf("%w: segment %d has status %q", ErrInvalidSegment, i, rec.Status)
			}
			segments[i] = ErrorSegment{Text: rec.Text, Correction: rec.Correction, Status: rec.Status}
		default:
			return nil, fmt.Errorf("%w: segment %d has type %q", ErrInvalidSegment, i, rec.Type)
		}
	}
	return segments, nil
}

// Join concatenates the source text of every segment, reconstructing the text
// the segments were reconciled from.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Source())
	}
	return b.String()
}

// Plain wraps text in a single normal segment. Used when a document is
// loaded or replaced wholesale without corrections.
func Plain(text string) []Segment {
	return []Segment{NormalSegment{Text: text}}
}
