package editor

import (
	"fmt"
	"strings"
)

// Review walks a user through the error segments of a reconciled text. The
// cursor indexes error segments only, never normal ones.
//
// A Review is not safe for concurrent use; the editing session store
// serializes access.
type Review struct {
	segments []Segment
	errorIdx []int
	cursor   int
}

// NewReview takes ownership of segments and positions the cursor on the first
// error segment.
func NewReview(segments []Segment) *Review {
	return RestoreReview(segments, 0)
}

// RestoreReview rebuilds a review from stored state. A cursor outside
// [0, errors] is clamped, then moved past errors that are no longer pending.
func RestoreReview(segments []Segment, cursor int) *Review {
	r := &Review{segments: segments}
	for i, seg := range segments {
		if seg.Type() == TypeError {
			r.errorIdx = append(r.errorIdx, i)
		}
	}
	r.cursor = min(max(cursor, 0), len(r.errorIdx))
	r.settle()
	return r
}

func (r *Review) Accept() error { return r.decide(StatusAccepted) }
func (r *Review) Reject() error { return r.decide(StatusRejected) }

func (r *Review) decide(status Status) error {
	if r.cursor >= len(r.errorIdx) {
		return fmt.Errorf("%w: cursor %d, %d errors", ErrCursorOutOfRange, r.cursor, len(r.errorIdx))
	}

	i := r.errorIdx[r.cursor]
	seg := r.segments[i].(ErrorSegment)
	seg.Status = status
	r.segments[i] = seg
	r.cursor++
	r.settle()
	return nil
}

// settle keeps the cursor off errors that were already decided.
func (r *Review) settle() {
	for r.cursor < len(r.errorIdx) && r.segments[r.errorIdx[r.cursor]].(ErrorSegment).Status != StatusPending {
		r.cursor++
	}
}

// Current returns the error segment under the cursor.
func (r *Review) Current() (ErrorSegment, bool) {
	if r.cursor >= len(r.errorIdx) {
		return ErrorSegment{}, false
	}
	return r.segments[r.errorIdx[r.cursor]].(ErrorSegment), true
}

func (r *Review) Cursor() int { return r.cursor }

func (r *Review) Done() bool { return r.cursor >= len(r.errorIdx) }

func (r *Review) Segments() []Segment { return r.segments }

type ReviewCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func (r *Review) Counts() ReviewCounts {
	var c ReviewCounts
	for _, i := range r.errorIdx {
		c.Total++
		switch r.segments[i].(ErrorSegment).Status {
		case StatusPending:
			c.Pending++
		case StatusAccepted:
			c.Accepted++
		case StatusRejected:
			c.Rejected++
		}
	}
	return c
}

type RenderKind string

const (
	RenderPlain     RenderKind = "plain"
	RenderSelected  RenderKind = "selected"
	RenderSuggested RenderKind = "suggested"
	RenderAccepted  RenderKind = "accepted"
	RenderRejected  RenderKind = "rejected"
)

type RenderedSegment struct {
	Text string     `json:"text"`
	Kind RenderKind `json:"kind"`
}

// Render projects segments into display text. Pending errors show their
// correction, the one under cursor marked as selected. Accepted errors show
// the correction and rejected ones the original text.
func Render(segments []Segment, cursor int) []RenderedSegment {
	out := make([]RenderedSegment, len(segments))
	errIdx := 0
	for i, seg := range segments {
		switch s := seg.(type) {
		case NormalSegment:
			out[i] = RenderedSegment{Text: s.Text, Kind: RenderPlain}
		case ErrorSegment:
			switch s.Status {
			case StatusAccepted:
				out[i] = RenderedSegment{Text: s.Correction, Kind: RenderAccepted}
			case StatusRejected:
				out[i] = RenderedSegment{Text: s.Text, Kind: RenderRejected}
			default:
				kind := RenderSuggested
				if errIdx == cursor {
					kind = RenderSelected
				}
				out[i] = RenderedSegment{Text: s.Correction, Kind: kind}
			}
			errIdx++
		}
	}
	return out
}

// Materialize produces the final text: the correction for accepted errors and
// the original text for everything else. A suggestion left pending keeps the
// original wording.
func Materialize(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if e, ok := seg.(ErrorSegment); ok && e.Status == StatusAccepted {
			b.WriteString(e.Correction)
			continue
		}
		b.WriteString(seg.Source())
	}
	return b.String()
}
