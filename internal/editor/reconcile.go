package editor

import (
	"fmt"
	"strings"
)

// MissPolicy decides what happens when a flagged substring cannot be found.
type MissPolicy int

const (
	// MissAbort stops reconciliation at the first unmatched span. Every
	// remaining span, matched or not, is discarded.
	MissAbort MissPolicy = iota
	// MissSkip drops only the unmatched span and continues with the next one.
	MissSkip
)

type reconcileConfig struct {
	positionHints bool
	missPolicy    MissPolicy
}

type ReconcileOption func(*reconcileConfig)

// WithPositionHints makes the reconciler trust a span's Position when it
// points at or after the cursor and the text there equals the flagged
// substring. Spans whose position does not check out are located by search.
//
// Position is a byte offset into the text. Services that count characters
// agree with it only for ASCII text; for anything else the hint misses and
// the span falls back to search.
func WithPositionHints() ReconcileOption {
	return func(c *reconcileConfig) { c.positionHints = true }
}

func WithMissPolicy(p MissPolicy) ReconcileOption {
	return func(c *reconcileConfig) { c.missPolicy = p }
}

// Reconciliation is the result of merging error spans into a text.
type Reconciliation struct {
	Segments []Segment
	// Applied is the number of spans that became error segments.
	Applied int
	// Discarded is the number of spans that were dropped because they (or an
	// earlier span, under MissAbort) could not be located.
	Discarded int
	// Miss wraps ErrSpanNotFound for the first span that could not be
	// located. Nil when every span was applied.
	Miss error
}

// Reconcile partitions text into alternating normal and error segments using
// the given spans in caller order. Spans are located left to right with an
// exact, case-sensitive search starting at the end of the previous match, so
// overlapping or out-of-order spans do not match.
//
// The returned segments always start and end with a normal segment and
// concatenate back to text exactly. A span with an empty Error fails the
// call with ErrInvalidSpan before anything is produced.
func Reconcile(text string, spans []ErrorSpan, opts ...ReconcileOption) (*Reconciliation, error) {
	cfg := reconcileConfig{missPolicy: MissAbort}
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, span := range spans {
		if err := span.Validate(); err != nil {
			return nil, fmt.Errorf("span %d: %w", i, err)
		}
	}

	result := &Reconciliation{
		Segments: make([]Segment, 0, 2*len(spans)+1),
	}

	cursor := 0
	for i, span := range spans {
		start, ok := locate(text, cursor, span, cfg.positionHints)
		if !ok {
			if result.Miss == nil {
				result.Miss = fmt.Errorf("%w: %q at or after offset %d", ErrSpanNotFound, span.Error, cursor)
			}
			if cfg.missPolicy == MissAbort {
				result.Discarded += len(spans) - i
				break
			}
			result.Discarded++
			continue
		}

		end := start + len(span.Error)
		result.Segments = append(result.Segments,
			NormalSegment{Text: text[cursor:start]},
			ErrorSegment{Text: text[start:end], Correction: span.Correction, Status: StatusPending},
		)
		result.Applied++
		cursor = end
	}

	result.Segments = append(result.Segments, NormalSegment{Text: text[cursor:]})
	return result, nil
}

func locate(text string, cursor int, span ErrorSpan, hints bool) (int, bool) {
	if hints && span.Position != nil {
		pos := *span.Position
		// Compared against the remaining length so a huge position cannot overflow.
		if pos >= cursor && pos <= len(text)-len(span.Error) && text[pos:pos+len(span.Error)] == span.Error {
			return pos, true
		}
	}

	idx := strings.Index(text[cursor:], span.Error)
	if idx < 0 {
		return 0, false
	}
	return cursor + idx, true
}
