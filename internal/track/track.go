// Package track remembers which boxes have already been relocated, so a
// box is moved at most once per session no matter how many detection
// passes see it.
//
// Boxes have no persistent handle: every pass re-detects them from pixels.
// Correlation therefore runs on content fingerprints, with two fallbacks:
// a center-distance match against the recorded original rectangle (absorbs
// quantization-bucket wobble) and a match against the recorded destination
// rectangle (recognizes a box that now sits where it was moved to).
package track

import (
	"errors"
	"sync"
	"time"

	"labelmover/internal/extract"
	"labelmover/internal/geometry"
)

// ErrDuplicateMove reports a confirmation for an identity that is already
// recorded. The record is dropped; the pass continues.
var ErrDuplicateMove = errors.New("identity already recorded as moved")

// MoveRecord describes one planned or executed relocation.
type MoveRecord struct {
	ID    extract.Fingerprint `json:"id"`
	Label string              `json:"label,omitempty"`
	From  geometry.Rect       `json:"from"`
	To    geometry.Rect       `json:"to"`
	Seq   int                 `json:"seq"`

	// PlannedAt is when the planner emitted the record, not when the
	// move was executed.
	PlannedAt time.Time `json:"planned_at"`
}

// Tracker is the session-lifetime moved-box registry. It only grows;
// Reset clears it entirely. Safe for concurrent use, though the pipeline
// contract is one pass at a time.
type Tracker struct {
	mu      sync.Mutex
	records []MoveRecord
	byID    map[extract.Fingerprint]int

	// tolerance is the center-distance slack for rect matching, in px.
	tolerance int
}

// NewTracker returns an empty tracker using the given identity tolerance.
func NewTracker(tolerancePx int) *Tracker {
	if tolerancePx <= 0 {
		tolerancePx = 24
	}
	return &Tracker{
		byID:      make(map[extract.Fingerprint]int),
		tolerance: tolerancePx,
	}
}

// Record appends a confirmed move. It fails with ErrDuplicateMove when the
// identity is already present, leaving the existing record untouched.
func (t *Tracker) Record(rec MoveRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[rec.ID]; ok {
		return ErrDuplicateMove
	}
	t.byID[rec.ID] = len(t.records)
	t.records = append(t.records, rec)
	return nil
}

// IsMoved reports whether the box matches any recorded move.
func (t *Tracker) IsMoved(box extract.Box) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[box.ID]; ok {
		return true
	}
	for _, rec := range t.records {
		if box.Label != "" && rec.Label != "" && box.Label == rec.Label {
			return true
		}
		if t.rectMatches(box.Rect, rec.From) || t.rectMatches(box.Rect, rec.To) {
			return true
		}
	}
	return false
}

// Len returns the number of recorded moves.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Records returns a copy of all recorded moves in confirmation order.
func (t *Tracker) Records() []MoveRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]MoveRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Reset clears every record. There is no partial eviction.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = t.records[:0]
	t.byID = make(map[extract.Fingerprint]int)
}

// rectMatches reports whether two rects describe the same box within the
// identity tolerance: centers close, dimensions close.
func (t *Tracker) rectMatches(a, b geometry.Rect) bool {
	if geometry.CenterDist(a, b) > t.tolerance {
		return false
	}
	dw := a.Width - b.Width
	dh := a.Height - b.Height
	if dw < 0 {
		dw = -dw
	}
	if dh < 0 {
		dh = -dh
	}
	return dw <= t.tolerance/2 && dh <= t.tolerance/2
}
