// Package plan runs the full detection-to-placement pipeline over one
// drawing capture and emits a move plan.
//
// A pass is pure observation plus planning: it never mutates the drawing.
// The caller executes the plan externally and reports each completed move
// back via Confirm, which is what arms the at-most-once guarantee for
// subsequent passes.
package plan

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"labelmover/internal/analyze"
	"labelmover/internal/config"
	"labelmover/internal/extract"
	"labelmover/internal/freespace"
	"labelmover/internal/geometry"
	"labelmover/internal/imgutil"
	"labelmover/internal/segment"
	"labelmover/internal/track"
)

// LabelReader recognizes the text inside a box rectangle. Implemented by
// ocr.Reader; a nil reader disables label recognition.
type LabelReader interface {
	ReadLabel(img image.Image, r geometry.Rect) (string, error)
}

// Result is the outcome of one detection pass.
type Result struct {
	// Boxes is every detected box with its resolved state, in detection
	// order.
	Boxes []extract.Box `json:"boxes"`

	// Moves is the plan: one relocation per overlapping box that had a
	// destination and was not already moved this session.
	Moves []track.MoveRecord `json:"moves"`

	// Unplaced counts overlapping boxes skipped because no destination
	// was found. They stay eligible for the next pass.
	Unplaced int `json:"unplaced"`
}

// Planner holds the session state shared across passes.
type Planner struct {
	cfg     config.Config
	tracker *track.Tracker
	labels  LabelReader
	log     *slog.Logger
	seq     int
}

// New returns a planner for the given configuration. A nil logger falls
// back to slog.Default.
func New(cfg config.Config, log *slog.Logger) *Planner {
	cfg.Validate()
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		cfg:     cfg,
		tracker: track.NewTracker(cfg.Extract.IdentityTolerancePx),
		log:     log,
	}
}

// SetLabelReader enables label recognition for subsequent passes.
func (p *Planner) SetLabelReader(r LabelReader) {
	p.labels = r
}

// Pass detects boxes in img, classifies them and plans a move for every
// overlapping box that still needs one. The same image always yields the
// same boxes and destinations. A single box failing label recognition or
// placement does not fail the pass.
func (p *Planner) Pass(img image.Image) (*Result, error) {
	if err := imgutil.Validate(img); err != nil {
		return nil, err
	}

	red := segment.RedMask(img, p.cfg.Segment)
	boxes := extract.Boxes(red, p.cfg.Extract)
	boxes = p.dropReserved(boxes)
	p.attachLabels(img, boxes)

	occ := segment.OccupancyMask(img, red, p.cfg.Segment)
	boxes = analyze.Classify(boxes, occ, p.cfg.Analyze)

	res := &Result{Boxes: boxes}
	var planned []geometry.Rect

	for _, b := range boxes {
		if b.State != extract.StateOverlapping {
			continue
		}
		if p.tracker.IsMoved(b) {
			p.log.Debug("box already relocated this session", "id", b.ID, "rect", b.Rect.String())
			continue
		}

		dest, err := freespace.Find(freespace.Request{
			Box:       b,
			Boxes:     boxes,
			Reserved:  p.cfg.Reserved,
			Planned:   planned,
			Occupancy: occ,
		}, p.cfg.Search)
		if err != nil {
			if errors.Is(err, freespace.ErrNoSpace) {
				p.log.Warn("no destination found, leaving box in place",
					"id", b.ID, "rect", b.Rect.String())
				res.Unplaced++
				continue
			}
			return nil, err
		}

		planned = append(planned, dest)
		p.seq++
		res.Moves = append(res.Moves, track.MoveRecord{
			ID:        b.ID,
			Label:     b.Label,
			From:      b.Rect,
			To:        dest,
			Seq:       p.seq,
			PlannedAt: time.Now(),
		})
		p.log.Info("planned move", "id", b.ID, "from", b.Rect.String(), "to", dest.String())
	}

	return res, nil
}

// Confirm records an executed move, making its box ineligible for further
// relocation this session. Duplicate confirmations return
// track.ErrDuplicateMove and change nothing.
func (p *Planner) Confirm(rec track.MoveRecord) error {
	if err := p.tracker.Record(rec); err != nil {
		return err
	}
	p.log.Info("move confirmed", "id", rec.ID, "to", rec.To.String())
	return nil
}

// Moved returns the confirmed moves so far, in confirmation order.
func (p *Planner) Moved() []track.MoveRecord {
	return p.tracker.Records()
}

// ResetTracking forgets every confirmed move, starting a fresh session.
func (p *Planner) ResetTracking() {
	p.tracker.Reset()
	p.log.Info("move tracking reset")
}

// dropReserved discards detections wholly inside a reserved region; those
// are UI chrome, not drawing content.
func (p *Planner) dropReserved(boxes []extract.Box) []extract.Box {
	if len(p.cfg.Reserved) == 0 {
		return boxes
	}
	kept := boxes[:0]
	for _, b := range boxes {
		inside := false
		for _, r := range p.cfg.Reserved {
			if r.ContainsRect(b.Rect) {
				inside = true
				break
			}
		}
		if inside {
			p.log.Debug("dropping detection inside reserved region", "rect", b.Rect.String())
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// attachLabels runs OCR over each box interior. Recognition failures are
// logged and skipped; the box keeps its position-based identity.
func (p *Planner) attachLabels(img image.Image, boxes []extract.Box) {
	if p.labels == nil {
		return
	}
	for i := range boxes {
		label, err := p.labels.ReadLabel(img, boxes[i].Rect)
		if err != nil {
			p.log.Warn("label recognition failed", "rect", boxes[i].Rect.String(), "err", err)
			continue
		}
		if label != "" {
			boxes[i].SetLabel(label, p.cfg.Extract.IdentityTolerancePx)
		}
	}
}
