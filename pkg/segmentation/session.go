package segmentation

import (
	"fmt"

	"thighseg/pkg/imaging"
	"thighseg/pkg/rasterize"
)

// SessionState is the lifecycle state of one muscle-group polygon.
type SessionState int

const (
	// StateDigitizing: waiting for the external caller to supply a
	// polygon.
	StateDigitizing SessionState = iota

	// StateAwaitingConfirmation: a partition has been computed and is
	// pending accept or reject.
	StateAwaitingConfirmation

	// StateCommitted: the partition is final; the session is terminal.
	StateCommitted
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateDigitizing:
		return "digitizing"
	case StateAwaitingConfirmation:
		return "awaitingConfirmation"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PolygonSession drives the accept/retry loop for one muscle-group
// polygon. The external caller supplies candidate polygons via Propose
// and either commits or rejects the computed partition; a rejection
// recomputes only the partition step, never any earlier pipeline stage.
//
// The whole-muscle mask the session partitions is fixed at creation.
// Each proposal produces a fresh subset mask, so a rejected proposal
// leaves no trace in the committed result.
type PolygonSession struct {
	muscle  imaging.Mask
	state   SessionState
	pending imaging.Mask
	final   imaging.Mask
}

// NewPolygonSession starts a session over the committed whole-muscle
// mask of one thigh.
func NewPolygonSession(muscle imaging.Mask) *PolygonSession {
	return &PolygonSession{muscle: muscle, state: StateDigitizing}
}

// State returns the current lifecycle state.
func (s *PolygonSession) State() SessionState { return s.state }

// Propose rasterizes the polygon and intersects it with the muscle
// mask, returning the candidate subset for external review. Valid in
// the digitizing state only.
func (s *PolygonSession) Propose(p rasterize.Polygon) (imaging.Mask, error) {
	if s.state != StateDigitizing {
		return imaging.Mask{}, fmt.Errorf("segmentation: propose in state %s", s.state)
	}

	inside, _, err := rasterize.Partition(s.muscle, p)
	if err != nil {
		return imaging.Mask{}, err
	}
	s.pending = inside
	s.state = StateAwaitingConfirmation
	return inside, nil
}

// Reject discards the pending partition and returns to digitizing so
// the caller can supply a new polygon.
func (s *PolygonSession) Reject() error {
	if s.state != StateAwaitingConfirmation {
		return fmt.Errorf("segmentation: reject in state %s", s.state)
	}
	s.pending = imaging.Mask{}
	s.state = StateDigitizing
	return nil
}

// Commit finalizes the pending partition. The session is terminal
// afterwards and Mask returns the committed subset.
func (s *PolygonSession) Commit() error {
	if s.state != StateAwaitingConfirmation {
		return fmt.Errorf("segmentation: commit in state %s", s.state)
	}
	s.final = s.pending
	s.pending = imaging.Mask{}
	s.state = StateCommitted
	return nil
}

// Mask returns the committed muscle subset. It is only valid once the
// session has committed.
func (s *PolygonSession) Mask() (imaging.Mask, error) {
	if s.state != StateCommitted {
		return imaging.Mask{}, fmt.Errorf("segmentation: mask requested in state %s", s.state)
	}
	return s.final, nil
}
