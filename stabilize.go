package docscan

// StabilizerState is the auto-capture gate's coarse phase.
type StabilizerState int

const (
	StateIdle StabilizerState = iota
	StateAccumulating
	StateReady
)

func (s StabilizerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Stabilizer accumulates consecutive good detections into a bounded counter
// that gates automatic capture. It lives entirely outside the detector: the
// single-threaded caller loop that also triggers capture owns it and mutates
// it exactly once per detection cycle, so no locking is needed.
type Stabilizer struct {
	threshold int
	count     int
}

// NewStabilizer returns a stabilizer requiring threshold consecutive good
// frames before reporting ready.
func NewStabilizer(threshold int) *Stabilizer {
	if threshold < 1 {
		threshold = 1
	}
	return &Stabilizer{threshold: threshold}
}

// Observe folds one detection verdict into the counter. A good frame
// increments toward the threshold; anything else decays the confidence rather
// than hard-resetting it, so a single flickered frame does not restart the
// whole accumulation.
func (s *Stabilizer) Observe(q Quality) StabilizerState {
	if q == QualityGood {
		if s.count < s.threshold {
			s.count++
		}
	} else if s.count > 0 {
		s.count--
	}
	return s.State()
}

// ObserveMiss folds a frame with no detection at all; confidence resets since
// the document left the view.
func (s *Stabilizer) ObserveMiss() StabilizerState {
	s.count = 0
	return s.State()
}

func (s *Stabilizer) State() StabilizerState {
	switch {
	case s.count >= s.threshold:
		return StateReady
	case s.count > 0:
		return StateAccumulating
	default:
		return StateIdle
	}
}

func (s *Stabilizer) Count() int { return s.count }

func (s *Stabilizer) Reset() { s.count = 0 }
