// Package phase holds the fixed, forward-only phase orderings of the counting
// workflows and the checks applied before a session moves between them.
package phase

import (
	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

// Sequence is an ordered list of phases; the last one is terminal.
type Sequence[P ~string] struct {
	order []P
	index map[P]int
}

func NewSequence[P ~string](phases ...P) Sequence[P] {
	idx := make(map[P]int, len(phases))
	for i, p := range phases {
		idx[p] = i
	}
	return Sequence[P]{order: phases, index: idx}
}

var (
	Milk = NewSequence(
		model.MilkPhaseNightFOH,
		model.MilkPhaseNightBOH,
		model.MilkPhaseMorning,
		model.MilkPhaseOnOrder,
		model.MilkPhaseCompleted,
	)
	RTDE = NewSequence(
		model.RTDEPhaseCounting,
		model.RTDEPhasePulling,
		model.RTDEPhaseCompleted,
	)
)

func (s Sequence[P]) Phases() []P {
	return append([]P(nil), s.order...)
}

func (s Sequence[P]) Valid(p P) bool {
	_, ok := s.index[p]
	return ok
}

func (s Sequence[P]) First() P { return s.order[0] }

func (s Sequence[P]) Terminal() P { return s.order[len(s.order)-1] }

// LastOpen is the phase from which a session may be completed.
func (s Sequence[P]) LastOpen() P { return s.order[len(s.order)-2] }

// Next returns the immediate successor of p.
func (s Sequence[P]) Next(p P) (P, bool) {
	i, ok := s.index[p]
	if !ok || i == len(s.order)-1 {
		var zero P
		return zero, false
	}
	return s.order[i+1], true
}

// Reached reports whether current is at or past p.
func (s Sequence[P]) Reached(current, p P) bool {
	ci, ok1 := s.index[current]
	pi, ok2 := s.index[p]
	return ok1 && ok2 && ci >= pi
}

// CheckAdvance allows only the move to the immediate successor.
func (s Sequence[P]) CheckAdvance(from, to P) error {
	if from == s.Terminal() {
		return apperror.SessionCompleted()
	}
	next, ok := s.Next(from)
	if !ok || next != to {
		return apperror.Transition(string(from), string(to))
	}
	return nil
}

func (s Sequence[P]) CheckComplete(current P) error {
	return s.CheckAdvance(current, s.Terminal())
}

// CheckWritable rejects writes to a finished session.
func (s Sequence[P]) CheckWritable(current P) error {
	if current == s.Terminal() {
		return apperror.SessionCompleted()
	}
	return nil
}

// Uncounted returns the entries whose primary count is still unset.
func Uncounted[E any](entries []E, primary func(E) model.Count) []E {
	out := make([]E, 0)
	for _, e := range entries {
		if !primary(e).IsSet() {
			out = append(out, e)
		}
	}
	return out
}
