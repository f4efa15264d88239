package phase

import (
	"errors"
	"testing"

	"github.com/fekuna/omnipos-storeops-service/internal/apperror"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

func checkOnlySuccessorAllowed[P ~string](t *testing.T, seq Sequence[P]) {
	t.Helper()
	phases := seq.Phases()
	for i, from := range phases {
		for j, to := range phases {
			err := seq.CheckAdvance(from, to)
			if i < len(phases)-1 && j == i+1 {
				if err != nil {
					t.Errorf("%s -> %s: expected success, got %v", from, to, err)
				}
				continue
			}
			if !errors.Is(err, apperror.ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected InvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestMilkSequence_OnlyImmediateSuccessor(t *testing.T) {
	checkOnlySuccessorAllowed(t, Milk)
}

func TestRTDESequence_OnlyImmediateSuccessor(t *testing.T) {
	checkOnlySuccessorAllowed(t, RTDE)
}

func TestSequenceBoundaries(t *testing.T) {
	if Milk.First() != model.MilkPhaseNightFOH || Milk.LastOpen() != model.MilkPhaseOnOrder {
		t.Errorf("Unexpected milk boundaries %s / %s", Milk.First(), Milk.LastOpen())
	}
	if RTDE.Terminal() != model.RTDEPhaseCompleted || RTDE.LastOpen() != model.RTDEPhasePulling {
		t.Errorf("Unexpected rtde boundaries %s / %s", RTDE.Terminal(), RTDE.LastOpen())
	}
	if _, ok := RTDE.Next(model.RTDEPhaseCompleted); ok {
		t.Errorf("Expected no successor after completed")
	}
	if err := RTDE.CheckComplete(model.RTDEPhaseCounting); err == nil {
		t.Errorf("Expected completing from counting to fail")
	}
	if err := RTDE.CheckComplete(model.RTDEPhasePulling); err != nil {
		t.Errorf("Expected completing from pulling to succeed, got %v", err)
	}
	if !Milk.Reached(model.MilkPhaseMorning, model.MilkPhaseNightBOH) {
		t.Errorf("Expected morning to have reached night_boh")
	}
	if Milk.Reached(model.MilkPhaseNightBOH, model.MilkPhaseMorning) {
		t.Errorf("Expected night_boh not to have reached morning")
	}
	if Milk.Valid("evening") {
		t.Errorf("Expected unknown phase to be invalid")
	}
}

func TestCheckWritable(t *testing.T) {
	if err := Milk.CheckWritable(model.MilkPhaseCompleted); !errors.Is(err, apperror.ErrInvalidTransition) {
		t.Errorf("Expected completed session to reject writes, got %v", err)
	}
	if err := Milk.CheckWritable(model.MilkPhaseMorning); err != nil {
		t.Errorf("Expected open session to accept writes, got %v", err)
	}
}

func TestUncounted(t *testing.T) {
	entries := []model.RTDEEntry{
		{ItemID: "a", Counted: model.NewCount(0)},
		{ItemID: "b"},
		{ItemID: "c", Counted: model.NewCount(5)},
	}
	got := Uncounted(entries, func(e model.RTDEEntry) model.Count { return e.Counted })
	if len(got) != 1 || got[0].ItemID != "b" {
		t.Errorf("Expected only b to be uncounted, got %+v", got)
	}
}
