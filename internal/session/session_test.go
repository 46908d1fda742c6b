package session

import (
	"errors"
	"testing"

	"fxchain/internal/services"
)

func twoStageSession() *Session {
	return &Session{
		Stages: []Stage{
			{PluginID: 1, PluginPath: "/p/A.vst3", PluginName: "A", Bindings: []string{"Gain:3"}},
			{PluginID: 2, PluginPath: "/p/B.vst3", PluginName: "B"},
		},
	}
}

func TestModifyStageReplacesBindingsWholesale(t *testing.T) {
	s := twoStageSession()
	previous, err := s.ModifyStage(1, []string{"Gain:9", "Mix:50%"})
	if err != nil {
		t.Fatalf("ModifyStage: %v", err)
	}
	if len(previous) != 1 || previous[0] != "Gain:3" {
		t.Fatalf("previous bindings = %v", previous)
	}
	if len(s.Stages[0].Bindings) != 2 {
		t.Fatalf("bindings not replaced: %v", s.Stages[0].Bindings)
	}
}

func TestIndexBoundsRejectWithoutMutation(t *testing.T) {
	for _, index := range []int{0, -1, 3} {
		s := twoStageSession()
		if _, err := s.ModifyStage(index, []string{"x:y"}); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ModifyStage(%d) expected validation error, got %v", index, err)
		}
		if _, err := s.RemoveStage(index); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("RemoveStage(%d) expected validation error, got %v", index, err)
		}
		if len(s.Stages) != 2 || s.Stages[0].Bindings[0] != "Gain:3" {
			t.Fatalf("session mutated on out-of-range index %d: %#v", index, s.Stages)
		}
	}
}

func TestRemoveStageReturnsRemoved(t *testing.T) {
	s := twoStageSession()
	removed, err := s.RemoveStage(1)
	if err != nil {
		t.Fatalf("RemoveStage: %v", err)
	}
	if removed.PluginName != "A" {
		t.Fatalf("removed = %#v", removed)
	}
	if len(s.Stages) != 1 || s.Stages[0].PluginName != "B" {
		t.Fatalf("remaining stages wrong: %#v", s.Stages)
	}
}

func TestResetKeepsPointers(t *testing.T) {
	s := twoStageSession()
	s.InputPath = "in.wav"
	s.LastOutput = "out.wav"
	s.Reset()
	if len(s.Stages) != 0 {
		t.Fatalf("stages not cleared: %#v", s.Stages)
	}
	if s.InputPath != "in.wav" || s.LastOutput != "out.wav" {
		t.Fatal("reset must not clear input/output pointers")
	}
}

func TestSetInputFromLastOutput(t *testing.T) {
	s := &Session{}
	if err := s.SetInputFromLastOutput(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error with no last output, got %v", err)
	}
	s.LastOutput = "take1.wav"
	if err := s.SetInputFromLastOutput(); err != nil {
		t.Fatalf("SetInputFromLastOutput: %v", err)
	}
	if s.InputPath != "take1.wav" {
		t.Fatalf("input = %q", s.InputPath)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := twoStageSession()
	cp := s.Clone()
	cp.Stages[0].Bindings[0] = "mutated"
	if s.Stages[0].Bindings[0] != "Gain:3" {
		t.Fatal("clone shares binding storage with original")
	}
}
