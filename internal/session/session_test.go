package session

import (
	"testing"

	"apim/internal/assessment"
	"apim/internal/persona"
)

func TestSessionSetGetReset(t *testing.T) {
	s := NewManager()
	chatA := int64(1)
	chatB := int64(2)

	if _, ok := s.Assessment(chatA); ok {
		t.Fatalf("empty manager returned an assessment")
	}
	s.SetSection(chatA, "hoy")
	if s.Section(chatA) != "" {
		t.Fatalf("section stored without a run")
	}

	s.SetAssessment(chatA, assessment.Assessment{RunID: "a", Result: persona.Result{Persona: persona.ImpulseBuyer}})
	s.SetAssessment(chatB, assessment.Assessment{RunID: "b"})
	s.SetSection(chatA, "7")

	if s.RunID(chatA) != "a" || s.RunID(chatB) != "b" {
		t.Fatalf("run ids mixed up")
	}
	if s.Section(chatA) != "7" || s.Section(chatB) != "" {
		t.Fatalf("sections mixed up")
	}

	// Returned value is a copy.
	got, _ := s.Assessment(chatA)
	got.RunID = "mutated"
	if s.RunID(chatA) != "a" {
		t.Fatalf("internal state mutated via returned value")
	}

	if !s.MarkFeedback(chatA) {
		t.Fatalf("first feedback should be accepted")
	}
	if s.MarkFeedback(chatA) {
		t.Fatalf("second feedback should be rejected")
	}

	s.SetAssessment(chatA, assessment.Assessment{RunID: "c"})
	if s.Section(chatA) != "" || !s.MarkFeedback(chatA) {
		t.Fatalf("new run should reset section and feedback")
	}

	s.Reset(chatA)
	if s.RunID(chatA) != "" {
		t.Fatalf("reset did not clear chat A")
	}
	if s.RunID(chatB) != "b" {
		t.Fatalf("reset should not affect other chats")
	}
}
