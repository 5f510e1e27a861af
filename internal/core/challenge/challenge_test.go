package challenge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleQuestions() []Question {
	return []Question{
		{Question: "What color is the sky?", Correct: "blue", Wrong: []string{"green", "red"}},
		{Question: "How many days are in a week?", Correct: "7", Wrong: []string{"5", "10"}},
	}
}

func TestQuestion_Options(t *testing.T) {
	q := sampleQuestions()[0]

	opts := q.Options()
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}

	found := map[string]bool{}
	for _, o := range opts {
		found[o] = true
	}
	for _, want := range []string{"blue", "green", "red"} {
		if !found[want] {
			t.Errorf("option %q missing from %v", want, opts)
		}
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := sampleQuestions()[0]

	for _, answer := range []string{"blue", "BLUE", "  Blue  "} {
		if !q.IsCorrect(answer) {
			t.Errorf("expected %q to be accepted", answer)
		}
	}
	if q.IsCorrect("green") {
		t.Errorf("distractor must not be accepted")
	}
	if q.IsCorrect("") {
		t.Errorf("empty answer must not be accepted")
	}
}

func TestLoad(t *testing.T) {
	path := writeBank(t, sampleQuestions())

	bank, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bank.Len() != 2 {
		t.Errorf("expected 2 questions, got %d", bank.Len())
	}

	q := bank.Random()
	if q.Question == "" || q.Correct == "" {
		t.Errorf("Random returned malformed question: %+v", q)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_EmptyBank(t *testing.T) {
	path := writeBank(t, []Question{})
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty bank")
	}
}

func TestLoad_MalformedQuestion(t *testing.T) {
	path := writeBank(t, []Question{
		{Question: "Only one distractor?", Correct: "yes", Wrong: []string{"no"}},
	})
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for question with a single distractor")
	}
}

func writeBank(t *testing.T, questions []Question) string {
	t.Helper()
	raw, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	return path
}
