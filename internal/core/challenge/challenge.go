// Package challenge provides the human-verification question bank used as an
// optional first step of the registration flow.
package challenge

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Question is a single verification question: one correct answer presented
// alongside two distractors.
type Question struct {
	Question string   `json:"question"`
	Correct  string   `json:"correct"`
	Wrong    []string `json:"wrong"`
}

// Options returns all answers in randomized order.
func (q Question) Options() []string {
	opts := make([]string, 0, len(q.Wrong)+1)
	opts = append(opts, q.Correct)
	opts = append(opts, q.Wrong...)
	rand.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	return opts
}

// IsCorrect reports whether answer matches the correct option, ignoring case
// and surrounding whitespace.
func (q Question) IsCorrect(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.Correct))
}

// Bank is a static collection of questions loaded once at startup.
type Bank struct {
	questions []Question
}

// Load reads a question bank from a JSON file. The file must contain a
// non-empty array of questions, each with exactly two distractors.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("challenge bank: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("challenge bank: parse %s: %w", path, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("challenge bank: %s contains no questions", path)
	}
	for i, q := range questions {
		if q.Question == "" || q.Correct == "" || len(q.Wrong) != 2 {
			return nil, fmt.Errorf("challenge bank: question %d is malformed", i)
		}
	}

	return &Bank{questions: questions}, nil
}

// NewBank builds a bank from an in-memory question list.
func NewBank(questions []Question) *Bank {
	return &Bank{questions: questions}
}

// Random picks one question uniformly at random.
func (b *Bank) Random() Question {
	return b.questions[rand.Intn(len(b.questions))]
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}
