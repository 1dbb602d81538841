package domain

import (
	"encoding/json"
	"time"
)

// Difficulty is the advertised difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// OptionsPerQuestion is the fixed number of choices every question carries.
const OptionsPerQuestion = 4

// Quiz is the admin-managed quiz definition. Questions is populated by loaders
// that fetch the full quiz content and left empty in listings.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"timeLimitSeconds,omitempty"` // 0 means untimed
	QuestionCount    int        `json:"questionCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	Questions        []Question `json:"questions,omitempty"`
}

// Timed reports whether the quiz declares a time limit.
func (q Quiz) Timed() bool {
	return q.TimeLimitSeconds > 0
}

// Question models a single-choice question. Position fixes the display order.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quizId"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// HasOption reports whether index addresses one of the question's options.
func (q Question) HasOption(index int) bool {
	return index >= 0 && index < len(q.Options)
}

// AnswerSet maps a question ID to the selected option index.
type AnswerSet map[string]int

// Clone returns an independent copy of the set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Encode serializes the set for storage on a Result.
func (a AnswerSet) Encode() string {
	if a == nil {
		a = AnswerSet{}
	}
	data, _ := json.Marshal(map[string]int(a))
	return string(data)
}

// DecodeAnswerSet parses a stored answer set.
func DecodeAnswerSet(raw string) (AnswerSet, error) {
	set := AnswerSet{}
	if raw == "" {
		return set, nil
	}
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, err
	}
	return set, nil
}

// Identity is the participant information collected before a quiz starts.
type Identity struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// ResultInput is the payload persisted once per submission.
type ResultInput struct {
	QuizID           string `json:"quizId"`
	UserName         string `json:"userName"`
	UserEmail        string `json:"userEmail"`
	Score            int    `json:"score"`
	TotalQuestions   int    `json:"totalQuestions"`
	Percentage       int    `json:"percentage"`
	Answers          string `json:"answers"`
	TimeTakenSeconds *int   `json:"timeTakenSeconds,omitempty"`
}

// Result is the durable record of one finished attempt. It is never mutated.
type Result struct {
	ID string `json:"id"`
	ResultInput
	Timestamp time.Time `json:"timestamp"`
}

// TimeTaken returns the recorded time in seconds and whether one was recorded.
func (r Result) TimeTaken() (int, bool) {
	if r.TimeTakenSeconds == nil {
		return 0, false
	}
	return *r.TimeTakenSeconds, true
}

// Seconds is a helper for building optional time values.
func Seconds(n int) *int {
	return &n
}
