package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"quizboard/internal/app"
	"quizboard/internal/domain"
)

// quizView is a quiz as participants see it, without the answer key.
type quizView struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Difficulty       domain.Difficulty  `json:"difficulty"`
	TimeLimitSeconds int                `json:"timeLimitSeconds,omitempty"`
	QuestionCount    int                `json:"questionCount"`
	CreatedAt        time.Time          `json:"createdAt"`
	Questions        []app.QuestionView `json:"questions,omitempty"`
}

func publicQuiz(q domain.Quiz) quizView {
	view := quizView{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimitSeconds,
		QuestionCount:    q.QuestionCount,
		CreatedAt:        q.CreatedAt,
	}
	for _, question := range q.Questions {
		view.Questions = append(view.Questions, app.PublicQuestion(question))
	}
	return view
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]quizView, 0, len(quizzes))
	for _, q := range quizzes {
		q.Questions = nil
		out = append(out, publicQuiz(q))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicQuiz(quiz))
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.quizzes.Leaderboard(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.quizzes.Report(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
