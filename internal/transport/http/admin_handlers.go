package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"quizboard/internal/app"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	token, expires, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	quiz, err := h.admin.CreateQuiz(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	quiz, err := h.admin.UpdateQuiz(r.Context(), chi.URLParam(r, "quizID"), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.admin.ListResults(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) clearResults(w http.ResponseWriter, r *http.Request) {
	n, err := h.admin.ClearResults(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *Handler) deleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteResult(r.Context(), chi.URLParam(r, "resultID")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
