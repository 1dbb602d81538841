package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"quizboard/internal/app"
	"quizboard/internal/domain"
)

type answerRequest struct {
	OptionIndex *int `json:"optionIndex"`
}

type submitResponse struct {
	ResultID string              `json:"resultId"`
	Session  app.SessionSnapshot `json:"session"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	session, err := h.quizzes.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.quizzes.StartSession(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	h.quizzes.EndSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) beginSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var identity domain.Identity
	if err := decodeJSON(r, &identity); err != nil {
		writeErr(w, err)
		return
	}
	respondSnapshot(w)(session.Begin(identity))
}

func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.OptionIndex == nil {
		writeErr(w, domain.NewValidationError("optionIndex", "is required"))
		return
	}
	respondSnapshot(w)(session.SelectAnswer(*req.OptionIndex))
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(session.Advance())
}

func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(session.Retreat())
}

func (h *Handler) submitSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	// a dropped connection must not abort a submission that already started
	resultID, err := session.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{ResultID: resultID, Session: session.Snapshot()})
}

func respondSnapshot(w http.ResponseWriter) func(app.SessionSnapshot, error) {
	return func(snap app.SessionSnapshot, err error) {
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
