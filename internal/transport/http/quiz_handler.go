package http

import (
	"log/slog"
	"net/http"

	"globent-quiz-service/internal/app"
	"globent-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type quizHandler struct {
	service *app.QuizService
	log     *slog.Logger
}

// create handles POST /api/quiz/create.
func (h *quizHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewQuiz
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.service.Create(r.Context(), UserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// list handles GET /api/quiz/all with an optional ?q= search term.
func (h *quizHandler) list(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *quizHandler) mine(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.Mine(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *quizHandler) get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *quizHandler) getByPIN(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetByPIN(r.Context(), chi.URLParam(r, "pin"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *quizHandler) host(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Host(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *quizHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "quiz deleted successfully"})
}
