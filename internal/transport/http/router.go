package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"quizboard/internal/app"
	"quizboard/internal/auth"
)

// Handler exposes the quiz use cases over HTTP and WebSocket.
type Handler struct {
	quizzes  *app.QuizService
	admin    *app.AdminService
	auth     *auth.Service
	upgrader websocket.Upgrader
}

func NewHandler(quizzes *app.QuizService, admin *app.AdminService, authSvc *auth.Service) *Handler {
	return &Handler{
		quizzes: quizzes,
		admin:   admin,
		auth:    authSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter mounts every route on a chi router. An empty origins list allows
// any origin.
func NewRouter(h *Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	timeout := middleware.Timeout(30 * time.Second)

	r.Route("/api", func(api chi.Router) {
		api.With(timeout).Get("/quizzes", h.listQuizzes)
		api.With(timeout).Get("/quizzes/{quizID}", h.getQuiz)
		api.With(timeout).Get("/quizzes/{quizID}/leaderboard", h.leaderboard)
		api.With(timeout).Post("/quizzes/{quizID}/sessions", h.startSession)
		api.With(timeout).Get("/results/{resultID}", h.getReport)

		api.Route("/sessions/{sessionID}", func(sr chi.Router) {
			// long-lived, so kept out of the request timeout
			sr.Get("/ws", h.ServeWS)

			sr.Group(func(g chi.Router) {
				g.Use(timeout)
				g.Get("/", h.getSession)
				g.Delete("/", h.endSession)
				g.Post("/begin", h.beginSession)
				g.Put("/answer", h.selectAnswer)
				g.Post("/next", h.nextQuestion)
				g.Post("/previous", h.previousQuestion)
				g.Post("/submit", h.submitSession)
			})
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(timeout)
			ar.Post("/login", h.login)

			ar.Group(func(pr chi.Router) {
				pr.Use(auth.Middleware(h.auth))
				pr.Post("/quizzes", h.createQuiz)
				pr.Put("/quizzes/{quizID}", h.updateQuiz)
				pr.Delete("/quizzes/{quizID}", h.deleteQuiz)
				pr.Get("/quizzes/{quizID}/results", h.listResults)
				pr.Delete("/quizzes/{quizID}/results", h.clearResults)
				pr.Delete("/results/{resultID}", h.deleteResult)
			})
		})
	})
	return r
}
