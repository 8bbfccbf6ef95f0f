package http

import (
	"log/slog"
	"net/http"

	"globent-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Quizzes     *app.QuizService
	Accounts    *app.AuthService
	Auth        Authenticator
	Play        *WSHandler
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the REST API under /api plus the health and play endpoints.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	quizzes := &quizHandler{service: d.Quizzes, log: log}
	accounts := &authHandler{service: d.Accounts, log: log}
	authed := requireAuth(d.Auth, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if d.Play != nil {
			body["liveSessions"] = d.Play.LiveSessions()
			if n, ok := d.Play.ClusterSessions(r.Context()); ok {
				body["clusterSessions"] = n
			}
		}
		writeJSON(w, http.StatusOK, body)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", accounts.signup)
		r.Post("/login", accounts.login)
	})

	r.Route("/api/quiz", func(r chi.Router) {
		r.Get("/all", quizzes.list)
		r.Get("/pin/{pin}", quizzes.getByPIN)
		r.Get("/{id}", quizzes.get)

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/create", quizzes.create)
			r.Get("/my-quizzes", quizzes.mine)
			r.Get("/host/{id}", quizzes.host)
			r.Delete("/{id}", quizzes.delete)
		})
	})

	if d.Play != nil {
		r.Get("/play/ws", d.Play.ServeWS)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	return r
}
