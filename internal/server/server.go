package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yewon-dev/gongjucal/internal/auth"
	"github.com/yewon-dev/gongjucal/internal/handler"
	"github.com/yewon-dev/gongjucal/internal/middleware"
	"github.com/yewon-dev/gongjucal/internal/session"
	"github.com/yewon-dev/gongjucal/internal/store"
	"github.com/yewon-dev/gongjucal/internal/websocket"
)

type Server struct {
	db        *sql.DB
	hub       *websocket.Hub
	users     *store.UserStore
	issuer    *auth.TokenIssuer
	sessions  session.Store
	authH     *handler.AuthHandler
	eventH    *handler.EventHandler
	templateH *handler.TemplateHandler
	logger    *slog.Logger
}

func New(db *sql.DB, jwtSecret string, secureCookies bool, logger *slog.Logger) *Server {
	hub := websocket.NewHub(logger.With("component", "websocket"))

	users := store.NewUserStore(db)
	events := store.NewEventStore(db)
	issuer := auth.NewTokenIssuer(jwtSecret)
	sessions := session.NewCookieStore(secureCookies)

	return &Server{
		db:        db,
		hub:       hub,
		users:     users,
		issuer:    issuer,
		sessions:  sessions,
		authH:     handler.NewAuthHandler(users, issuer, sessions, logger.With("component", "auth")),
		eventH:    handler.NewEventHandler(events, hub, logger.With("component", "events")),
		templateH: handler.NewTemplateHandler(events, hub, logger.With("component", "calendar")),
		logger:    logger,
	}
}

// UserStore returns the user store for startup roster seeding.
func (s *Server) UserStore() *store.UserStore {
	return s.users
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.authH.LoginForm)
	outerMux.HandleFunc("POST /auth/login", s.authH.Login)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// JSON API — bearer token auth
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /events", s.eventH.List)
	apiMux.HandleFunc("POST /events", s.eventH.Create)
	apiMux.HandleFunc("PUT /events/{id}", s.eventH.Update)
	apiMux.HandleFunc("DELETE /events/{id}", s.eventH.Delete)

	tokenMiddleware := middleware.RequireToken(s.issuer, s.users)
	outerMux.Handle("/events", tokenMiddleware(apiMux))
	outerMux.Handle("/events/", tokenMiddleware(apiMux))

	// Pages and partials — session cookie auth
	pageMux := http.NewServeMux()
	s.registerPageRoutes(pageMux)

	sessionMiddleware := middleware.RequireSession(s.sessions, s.issuer, s.users)
	outerMux.Handle("/", sessionMiddleware(pageMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusSeeOther)
	})

	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /calendar", s.templateH.CalendarPage)

	// Calendar partials (HTMX)
	mux.HandleFunc("GET /partials/calendar", s.templateH.CalendarGrid)
	mux.HandleFunc("GET /partials/events/new", s.templateH.EventNewForm)
	mux.HandleFunc("GET /partials/events/{id}/edit", s.templateH.EventEditForm)
	mux.HandleFunc("POST /partials/events", s.templateH.EventCreate)
	mux.HandleFunc("PUT /partials/events/{id}", s.templateH.EventUpdate)
	mux.HandleFunc("DELETE /partials/events/{id}", s.templateH.EventDelete)

	// WebSocket
	mux.HandleFunc("GET /ws", s.hub.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
