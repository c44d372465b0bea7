package handler

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yewon-dev/gongjucal/internal/auth"
	"github.com/yewon-dev/gongjucal/internal/model"
	"github.com/yewon-dev/gongjucal/internal/session"
	"github.com/yewon-dev/gongjucal/internal/store"
	"github.com/yewon-dev/gongjucal/web"
)

// loginFailedMessage is the single generic failure text; causes are never
// distinguished for the user.
const loginFailedMessage = "로그인에 실패했습니다."

type AuthHandler struct {
	users     *store.UserStore
	issuer    *auth.TokenIssuer
	sessions  session.Store
	templates *template.Template
	logger    *slog.Logger
}

func NewAuthHandler(us *store.UserStore, issuer *auth.TokenIssuer, sessions session.Store, logger *slog.Logger) *AuthHandler {
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/login.html"))
	return &AuthHandler{
		users:     us,
		issuer:    issuer,
		sessions:  sessions,
		templates: tmpl,
		logger:    logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// Login is the JSON endpoint: POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, token, ok := h.authenticate(w, req.Username, req.Password)
	if !ok {
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: *user})
}

// LoginPage renders the login screen.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "login.html", loginView{})
}

type loginView struct {
	Error    string
	Username string
}

// LoginForm handles the browser form POST. On failure the username is echoed
// back so it is not cleared; the password field always starts empty.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, token, ok := h.authenticate(w, username, password)
	if !ok {
		return
	}
	if user == nil {
		h.templates.ExecuteTemplate(w, "login.html", loginView{
			Error:    loginFailedMessage,
			Username: username,
		})
		return
	}

	h.sessions.Save(w, model.Session{Token: token, Username: user.Username, Color: user.Color})
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

// Logout clears the persisted session values and returns to the login screen.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// authenticate runs the credential check and token mint shared by both login
// surfaces. The bool result is false when a response has already been
// written (internal errors); a nil user with true means bad credentials.
func (h *AuthHandler) authenticate(w http.ResponseWriter, username, password string) (*model.User, string, bool) {
	user, err := h.users.Authenticate(username, password)
	if err != nil {
		h.logger.Error("authenticate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, "", false
	}
	if user == nil {
		return nil, "", true
	}

	token, err := h.issuer.Mint(user.Username, user.Color)
	if err != nil {
		h.logger.Error("mint token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, "", false
	}
	return user, token, true
}
