package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yewon-dev/gongjucal/internal/auth"
	"github.com/yewon-dev/gongjucal/internal/session"
	"github.com/yewon-dev/gongjucal/internal/store"
)

// RequireToken validates the Authorization bearer token on API requests and
// attaches the caller's identity to the context. Failures get a JSON 401.
func RequireToken(issuer *auth.TokenIssuer, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenString == header {
				unauthorized(w)
				return
			}

			claims, err := issuer.Verify(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetByUsername(claims.Username)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			id := auth.Identity{UserID: user.ID, Username: user.Username, Color: user.Color}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireSession validates the session cookies on page requests. An absent or
// bad session redirects to the login screen. HTMX-aware: partial requests get
// an HX-Redirect header instead of a 303.
func RequireSession(sessions session.Store, issuer *auth.TokenIssuer, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessions.Load(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			claims, err := issuer.Verify(sess.Token)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			user, err := users.GetByUsername(claims.Username)
			if err != nil || user == nil {
				redirectToLogin(w, r)
				return
			}

			id := auth.Identity{UserID: user.ID, Username: user.Username, Color: user.Color}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
