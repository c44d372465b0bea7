// Package session persists the authenticated identity between requests.
// Exactly three values are stored — token, username, color — set together on
// login and cleared together on logout.
package session

import (
	"net/http"

	"github.com/yewon-dev/gongjucal/internal/model"
)

const (
	tokenCookie    = "gongjucal_token"
	usernameCookie = "gongjucal_username"
	colorCookie    = "gongjucal_color"

	maxAge = 30 * 24 * 60 * 60
)

// Store is the persistence contract for the client session.
type Store interface {
	Load(r *http.Request) (model.Session, bool)
	Save(w http.ResponseWriter, s model.Session)
	Clear(w http.ResponseWriter)
}

// CookieStore keeps the session in three HTTP cookies.
type CookieStore struct {
	Secure bool
}

func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

// Load reads the session from the request. A session without a token is
// treated as absent.
func (cs *CookieStore) Load(r *http.Request) (model.Session, bool) {
	token, err := r.Cookie(tokenCookie)
	if err != nil || token.Value == "" {
		return model.Session{}, false
	}

	s := model.Session{Token: token.Value}
	if c, err := r.Cookie(usernameCookie); err == nil {
		s.Username = c.Value
	}
	if c, err := r.Cookie(colorCookie); err == nil {
		s.Color = c.Value
	}
	return s, true
}

func (cs *CookieStore) Save(w http.ResponseWriter, s model.Session) {
	cs.set(w, tokenCookie, s.Token, maxAge)
	cs.set(w, usernameCookie, s.Username, maxAge)
	cs.set(w, colorCookie, s.Color, maxAge)
}

func (cs *CookieStore) Clear(w http.ResponseWriter) {
	cs.set(w, tokenCookie, "", -1)
	cs.set(w, usernameCookie, "", -1)
	cs.set(w, colorCookie, "", -1)
}

func (cs *CookieStore) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
