package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
	"github.com/mind-engage/mindengage-boletim/internal/config"
	"github.com/mind-engage/mindengage-boletim/internal/rbac"
	"github.com/mind-engage/mindengage-boletim/internal/sheets"
	"github.com/mind-engage/mindengage-boletim/internal/suap"
)

const stateCookie = "boletim_oauth_state"

// GET /auth/login → redirect to the SUAP consent page
func SUAPLoginHandler(o *suap.OAuth, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   cfg.Online(),
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})
		http.Redirect(w, r, o.AuthCodeURL(state), http.StatusFound)
	}
}

// GET /oauth/callback → exchange code, load the SUAP user, store the session,
// mint the portal JWT
func SUAPCallbackHandler(a *authmw.AuthService, o *suap.OAuth, store sheets.Store, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			jsonError(w, e, http.StatusBadRequest)
			return
		}
		state := q.Get("state")
		c, err := r.Cookie(stateCookie)
		if state == "" || err != nil || c.Value != state {
			jsonError(w, "invalid state parameter", http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

		tok, err := o.Exchange(r.Context(), q.Get("code"))
		if err != nil {
			log.Printf("oauth callback: %v", err)
			jsonError(w, "could not obtain access token", http.StatusBadRequest)
			return
		}
		user, err := o.Client(r.Context(), tok).Me(r.Context())
		if err != nil {
			log.Printf("oauth callback: user data: %v", err)
			jsonError(w, "could not load user data", http.StatusBadRequest)
			return
		}

		role := rbac.RoleForUserType(user.Type)
		expires := tok.Expiry
		if expires.IsZero() {
			expires = time.Now().Add(a.TTL())
		}
		se := sheets.Session{
			ID:          uuid.NewString(),
			UserID:      user.Identification,
			Role:        role,
			AccessToken: tok.AccessToken,
			ExpiresAt:   expires,
		}
		if err := store.PutSession(r.Context(), se); err != nil {
			http.Error(w, "session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		jwtStr, err := a.IssueJWT(user.Identification, role, user.Name, se.ID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		setTokenCookie(w, jwtStr, a.TTL(), cfg)

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": jwtStr, "user": user})
			return
		}
		http.Redirect(w, r, strings.TrimSuffix(cfg.PublicURL, "/")+"/dashboard", http.StatusFound)
	}
}

// POST /auth/logout (behind JWTMiddleware)
func LogoutHandler(store sheets.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := authmw.SessionFromContext(r.Context()); id != "" {
			if err := store.DeleteSession(r.Context(), id); err != nil {
				log.Printf("logout: %v", err)
			}
		}
		http.SetCookie(w, &http.Cookie{Name: authmw.CookieName, Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /auth/admin/login  { "username": "...", "password": "..." }
func AdminLoginHandler(a *authmw.AuthService, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if cfg.AdminPassHash == "" || req.Username != cfg.AdminUser ||
			bcrypt.CompareHashAndPassword([]byte(cfg.AdminPassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, rbac.RoleAdmin, req.Username, "")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

func setTokenCookie(w http.ResponseWriter, tok string, ttl time.Duration, cfg config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Online(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
