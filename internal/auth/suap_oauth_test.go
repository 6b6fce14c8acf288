package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
	"github.com/mind-engage/mindengage-boletim/internal/config"
	"github.com/mind-engage/mindengage-boletim/internal/db"
	"github.com/mind-engage/mindengage-boletim/internal/sheets"
	"github.com/mind-engage/mindengage-boletim/internal/suap"
)

func fakeSUAP(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/o/token/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "cid" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/api/rh/eu/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"identificacao": "20231", "nome_usual": "Ana", "tipo_usuario": "Aluno"}`))
	})
	mux.HandleFunc("/api/v2/minhas-informacoes/meus-dados/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"vinculo": {"curso": {"nome": "Informática"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuth(srv *httptest.Server) *suap.OAuth {
	return suap.NewOAuth(suap.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		AuthURL:      srv.URL + "/o/authorize/",
		TokenURL:     srv.URL + "/o/token/",
		APIURL:       srv.URL + "/api/",
		RedirectURL:  "http://portal.test/oauth/callback",
	})
}

func openStore(t *testing.T) *sheets.SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return sheets.NewSQLStore(dbh)
}

func TestSUAPLogin_SetsStateAndRedirects(t *testing.T) {
	srv := fakeSUAP(t)
	rec := httptest.NewRecorder()
	SUAPLoginHandler(newOAuth(srv), config.Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/o/authorize/", loc.Path)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, loc.Query().Get("state"))
}

func callback(h http.Handler, query, state string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSUAPCallback(t *testing.T) {
	srv := fakeSUAP(t)
	store := openStore(t)
	a := authmw.NewAuthService("k", time.Hour)
	cfg := config.Config{PublicURL: "http://portal.test/"}
	h := SUAPCallbackHandler(a, newOAuth(srv), store, cfg)

	rec := callback(h, "code=good-code&state=abc", "abc", "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		AccessToken string    `json:"access_token"`
		User        suap.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ana", body.User.Name)
	assert.Equal(t, "Informática", body.User.Course["nome"])

	claims, err := a.Parse(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "20231", claims.Sub)
	assert.Equal(t, "student", claims.Role)

	se, err := store.GetSession(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", se.AccessToken)
	assert.Equal(t, "20231", se.UserID)
	assert.False(t, se.Expired(time.Now()))

	// browsers are sent to the dashboard with the token cookie
	rec = callback(h, "code=good-code&state=xyz", "xyz", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://portal.test/dashboard", rec.Header().Get("Location"))
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == authmw.CookieName && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSUAPCallback_Rejects(t *testing.T) {
	srv := fakeSUAP(t)
	h := SUAPCallbackHandler(authmw.NewAuthService("k", time.Hour), newOAuth(srv), openStore(t), config.Config{})

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"provider error": callback(h, "error=access_denied", "abc", ""),
		"missing cookie": callback(h, "code=good-code&state=abc", "", ""),
		"state mismatch": callback(h, "code=good-code&state=abc", "other", ""),
		"bad code":       callback(h, "code=bad&state=abc", "abc", ""),
	} {
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"error"`, name)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.PutSession(ctx, sheets.Session{ID: "s1", UserID: "u", Role: "student", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(authmw.WithSession(req.Context(), "s1"))
	rec := httptest.NewRecorder()
	LogoutHandler(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, sheets.ErrNotFound)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := authmw.NewAuthService("k", time.Hour)
	h := AdminLoginHandler(a, config.Config{AdminUser: "admin", AdminPassHash: string(hash)})

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/admin/login", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"username": "admin", "password": "s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	c, err := a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Role)

	assert.Equal(t, http.StatusUnauthorized, post(`{"username": "admin", "password": "nope"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(`{"username": "root", "password": "s3cret"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{`).Code)
}
