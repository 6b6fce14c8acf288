package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/mindengage-boletim/internal/api/http"
	"github.com/mind-engage/mindengage-boletim/internal/auth"
	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
	"github.com/mind-engage/mindengage-boletim/internal/config"
	"github.com/mind-engage/mindengage-boletim/internal/db"
	"github.com/mind-engage/mindengage-boletim/internal/grading"
	"github.com/mind-engage/mindengage-boletim/internal/rbac"
	"github.com/mind-engage/mindengage-boletim/internal/sheets"
	"github.com/mind-engage/mindengage-boletim/internal/suap"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := sheets.NewSQLStore(dbh)
	events := sheets.NewEventRepo(dbh)

	// --- Grade rules ---
	opts := []grading.Option{
		grading.WithApprovalThreshold(cfg.ApprovalThreshold),
		grading.WithFinalExamFloor(cfg.FinalExamFloor),
	}
	if cfg.BestOfRules {
		opts = append(opts, grading.WithBestOfRules())
	}
	ev := grading.New(opts...)

	// --- Auth ---
	authSvc := authmw.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL)
	oauth := suap.NewOAuth(suap.Config{
		ClientID:     cfg.SUAPClientID,
		ClientSecret: cfg.SUAPClientSecret,
		AuthURL:      cfg.SUAPAuthURL,
		TokenURL:     cfg.SUAPTokenURL,
		APIURL:       cfg.SUAPAPIURL,
		RedirectURL:  cfg.SUAPRedirectURI,
	})
	book := api.NewGradebook(store, cfg.SUAPAPIURL, cfg.SheetMaxAge)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/auth/login", auth.SUAPLoginHandler(oauth, cfg))
	r.Get("/oauth/callback", auth.SUAPCallbackHandler(authSvc, oauth, store, cfg))
	r.Post("/auth/admin/login", auth.AdminLoginHandler(authSvc, cfg))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.Post("/auth/logout", auth.LogoutHandler(store))

		pr.With(rbac.Require(rbac.PermSimulate)).
			Post("/evaluate", api.EvaluateHandler(ev))
		pr.With(rbac.Require(rbac.PermSimulate)).
			Post("/simulate", api.SimulateHandler(ev))

		pr.With(rbac.Require(rbac.PermGradesViewOwn)).
			Get("/periods", api.PeriodsHandler(book))
		pr.With(rbac.Require(rbac.PermGradesViewOwn)).
			Get("/dashboard", api.DashboardHandler(book, ev))
		pr.With(rbac.Require(rbac.PermGradesViewOwn)).
			Get("/report", api.ReportHandler(book, ev))
		pr.With(rbac.Require(rbac.PermReportExport)).
			Get("/report/export.csv", api.ReportCSVHandler(book, ev))

		pr.With(rbac.Require(rbac.PermStudentsView)).
			Get("/students/{registration}", api.StudentHandler(book, ev))

		pr.With(rbac.Require(rbac.PermSheetsAudit)).
			Get("/sheets", api.ListSheetsHandler(store))
		pr.With(rbac.Require(rbac.PermSheetsAudit)).
			Get("/sheets/events", api.SheetEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	if cfg.SUAPClientID == "" {
		log.Printf("SUAP_CLIENT_ID not set; /auth/login will fail until it is configured")
	}
	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
