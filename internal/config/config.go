package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	TokenTTL       time.Duration

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// SUAP OAuth2 application
	SUAPClientID     string
	SUAPClientSecret string
	SUAPAuthURL      string
	SUAPTokenURL     string
	SUAPAPIURL       string
	SUAPRedirectURI  string

	// Grade rules
	ApprovalThreshold float64
	FinalExamFloor    float64
	BestOfRules       bool // standard courses: best of mean/substitution rules

	// Serve a stored boletim instead of calling SUAP when it is newer than this.
	SheetMaxAge time.Duration
}

// FromEnv loads .env (if present) and reads the environment.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}

	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	pub := os.Getenv("PUBLIC_URL")
	defRedirect := ""
	if pub != "" {
		defRedirect = strings.TrimSuffix(pub, "/") + "/oauth/callback"
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           addr,
		PublicURL:          pub,
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		AuthHMACSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:           envDuration("TOKEN_TTL", 8*time.Hour),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://boletim.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		SUAPClientID:     os.Getenv("SUAP_CLIENT_ID"),
		SUAPClientSecret: os.Getenv("SUAP_CLIENT_SECRET"),
		SUAPAuthURL:      envOr("SUAP_AUTH_URL", "https://suap.ifrn.edu.br/o/authorize/"),
		SUAPTokenURL:     envOr("SUAP_TOKEN_URL", "https://suap.ifrn.edu.br/o/token/"),
		SUAPAPIURL:       envOr("SUAP_API_URL", "https://suap.ifrn.edu.br/api/"),
		SUAPRedirectURI:  envOr("SUAP_REDIRECT_URI", defRedirect),

		ApprovalThreshold: envFloat("APPROVAL_THRESHOLD", 60),
		FinalExamFloor:    envFloat("FINAL_EXAM_FLOOR", 40),
		BestOfRules:       envBool("BEST_OF_RULES", false),

		SheetMaxAge: envDuration("SHEET_MAX_AGE", 10*time.Minute),
	}
}

// Online reports whether secure cookies and production CORS apply.
func (c Config) Online() bool { return c.Mode == ModeOnline }

// CORSOrigins picks the origin list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Online() {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}
func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return d
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
