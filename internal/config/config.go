package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	LMSConfig
	SessionConfig
	CorsConfig
	DashboardConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type LMSConfig interface {
	GetLMSBaseURL() string
	GetLMSToken() string
	GetLMSAccountID() string
	GetLMSMaxPages() int
	GetProxyPrefix() string
}

type SessionConfig interface {
	GetSessionStore() string
	GetSessionSecret() string
	GetSessionCookieName() string
	GetCSRFKey() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type DashboardConfig interface {
	GetCacheTTL() time.Duration
	GetRiskThreshold() float64
}

const (
	keyPort          = "PORT"
	keyAppName       = "APP_NAME"
	keyEnv           = "ENV"
	keyLogLevel      = "LOG_LEVEL"
	keyLMSURL        = "CANVAS_API_URL"
	keyLMSToken      = "CANVAS_API_KEY"
	keyAccountID     = "CANVAS_ACCOUNT_ID"
	keyMaxPages      = "CANVAS_MAX_PAGES"
	keyProxyPrefix   = "PROXY_PREFIX"
	keySessionStore  = "SESSION_STORE"
	keySessionSecret = "SESSION_SECRET"
	keySessionCookie = "SESSION_COOKIE"
	keyCSRFKey       = "CSRF_KEY"
	keyCacheTTL      = "CACHE_TTL"
	keyRiskThreshold = "RISK_THRESHOLD"
	keyOrigins       = "ALLOWED_ORIGINS"
)

type mainConfig struct {
	EnvVars
	LMS
	Session
	Cors
	Dashboard
}

// New loads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func New() Config {
	loadDotEnv(".env")
	v := newViper()
	v.AutomaticEnv()
	return build(v)
}

// FromMap builds a configuration from explicit values on top of the defaults.
func FromMap(values map[string]any) Config {
	v := newViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return build(v)
}

func build(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:   EnvVars{v: v},
		LMS:       LMS{v: v},
		Session:   Session{v: v},
		Cors:      Cors{v: v},
		Dashboard: Dashboard{v: v},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault(keyPort, "8080")
	v.SetDefault(keyAppName, "Canvas Dashboard")
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLMSURL, "http://canvas.docker")
	v.SetDefault(keyLMSToken, "")
	v.SetDefault(keyAccountID, "1")
	v.SetDefault(keyMaxPages, 10)
	v.SetDefault(keyProxyPrefix, "/api/canvas")
	v.SetDefault(keySessionStore, "cookie")
	v.SetDefault(keySessionSecret, "")
	v.SetDefault(keySessionCookie, "canvas_user_session")
	v.SetDefault(keyCSRFKey, "")
	v.SetDefault(keyCacheTTL, 30*time.Second)
	v.SetDefault(keyRiskThreshold, 70.0)
	v.SetDefault(keyOrigins, []string{})
	return v
}

func loadDotEnv(name string) {
	path, err := filepath.Abs(name)
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to load .env file")
	}
}

func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
