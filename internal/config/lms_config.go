package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LMS struct {
	v *viper.Viper
}

var _ LMSConfig = LMS{}

// GetLMSBaseURL returns the upstream host without the /api/v1 suffix (e.g. "https://canvas.example.edu")
func (l LMS) GetLMSBaseURL() string {
	return strings.TrimRight(l.v.GetString(keyLMSURL), "/")
}

func (l LMS) GetLMSToken() string {
	return l.v.GetString(keyLMSToken)
}

func (l LMS) GetLMSAccountID() string {
	return l.v.GetString(keyAccountID)
}

func (l LMS) GetLMSMaxPages() int {
	return l.v.GetInt(keyMaxPages)
}

func (l LMS) GetProxyPrefix() string {
	return "/" + strings.Trim(l.v.GetString(keyProxyPrefix), "/")
}

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

// GetSessionStore returns "cookie" or "memory"
func (s Session) GetSessionStore() string {
	return strings.ToLower(s.v.GetString(keySessionStore))
}

func (s Session) GetSessionSecret() string {
	return s.v.GetString(keySessionSecret)
}

func (s Session) GetSessionCookieName() string {
	return s.v.GetString(keySessionCookie)
}

func (s Session) GetCSRFKey() string {
	return s.v.GetString(keyCSRFKey)
}

type Dashboard struct {
	v *viper.Viper
}

var _ DashboardConfig = Dashboard{}

func (d Dashboard) GetCacheTTL() time.Duration {
	return d.v.GetDuration(keyCacheTTL)
}

// GetRiskThreshold is the average grade below which an observed student is flagged
func (d Dashboard) GetRiskThreshold() float64 {
	return d.v.GetFloat64(keyRiskThreshold)
}
