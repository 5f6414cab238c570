package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
)

type settings struct {
	Port          string        `validate:"required"`
	LMSBaseURL    string        `validate:"required,url"`
	AccountID     string        `validate:"required"`
	MaxPages      int           `validate:"gte=1"`
	ProxyPrefix   string        `validate:"required,startswith=/,ne=/"`
	SessionStore  string        `validate:"oneof=cookie memory"`
	CookieName    string        `validate:"required"`
	CacheTTL      time.Duration `validate:"gte=0"`
	RiskThreshold float64       `validate:"gte=0,lte=100"`
}

var validate = validator.New()

// Validate checks the loaded values and reports every failing key at once
func (c mainConfig) Validate() error {
	s := settings{
		Port:          c.GetPort(),
		LMSBaseURL:    c.GetLMSBaseURL(),
		AccountID:     c.GetLMSAccountID(),
		MaxPages:      c.GetLMSMaxPages(),
		ProxyPrefix:   c.GetProxyPrefix(),
		SessionStore:  c.GetSessionStore(),
		CookieName:    c.GetSessionCookieName(),
		CacheTTL:      c.GetCacheTTL(),
		RiskThreshold: c.GetRiskThreshold(),
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "[config Validate] %s", err.Error())
	}
	var fields []string
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return apperrors.Wrapf(apperrors.ErrInvalidConfig, "[config Validate] %s", strings.Join(fields, "; "))
}
