package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(keyPort)
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	env := strings.ToUpper(e.v.GetString(keyEnv))
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(keyLogLevel)
}
