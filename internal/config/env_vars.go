package config

import (
	"fmt"
	"os"
	"strings"
)

type EnvVars struct {
	Env      string `yaml:"env" env:"ENV" env-default:"DEV"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	AppName  string `yaml:"app_name" env:"APP_NAME" env-default:"Account API"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	if e.AppName == "" {
		return "Account API"
	}
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	if e.LogLevel == "" {
		return "info"
	}
	return e.LogLevel
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
