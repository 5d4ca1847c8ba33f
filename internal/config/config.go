// Package config loads the console configuration: YAML file plus
// environment overrides (FRONTDOOR_* variables win over the file).
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// Origin is the console's canonical origin, used to rebuild
		// callback redirect URIs (e.g. "http://localhost:8000").
		Origin string `yaml:"origin"`
	} `yaml:"server"`

	Backend struct {
		// URL is the identity provider backend base URL.
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`

	Session struct {
		CookieName   string        `yaml:"cookie_name"`
		CookieSecure bool          `yaml:"cookie_secure"`
		TTL          time.Duration `yaml:"ttl"`
		Store        struct {
			// memory | redis
			Kind  string `yaml:"kind"`
			Redis struct {
				Addr   string `yaml:"addr"`
				DB     int    `yaml:"db"`
				Prefix string `yaml:"prefix"`
			} `yaml:"redis"`
		} `yaml:"store"`
	} `yaml:"session"`

	RateLimit struct {
		// Max requests per client IP per window on the flow and callback
		// endpoints. 0 disables limiting.
		Max    int           `yaml:"max"`
		Window time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`

	Security struct {
		// FlowMasterKey seals the flow-state cookie: base64(32 bytes).
		FlowMasterKey string `yaml:"flow_master_key"`
		// JWTKey signs auto-signin access tokens.
		JWTKey    string        `yaml:"jwt_key"`
		JWTIssuer string        `yaml:"jwt_issuer"`
		JWTTTL    time.Duration `yaml:"jwt_ttl"`
	} `yaml:"security"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// env overrides, then defaults. Validation errors are fatal for startup.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// env overrides
	if v, ok := getEnvStr("FRONTDOOR_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("FRONTDOOR_LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("FRONTDOOR_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("FRONTDOOR_ORIGIN"); ok {
		c.Server.Origin = v
	}
	if v, ok := getEnvStr("FRONTDOOR_BACKEND_URL"); ok {
		c.Backend.URL = v
	}
	if v, ok := getEnvDur("FRONTDOOR_BACKEND_TIMEOUT"); ok {
		c.Backend.Timeout = v
	}
	if v, ok := getEnvStr("FRONTDOOR_SESSION_STORE"); ok {
		c.Session.Store.Kind = v
	}
	if v, ok := getEnvStr("FRONTDOOR_REDIS_ADDR"); ok {
		c.Session.Store.Redis.Addr = v
	}
	if v, ok := getEnvInt("FRONTDOOR_REDIS_DB"); ok {
		c.Session.Store.Redis.DB = v
	}
	if v, ok := getEnvDur("FRONTDOOR_SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvInt("FRONTDOOR_RATE_LIMIT_MAX"); ok {
		c.RateLimit.Max = v
	}
	if v, ok := getEnvDur("FRONTDOOR_RATE_LIMIT_WINDOW"); ok {
		c.RateLimit.Window = v
	}
	if v, ok := getEnvStr("FRONTDOOR_FLOW_MASTER_KEY"); ok {
		c.Security.FlowMasterKey = v
	}
	if v, ok := getEnvStr("FRONTDOOR_JWT_KEY"); ok {
		c.Security.JWTKey = v
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "frontdoor_session"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.Store.Kind == "" {
		c.Session.Store.Kind = "memory"
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Security.JWTIssuer == "" {
		c.Security.JWTIssuer = "frontdoor"
	}
	if c.Security.JWTTTL == 0 {
		c.Security.JWTTTL = time.Hour
	}

	if c.Server.Origin == "" {
		return nil, errors.New("server.origin is required")
	}
	if c.Backend.URL == "" {
		return nil, errors.New("backend.url is required")
	}
	if c.Security.FlowMasterKey == "" {
		return nil, errors.New("security.flow_master_key is required (openssl rand -base64 32)")
	}
	if c.Security.JWTKey == "" {
		return nil, errors.New("security.jwt_key is required")
	}

	return &c, nil
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
