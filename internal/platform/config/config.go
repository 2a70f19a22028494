package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration for the audit service.
type Server struct {
	Addr          string
	Environment   string
	DatabaseURL   string
	JWTSigningKey string
	IPHashPepper  string
	RetentionDays int
	AuditTimeout  time.Duration
}

// DefaultRetentionDays is the audit-log retention window applied when the
// retention job does not pass an explicit value.
var DefaultRetentionDays = 90

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VIGIL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("VIGIL_ENV")
	if env == "" {
		env = "development"
	}

	retention := DefaultRetentionDays
	if v := os.Getenv("VIGIL_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retention = n
		}
	}

	auditTimeout := 30 * time.Second
	if v := os.Getenv("VIGIL_AUDIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			auditTimeout = d
		}
	}

	jwtSigningKey := os.Getenv("VIGIL_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		Environment:   env,
		DatabaseURL:   os.Getenv("VIGIL_DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		IPHashPepper:  os.Getenv("VIGIL_IP_HASH_PEPPER"),
		RetentionDays: retention,
		AuditTimeout:  auditTimeout,
	}
}
