package config

import (
	"os"
	"strconv"
	"time"

	"github.com/nickbelling/FlexFlow/internal/utils"
)

// AppName is stamped into logs and used as the TOTP issuer.
const AppName = "FlexFlow"

// Config holds all application configuration. It is built once at startup
// and never mutated afterwards; every component receives it by injection.
type Config struct {
	AppName string
	AppPort string
	AppUrl  string
	DBUrl   string

	AdminEmail string

	// Bearer token settings. The secret is the process-wide HMAC signing
	// key; audience and issuer are embedded in every token and verified on
	// every authenticated request.
	BearerSecret   []byte
	BearerLifetime time.Duration
	BearerAudience string
	BearerIssuer   string

	// Which blacklist store backs logout: "memory" or "postgres".
	BlacklistStore string

	MaxLoginAttempts int
	AttemptWindow    time.Duration
	LockDuration     time.Duration
}

// Defaults mirroring the original deployment: 30-minute bearer tokens,
// five failed attempts lock an account for ten minutes.
const (
	DefaultBearerLifetimeMinutes = 30
	MaxLoginAttempts             = 5
	AttemptWindow                = 5 * time.Minute
	LockDuration                 = 10 * time.Minute

	BlacklistStoreMemory   = "memory"
	BlacklistStorePostgres = "postgres"
)

// LoadConfig reads the environment and returns a *Config. Missing required
// settings are fatal: a service without a signing secret must never come up.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		utils.Logger.Fatal("ADMIN_EMAIL env var is missing")
	}

	bearerSecret := os.Getenv("BEARER_SECRET")
	if bearerSecret == "" {
		utils.Logger.Fatal("BEARER_SECRET env var is missing; refusing to issue unsigned tokens")
	}

	bearerLifetime := time.Duration(DefaultBearerLifetimeMinutes) * time.Minute
	if raw := os.Getenv("BEARER_LIFETIME_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			bearerLifetime = time.Duration(minutes) * time.Minute
		} else {
			utils.Logger.Warnf("Invalid BEARER_LIFETIME_MINUTES '%s', defaulting to %d", raw, DefaultBearerLifetimeMinutes)
		}
	}

	blacklistStore := os.Getenv("BLACKLIST_STORE")
	switch blacklistStore {
	case "":
		blacklistStore = BlacklistStoreMemory
	case BlacklistStoreMemory, BlacklistStorePostgres:
	default:
		utils.Logger.Fatalf("Invalid BLACKLIST_STORE '%s' (want %q or %q)", blacklistStore, BlacklistStoreMemory, BlacklistStorePostgres)
	}

	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		appUrl = "http://localhost:" + appPort
	}

	return &Config{
		AppName:          AppName,
		AppPort:          appPort,
		AppUrl:           appUrl,
		DBUrl:            dbUrl,
		AdminEmail:       adminEmail,
		BearerSecret:     []byte(bearerSecret),
		BearerLifetime:   bearerLifetime,
		BearerAudience:   os.Getenv("BEARER_AUDIENCE"),
		BearerIssuer:     os.Getenv("BEARER_ISSUER"),
		BlacklistStore:   blacklistStore,
		MaxLoginAttempts: MaxLoginAttempts,
		AttemptWindow:    AttemptWindow,
		LockDuration:     LockDuration,
	}
}
