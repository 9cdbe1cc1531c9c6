package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets (admin/analyst codes) may be supplied
// either as plain strings or as bcrypt hashes; see utils.VerifySecret.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBDriver         string // "mysql" or "sqlite"
	DBUser           string // database username (mysql)
	DBPass           string // database password (mysql, optional)
	DBHost           string // database host address (mysql)
	DBPort           string // database port number (mysql)
	DBName           string // database name (mysql)
	DBPath           string // database file path (sqlite)
	JWTSecret        string // secret used to sign admin tokens
	AdminCode        string // shared secret for the admin role
	AnalystCode      string // shared secret for the analyst role (optional)
	AdminTokenTTLMin int    // admin token time-to-live in minutes
	SessionIdleMin   int    // session inactivity window in minutes
	SessionMaxDays   int    // absolute session lifetime in days
	PhoneCountryCode string // calling code prepended to local phone numbers
	UnsplashKey      string // Unsplash API access key (optional, hero images)
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Variables that only
// apply to one database driver are required conditionally.
func Load() Config {
	cfg := Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBDriver:         getenv("DB_DRIVER", "sqlite"),
		JWTSecret:        must("JWT_SECRET"),
		AdminCode:        must("ADMIN_CODE"),
		AnalystCode:      os.Getenv("ANALYST_CODE"),
		AdminTokenTTLMin: envInt("ADMIN_TOKEN_TTL_MIN", 120),
		SessionIdleMin:   envInt("SESSION_IDLE_MIN", 30),
		SessionMaxDays:   envInt("SESSION_MAX_DAYS", 31),
		PhoneCountryCode: getenv("PHONE_COUNTRY_CODE", "+971"),
		UnsplashKey:      os.Getenv("UNSPLASH_ACCESS_KEY"),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case "sqlite":
		cfg.DBPath = getenv("DB_PATH", "voting.db")
	default:
		log.Fatalf("unsupported DB_DRIVER: %q (want mysql or sqlite)", cfg.DBDriver)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
