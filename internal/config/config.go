package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The JWT secret and database settings are read
// once at startup and passed into constructors explicitly; nothing reads
// the environment after Load returns.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign auth tokens
	AccessTTLMin int    // token time-to-live in minutes; 0 issues tokens without expiry
	BcryptCost   int    // bcrypt cost for password hashing
	AmqpURL      string // RabbitMQ URL for account notification events (optional)
	SMTPHost     string // SMTP relay host; empty disables outgoing mail
	SMTPPort     int    // SMTP relay port
	SMTPUser     string // SMTP username (optional)
	SMTPPass     string // SMTP password (optional)
	MailFrom     string // From address on notification emails
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),      // environment (dev/test/prod)
		Port:         must("APP_PORT"),     // port to bind the HTTP server
		DBUser:       must("DB_USER"),      // database user
		DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:       must("DB_HOST"),      // database host
		DBPort:       must("DB_PORT"),      // database port
		DBName:       must("DB_NAME"),      // database name
		JWTSecret:    must("JWT_SECRET"),   // secret used for signing tokens
		AccessTTLMin: intOr("ACCESS_TOKEN_TTL_MIN", 0), // 0 keeps tokens valid until revoked
		BcryptCost:   intOr("BCRYPT_COST", 8),          // bcrypt cost factor
		AmqpURL:      os.Getenv("RABBITMQ_URL"),        // broker URL; empty disables events
		SMTPHost:     os.Getenv("SMTP_HOST"),           // mail relay host; empty disables mail
		SMTPPort:     intOr("SMTP_PORT", 587),          // mail relay port
		SMTPUser:     os.Getenv("SMTP_USER"),           // mail relay username
		SMTPPass:     os.Getenv("SMTP_PASS"),           // mail relay password
		MailFrom:     strOr("MAIL_FROM", "no-reply@task-manager.local"), // sender address
	}
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

// strOr returns the value of an optional environment variable or a default.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like strOr but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func intOr(key string, def int) int {
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
