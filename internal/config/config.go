package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // session lifetime is expressed as a duration
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only the network database settings are
// mandatory, and only when DB_DRIVER selects mysql or postgres; the default
// SQLite file needs nothing.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBDriver   string        // mysql | sqlite3 | postgres
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	DBPath     string        // SQLite database file
	BcryptCost int           // bcrypt cost for password hashing
	SessionTTL time.Duration // lifetime of a login session
	StaticDir  string        // directory holding login.html and the storefront assets

	AdminName     string // name of the bootstrap account
	AdminEmail    string // email of the bootstrap account
	AdminPassword string // password of the bootstrap account

	RabbitURL    string // AMQP broker for order events; empty disables them
	OrderLogPath string // file the order consumer appends to
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:        envStr("APP_ENV", "dev"),             // environment (dev/test/prod)
		Port:       envStr("APP_PORT", "8080"),           // port to bind the HTTP server
		DBDriver:   envStr("DB_DRIVER", "sqlite3"),       // database flavour
		DBPass:     os.Getenv("DB_PASS"),                 // database password (empty allowed)
		DBPath:     envStr("DB_PATH", "data/mercado.db"), // SQLite file
		BcryptCost: intOr("BCRYPT_COST", 12),             // bcrypt cost factor
		SessionTTL: time.Duration(intOr("SESSION_TTL_HOURS", 24)) * time.Hour,
		StaticDir:  envStr("STATIC_DIR", "public"),

		AdminName:     envStr("ADMIN_NAME", "Admin"),
		AdminEmail:    envStr("ADMIN_EMAIL", "admin@teste.com"),
		AdminPassword: envStr("ADMIN_PASSWORD", "123456"),

		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		OrderLogPath: envStr("ORDER_LOG_PATH", "logs/orders.log"),
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "postgresql":
		cfg.DBUser = must("DB_USER") // database user
		cfg.DBHost = must("DB_HOST") // database host
		cfg.DBPort = must("DB_PORT") // database port
		cfg.DBName = must("DB_NAME") // database name
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr is like envStr() but converts the value into an integer.  An unset
// variable yields def; a malformed one logs a fatal error and exits.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
