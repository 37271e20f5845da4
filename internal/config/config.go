package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds runtime settings for the reservation service, the name
// registry and the console client. Every field maps to one environment
// variable and carries a default so the system runs with no setup;
// deployments override values via the environment or a .env file
// (loaded with godotenv in each entry point).
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port the reservation service listens on

	ServiceName  string // logical name used for registration and lookup
	ServiceHost  string // host advertised to the name registry
	RegistryAddr string // host:port clients and servers use to reach the registry
	RegistryPort string // port the registry binary binds to

	DBDriver string // "mysql" or "sqlite"
	DBUser   string // database username (mysql)
	DBPass   string // database password (mysql, optional)
	DBHost   string // database host (mysql)
	DBPort   string // database port (mysql)
	DBName   string // database name (mysql)
	DBPath   string // database file (sqlite)

	RabbitURL string // AMQP broker URL; empty disables purchase events
}

// Load reads configuration from the environment, falling back to the
// defaults of a single-machine classroom run.
func Load() Config {
	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		ServiceName:  getenv("SERVICE_NAME", "reservation_service"),
		ServiceHost:  getenv("SERVICE_HOST", "localhost"),
		RegistryAddr: getenv("REGISTRY_ADDR", "localhost:8081"),
		RegistryPort: getenv("REGISTRY_PORT", "8081"),
		DBDriver:     getenv("DB_DRIVER", "sqlite"),
		DBUser:       getenv("DB_USER", "root"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       getenv("DB_HOST", "localhost"),
		DBPort:       getenv("DB_PORT", "3306"),
		DBName:       getenv("DB_NAME", "cinema"),
		DBPath:       getenv("DB_PATH", "data/cinema.db"),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
	}
}

// ServicePort returns the listen port as an integer, as the registry
// expects it. Zero means the configured port is not numeric.
func (c Config) ServicePort() int {
	return atoi(c.Port)
}

// getenv returns the value of key, or def when unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
