package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Sub-configurations for storage, rice rules and
// CORS are grouped so they can be injected into the components that need
// them without passing the whole struct around.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time‑to‑live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	LogLevel     string // debug | info | warn | error
	LogFormat    string // json | console
	RabbitMQURL  string // broker URL; empty disables event publishing

	InitialAdmin AdminConfig
	Storage      StorageConfig
	Rice         RiceConfig
	CORS         CORSConfig
}

// AdminConfig is the account created on first start when no admin exists.
type AdminConfig struct {
	Username string
	Password string
}

// StorageConfig selects where grievance images are written.
type StorageConfig struct {
	Backend    string // "local" or "s3"
	UploadDir  string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
}

// RiceConfig carries the entitlement rate and the public contact details
// the chatbot quotes.
type RiceConfig struct {
	PerPersonKg   decimal.Decimal
	PricePerKg    int
	ContactName   string
	ContactNumber string
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // optional; real environment wins

	return Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("APP_PORT", "8080"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       envStr("DB_PORT", "3306"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 600),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "json"),
		RabbitMQURL:  firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		InitialAdmin: AdminConfig{
			Username: envStr("INITIAL_ADMIN_USERNAME", "admin"),
			Password: must("INITIAL_ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(envStr("STORAGE_BACKEND", "local")),
			UploadDir:  envStr("UPLOAD_DIR", "uploads"),
			S3Bucket:   os.Getenv("S3_BUCKET"),
			S3Region:   envStr("S3_REGION", "us-east-1"),
			S3Endpoint: os.Getenv("S3_ENDPOINT"),
			S3Prefix:   os.Getenv("S3_PREFIX"),
		},
		Rice: RiceConfig{
			PerPersonKg:   mustDecimal("RICE_PER_PERSON_KG"),
			PricePerKg:    envInt("RICE_PRICE_PER_KG", 0),
			ContactName:   envStr("CONTACT_NAME", "the admin"),
			ContactNumber: envStr("CONTACT_NUMBER", "the portal"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(envStr("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}
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

// mustDecimal is like must() but parses a non-negative decimal.
func mustDecimal(key string) decimal.Decimal {
	s := must(key)
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		log.Fatalf("invalid decimal for %s: %q", key, s)
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
