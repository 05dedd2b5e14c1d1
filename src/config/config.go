package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// DefaultPort is the HTTP listen port when PORT is unset.
const DefaultPort = 10000

// DefaultFreeDaily is the free card allowance per client per day.
const DefaultFreeDaily = 5

type Config struct {
	SecretKey           string // SecretKey signs the session cookies.
	SecretKeyGenerated  bool   // SecretKeyGenerated is true when SECRET_KEY was absent and a throwaway key was generated.
	OpenAIAPIKey        string // OpenAIAPIKey authenticates Chat Completions requests.
	FreeDaily           int    // FreeDaily is the number of free card generations per client per day.
	StripeSecretKey     string // StripeSecretKey is for making Stripe API requests.
	StripePriceID       string // StripePriceID is the price backing the Pro checkout.
	StripeWebhookSecret string // StripeWebhookSecret verifies webhook signatures.
	StripeLink          string // StripeLink is a static payment-link fallback when checkout is unavailable.
	AdminProCode        string // AdminProCode unlocks Pro without a purchase.
	BaseURL             string // BaseURL is the externally visible URL of the app.
	Port                int    // Port is the HTTP listen port.
	LogLevel            string // LogLevel is the level of logging for the application.
	DBHost              string // DBHost is the host machine running the postgres instance.
	DBPort              string // DBPort is the port that exposes the db server.
	DBName              string // DBName is the postgres database name.
	DBUser              string // DBUser is the postgres user account.
	DBPassword          string // DBPassword is the password for the DBUser postgres account.
	DBSSLMode           string // DBSSLMode sets the SSL mode of the postgres client.
	SendgridAPIKey      string // SendgridAPIKey is for sending emails.
	EmailFrom           string // From address for transactional email.
	EmailName           string // Name on transactional email.
}

func missingEnvErr(envVar string) error {
	return fmt.Errorf("%s not found in environment", envVar)
}

// Load reads the environment into a Config. OPENAI_API_KEY is the only hard
// requirement; everything else has a default or degrades a feature.
func Load() (Config, error) {
	var (
		openAIAPIKey = os.Getenv("OPENAI_API_KEY")
		secretKey    = os.Getenv("SECRET_KEY")
	)

	if openAIAPIKey == "" {
		return Config{}, missingEnvErr("OPENAI_API_KEY")
	}

	freeDaily, err := strconv.Atoi(getEnvWithDefault("FREE_DAILY", strconv.Itoa(DefaultFreeDaily)))
	if err != nil {
		return Config{}, fmt.Errorf("FREE_DAILY must be an integer: %w", err)
	}

	port, err := strconv.Atoi(getEnvWithDefault("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return Config{}, fmt.Errorf("PORT must be an integer: %w", err)
	}

	secretKeyGenerated := false
	if secretKey == "" {
		secretKey, err = randomSecret()
		if err != nil {
			return Config{}, err
		}
		secretKeyGenerated = true
	}

	return Config{
		SecretKey:           secretKey,
		SecretKeyGenerated:  secretKeyGenerated,
		OpenAIAPIKey:        openAIAPIKey,
		FreeDaily:           freeDaily,
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeLink:          os.Getenv("STRIPE_LINK"),
		AdminProCode:        os.Getenv("ADMIN_PRO_CODE"),
		BaseURL:             getEnvWithDefault("BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		Port:                port,
		LogLevel:            getEnvWithDefault("TNT_LOG_LEVEL", strconv.Itoa(int(zerolog.InfoLevel))),
		DBHost:              getEnvWithDefault("TNT_DB_HOST", "localhost"),
		DBPort:              getEnvWithDefault("TNT_DB_PORT", "5432"),
		DBName:              getEnvWithDefault("TNT_DB_NAME", "tnt"),
		DBUser:              getEnvWithDefault("TNT_DB_USER", "postgres"),
		DBPassword:          getEnvWithDefault("TNT_DB_PASS", ""),
		DBSSLMode:           getEnvWithDefault("TNT_DB_SSL_MODE", "disable"),
		SendgridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:           getEnvWithDefault("EMAIL_FROM", "test@example.com"),
		EmailName:           getEnvWithDefault("EMAIL_NAME", "Triggers & Triumphs"),
	}, nil
}

// HasDatabase reports whether a postgres connection should be attempted.
// Without credentials the app falls back to in-memory stores.
func (c Config) HasDatabase() bool {
	return c.DBPassword != ""
}

// randomSecret returns a hex-encoded 32-byte key for signing sessions when
// the operator did not provide one. Sessions signed with it die with the
// process.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func getEnvWithDefault(name string, def string) string {
	res, found := os.LookupEnv(name)
	if !found {
		return def
	}
	return res
}
