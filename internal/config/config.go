package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once in main and passed by reference; nothing mutates it
// after startup.
type Config struct {
	ServiceName string
	ServerPort  int

	DatabaseURL string

	JWTSecret             []byte
	AccessTokenTTLMinutes int
	RefreshTokenTTLDays   int
	OTPTTLMinutes         int
	OTPResendCooldownSecs int
	OTPMaxPerWindow       int
	PasswordMinLength     int

	KafkaBrokers []string
	EmailTopic   string

	ESURL        string
	ESUser       string
	ESPassword   string
	ESAuditIndex string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment: %v", err)
	}

	return &Config{
		ServiceName: envDefault("SERVICE_NAME", "accessdeck"),
		ServerPort:  envIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:             []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTLMinutes: envIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 15),
		RefreshTokenTTLDays:   envIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		OTPTTLMinutes:         envIntDefault("OTP_EXPIRE_MINUTES", 10),
		OTPResendCooldownSecs: envIntDefault("OTP_RESEND_COOLDOWN_SECONDS", 60),
		OTPMaxPerWindow:       envIntDefault("OTP_MAX_PER_WINDOW", 3),
		PasswordMinLength:     envIntDefault("PASSWORD_MIN_LENGTH", 8),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		EmailTopic:   envDefault("EMAIL_TOPIC", "email_events"),

		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESAuditIndex: envDefault("ES_AUDIT_INDEX", "auth_audit"),

		LogLevel: envDefault("LOG_LEVEL", "info"),
	}
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

func (c *Config) OTPResendCooldown() time.Duration {
	return time.Duration(c.OTPResendCooldownSecs) * time.Second
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
