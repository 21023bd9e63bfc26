package config

import (
	"fmt"
	"strings"
	"time"

	"Huddle/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Auth      Auth
	RedisURL  string
	LogLevel  string
	Messaging Messaging
}

type Server struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type Database struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	TimeZone string
}

type Auth struct {
	Provider                string
	JWTSecret               string
	FirebaseCredentialsPath string
}

type Messaging struct {
	MaxMessageLength      int
	RateLimitMessages     int
	RateLimitWindow       time.Duration
	SequenceMaxAttempts   int
	SequenceBackoff       time.Duration
	TypingThrottle        time.Duration
	TypingExpiry          time.Duration
	EventTimeout          time.Duration
	SocketEventsPerSecond int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "huddle")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("AUTH_PROVIDER", "jwt")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_MESSAGE_LENGTH", 10000)
	v.SetDefault("RATE_LIMIT_MESSAGES", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("SEQUENCE_MAX_ATTEMPTS", 3)
	v.SetDefault("SEQUENCE_BACKOFF", "15ms")
	v.SetDefault("TYPING_THROTTLE", "3s")
	v.SetDefault("TYPING_EXPIRY", "5s")
	v.SetDefault("EVENT_TIMEOUT", "10s")
	v.SetDefault("SOCKET_EVENTS_PER_SECOND", 20)
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using environment variables only")
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Server: Server{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: Database{
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Auth: Auth{
			Provider:                strings.ToLower(v.GetString("AUTH_PROVIDER")),
			JWTSecret:               v.GetString("JWT_SECRET"),
			FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		},
		RedisURL: v.GetString("REDIS_URL"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Messaging: Messaging{
			MaxMessageLength:      v.GetInt("MAX_MESSAGE_LENGTH"),
			RateLimitMessages:     v.GetInt("RATE_LIMIT_MESSAGES"),
			RateLimitWindow:       v.GetDuration("RATE_LIMIT_WINDOW"),
			SequenceMaxAttempts:   v.GetInt("SEQUENCE_MAX_ATTEMPTS"),
			SequenceBackoff:       v.GetDuration("SEQUENCE_BACKOFF"),
			TypingThrottle:        v.GetDuration("TYPING_THROTTLE"),
			TypingExpiry:          v.GetDuration("TYPING_EXPIRY"),
			EventTimeout:          v.GetDuration("EVENT_TIMEOUT"),
			SocketEventsPerSecond: v.GetInt("SOCKET_EVENTS_PER_SECOND"),
		},
	}

	if c.Database.SSLMode == "" {
		if strings.Contains(c.Database.Host, "render.com") {
			c.Database.SSLMode = "require"
		} else {
			c.Database.SSLMode = "disable"
		}
	}

	switch c.Auth.Provider {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case "firebase":
		if c.Auth.FirebaseCredentialsPath == "" {
			return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	if c.Messaging.MaxMessageLength <= 0 {
		return nil, fmt.Errorf("MAX_MESSAGE_LENGTH must be positive")
	}
	return c, nil
}

// DSN is the key=value postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
