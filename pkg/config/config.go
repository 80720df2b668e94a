package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Mongo           MongoConfig
	SMTP            SMTPConfig
	Recommendations RecommendationsConfig
	CORS            CORSConfig
	Log             LogConfig
}

type MongoConfig struct {
	URI       string
	Database  string
	OpTimeout time.Duration
}

// SMTPConfig configures the outbound enrollment/welcome mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// RecommendationsConfig points at the external course recommendation service.
type RecommendationsConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Mongo = MongoConfig{
		URI:       v.GetString("MONGO_URI"),
		Database:  v.GetString("MONGO_DATABASE"),
		OpTimeout: parseDuration(v.GetString("MONGO_OP_TIMEOUT"), 5*time.Second),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		Timeout:  parseDuration(v.GetString("SMTP_TIMEOUT"), 10*time.Second),
	}

	cfg.Recommendations = RecommendationsConfig{
		BaseURL: v.GetString("RECOMMENDATIONS_BASE_URL"),
		Timeout: parseDuration(v.GetString("RECOMMENDATIONS_TIMEOUT"), 3*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "learnhub")
	v.SetDefault("MONGO_OP_TIMEOUT", "5s")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_TIMEOUT", "10s")

	v.SetDefault("RECOMMENDATIONS_BASE_URL", "https://course-recommendations-api.vercel.app")
	v.SetDefault("RECOMMENDATIONS_TIMEOUT", "3s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
