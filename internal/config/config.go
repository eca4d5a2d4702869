package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	MongoURI       string `mapstructure:"MONGODB_CONNECTION_STRING"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	CollectionName string `mapstructure:"COLLECTION_NAME"`

	ADAAPIURL string `mapstructure:"ADA_API_URL"`
	ADAAPIKey string `mapstructure:"ADA_API_KEY"`
	WASender  string `mapstructure:"WA_SENDER"`

	SMTPServer    string `mapstructure:"SMTP_SERVER"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	EmailAddress  string `mapstructure:"EMAIL_ADDRESS"`
	EmailPassword string `mapstructure:"EMAIL_PASSWORD"`

	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	GoogleTokenFile       string `mapstructure:"GOOGLE_TOKEN_FILE"`
	MeetingTimezone       string `mapstructure:"MEETING_TIMEZONE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DATABASE_NAME", "patient360")
	v.SetDefault("COLLECTION_NAME", "patients")
	v.SetDefault("WA_SENDER", "15557091773")
	v.SetDefault("SMTP_SERVER", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	v.SetDefault("GOOGLE_TOKEN_FILE", "token.json")
	v.SetDefault("MEETING_TIMEZONE", "Asia/Kolkata")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MONGODB_CONNECTION_STRING")
	v.BindEnv("DATABASE_NAME")
	v.BindEnv("COLLECTION_NAME")
	v.BindEnv("ADA_API_URL")
	v.BindEnv("ADA_API_KEY")
	v.BindEnv("WA_SENDER")
	v.BindEnv("SMTP_SERVER")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("EMAIL_ADDRESS")
	v.BindEnv("EMAIL_PASSWORD")
	v.BindEnv("GOOGLE_CREDENTIALS_FILE")
	v.BindEnv("GOOGLE_TOKEN_FILE")
	v.BindEnv("MEETING_TIMEZONE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_CONNECTION_STRING is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that collaborator credentials needed at runtime are present.
// The server refuses to start without the messaging provider endpoint and key;
// mail and calendar credentials are checked lazily by their clients so the
// plan endpoints still work when only WhatsApp is configured.
func (c *Config) Validate() error {
	if c.ADAAPIURL == "" {
		return fmt.Errorf("ADA_API_URL is required")
	}
	if c.ADAAPIKey == "" {
		return fmt.Errorf("ADA_API_KEY is required")
	}
	return nil
}
