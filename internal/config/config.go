// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Optional collaborators (broker, mailer)
// are disabled when their variables are empty.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	TheatersFile string // optional YAML theater registry override
	Timezone     string // default zone for date expressions (optional, falls back to local)
	UpdateCron   string // cron expression for scheduled update passes; empty disables them
	UpdateDates  string // date expression the scheduled passes cover

	AmqpURL string // RabbitMQ URL; empty disables deletion events

	MailtrapToken  string // sending API token; empty disables email
	MailSender     string // sender address
	MailSenderName string // sender display name
	MailReceiver   string // receiver address
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		TheatersFile: os.Getenv("THEATERS_FILE"),
		Timezone:     os.Getenv("TIMEZONE"),
		UpdateCron:   getenv("UPDATE_CRON", "0 6 * * *"),
		UpdateDates:  getenv("UPDATE_DATES", "next movie week"),

		AmqpURL: firstEnv("RABBITMQ_URL", "AMQP_URL"),

		MailtrapToken:  os.Getenv("MAILTRAP_API_TOKEN"),
		MailSender:     os.Getenv("MAILTRAP_SENDER"),
		MailSenderName: os.Getenv("MAILTRAP_SENDER_NAME"),
		MailReceiver:   os.Getenv("MAILTRAP_RECEIVER"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
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

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
