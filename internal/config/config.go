package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env  string `mapstructure:"env"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret      string        `mapstructure:"jwt_secret"`
		TokenLifespan  time.Duration `mapstructure:"token_lifespan"`
		VerifyTokenTTL time.Duration `mapstructure:"verify_token_ttl"`
		VerifyURLBase  string        `mapstructure:"verify_url_base"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Completion struct {
		WebhookURL   string        `mapstructure:"webhook_url"`
		ServiceToken string        `mapstructure:"service_token"`
		RetryBackoff time.Duration `mapstructure:"retry_backoff"`
		MaxAttempts  int           `mapstructure:"max_attempts"`
	} `mapstructure:"completion"`
	Mailer struct {
		APIKey    string `mapstructure:"api_key"`
		BaseURL   string `mapstructure:"base_url"`
		FromEmail string `mapstructure:"from_email"`
		FromName  string `mapstructure:"from_name"`
	} `mapstructure:"mailer"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

func LoadConfig(path string) (cfg Config, err error) {

	err = godotenv.Load(filepath.Join(path, ".env"))
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	viper.BindEnv("auth.verify_token_ttl", "VERIFY_TOKEN_TTL")
	viper.BindEnv("auth.verify_url_base", "VERIFY_URL_BASE")

	viper.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	viper.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	viper.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	viper.BindEnv("completion.webhook_url", "COMPLETION_WEBHOOK_URL")
	viper.BindEnv("completion.service_token", "COMPLETION_SERVICE_TOKEN")
	viper.BindEnv("completion.retry_backoff", "COMPLETION_RETRY_BACKOFF")
	viper.BindEnv("completion.max_attempts", "COMPLETION_MAX_ATTEMPTS")

	viper.BindEnv("mailer.api_key", "MAILER_API_KEY")
	viper.BindEnv("mailer.base_url", "MAILER_BASE_URL")
	viper.BindEnv("mailer.from_email", "MAILER_FROM_EMAIL")
	viper.BindEnv("mailer.from_name", "MAILER_FROM_NAME")

	viper.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("auth.token_lifespan", "24h")
	viper.SetDefault("auth.verify_token_ttl", "24h")
	viper.SetDefault("completion.retry_backoff", "5s")
	viper.SetDefault("completion.max_attempts", 10)

	err = viper.Unmarshal(&cfg)
	return
}
