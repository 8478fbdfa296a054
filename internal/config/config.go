package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type EscrowConfig struct {
	Env          string `yaml:"env" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	OrderDB      `yaml:"order_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka_service"`
	PixGateway   `yaml:"pix_gateway"`
	Escrow       `yaml:"escrow"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level" env-default:"info"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"order-events"`
}

type PixGateway struct {
	BaseURL     string        `yaml:"base_url" env-default:"https://api.woovi.com"`
	AppID       string        `yaml:"app_id" env:"PIX_APP_ID"`
	CallTimeout time.Duration `yaml:"call_timeout" env-default:"5s"`
}

type Escrow struct {
	ExchangeRate   float64            `yaml:"exchange_rate" env-default:"0.82"`
	FeeRate        float64            `yaml:"fee_rate" env-default:"0.05"`
	FeeOverrides   map[string]float64 `yaml:"fee_overrides"`
	PaymentWindow  time.Duration      `yaml:"payment_window" env-default:"10m"`
	PollInterval   time.Duration      `yaml:"poll_interval" env-default:"1s"`
	ChargeAttempts int                `yaml:"charge_attempts" env-default:"3"`
	SweepInterval  time.Duration      `yaml:"sweep_interval" env-default:"5s"`
}

func MustLoad() *EscrowConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ESCROW_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ESCROW_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg EscrowConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
