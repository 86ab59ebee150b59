package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseDSN      string        `env:"DATABASE_URI"`
	MigrationsDir    string        `env:"MIGRATIONS_DIR"`
	JWTServiceSecret string        `env:"JWT_SERVICE_SECRET"`
	KafkaBroker      string        `env:"KAFKA_BROKER"`
	LockTimeout      time.Duration `env:"LOCK_TIMEOUT"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTServiceSecret == "" {
		return nil, errors.New("service JWT secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTServiceSecret, "s", "", "Service-to-service JWT secret")
	flag.StringVar(&flagConfig.KafkaBroker, "k", "", "Kafka broker address; empty disables balance events")
	flag.DurationVar(&flagConfig.LockTimeout, "l", 3*time.Second, "Balance lock wait bound") //nolint:mnd

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	lockTimeout := envConfig.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = flagsConfig.LockTimeout
	}

	return &Config{
		RunAddress:       defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:      defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:    defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTServiceSecret: defaultIfBlank(envConfig.JWTServiceSecret, flagsConfig.JWTServiceSecret),
		KafkaBroker:      defaultIfBlank(envConfig.KafkaBroker, flagsConfig.KafkaBroker),
		LockTimeout:      lockTimeout,
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
