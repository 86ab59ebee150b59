package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeConfigEnvWins(t *testing.T) {
	envConfig := &Config{
		RunAddress:  "0.0.0.0:9090",
		DatabaseDSN: "postgres://env",
		LockTimeout: time.Second,
	}
	flagsConfig := &Config{
		RunAddress:    "localhost:8080",
		DatabaseDSN:   "postgres://flags",
		MigrationsDir: "internal/db/migrations",
		LockTimeout:   3 * time.Second,
	}

	merged := mergeConfig(envConfig, flagsConfig)

	assert.Equal(t, "0.0.0.0:9090", merged.RunAddress)
	assert.Equal(t, "postgres://env", merged.DatabaseDSN)
	assert.Equal(t, time.Second, merged.LockTimeout)
	// незаполненные в env значения берутся из флагов
	assert.Equal(t, "internal/db/migrations", merged.MigrationsDir)
}

func TestMergeConfigFlagFallback(t *testing.T) {
	flagsConfig := &Config{
		RunAddress:  "localhost:8080",
		LockTimeout: 3 * time.Second,
	}

	merged := mergeConfig(new(Config), flagsConfig)

	assert.Equal(t, "localhost:8080", merged.RunAddress)
	assert.Equal(t, 3*time.Second, merged.LockTimeout)
	assert.Empty(t, merged.KafkaBroker)
}
