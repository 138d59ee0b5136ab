package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server settings, populated from the environment with
// flag overrides applied in main.
type Config struct {
	Addr          string `env:"ARENA_ADDR" envDefault:":8080"`
	DBPath        string `env:"ARENA_DB" envDefault:"arena.db"`
	PublicURL     string `env:"ARENA_PUBLIC_URL" envDefault:"http://localhost:8080"`
	MaxConns      int    `env:"ARENA_MAX_CONNS" envDefault:"1000"`
	MaxConnsPerIP int    `env:"ARENA_MAX_CONNS_PER_IP" envDefault:"5"`
	AllowAnyHost  bool   `env:"ARENA_ALLOW_ANY_HOST" envDefault:"false"`
}

// LoadConfig reads settings from the environment
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
