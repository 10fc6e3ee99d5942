// Package config provides configuration management for the Angel5000 simulator.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Output     OutputConfig     `mapstructure:"output" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SimulationConfig represents the Monte Carlo model and batch parameters
type SimulationConfig struct {
	UniverseSize       int     `mapstructure:"universe_size" validate:"required,gt=0"`
	Runs               int     `mapstructure:"runs" validate:"required,gt=0"`
	PortfolioSizes     []int   `mapstructure:"portfolio_sizes" validate:"required,portfolio_sizes"`
	Years              float64 `mapstructure:"years" validate:"required,gt=0"`
	Alpha              float64 `mapstructure:"alpha" validate:"required,gt=0"`
	FailureProbability float64 `mapstructure:"failure_probability" validate:"gte=0,lte=1"`
	FailureMaxMultiple float64 `mapstructure:"failure_max_multiple" validate:"gte=0"`
	ParetoScale        float64 `mapstructure:"pareto_scale" validate:"required,gt=0"`
	MinMultiple        float64 `mapstructure:"min_multiple" validate:"gte=0"`
	MaxMultiple        float64 `mapstructure:"max_multiple" validate:"required,gt=0"`
	Seed               int64   `mapstructure:"seed"`
	Workers            int     `mapstructure:"workers" validate:"gte=0"`
	ProgressInterval   int     `mapstructure:"progress_interval" validate:"gte=0"`
}

// DatabaseConfig represents the optional PostgreSQL results store
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	BatchSize      int    `mapstructure:"batch_size" validate:"gte=0"`
}

// OutputConfig represents local export settings
type OutputConfig struct {
	Dir         string `mapstructure:"dir" validate:"required"`
	JSONEnabled bool   `mapstructure:"json_enabled"`
	CSVEnabled  bool   `mapstructure:"csv_enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents recurring batch scheduling
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
