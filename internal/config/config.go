package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/nurpe/estimation-engine/internal/engine"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// EngineConfig holds the calculation tunables. Values are kept as strings so
// decimal settings never pass through a float.
type EngineConfig struct {
	MarginWarningPct       string
	EffortOverridePct      string
	WorkingDaysPerMonth    int
	SprintDurationWeeks    int
	HoursPerDay            int
	UtilizationPct         string
	TaskContingencyJunior  string
	TaskContingencySenior  string
	TaskContingencyDefault string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Engine      EngineConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: v.GetStringSlice("HTTP_CORS_ORIGINS"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Engine: EngineConfig{
			MarginWarningPct:       v.GetString("ENGINE_MARGIN_WARNING_PCT"),
			EffortOverridePct:      v.GetString("ENGINE_EFFORT_OVERRIDE_PCT"),
			WorkingDaysPerMonth:    v.GetInt("ENGINE_WORKING_DAYS_PER_MONTH"),
			SprintDurationWeeks:    v.GetInt("ENGINE_SPRINT_DURATION_WEEKS"),
			HoursPerDay:            v.GetInt("ENGINE_HOURS_PER_DAY"),
			UtilizationPct:         v.GetString("ENGINE_DEFAULT_UTILIZATION_PCT"),
			TaskContingencyJunior:  v.GetString("ENGINE_TASK_CONTINGENCY_JUNIOR"),
			TaskContingencySenior:  v.GetString("ENGINE_TASK_CONTINGENCY_SENIOR"),
			TaskContingencyDefault: v.GetString("ENGINE_TASK_CONTINGENCY_DEFAULT"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7092
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if _, err := cfg.EngineDefaults(); err != nil {
		return err
	}
	return nil
}

// EngineDefaults builds the calculation tunables, falling back to the
// standard values wherever a setting is unset.
func (c *Config) EngineDefaults() (engine.Defaults, error) {
	d := engine.StandardDefaults()
	if c.Engine.WorkingDaysPerMonth > 0 {
		d.WorkingDaysPerMonth = c.Engine.WorkingDaysPerMonth
	}
	if c.Engine.SprintDurationWeeks > 0 {
		d.SprintDurationWeeks = c.Engine.SprintDurationWeeks
	}
	if c.Engine.HoursPerDay > 0 {
		d.HoursPerDay = c.Engine.HoursPerDay
	}
	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
		name string
	}{
		{c.Engine.MarginWarningPct, &d.MarginWarningPct, "ENGINE_MARGIN_WARNING_PCT"},
		{c.Engine.EffortOverridePct, &d.EffortOverridePct, "ENGINE_EFFORT_OVERRIDE_PCT"},
		{c.Engine.UtilizationPct, &d.UtilizationPct, "ENGINE_DEFAULT_UTILIZATION_PCT"},
		{c.Engine.TaskContingencyJunior, &d.TaskContingencyJunior, "ENGINE_TASK_CONTINGENCY_JUNIOR"},
		{c.Engine.TaskContingencySenior, &d.TaskContingencySenior, "ENGINE_TASK_CONTINGENCY_SENIOR"},
		{c.Engine.TaskContingencyDefault, &d.TaskContingencyDefault, "ENGINE_TASK_CONTINGENCY_DEFAULT"},
	} {
		if field.raw == "" {
			continue
		}
		parsed, err := decimal.NewFromString(field.raw)
		if err != nil {
			return engine.Defaults{}, fmt.Errorf("%s: %w", field.name, err)
		}
		*field.dest = parsed
	}
	return d, nil
}
