package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DateLayout is the layout used for every date-valued configuration key.
const DateLayout = "2006-01-02"

// Supported database drivers
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverDuckDB    = "duckdb"
	DriverProton    = "proton"
)

// ErrInvalidConfig is returned by Validate when the configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Output    OutputConfig    `mapstructure:"output"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Query     QueryConfig     `mapstructure:"query"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DatabaseConfig holds the connection settings for the process store
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Server       string `mapstructure:"server"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Path         string `mapstructure:"path"`
	Table        string `mapstructure:"table"`
	PingAttempts int    `mapstructure:"pingAttempts"`
}

// OutputConfig controls where and how large charts are rendered. Sizes are in inches.
type OutputConfig struct {
	Dir    string  `mapstructure:"dir"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// GeneratorConfig controls the synthetic dataset. A zero seed means a fresh seed per run.
type GeneratorConfig struct {
	Length int    `mapstructure:"length"`
	Start  string `mapstructure:"start"`
	Seed   int64  `mapstructure:"seed"`
}

// QueryConfig is the half-open date range read back from the store.
type QueryConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// ServerConfig holds the report viewer configuration
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	AllowedOrigins  string `mapstructure:"allowedOrigins"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
}

// legacyEnv lists the SQL Server variable names accepted alongside the prefixed ones.
// The PROCESSVIZ_ prefixed name always wins over the legacy names.
var legacyEnv = map[string][]string{
	"database.server":   {"MSSQL_SERVER"},
	"database.name":     {"MSSQL_DB"},
	"database.user":     {"MSSQL_UID", "UID"},
	"database.password": {"MSSQL_PWD", "PWD"},
}

// LoadConfig loads the application configuration from a .env file, the
// environment and an optional config file.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Error reading .env file: %v", err)
	}

	v := viper.New()

	// Unmarshal only sees keys viper already knows, so every key needs a default
	// for its PROCESSVIZ_ variable to apply.
	v.SetDefault("database.driver", DriverSQLServer)
	v.SetDefault("database.server", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.path", "")
	v.SetDefault("database.table", "Process")
	v.SetDefault("database.pingAttempts", 1)
	v.SetDefault("output.dir", "visualizations")
	v.SetDefault("output.width", 8.0)
	v.SetDefault("output.height", 5.0)
	v.SetDefault("generator.length", 2000)
	v.SetDefault("generator.start", "2017-01-01")
	v.SetDefault("generator.seed", 0)
	v.SetDefault("query.from", "2018-01-01")
	v.SetDefault("query.to", "2019-01-01")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowedOrigins", "*")
	v.SetDefault("server.shutdownTimeout", 10)

	v.SetEnvPrefix("PROCESSVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := "PROCESSVIZ_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, prefixed}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that every field required by the selected driver is set.
// All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	db := c.Database
	switch db.Driver {
	case DriverSQLServer, DriverPostgres, DriverProton:
		required := []struct {
			key, env, value string
		}{
			{"database.server", "MSSQL_SERVER", db.Server},
			{"database.name", "MSSQL_DB", db.Name},
			{"database.user", "MSSQL_UID", db.User},
			{"database.password", "MSSQL_PWD", db.Password},
		}
		var missing []string
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				missing = append(missing, fmt.Sprintf("%s (%s)", r.key, r.env))
			}
		}
		if len(missing) > 0 {
			problems = append(problems, "missing required configuration: "+strings.Join(missing, ", "))
		}
	case DriverSQLite, DriverDuckDB:
		if db.Path == "" {
			problems = append(problems, "missing required configuration: database.path (PROCESSVIZ_DATABASE_PATH)")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported database driver %q", db.Driver))
	}

	if db.Table == "" {
		problems = append(problems, "database.table must not be empty")
	}
	if c.Output.Dir == "" {
		problems = append(problems, "output.dir must not be empty")
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		problems = append(problems, "output.width and output.height must be positive")
	}
	if c.Generator.Length <= 0 {
		problems = append(problems, "generator.length must be positive")
	}
	if _, err := c.Generator.StartDate(); err != nil {
		problems = append(problems, err.Error())
	}
	if from, to, err := c.Query.Range(); err != nil {
		problems = append(problems, err.Error())
	} else if !from.Before(to) {
		problems = append(problems, fmt.Sprintf("query.from (%s) must be before query.to (%s)", c.Query.From, c.Query.To))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// StartDate parses generator.start as a UTC date.
func (g GeneratorConfig) StartDate() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, g.Start, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("generator.start %q is not a YYYY-MM-DD date", g.Start)
	}
	return t, nil
}

// Range parses the query bounds as UTC dates.
func (q QueryConfig) Range() (from, to time.Time, err error) {
	from, err = time.ParseInLocation(DateLayout, q.From, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query.from %q is not a YYYY-MM-DD date", q.From)
	}
	to, err = time.ParseInLocation(DateLayout, q.To, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query.to %q is not a YYYY-MM-DD date", q.To)
	}
	return from, to, nil
}

// IsFileBased reports whether the driver stores data in a local file.
func (d DatabaseConfig) IsFileBased() bool {
	return d.Driver == DriverSQLite || d.Driver == DriverDuckDB
}

// AllowedOriginList splits the comma separated allowedOrigins setting.
func (s ServerConfig) AllowedOriginList() []string {
	var origins []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
