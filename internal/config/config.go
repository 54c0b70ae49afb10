// Package config carga la configuración del API.
// Precedencia: defaults < archivo YAML (--config) < .env < variables de entorno.
package config

import (
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// Solo para componer el DSN de postgres cuando no viene DB_DSN.
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	InitSchema      bool          `mapstructure:"init_schema"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Defaults() Config {
	return Config{
		App: AppConfig{Name: "vet-clinic-records"},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			DSN:             "vetclinic.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			QueryTimeout:    5 * time.Second,
			InitSchema:      true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// env sin prefijo que se respetan por compatibilidad con el despliegue existente
var envAliases = map[string][]string{
	"http.port":            {"PORT"},
	"http.cors_origins":    {"CORS_ORIGINS"},
	"database.driver":      {"DB_DRIVER"},
	"database.dsn":         {"DB_DSN", "DATABASE_URL"},
	"database.host":        {"DB_HOST"},
	"database.port":        {"DB_PORT"},
	"database.name":        {"DB_NAME"},
	"database.user":        {"DB_USER"},
	"database.password":    {"DB_PASSWORD"},
	"database.init_schema": {"DB_INIT_SCHEMA"},
	"log.level":            {"LOG_LEVEL"},
	"log.format":           {"LOG_FORMAT"},
	"app.name":             {"APP_NAME"},
}

// Load lee la configuración. path vacío = sin archivo (solo defaults + entorno).
// Un .env en el directorio actual se carga si existe; nunca pisa variables ya definidas.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Annotate(err, "loading .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("VETCLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.port", "")
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.cors_origins", d.HTTP.CORSOrigins)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime)
	v.SetDefault("database.query_timeout", d.Database.QueryTimeout)
	v.SetDefault("database.init_schema", d.Database.InitSchema)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	for key, envs := range envAliases {
		prefixed := "VETCLINIC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, envs...)...); err != nil {
			return Config{}, errors.Annotatef(err, "binding env for %s", key)
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Annotatef(err, "reading config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Annotate(err, "decoding config")
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	// PORT pisa el addr, igual que el main original
	if p := strings.TrimSpace(c.HTTP.Port); p != "" {
		c.HTTP.Addr = ":" + p
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "pgx" {
		c.Database.Driver = DriverPostgres
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		switch {
		case c.Database.Driver == DriverPostgres && c.Database.Host != "":
			c.Database.DSN = c.Database.postgresURL()
		case c.Database.Driver == DriverSQLite:
			c.Database.DSN = Defaults().Database.DSN
		}
	}

	origins := make([]string, 0, len(c.HTTP.CORSOrigins))
	for _, o := range c.HTTP.CORSOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.HTTP.CORSOrigins = origins
}

func (d DatabaseConfig) postgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return errors.NotValidf("database.driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.NotValidf("empty database.dsn")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.NotValidf("database.max_open_conns %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return errors.NotValidf("database.max_idle_conns %d", c.Database.MaxIdleConns)
	}
	if c.Database.QueryTimeout <= 0 {
		return errors.NotValidf("database.query_timeout %s", c.Database.QueryTimeout)
	}
	if c.Database.ConnMaxLifetime <= 0 {
		return errors.NotValidf("database.conn_max_lifetime %s", c.Database.ConnMaxLifetime)
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return errors.NotValidf("http timeouts")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.NotValidf("empty http.addr")
	}
	return nil
}
