package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "FLORAMAYOR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FLORAMAYOR_DB_DSN"
	EnvDBHost = "FLORAMAYOR_DB_HOST"
	EnvDBUser = "FLORAMAYOR_DB_USER"
	EnvDBName = "FLORAMAYOR_DB_NAME"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Consolidation ConsolidationConfig
	FeatureFlags  FeatureFlagsConfig
	Password      PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string        `envconfig:"FLORAMAYOR_APP_ENV" required:"true"`
	Port           string        `envconfig:"FLORAMAYOR_APP_PORT" required:"true"`
	LogLevel       string        `envconfig:"FLORAMAYOR_LOG_LEVEL" default:"info"`
	LogWarnStack   bool          `envconfig:"FLORAMAYOR_LOG_WARN_STACK" default:"false"`
	RequestTimeout time.Duration `envconfig:"FLORAMAYOR_REQUEST_TIMEOUT" default:"30s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLORAMAYOR_DB_DSN"`
	Driver string `envconfig:"FLORAMAYOR_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FLORAMAYOR_DB_HOST"`
	Port     int    `envconfig:"FLORAMAYOR_DB_PORT" default:"5432"`
	User     string `envconfig:"FLORAMAYOR_DB_USER"`
	Password string `envconfig:"FLORAMAYOR_DB_PASSWORD"`
	Name     string `envconfig:"FLORAMAYOR_DB_NAME"`
	SSLMode  string `envconfig:"FLORAMAYOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLORAMAYOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLORAMAYOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLORAMAYOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLORAMAYOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLORAMAYOR_REDIS_URL"`
	Address      string        `envconfig:"FLORAMAYOR_REDIS_ADDR"`
	Password     string        `envconfig:"FLORAMAYOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLORAMAYOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLORAMAYOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLORAMAYOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLORAMAYOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLORAMAYOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLORAMAYOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ConsolidationConfig tunes the scheduled supplier consolidation run.
type ConsolidationConfig struct {
	Interval time.Duration `envconfig:"FLORAMAYOR_CONSOLIDATION_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"FLORAMAYOR_CONSOLIDATION_LOCK_KEY" default:"floramayor:cron:consolidation"`
	LockTTL  time.Duration `envconfig:"FLORAMAYOR_CONSOLIDATION_LOCK_TTL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLORAMAYOR_AUTO_MIGRATE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FLORAMAYOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FLORAMAYOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FLORAMAYOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FLORAMAYOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FLORAMAYOR_ARGON_KEY_LEN" default:"32"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range fallbackDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
