package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/spf13/viper"
)

var (
	ServiceName    = "symbol-store"
	ServiceVersion = ""
)

var (
	Env *EnvConfig
)

const EnvPrefix = "SYMBOLS"

type EnvConfig struct {
	Env                     string                    `mapstructure:"env"`
	Log                     LogConfig                 `mapstructure:"log"`
	GracefulShutdownTimeout time.Duration             `mapstructure:"graceful_shutdown_timeout"`
	Storage                 StorageConfig             `mapstructure:"storage"`
	Source                  SourceConfig              `mapstructure:"source"`
	Exchanges               []string                  `mapstructure:"exchanges"`
	HTTP                    HTTPConfig                `mapstructure:"http"`
	Database                map[string]DatabaseConfig `mapstructure:"database"`
	Redis                   RedisConfig               `mapstructure:"redis"`
	NatsJetstream           NatsJetstreamConfig       `mapstructure:"nats_jetstream"`
}

type LogConfig struct {
	GlobalLevel     string `mapstructure:"global_level"`
	File            string `mapstructure:"file"`
	MaxSizeMB       int    `mapstructure:"max_size_mb"`
	BackupCount     int    `mapstructure:"backup_count"`
	FileLevel       string `mapstructure:"file_level"`
	ConsoleLevel    string `mapstructure:"console_level"`
	UseTimeRotation bool   `mapstructure:"use_time_rotation"`
	Format          string `mapstructure:"format"`
	Folder          string `mapstructure:"folder"`
	ShowCaller      bool   `mapstructure:"show_caller"`
}

type StorageConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	RedisMirror bool   `mapstructure:"redis_mirror"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type SourceConfig struct {
	ListingURLTemplate string        `mapstructure:"listing_url_template"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	CompanyTableURL    string        `mapstructure:"company_table_url"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	ReconnectFactor float64       `mapstructure:"reconnect_factor"`
	MinJitter       time.Duration `mapstructure:"min_jitter"`
	MaxJitter       time.Duration `mapstructure:"max_jitter"`
	MaxRetry        int           `mapstructure:"max_retry"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxActiveConns  int           `mapstructure:"max_active_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	CacheDSN string `mapstructure:"cache_dsn"`
}

type NatsJetstreamConfig struct {
	URL             string        `mapstructure:"url"`
	MaxRetries      int           `mapstructure:"max_retries"`
	ReconnectFactor float64       `mapstructure:"reconnect_factor"`
	MinJitter       time.Duration `mapstructure:"min_jitter"`
	MaxJitter       time.Duration `mapstructure:"max_jitter"`
}

// legacyEnv maps config keys to the unprefixed variable names older deployments set.
var legacyEnv = map[string]string{
	"log.global_level":      "LOG_GLOBAL_LEVEL",
	"log.file":              "LOG_FILE",
	"log.max_size_mb":       "LOG_MAX_SIZE_MB",
	"log.backup_count":      "LOG_BACKUP_COUNT",
	"log.file_level":        "LOG_FILE_LEVEL",
	"log.console_level":     "LOG_CONSOLE_LEVEL",
	"log.use_time_rotation": "USE_TIME_ROTATION",
	"log.format":            "LOG_FORMAT",
	"log.folder":            "LOG_FOLDER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", constant.DevelopmentEnvironment)
	v.SetDefault("graceful_shutdown_timeout", 10*time.Second)

	v.SetDefault("log.global_level", "debug")
	v.SetDefault("log.file", "app.log")
	v.SetDefault("log.max_size_mb", 2)
	v.SetDefault("log.backup_count", 5)
	v.SetDefault("log.file_level", "")
	v.SetDefault("log.console_level", "info")
	v.SetDefault("log.use_time_rotation", false)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.folder", "logs")
	v.SetDefault("log.show_caller", false)

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.redis_mirror", false)
	v.SetDefault("storage.redis_prefix", "symbol-store")

	v.SetDefault("source.listing_url_template", constant.DefaultListingURLTemplate)
	v.SetDefault("source.user_agent", constant.DefaultUserAgent)
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.company_table_url", constant.DefaultCompanyTableURL)

	v.SetDefault("exchanges", []string{"nasdaq", "nyse", "amex"})
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.cache_dsn", "")
	v.SetDefault("nats_jetstream.url", "")
	v.SetDefault("database.symbols.dsn", "")
}

// LoadConfig resolves the configuration with the precedence
// overrides > environment > config file > defaults and stores it in Env.
// A missing default config file is not an error; a missing explicit one is
// created with the default values.
func LoadConfig(configPath string, overrides map[string]any) (*EnvConfig, error) {
	viper.Reset()
	v := viper.GetViper()

	setDefaults(v)

	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	} else {
		ext := strings.ToLower(filepath.Ext(configPath))
		if ext == ".yml" || ext == ".yaml" || ext == ".json" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName(filepath.Base(configPath))
			v.SetConfigType("yml")
			configDir := filepath.Dir(configPath)
			if configDir == "." || configDir == "" {
				v.AddConfigPath(".")
			} else {
				v.AddConfigPath(configDir)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), name); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", name, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case errors.Is(err, fs.ErrNotExist) && configPath != "":
			if err := WriteDefaultConfig(configPath); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg EnvConfig
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if strings.TrimSpace(cfg.Log.FileLevel) == "" {
		cfg.Log.FileLevel = cfg.Log.GlobalLevel
	}
	if strings.TrimSpace(cfg.Log.ConsoleLevel) == "" {
		cfg.Log.ConsoleLevel = cfg.Log.GlobalLevel
	}

	Env = &cfg
	return &cfg, nil
}

// WriteDefaultConfig writes the built-in defaults to path without touching an
// existing file. Environment and flag values never reach the file.
func WriteDefaultConfig(path string) error {
	v := viper.New()
	setDefaults(v)

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if filepath.Ext(path) == "" {
		path += ".yml"
	}

	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}
