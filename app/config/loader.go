package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error; a missing explicit file is.
const DefaultPath = "config.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.read_header_timeout", "5s")

	v.SetDefault("storage.driver", "badger")
	v.SetDefault("storage.badger_path", "data/badger")
	v.SetDefault("storage.sqlite_path", "data/postboard.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.backup_dir", "data/backups")

	v.SetDefault("listing.page_size", 10)

	// logger keys need a registered default for APP_LOGGER_* to apply;
	// empty values are filled by logger.Config.SetDefaults.
	for _, key := range []string{"level", "format", "output_target", "time_field",
		"time_format", "service_name", "service_version", "env"} {
		v.SetDefault("logger."+key, "")
	}
	v.SetDefault("logger.with_caller", false)
}

// Load reads path (YAML) and APP_* environment overrides, e.g.
// APP_STORAGE_DRIVER=sqlite.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logger.SetDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
