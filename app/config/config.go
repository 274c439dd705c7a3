package config

import (
	"time"

	"postboard/app/logger"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Listing ListingConfig `mapstructure:"listing"`
	Logger  logger.Config `mapstructure:"logger"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
}

// StorageConfig selects the backing store. Only the path/DSN matching
// Driver is used.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=badger sqlite postgres"`
	BadgerPath  string `mapstructure:"badger_path" validate:"required_if=Driver badger InMemory false"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite InMemory false"`
	PostgresDSN string `mapstructure:"postgres_dsn" validate:"required_if=Driver postgres"`
	InMemory    bool   `mapstructure:"in_memory"`
	BackupDir   string `mapstructure:"backup_dir"`
}

type ListingConfig struct {
	PageSize int `mapstructure:"page_size" validate:"gte=1,lte=100"`
}
