package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// --- Configuration Structs ---

type GenerateConfig struct {
	OutputDir      string `yaml:"output_dir" mapstructure:"output_dir"`
	Rows           int64  `yaml:"rows" mapstructure:"rows"`
	Format         string `yaml:"format" mapstructure:"format"`
	BatchSize      int64  `yaml:"batch_size" mapstructure:"batch_size"`
	MaxRowsPerFile int64  `yaml:"max_rows_per_file" mapstructure:"max_rows_per_file"`
	MaxFileSizeMB  int64  `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
}

type MilvusConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	Token    string `yaml:"token" mapstructure:"token"`
	Database string `yaml:"database" mapstructure:"database"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" mapstructure:"bucket"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
	Region   string `yaml:"region" mapstructure:"region"`
	Endpoint string `yaml:"endpoint,omitempty" mapstructure:"endpoint"` // MinIO or other S3-compatible stores
}

type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

type Config struct {
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Milvus   MilvusConfig   `yaml:"milvus" mapstructure:"milvus"`
	S3       S3Config       `yaml:"s3" mapstructure:"s3"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// --- Load Configuration ---

// LoadConfig reads the optional config file and environment overrides
// (VECTORGEN_GENERATE_ROWS and friends). An empty path loads defaults only.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("generate.output_dir", ".")
	v.SetDefault("generate.rows", 1000)
	v.SetDefault("generate.format", "parquet")
	v.SetDefault("generate.batch_size", 50000)
	v.SetDefault("generate.max_rows_per_file", 1000000)
	v.SetDefault("generate.max_file_size_mb", 256)
	v.SetDefault("milvus.uri", "http://localhost:19530")
	v.SetDefault("milvus.database", "default")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("VECTORGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// --- Validation Functions ---

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return fmt.Errorf(format, a...)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generate.Validate(); err != nil {
		return fmt.Errorf("generate validation failed: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	return nil
}

func (gc *GenerateConfig) Validate() error {
	if err := validate(gc.Rows > 0, "rows must be positive, got %d", gc.Rows); err != nil {
		return err
	}
	if err := validate(gc.BatchSize > 0, "batch_size must be positive, got %d", gc.BatchSize); err != nil {
		return err
	}
	if err := validate(gc.MaxRowsPerFile > 0, "max_rows_per_file must be positive, got %d", gc.MaxRowsPerFile); err != nil {
		return err
	}
	return validate(gc.Format == "parquet" || gc.Format == "json",
		"format must be parquet or json, got %q", gc.Format)
}

func (sc *ServerConfig) Validate() error {
	return validate(sc.Port > 0 && sc.Port < 65536, "port must be between 1 and 65535, got %d", sc.Port)
}
