// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_path", "storage_local_path")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("litterbox.max_size", "litterbox_max_size")
	v.BindEnv("litterbox.default_hours", "litterbox_default_hours")

	v.BindEnv("s3.endpoint", "s3_endpoint")
	v.BindEnv("s3.region", "s3_region")
	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")
	v.BindEnv("s3.bucket", "s3_bucket")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("upload.max_size", 200)
	v.SetDefault("litterbox.max_size", 1024)
	v.SetDefault("litterbox.default_hours", 24)

	v.SetDefault("security.rate_limit", 20)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("jwt.secret must be set, tokens from the auth service can't be verified without it")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("litterbox.max_size") <= 0 {
		return errors.New("litterbox.max_size must be bigger than 0")
	}

	if v.GetInt("litterbox.default_hours") <= 0 {
		return errors.New("litterbox.default_hours must be bigger than 0")
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("s3.access_key_id") == "" {
				return errors.New("access key id can't be empty")
			}
			if v.GetString("s3.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("s3.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "local":
		{
			if v.GetString("storage.local_path") == "" {
				return errors.New("storage.local_path can't be empty")
			}
		}
	default:
		return errors.New("invalid storage type provided")
	}

	// Size caps are configured in megabytes
	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("litterbox.max_size", v.GetInt64("litterbox.max_size")<<20)
	return nil
}
