package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the CLI's long flags on fs, defaulting to the current
// values of cfg so that flags override the config file.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP("config", "c", "", "path to a JSON or YAML config file")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: sqlite or postgres")
	fs.StringVar(&cfg.DatabaseDSN, "db", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.StateDSN, "state", cfg.StateDSN, "local session state database (SQLite)")
	fs.StringVar(&cfg.PasswordScheme, "password-scheme", cfg.PasswordScheme, "password scheme: plain or argon2id")
	fs.StringVar(&cfg.AuthMode, "auth-mode", cfg.AuthMode, "credentials or provider")
	fs.StringVar(&cfg.IdentityProvider, "identity", cfg.IdentityProvider, "identity provider: emulator or rest")
	fs.StringVar(&cfg.IdentityEndpoint, "identity-endpoint", cfg.IdentityEndpoint, "identity provider endpoint")
	fs.StringVar(&cfg.IdentityAPIKey, "identity-api-key", cfg.IdentityAPIKey, "identity provider API key")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.BoolVar(&cfg.ImageOffload, "image-offload", cfg.ImageOffload, "offload profile images to S3")
}
