package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/agenda/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk form of Config. Durations accept "1m" as well as
// integer nanoseconds. Keys missing from the file keep their current value.
type fileConfig struct {
	Backend               string         `json:"backend" yaml:"backend"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	StateDSN              string         `json:"state_dsn" yaml:"state_dsn"`
	PasswordScheme        string         `json:"password_scheme" yaml:"password_scheme"`
	AuthMode              string         `json:"auth_mode" yaml:"auth_mode"`
	IdentityProvider      string         `json:"identity_provider" yaml:"identity_provider"`
	IdentityEndpoint      string         `json:"identity_endpoint" yaml:"identity_endpoint"`
	IdentityAPIKey        string         `json:"identity_api_key" yaml:"identity_api_key"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	HTTPAddr              string         `json:"http_addr" yaml:"http_addr"`
	PublicURL             string         `json:"public_url" yaml:"public_url"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
	S3RootUser            string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ImageOffload          bool           `json:"image_offload" yaml:"image_offload"`
}

// parseFile overlays the JSON or YAML file at path (chosen by extension)
// onto config.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := toFile(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func toFile(c *Config) *fileConfig {
	return &fileConfig{
		Backend:               c.Backend,
		DatabaseDSN:           c.DatabaseDSN,
		StateDSN:              c.StateDSN,
		PasswordScheme:        c.PasswordScheme,
		AuthMode:              c.AuthMode,
		IdentityProvider:      c.IdentityProvider,
		IdentityEndpoint:      c.IdentityEndpoint,
		IdentityAPIKey:        c.IdentityAPIKey,
		SecretKey:             c.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: c.TokenValidityDuration},
		HTTPAddr:              c.HTTPAddr,
		PublicURL:             c.PublicURL,
		LogLevel:              c.LogLevel,
		S3RootUser:            c.S3RootUser,
		S3RootPassword:        c.S3RootPassword,
		S3Bucket:              c.S3Bucket,
		S3Region:              c.S3Region,
		S3BaseEndpoint:        c.S3BaseEndpoint,
		ImageOffload:          c.ImageOffload,
	}
}

func (f *fileConfig) apply(c *Config) {
	c.Backend = f.Backend
	c.DatabaseDSN = f.DatabaseDSN
	c.StateDSN = f.StateDSN
	c.PasswordScheme = f.PasswordScheme
	c.AuthMode = f.AuthMode
	c.IdentityProvider = f.IdentityProvider
	c.IdentityEndpoint = f.IdentityEndpoint
	c.IdentityAPIKey = f.IdentityAPIKey
	c.SecretKey = f.SecretKey
	c.TokenValidityDuration = f.TokenValidityDuration.Duration
	c.HTTPAddr = f.HTTPAddr
	c.PublicURL = f.PublicURL
	c.LogLevel = f.LogLevel
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.ImageOffload = f.ImageOffload
}
