// Package config handles configuration for the agenda binaries: defaults,
// a JSON or YAML file overlay and command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/dmitrijs2005/agenda/internal/flagx"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	AuthModeCredentials = "credentials"
	AuthModeProvider    = "provider"

	IdentityEmulator = "emulator"
	IdentityREST     = "rest"
)

// Config holds runtime settings shared by the CLI and the HTTP server.
//
// Backend selects the contact and user store (DatabaseDSN). StateDSN is the
// device-local SQLite file that keeps the CLI session. AuthMode picks
// between the local credential store and the external identity provider.
type Config struct {
	Backend               string
	DatabaseDSN           string
	StateDSN              string
	PasswordScheme        string
	AuthMode              string
	IdentityProvider      string
	IdentityEndpoint      string
	IdentityAPIKey        string
	SecretKey             string
	TokenValidityDuration time.Duration
	HTTPAddr              string
	PublicURL             string
	LogLevel              string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	ImageOffload          bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key and S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Backend = BackendSQLite
	c.DatabaseDSN = "agenda.db"
	c.StateDSN = "agenda-state.db"
	c.PasswordScheme = cryptox.SchemePlain
	c.AuthMode = AuthModeCredentials
	c.IdentityProvider = IdentityEmulator
	c.IdentityEndpoint = ""
	c.IdentityAPIKey = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 60 * time.Minute
	c.HTTPAddr = ":8080"
	c.PublicURL = "http://localhost:8080"
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "agenda"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ImageOffload = false
}

// Validate rejects unknown enumerated values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.AuthMode {
	case AuthModeCredentials, AuthModeProvider:
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}
	switch c.IdentityProvider {
	case IdentityEmulator, IdentityREST:
	default:
		return fmt.Errorf("unknown identity provider %q", c.IdentityProvider)
	}
	if _, err := cryptox.NewHasher(c.PasswordScheme); err != nil {
		return err
	}
	return nil
}

// LoadFile returns defaults overlaid with the config file named by -c/-config
// in args, if any. Flags are left to the caller.
func LoadFile(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfig builds the server Config: defaults, then the optional config
// file, then the short command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg, err := LoadFile(args)
	if err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
