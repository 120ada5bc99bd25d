package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/agenda/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-k", "-s", "-t", "-l", "-m", "-i", "-n", "-x", "-w", "-u", "-p", "-b", "-g", "-e", "-o"}

// parseFlags overlays the server's short command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   database DSN
//	-k string   storage backend: sqlite or postgres
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-l string   log level
//	-m string   password scheme: plain or argon2id
//	-i string   identity provider: emulator or rest
//	-n string   identity provider endpoint
//	-x string   identity provider API key
//	-w string   public base URL used in verification links
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, endpoint
//	-o bool     offload profile images to S3
//
// Only the flags above are taken from args (see flagx.FilterArgs).
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Backend, "k", config.Backend, "storage backend")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.PasswordScheme, "m", config.PasswordScheme, "password scheme")
	fs.StringVar(&config.IdentityProvider, "i", config.IdentityProvider, "identity provider")
	fs.StringVar(&config.IdentityEndpoint, "n", config.IdentityEndpoint, "identity provider endpoint")
	fs.StringVar(&config.IdentityAPIKey, "x", config.IdentityAPIKey, "identity provider API key")
	fs.StringVar(&config.PublicURL, "w", config.PublicURL, "public base URL")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.ImageOffload, "o", config.ImageOffload, "offload profile images to S3")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	return nil
}
