// Package config handles configuration for the taskkeeper server: defaults,
// an optional .env file, a JSON overlay, environment variables, and finally
// command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the server.
//
// SecretKey signs access tokens (HS256) and has no default: the server refuses
// to start without it. Database access is configured either with DatabaseDSN
// or with the DB* fields; the latter are required when no DSN is given.
// Attachments are enabled only when S3Bucket is set.
type Config struct {
	HTTPAddr                    string
	GRPCHealthAddr              string
	DatabaseDSN                 string
	DBHost                      string
	DBPort                      int
	DBUser                      string
	DBPassword                  string
	DBName                      string
	DBSSLMode                   string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	LogLevel                    string
	AuthRateLimit               float64
	AuthRateBurst               int
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with development defaults. Secrets and
// database credentials are deliberately left empty.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.GRPCHealthAddr = ":50051"
	c.DBPort = 5432
	c.DBSSLMode = "disable"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.LogLevel = "info"
	c.AuthRateLimit = 5
	c.AuthRateBurst = 10
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, .env, the JSON file named by
// -c/-config, the environment, and command-line flags. It panics on
// unreadable or malformed input; call Validate before using the result.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(".env")
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if err := c.ValidateDatabase(); err != nil {
		errs = append(errs, err)
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("auth rate limit and burst must be positive"))
	}

	return errors.Join(errs...)
}

// ValidateDatabase checks only what is needed to open the database and hash
// passwords. Offline tools that never issue tokens use it instead of Validate.
func (c *Config) ValidateDatabase() error {
	var errs []error

	if c.DatabaseDSN == "" {
		if c.DBHost == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.DBUser == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DBPassword == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required"))
		}
		if c.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}

	return errors.Join(errs...)
}

// DSN returns DatabaseDSN when set, otherwise a postgres URL assembled from
// the DB* fields.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// AttachmentsEnabled reports whether object storage is configured.
func (c *Config) AttachmentsEnabled() bool {
	return c.S3Bucket != ""
}
