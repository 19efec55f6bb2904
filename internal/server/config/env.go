package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// parseEnv overlays Config with environment variables. lookup is
// os.LookupEnv in production.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic("invalid " + key + ": " + err.Error())
			}
			*dst = n
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if strings.Contains(v, ":") {
			config.HTTPAddr = v
		} else {
			config.HTTPAddr = ":" + v
		}
	}

	str("GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("DB_HOST", &config.DBHost)
	num("DB_PORT", &config.DBPort)
	str("DB_USER", &config.DBUser)
	str("DB_PASSWORD", &config.DBPassword)
	str("DB_NAME", &config.DBName)
	str("DB_SSLMODE", &config.DBSSLMode)
	str("SECRET_KEY", &config.SecretKey)
	num("BCRYPT_COST", &config.BcryptCost)
	str("LOG_LEVEL", &config.LogLevel)
	num("AUTH_RATE_BURST", &config.AuthRateBurst)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := lookup("AUTH_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic("invalid AUTH_RATE_LIMIT: " + err.Error())
		}
		config.AuthRateLimit = f
	}

	// ACCESS_TOKEN_TTL takes a Go duration ("45m") or a bare number of minutes.
	if v, ok := lookup("ACCESS_TOKEN_TTL"); ok && v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			config.AccessTokenValidityDuration = time.Duration(m) * time.Minute
		} else {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic("invalid ACCESS_TOKEN_TTL: " + err.Error())
			}
			config.AccessTokenValidityDuration = d
		}
	}
}
