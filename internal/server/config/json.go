package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Only keys present in the file override the current values.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	GRPCHealthAddr              *string         `json:"grpc_health_addr"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	DBHost                      *string         `json:"db_host"`
	DBPort                      *int            `json:"db_port"`
	DBUser                      *string         `json:"db_user"`
	DBPassword                  *string         `json:"db_password"`
	DBName                      *string         `json:"db_name"`
	DBSSLMode                   *string         `json:"db_sslmode"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	LogLevel                    *string         `json:"log_level"`
	AuthRateLimit               *float64        `json:"auth_rate_limit"`
	AuthRateBurst               *int            `json:"auth_rate_burst"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// every key it defines into config. It panics when the file cannot be read
// or parsed.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.DBHost, c.DBHost)
	set(&config.DBPort, c.DBPort)
	set(&config.DBUser, c.DBUser)
	set(&config.DBPassword, c.DBPassword)
	set(&config.DBName, c.DBName)
	set(&config.DBSSLMode, c.DBSSLMode)
	set(&config.SecretKey, c.SecretKey)
	set(&config.BcryptCost, c.BcryptCost)
	set(&config.LogLevel, c.LogLevel)
	set(&config.AuthRateLimit, c.AuthRateLimit)
	set(&config.AuthRateBurst, c.AuthRateBurst)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
