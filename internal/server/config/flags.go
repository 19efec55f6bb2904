package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-m", "-d", "-s", "-t", "-k", "-l", "-u", "-p", "-b", "-r", "-e"}

// parseFlags overlays Config with command-line flags.
//
//	-a string   HTTP listen address (e.g. ":8000")
//	-m string   gRPC health listen address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k int      bcrypt cost
//	-l string   log level
//	-u, -p, -b, -r, -e   S3 user, password, bucket, region, endpoint
//
// Arguments are filtered with flagx.FilterArgs first, so flags belonging to
// other parsers (such as taskctl's own) are ignored. Parse errors panic.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCHealthAddr, "m", config.GRPCHealthAddr, "gRPC health listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttl := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })
	if visited["t"] {
		config.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
	}
}
