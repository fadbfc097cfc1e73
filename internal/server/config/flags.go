package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/minibank/internal/flagx"
	"github.com/dmitrijs2005/minibank/internal/money"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-o", "-l", "-r", "-u", "-p", "-b", "-g", "-e"}

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN
//	-s string     session token HMAC secret
//	-t duration   session token TTL (e.g. "1h")
//	-o string     opening balance for new accounts
//	-l string     log level (debug|info|warn|error)
//	-r string     Redis URL for login throttling
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket
//	-g string     S3 region
//	-e string     S3 base endpoint
//
// args are filtered through flagx.FilterArgs first, so flags owned by
// other layers (-c) do not break parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "session token TTL")
	fs.Func("o", "opening balance for new accounts", func(s string) error {
		d, err := money.Parse(s)
		if err != nil {
			return err
		}
		config.OpeningBalance = d
		return nil
	})
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL, empty disables login throttling")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
