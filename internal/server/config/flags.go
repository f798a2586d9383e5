package config

import (
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/casauth/internal/flagx"
)

// parseFlags applies command-line flags:
//
//	-a string     gRPC bind address
//	-l string     HTTP bind address
//	-d string     PostgreSQL DSN
//	-t string     ticket store: memory, redis or postgres
//	-r string     redis address
//	-s string     access token signing key
//	-k string     access token encryption key
//	-g duration   ticket-granting ticket lifetime
//	-v duration   service ticket lifetime
//	-log string   log level
//
// Only these flags are read from os.Args, so other components can share it.
func parseFlags(config *Config) error {
	return parseFlagArgs(config, os.Args[1:])
}

func parseFlagArgs(config *Config, argv []string) error {
	args := flagx.FilterArgs(argv, []string{"-a", "-l", "-d", "-t", "-r", "-s", "-k", "-g", "-v", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TicketStore, "t", config.TicketStore, "ticket store")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SigningKey, "s", config.SigningKey, "signing key")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "encryption key")
	fs.DurationVar(&config.TicketGrantingTTL, "g", config.TicketGrantingTTL, "ticket-granting ticket lifetime")
	fs.DurationVar(&config.ServiceTicketTTL, "v", config.ServiceTicketTTL, "service ticket lifetime")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")

	return fs.Parse(args)
}
