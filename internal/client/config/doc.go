// Package config loads runtime configuration for the casauth CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   address:port of the casauth gRPC endpoint
//	-s string   service the access token is issued for
//	-i int      request timeout (seconds)
//
// JSON durations use timex.Duration, so "5s" and integer nanoseconds both
// work:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "service": "https://osf.io/",
//	  "request_timeout": "5s"
//	}
package config
