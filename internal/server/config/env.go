package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

var lookupEnv = os.LookupEnv

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr            = "CAS_GRPC_ADDR"
	EnvHTTPAddr            = "CAS_HTTP_ADDR"
	EnvDatabaseDSN         = "CAS_DATABASE_DSN"
	EnvTicketStore         = "CAS_TICKET_STORE"
	EnvRedisAddr           = "CAS_REDIS_ADDR"
	EnvSigningKey          = "CAS_SIGNING_KEY"
	EnvEncryptionKey       = "CAS_ENCRYPTION_KEY"
	EnvTokenIssuer         = "CAS_TOKEN_ISSUER"
	EnvTicketGrantingTTL   = "CAS_TGT_TTL"
	EnvServiceTicketTTL    = "CAS_ST_TTL"
	EnvTicketPurgeInterval = "CAS_TICKET_PURGE_INTERVAL"
	EnvLogLevel            = "CAS_LOG_LEVEL"
	EnvUsernameSuffix      = "CAS_USERNAME_SUFFIX"
)

// parseEnvFile overlays values from a dotenv file. A missing file is not an
// error.
func parseEnvFile(config *Config, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return parseEnv(config, func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvGRPCAddr:       &config.EndpointAddrGRPC,
		EnvHTTPAddr:       &config.EndpointAddrHTTP,
		EnvDatabaseDSN:    &config.DatabaseDSN,
		EnvTicketStore:    &config.TicketStore,
		EnvRedisAddr:      &config.RedisAddr,
		EnvSigningKey:     &config.SigningKey,
		EnvEncryptionKey:  &config.EncryptionKey,
		EnvTokenIssuer:    &config.TokenIssuer,
		EnvLogLevel:       &config.LogLevel,
		EnvUsernameSuffix: &config.UsernameSuffix,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		EnvTicketGrantingTTL:   &config.TicketGrantingTTL,
		EnvServiceTicketTTL:    &config.ServiceTicketTTL,
		EnvTicketPurgeInterval: &config.TicketPurgeInterval,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
