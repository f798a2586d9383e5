package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/casauth/internal/flagx"
	"github.com/dmitrijs2005/casauth/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10s" style
// strings or integer nanoseconds. Absent fields leave the current value.
type JsonConfig struct {
	EndpointAddrGRPC    string              `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP    string              `json:"endpoint_addr_http"`
	DatabaseDSN         string              `json:"database_dsn"`
	TicketStore         string              `json:"ticket_store"`
	RedisAddr           string              `json:"redis_addr"`
	SigningKey          string              `json:"signing_key"`
	EncryptionKey       string              `json:"encryption_key"`
	TokenIssuer         string              `json:"token_issuer"`
	TicketGrantingTTL   timex.Duration      `json:"ticket_granting_ttl"`
	ServiceTicketTTL    timex.Duration      `json:"service_ticket_ttl"`
	TicketPurgeInterval timex.Duration      `json:"ticket_purge_interval"`
	LogLevel            string              `json:"log_level"`
	UsernameSuffix      string              `json:"username_suffix"`
	ReleasePolicy       map[string][]string `json:"release_policy"`
}

// parseJson overlays the file named by -c or -config, if any.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}
	return parseJsonFile(config, jsonConfigFile)
}

func parseJsonFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.TicketStore, c.TicketStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.SigningKey, c.SigningKey)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.UsernameSuffix, c.UsernameSuffix)
	if c.TicketGrantingTTL.Duration != 0 {
		config.TicketGrantingTTL = c.TicketGrantingTTL.Duration
	}
	if c.ServiceTicketTTL.Duration != 0 {
		config.ServiceTicketTTL = c.ServiceTicketTTL.Duration
	}
	if c.TicketPurgeInterval.Duration != 0 {
		config.TicketPurgeInterval = c.TicketPurgeInterval.Duration
	}
	if c.ReleasePolicy != nil {
		config.ReleasePolicy = c.ReleasePolicy
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
