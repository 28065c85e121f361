package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-access-token-duration access token lifetime (e.g., "15m")
//	-refresh-token-duration refresh token lifetime (e.g., "720h")
//	-remember-me-duration remember-me refresh lifetime
//	-login-session-ttl SRP exchange time to live
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-server-address server address the client syncs against
//	-device-label label of this client installation
//	-sync-interval client sync worker interval
//	-retention-daily/-retention-weekly/-retention-monthly/-retention-yearly
//	  retention policy bucket counts
//	-retention-interval retention worker sweep interval
func ParseFlags() *StructuredConfig {
	var serverAddress, adapterAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var accessTokenDuration time.Duration
	var refreshTokenDuration time.Duration
	var rememberMeDuration time.Duration
	var loginSessionTTL time.Duration
	var requestTimeout time.Duration
	var deviceLabel string
	var syncInterval time.Duration
	var retentionDaily, retentionWeekly, retentionMonthly, retentionYearly int
	var retentionInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&accessTokenDuration, "access-token-duration", 0, "Access token lifetime (e.g., 15m)")
	flag.DurationVar(&refreshTokenDuration, "refresh-token-duration", 0, "Refresh token lifetime (e.g., 720h)")
	flag.DurationVar(&rememberMeDuration, "remember-me-duration", 0, "Remember-me refresh lifetime")
	flag.DurationVar(&loginSessionTTL, "login-session-ttl", 0, "Login exchange time to live")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.Var(&adapterAddress, "server-address", "Server address the client syncs against")
	flag.StringVar(&deviceLabel, "device-label", "", "Label of this client installation")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Client sync worker interval")
	flag.IntVar(&retentionDaily, "retention-daily", 0, "Daily revisions kept")
	flag.IntVar(&retentionWeekly, "retention-weekly", 0, "Weekly revisions kept")
	flag.IntVar(&retentionMonthly, "retention-monthly", 0, "Monthly revisions kept")
	flag.IntVar(&retentionYearly, "retention-yearly", 0, "Yearly revisions kept")
	flag.DurationVar(&retentionInterval, "retention-interval", 0, "Retention worker sweep interval")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:         tokenSignKey,
			TokenIssuer:          tokenIssuer,
			AccessTokenDuration:  accessTokenDuration,
			RefreshTokenDuration: refreshTokenDuration,
			RememberMeDuration:   rememberMeDuration,
			LoginSessionTTL:      loginSessionTTL,
			DeviceLabel:          deviceLabel,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress: adapterAddress.String(),
		},
		Retention: Retention{
			Daily:   retentionDaily,
			Weekly:  retentionWeekly,
			Monthly: retentionMonthly,
			Yearly:  retentionYearly,
		},
		Workers: Workers{
			RetentionInterval: retentionInterval,
			SyncInterval:      syncInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
