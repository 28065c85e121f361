package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetAddress_String tests the String method of NetAddress
func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{
			name:     "empty address",
			addr:     NetAddress{},
			expected: "",
		},
		{
			name:     "localhost with port",
			addr:     NetAddress{Host: "localhost", Port: 8080},
			expected: "localhost:8080",
		},
		{
			name:     "IP address with port",
			addr:     NetAddress{Host: "127.0.0.1", Port: 9090},
			expected: "127.0.0.1:9090",
		},
		{
			name:     "only host no port",
			addr:     NetAddress{Host: "localhost", Port: 0},
			expected: "localhost:0",
		},
		{
			name:     "only port no host",
			addr:     NetAddress{Host: "", Port: 8080},
			expected: ":8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.addr.String()
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestNetAddress_Set tests the Set method of NetAddress
func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectError  bool
		errorMsg     string
		expectedAddr NetAddress
	}{
		{
			name:         "valid localhost",
			input:        "localhost:8080",
			expectError:  false,
			expectedAddr: NetAddress{Host: "localhost", Port: 8080},
		},
		{
			name:         "valid IPv4",
			input:        "127.0.0.1:9090",
			expectError:  false,
			expectedAddr: NetAddress{Host: "127.0.0.1", Port: 9090},
		},
		{
			name:        "missing colon",
			input:       "localhost8080",
			expectError: true,
			errorMsg:    "need address in a form `host:port`",
		},
		{
			name:        "non-numeric port",
			input:       "localhost:http",
			expectError: true,
		},
		{
			name:        "zero port",
			input:       "localhost:0",
			expectError: true,
			errorMsg:    "port number is a positive integer",
		},
		{
			name:        "bogus host",
			input:       "not-an-ip:8080",
			expectError: true,
			errorMsg:    "incorrect IP-address provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)

			if tt.expectError {
				require.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedAddr, addr)
		})
	}
}

// TestParseFlags tests the ParseFlags function
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Empty(t, cfg.Server.HTTPAddress)
				assert.Empty(t, cfg.Storage.DB.DSN)
				assert.Empty(t, cfg.JSONFilePath)
			},
		},
		{
			name: "server flags",
			args: []string{
				"-a", "localhost:9000",
				"-d", "postgres://localhost/passvault",
				"-token-sign-key", "secret",
				"-token-issuer", "issuer",
				"-access-token-duration", "15m",
				"-refresh-token-duration", "720h",
				"-login-session-ttl", "5m",
				"-request-timeout", "30s",
			},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "localhost:9000", cfg.Server.HTTPAddress)
				assert.Equal(t, "postgres://localhost/passvault", cfg.Storage.DB.DSN)
				assert.Equal(t, "secret", cfg.App.TokenSignKey)
				assert.Equal(t, "issuer", cfg.App.TokenIssuer)
				assert.Equal(t, 15*time.Minute, cfg.App.AccessTokenDuration)
				assert.Equal(t, 720*time.Hour, cfg.App.RefreshTokenDuration)
				assert.Equal(t, 5*time.Minute, cfg.App.LoginSessionTTL)
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
			},
		},
		{
			name: "retention flags",
			args: []string{
				"-retention-daily", "7",
				"-retention-weekly", "4",
				"-retention-monthly", "12",
				"-retention-yearly", "2",
				"-retention-interval", "1h",
			},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, Retention{Daily: 7, Weekly: 4, Monthly: 12, Yearly: 2}, cfg.Retention)
				assert.Equal(t, time.Hour, cfg.Workers.RetentionInterval)
			},
		},
		{
			name: "client flags",
			args: []string{
				"-server-address", "localhost:8080",
				"-device-label", "laptop",
				"-sync-interval", "2m",
				"-d", "/home/user/.passvault/state.db",
			},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "localhost:8080", cfg.Adapter.HTTPAddress)
				assert.Equal(t, "laptop", cfg.App.DeviceLabel)
				assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
				assert.Equal(t, "/home/user/.passvault/state.db", cfg.Storage.DB.DSN)
			},
		},
		{
			name: "json config path",
			args: []string{"-c", "/etc/passvault/config.json"},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/etc/passvault/config.json", cfg.JSONFilePath)
			},
		},
		{
			name: "json config path alias",
			args: []string{"-config", "/etc/passvault/config.json"},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/etc/passvault/config.json", cfg.JSONFilePath)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

			oldArgs := os.Args
			os.Args = append([]string{"cmd"}, tt.args...)
			defer func() { os.Args = oldArgs }()

			cfg := ParseFlags()
			tt.verify(t, cfg)
		})
	}
}
