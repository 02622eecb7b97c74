package config

import (
	"fmt"
	"strings"

	"github.com/paularlott/cli"
)

const (
	defaultListenAddr = ":5000"
	defaultWorkers    = 4
	defaultQueueSize  = 100
	defaultReadLimit  = 64 * 1024
)

// Config holds the application configuration
type Config struct {
	ListenAddr     string
	APIAuthToken   string
	MCPAuthToken   string
	Workers        int      // calculation workers for the event channel
	QueueSize      int      // pending calculations before submitters block
	Seed           uint64   // 0 means unseeded
	AllowedOrigins []string // websocket origins, "*" allows all
	ReadLimit      int64    // max websocket frame size in bytes
}

// GetFlags returns the server flags. Every flag can also be set from the
// environment or a .env file.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "addr",
			Usage:        "Server listen address",
			DefaultValue: defaultListenAddr,
			EnvVars:      []string{"DEVCALC_LISTEN_ADDR"},
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Bearer token for the REST API and the websocket event channel",
			EnvVars: []string{"DEVCALC_API_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "mcp-token",
			Usage:   "MCP bearer token for authentication",
			EnvVars: []string{"DEVCALC_MCP_TOKEN"},
		},
		&cli.IntFlag{
			Name:         "workers",
			Usage:        "Number of calculation workers",
			DefaultValue: defaultWorkers,
			EnvVars:      []string{"DEVCALC_WORKERS"},
		},
		&cli.IntFlag{
			Name:         "queue-size",
			Usage:        "Pending calculations before new requests wait",
			DefaultValue: defaultQueueSize,
			EnvVars:      []string{"DEVCALC_QUEUE_SIZE"},
		},
		&cli.IntFlag{
			Name:    "seed",
			Usage:   "Seed for reproducible addresses (0 = random)",
			EnvVars: []string{"DEVCALC_SEED"},
		},
		&cli.StringFlag{
			Name:         "allowed-origins",
			Usage:        "Comma-separated websocket origins, * for any",
			DefaultValue: "*",
			EnvVars:      []string{"DEVCALC_ALLOWED_ORIGINS"},
		},
		&cli.IntFlag{
			Name:         "ws-read-limit",
			Usage:        "Maximum websocket message size in bytes",
			DefaultValue: defaultReadLimit,
			EnvVars:      []string{"DEVCALC_WS_READ_LIMIT"},
		},
	}
}

// Load builds the configuration from the command's flags
func Load(cmd *cli.Command) *Config {
	seed := cmd.GetInt("seed")
	if seed < 0 {
		seed = 0
	}

	cfg := &Config{
		ListenAddr:     cmd.GetString("addr"),
		APIAuthToken:   cmd.GetString("api-token"),
		MCPAuthToken:   cmd.GetString("mcp-token"),
		Workers:        cmd.GetInt("workers"),
		QueueSize:      cmd.GetInt("queue-size"),
		Seed:           uint64(seed),
		AllowedOrigins: parseList(cmd.GetString("allowed-origins")),
		ReadLimit:      int64(cmd.GetInt("ws-read-limit")),
	}
	cfg.Normalize()
	return cfg
}

// Normalize replaces unusable values with defaults
func (c *Config) Normalize() {
	c.ListenAddr = coalesce(strings.TrimSpace(c.ListenAddr), defaultListenAddr)
	if c.Workers < 1 {
		c.Workers = defaultWorkers
	}
	if c.QueueSize < 1 {
		c.QueueSize = defaultQueueSize
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = defaultReadLimit
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}

// IsMCPEnabled checks if MCP authentication is configured
func (c *Config) IsMCPEnabled() bool {
	return c.MCPAuthToken != ""
}

// AllowsOrigin reports whether a websocket client from origin may connect.
// Requests without an Origin header are not from browsers and are allowed.
func (c *Config) AllowsOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// String returns a loggable summary without secrets
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s workers=%d queue=%d seeded=%t api_auth=%t mcp_auth=%t",
		c.ListenAddr, c.Workers, c.QueueSize, c.Seed != 0, c.IsAPIAuthEnabled(), c.IsMCPEnabled())
}

// parseList splits a comma-separated value, dropping blanks
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
