// Package config loads gatewayd's configuration from a TOML file plus
// environment-variable overrides. Precedence: environment variables >
// config file > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// Config holds all configuration for the gateway (spec §6 recognised
// options plus the transport/logging ambient settings).
type Config struct {
	Schema     map[string]map[string]string `toml:"schema"`
	Database   string                       `toml:"database"`
	MetaPrefix string                       `toml:"meta_prefix"` // "$" (default) or "_"
	BaseDomain string                       `toml:"base_domain"` // for {slug}.{baseDomain} tenant extraction

	ID        IDConfig        `toml:"id"`
	REST      RESTConfig      `toml:"rest"`
	MCP       MCPConfig       `toml:"mcp"`
	Auth      AuthConfig      `toml:"auth"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`

	// schemaOrder preserves the TOML file's model and field declaration
	// order; Go map iteration would otherwise scramble it and with it
	// implicit type-registry numbering (spec §3 TypeRegistry).
	schemaOrder schema.RawSchema
}

// IDConfig selects the id format (spec §6 idFormat).
type IDConfig struct {
	Format    string `toml:"format"`          // "cuid" (default) or "sqid"
	SqidSeed  int64  `toml:"sqid_seed"`       // alphabet shuffle seed when Format is "sqid"
	MinLength int    `toml:"sqid_min_length"` // minimum encoded segment length (>= 1)
}

// RESTConfig holds the REST surface's mount prefix and paging bounds.
type RESTConfig struct {
	BasePath    string `toml:"base_path"`
	PageSize    int    `toml:"page_size"`
	MaxPageSize int    `toml:"max_page_size"`
}

// MCPConfig controls the MCP endpoint.
type MCPConfig struct {
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix"` // prepended to every derived tool name
}

// AuthConfig holds the auth-layer options (spec §6 auth contract).
type AuthConfig struct {
	Mode            string `toml:"mode"` // none | optional | required
	TrustSnippets   bool   `toml:"trust_snippets"`
	TrustUnverified bool   `toml:"trust_unverified"`
	JWTSecret       string `toml:"jwt_secret"` // enables the built-in HMAC verifier
}

// ServerConfig holds API identity metadata echoed in every envelope.
type ServerConfig struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
}

// TransportConfig holds HTTP listener settings.
type TransportConfig struct {
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Load creates a Config by reading a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. GATEWAYD_CONFIG environment variable
//  3. ./gatewayd.toml (current directory)
//  4. ~/.config/gatewayd/gatewayd.toml (XDG-style)
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		MetaPrefix: "$",
		ID: IDConfig{
			Format:    "cuid",
			MinLength: 8,
		},
		REST: RESTConfig{
			PageSize:    20,
			MaxPageSize: 100,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Auth: AuthConfig{
			Mode: "none",
		},
		Server: ServerConfig{
			Name:    "gatewayd",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Host:        "0.0.0.0",
			Port:        "21470",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RawSchema returns the declared schema in file order, ready for
// schema.Parse.
func (c *Config) RawSchema() schema.RawSchema {
	return c.schemaOrder
}

// SetSchema installs a schema programmatically (tests, embedding
// callers) in place of one loaded from a config file.
func (c *Config) SetSchema(raw schema.RawSchema) {
	c.schemaOrder = raw
	c.Schema = make(map[string]map[string]string, len(raw))
	for _, m := range raw {
		fields := make(map[string]string, len(m.Fields))
		for _, f := range m.Fields {
			fields[f.Name] = f.Expr
		}
		c.Schema[m.Name] = fields
	}
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (the config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	c.schemaOrder = schemaOrderFromKeys(md, c.Schema)
	return nil
}

// schemaOrderFromKeys rebuilds model/field declaration order from the
// decoder's key stream, which preserves file order where the decoded
// maps do not.
func schemaOrderFromKeys(md toml.MetaData, decoded map[string]map[string]string) schema.RawSchema {
	var out schema.RawSchema
	index := make(map[string]int)

	for _, key := range md.Keys() {
		if len(key) < 2 || key[0] != "schema" {
			continue
		}
		modelName := key[1]
		i, seen := index[modelName]
		if !seen {
			i = len(out)
			index[modelName] = i
			out = append(out, schema.RawModel{Name: modelName})
		}
		if len(key) == 3 {
			fieldName := key[2]
			out[i].Fields = append(out[i].Fields, schema.RawField{
				Name: fieldName,
				Expr: decoded[modelName][fieldName],
			})
		}
	}
	return out
}

// resolveConfigPath determines which config file to use. Returns empty
// string if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}
	if p := os.Getenv("GATEWAYD_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("gatewayd.toml"); err == nil {
		return "gatewayd.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/gatewayd/gatewayd.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config
// values. An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("GATEWAYD_DATABASE", &c.Database)
	envOverride("GATEWAYD_META_PREFIX", &c.MetaPrefix)
	envOverride("GATEWAYD_BASE_DOMAIN", &c.BaseDomain)

	envOverride("GATEWAYD_ID_FORMAT", &c.ID.Format)
	if v := os.Getenv("GATEWAYD_SQID_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ID.SqidSeed = n
		}
	}
	if v := os.Getenv("GATEWAYD_SQID_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			c.ID.MinLength = n
		}
	}

	envOverride("GATEWAYD_REST_BASE_PATH", &c.REST.BasePath)
	if v := os.Getenv("GATEWAYD_REST_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.REST.PageSize = n
		}
	}
	if v := os.Getenv("GATEWAYD_REST_MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.REST.MaxPageSize = n
		}
	}

	if v := os.Getenv("GATEWAYD_MCP_ENABLED"); v != "" {
		c.MCP.Enabled = v == "true" || v == "1"
	}
	envOverride("GATEWAYD_MCP_PREFIX", &c.MCP.Prefix)

	envOverride("GATEWAYD_AUTH_MODE", &c.Auth.Mode)
	if v := os.Getenv("GATEWAYD_AUTH_TRUST_SNIPPETS"); v != "" {
		c.Auth.TrustSnippets = v == "true" || v == "1"
	}
	if v := os.Getenv("GATEWAYD_AUTH_TRUST_UNVERIFIED"); v != "" {
		c.Auth.TrustUnverified = v == "true" || v == "1"
	}
	envOverride("GATEWAYD_AUTH_JWT_SECRET", &c.Auth.JWTSecret)

	envOverride("GATEWAYD_HOST", &c.Transport.Host)
	envOverride("GATEWAYD_PORT", &c.Transport.Port)
	envOverride("GATEWAYD_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("GATEWAYD_LOG_LEVEL", &c.Log.Level)
}

// Validate checks that option values are in range.
func (c *Config) Validate() error {
	switch c.MetaPrefix {
	case "$", "_":
	default:
		return fmt.Errorf("invalid meta_prefix: %q (must be \"$\" or \"_\")", c.MetaPrefix)
	}

	switch c.ID.Format {
	case "cuid":
	case "sqid":
		if c.ID.MinLength < 1 {
			return fmt.Errorf("sqid_min_length must be >= 1, got %d", c.ID.MinLength)
		}
	default:
		return fmt.Errorf("invalid id format: %q (must be \"cuid\" or \"sqid\")", c.ID.Format)
	}

	switch c.Auth.Mode {
	case "none", "optional", "required":
	default:
		return fmt.Errorf("invalid auth mode: %q (must be \"none\", \"optional\", or \"required\")", c.Auth.Mode)
	}

	if c.REST.MaxPageSize < c.REST.PageSize {
		return fmt.Errorf("rest.max_page_size (%d) must be >= rest.page_size (%d)", c.REST.MaxPageSize, c.REST.PageSize)
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is
// non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
