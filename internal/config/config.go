// Package config loads IronDrop's INI configuration file and merges CLI
// overrides on top of it, with precedence CLI > INI file > built-in default
// (SPEC_FULL.md §6). INI parsing is done with viper in "ini" config-type mode,
// the configuration library already used by the teacher project (there for a
// YAML app config; here repurposed for IronDrop's INI surface).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config enumerates every field the engine consults, with its INI section,
// default, and effect documented alongside — per the "config objects" design
// note (SPEC_FULL.md §9), fields are never passed around as a loose option bag.
type Config struct {
	// [server]
	Listen         string  `mapstructure:"listen"`
	Port           int     `mapstructure:"port"`
	Threads        int     `mapstructure:"threads"`
	ChunkSize      int     `mapstructure:"chunk_size"`
	SpillThreshold int64   `mapstructure:"spill_threshold"`
	RateLimitMbps  float64 `mapstructure:"rate_limit_mbps"`

	// [upload]
	UploadEnabled bool   `mapstructure:"upload_enabled"`
	MaxUploadSize int64  `mapstructure:"upload_max_size"`
	UploadDir     string `mapstructure:"upload_directory"`

	// [auth]
	AuthUsername string `mapstructure:"auth_username"`
	AuthPassword string `mapstructure:"auth_password"`

	// [security]
	AllowedExtensions string `mapstructure:"allowed_extensions"`
	ChecksumOnUpload  bool   `mapstructure:"checksum_on_upload"`

	// [logging]
	Verbose  bool `mapstructure:"verbose"`
	Detailed bool `mapstructure:"detailed"`

	// Root directory served; not an INI key, always supplied on the CLI.
	Root string `mapstructure:"-"`
}

// DefaultConfig returns the configuration that applies when neither an INI
// file nor a CLI flag sets a value.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1",
		Port:              8080,
		Threads:           8,
		ChunkSize:         1024,
		SpillThreshold:    128 * 1024 * 1024,
		RateLimitMbps:     0,
		UploadEnabled:     false,
		MaxUploadSize:     10240 * 1024 * 1024,
		UploadDir:         "",
		AuthUsername:      "",
		AuthPassword:      "",
		AllowedExtensions: "*.zip,*.txt",
		ChecksumOnUpload:  false,
		Verbose:           false,
		Detailed:          false,
		Root:              ".",
	}
}

// discoveryPaths returns the config file lookup order from SPEC_FULL.md §6:
// --config-file, ./irondrop.ini, ./irondrop.conf, ~/.config/irondrop/config.ini,
// /etc/irondrop/config.ini (unix only).
func discoveryPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, "./irondrop.ini", "./irondrop.conf")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "irondrop", "config.ini"))
	}
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/irondrop/config.ini")
	}
	return paths
}

// LoadConfig finds the first existing config file in the discovery order (or
// uses explicitConfigFile if set) and merges it onto DefaultConfig. A missing
// file at every candidate path is not an error; a malformed file at a path
// that does exist is.
func LoadConfig(explicitConfigFile string) (*Config, error) {
	cfg := DefaultConfig()

	var found string
	for _, p := range discoveryPaths(explicitConfigFile) {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			found = p
			break
		}
	}
	if found == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(found)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", found, err)
	}

	raw := v.AllSettings()
	applySection(raw, "server", cfg)
	applySection(raw, "upload", cfg)
	applySection(raw, "auth", cfg)
	applySection(raw, "security", cfg)
	applySection(raw, "logging", cfg)

	return cfg, nil
}

// applySection reads the named INI section out of viper's nested settings map
// (viper's ini codec nests keys under their section) and assigns recognized
// keys onto cfg, applying the size-suffix and boolean parsing rules from
// SPEC_FULL.md §6.
func applySection(raw map[string]interface{}, section string, cfg *Config) {
	sec, ok := raw[section].(map[string]interface{})
	if !ok {
		return
	}
	get := func(key string) (string, bool) {
		v, ok := sec[key]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%v", v), true
	}

	switch section {
	case "server":
		if v, ok := get("listen"); ok {
			cfg.Listen = v
		}
		if v, ok := get("port"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Port = n
			}
		}
		if v, ok := get("threads"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Threads = n
			}
		}
		if v, ok := get("chunk_size"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.ChunkSize = n
			}
		}
		if v, ok := get("spill_threshold"); ok {
			if n, err := ParseByteSize(v); err == nil {
				cfg.SpillThreshold = n
			}
		}
		if v, ok := get("rate_limit_mbps"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cfg.RateLimitMbps = f
			}
		}
	case "upload":
		if v, ok := get("enabled"); ok {
			cfg.UploadEnabled = ParseBool(v, cfg.UploadEnabled)
		}
		if v, ok := get("max_size"); ok {
			if n, err := ParseByteSize(v); err == nil {
				cfg.MaxUploadSize = n
			}
		}
		if v, ok := get("directory"); ok {
			cfg.UploadDir = v
		}
	case "auth":
		if v, ok := get("username"); ok {
			cfg.AuthUsername = v
		}
		if v, ok := get("password"); ok {
			cfg.AuthPassword = v
		}
	case "security":
		if v, ok := get("allowed_extensions"); ok {
			cfg.AllowedExtensions = v
		}
		if v, ok := get("checksum_on_upload"); ok {
			cfg.ChecksumOnUpload = ParseBool(v, cfg.ChecksumOnUpload)
		}
	case "logging":
		if v, ok := get("verbose"); ok {
			cfg.Verbose = ParseBool(v, cfg.Verbose)
		}
		if v, ok := get("detailed"); ok {
			cfg.Detailed = ParseBool(v, cfg.Detailed)
		}
	}
}

var sizeSuffixPattern = regexp.MustCompile(`(?i)^\s*([0-9]*\.?[0-9]+)\s*(B|KB|MB|GB|TB)?\s*$`)

// ParseByteSize parses a 1024-based size string with an optional fractional
// value and B|KB|MB|GB|TB suffix ("1.5GB", "10240MB", "512").
func ParseByteSize(s string) (int64, error) {
	m := sizeSuffixPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	mult := 1.0
	switch strings.ToUpper(m[2]) {
	case "", "B":
		mult = 1
	case "KB":
		mult = 1024
	case "MB":
		mult = 1024 * 1024
	case "GB":
		mult = 1024 * 1024 * 1024
	case "TB":
		mult = 1024 * 1024 * 1024 * 1024
	}
	return int64(value * mult), nil
}

// ParseBool parses the boolean vocabulary from SPEC_FULL.md §6
// (true|yes|1|on / false|no|0|off), falling back to def on no match.
func ParseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return def
	}
}

// Overrides holds CLI flag values; a nil field means "not set on the command
// line", so Apply leaves the corresponding Config field untouched and INI/
// default precedence stands.
type Overrides struct {
	Listen            *string
	Port              *int
	Threads           *int
	ChunkSize         *int
	UploadEnabled     *bool
	MaxUploadSize     *string // raw size string, parsed here
	UploadDir         *string
	AuthUsername      *string
	AuthPassword      *string
	AllowedExtensions *string
	Verbose           *bool
	Detailed          *bool
	Root              *string
}

// Apply overlays non-nil override fields onto cfg, implementing CLI > INI >
// default precedence.
func (o Overrides) Apply(cfg *Config) error {
	if o.Listen != nil {
		cfg.Listen = *o.Listen
	}
	if o.Port != nil {
		cfg.Port = *o.Port
	}
	if o.Threads != nil {
		cfg.Threads = *o.Threads
	}
	if o.ChunkSize != nil {
		cfg.ChunkSize = *o.ChunkSize
	}
	if o.UploadEnabled != nil {
		cfg.UploadEnabled = *o.UploadEnabled
	}
	if o.MaxUploadSize != nil {
		n, err := ParseByteSize(*o.MaxUploadSize)
		if err != nil {
			return err
		}
		cfg.MaxUploadSize = n
	}
	if o.UploadDir != nil {
		cfg.UploadDir = *o.UploadDir
	}
	if o.AuthUsername != nil {
		cfg.AuthUsername = *o.AuthUsername
	}
	if o.AuthPassword != nil {
		cfg.AuthPassword = *o.AuthPassword
	}
	if o.AllowedExtensions != nil {
		cfg.AllowedExtensions = *o.AllowedExtensions
	}
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
	if o.Detailed != nil {
		cfg.Detailed = *o.Detailed
	}
	if o.Root != nil {
		cfg.Root = *o.Root
	}
	return nil
}

// ExtensionPatterns splits the comma-separated allowlist into glob patterns.
func (c *Config) ExtensionPatterns() []string {
	parts := strings.Split(c.AllowedExtensions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
