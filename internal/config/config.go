// Package config provides configuration for the vinario binary.
// Loads from: CLI flags > env vars > vinario.toml > built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// FileName is the config file looked up in the working directory.
const FileName = "vinario.toml"

// Config holds all vinario configuration, loaded from TOML + env + flags.
type Config struct {
	Content ContentConfig `toml:"content"`
	Site    SiteConfig    `toml:"site"`
	Web     WebConfig     `toml:"web"`
	Build   BuildConfig   `toml:"build"`
	Log     LogConfig     `toml:"log"`
	MCP     MCPConfig     `toml:"mcp"`
}

// ContentConfig says where review documents live.
type ContentConfig struct {
	Dir        string   `toml:"dir"`
	Extensions []string `toml:"extensions"`
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Title    string `toml:"title"`
	Tagline  string `toml:"tagline"`
	Locale   string `toml:"locale"`    // BCP 47 tag; drives title collation and humanized titles
	BasePath string `toml:"base_path"` // URL prefix of the reviews section
}

// WebConfig holds HTTP server settings.
type WebConfig struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"` // reload the catalog when content files change
}

// BuildConfig holds static export settings.
type BuildConfig struct {
	OutputDir string `toml:"output_dir"`
	StaticDir string `toml:"static_dir"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // "console" (default) or "json"
}

// MCPConfig controls the MCP stdio server.
type MCPConfig struct {
	FilterInjection bool `toml:"filter_injection"`
}

// ConfigOverride is set by the --config flag.
var ConfigOverride string

// ContentOverride is set by the --content flag.
var ContentOverride string

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Dir:        filepath.Join("content", "resenas"),
			Extensions: []string{".mdx", ".md"},
		},
		Site: SiteConfig{
			Title:    "Código Vinario",
			Tagline:  "Todas las reseñas de Código Vinario 🍷",
			Locale:   "es",
			BasePath: "/resenas",
		},
		Web: WebConfig{
			Addr: "127.0.0.1:3000",
		},
		Build: BuildConfig{
			OutputDir: "public",
			StaticDir: "static",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		MCP: MCPConfig{
			FilterInjection: true,
		},
	}
}

// LoadConfig merges all configuration sources: defaults < TOML file < env vars
// < flag overrides.
func LoadConfig() (*Config, error) {
	path := findConfigFile()
	if ConfigOverride != "" {
		if _, err := os.Stat(ConfigOverride); err != nil {
			return nil, fmt.Errorf("config file %s: %w", ConfigOverride, err)
		}
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads configuration from a specific file path, merging with
// defaults, env vars and flag overrides. An empty or missing path means
// defaults only.
func LoadConfigFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		}
	}

	applyEnv(cfg)
	if ContentOverride != "" {
		cfg.Content.Dir = ContentOverride
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VINARIO_CONTENT_DIR"); v != "" {
		cfg.Content.Dir = v
	}
	if v := os.Getenv("VINARIO_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		cfg.Content.Extensions = exts
	}
	if v := os.Getenv("VINARIO_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("VINARIO_WATCH"); v != "" {
		cfg.Web.Watch = isTruthy(v)
	}
	if v := os.Getenv("VINARIO_OUTPUT_DIR"); v != "" {
		cfg.Build.OutputDir = v
	}
	if v := os.Getenv("VINARIO_LOCALE"); v != "" {
		cfg.Site.Locale = v
	}
	if v := os.Getenv("VINARIO_BASE_PATH"); v != "" {
		cfg.Site.BasePath = v
	}
	if v := os.Getenv("VINARIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VINARIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("VINARIO_MCP_FILTER_INJECTION"); v != "" {
		cfg.MCP.FilterInjection = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// ErrNoContentDir is returned when the content directory setting is blank.
var ErrNoContentDir = errors.New("content directory not configured (set [content] dir or --content)")

func (c *Config) normalize() error {
	c.Content.Dir = strings.TrimSpace(c.Content.Dir)
	if c.Content.Dir == "" {
		return ErrNoContentDir
	}

	exts := make([]string, 0, len(c.Content.Extensions))
	for _, e := range c.Content.Extensions {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = DefaultConfig().Content.Extensions
	}
	c.Content.Extensions = exts

	c.Site.BasePath = "/" + strings.Trim(strings.TrimSpace(c.Site.BasePath), "/")
	if c.Site.BasePath == "/" {
		return fmt.Errorf("site.base_path must not be the root path")
	}

	if _, err := language.Parse(c.Site.Locale); err != nil {
		fmt.Fprintf(os.Stderr, "vinario: WARNING: unknown locale %q, falling back to \"es\"\n", c.Site.Locale)
		c.Site.Locale = "es"
	}
	return nil
}

// LocaleTag returns the parsed site locale.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Site.Locale)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// findConfigFile returns the --config path, else vinario.toml in CWD, else
// .vinario/config.toml in CWD. Empty when none exists.
func findConfigFile() string {
	if ConfigOverride != "" {
		return ConfigOverride
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, p := range []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, ".vinario", "config.toml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FindConfigFile returns the path to the active config file, or empty string if none found.
func FindConfigFile() string {
	return findConfigFile()
}

// configSuggestions maps common wrong keys to the correct TOML key name.
var configSuggestions = map[string]string{
	"content_dir": "dir",
	"path":        "dir",
	"exts":        "extensions",
	"ext":         "extensions",
	"lang":        "locale",
	"language":    "locale",
	"basepath":    "base_path",
	"base-path":   "base_path",
	"port":        "addr",
	"listen":      "addr",
	"out":         "output_dir",
	"output":      "output_dir",
	"output-dir":  "output_dir",
	"static":      "static_dir",
	"loglevel":    "level",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}

	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]

		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(os.Stderr, "vinario: WARNING: unknown key %q in %s; did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(os.Stderr, "vinario: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}

// GenerateConfig writes a commented default vinario.toml to path. It refuses
// to overwrite an existing file.
func GenerateConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, []byte(generateTOMLContent()), 0o644)
}

func generateTOMLContent() string {
	d := DefaultConfig()
	var b strings.Builder
	b.WriteString("# vinario configuration\n")
	b.WriteString("#\n")
	b.WriteString("# Priority: CLI flags > environment variables > this file > built-in defaults\n")
	b.WriteString("# Environment variables: VINARIO_CONTENT_DIR, VINARIO_EXTENSIONS, VINARIO_ADDR,\n")
	b.WriteString("#   VINARIO_WATCH, VINARIO_OUTPUT_DIR, VINARIO_LOCALE, VINARIO_BASE_PATH,\n")
	b.WriteString("#   VINARIO_LOG_LEVEL, VINARIO_LOG_FORMAT, VINARIO_MCP_FILTER_INJECTION\n\n")

	b.WriteString("[content]\n")
	b.WriteString(fmt.Sprintf("dir = %q\n", filepath.ToSlash(d.Content.Dir)))
	b.WriteString("# earlier extensions win when two files share a slug\n")
	b.WriteString("extensions = [\".mdx\", \".md\"]\n\n")

	b.WriteString("[site]\n")
	b.WriteString(fmt.Sprintf("title = %q\n", d.Site.Title))
	b.WriteString(fmt.Sprintf("tagline = %q\n", d.Site.Tagline))
	b.WriteString(fmt.Sprintf("locale = %q  # title sort order and fallback titles\n", d.Site.Locale))
	b.WriteString(fmt.Sprintf("base_path = %q\n\n", d.Site.BasePath))

	b.WriteString("[web]\n")
	b.WriteString(fmt.Sprintf("addr = %q\n", d.Web.Addr))
	b.WriteString("watch = false  # reload reviews when content files change\n\n")

	b.WriteString("[build]\n")
	b.WriteString(fmt.Sprintf("output_dir = %q\n", d.Build.OutputDir))
	b.WriteString(fmt.Sprintf("static_dir = %q\n\n", d.Build.StaticDir))

	b.WriteString("[log]\n")
	b.WriteString(fmt.Sprintf("level = %q   # debug, info, warn, error\n", d.Log.Level))
	b.WriteString(fmt.Sprintf("format = %q  # console or json\n\n", d.Log.Format))

	b.WriteString("[mcp]\n")
	b.WriteString("filter_injection = true  # screen review bodies before handing them to agents\n")

	return b.String()
}

// ShowConfig returns the effective configuration as TOML.
func ShowConfig(cfg *Config) string {
	var b strings.Builder
	b.WriteString("# Effective vinario configuration (merged from all sources)\n")
	if p := findConfigFile(); p != "" {
		b.WriteString(fmt.Sprintf("# Config file: %s\n", p))
	}
	b.WriteString("\n")
	enc := toml.NewEncoder(&b)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Sprintf("# Error encoding config: %v\n", err)
	}
	return b.String()
}
