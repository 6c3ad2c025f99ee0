// Package config loads analyzer settings from TOML or YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"quantum/internal/pattern"
)

// EnvConfig names the environment variable holding an explicit config path.
const EnvConfig = "QA_CONFIG"

// DefaultNames are searched in the working directory, in order.
var DefaultNames = []string{"quantum.toml", "quantum_analyzer.yaml", "quantum_analyzer.yml"}

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatBoth     = "both"
)

type Config struct {
	Patterns    []string `toml:"patterns" yaml:"patterns"`
	Output      string   `toml:"output" yaml:"output"`
	Format      string   `toml:"format" yaml:"format"`
	Severity    string   `toml:"severity" yaml:"severity"`
	Tags        []string `toml:"tags" yaml:"tags"`
	Parallel    bool     `toml:"parallel" yaml:"parallel"`
	Threads     int      `toml:"threads" yaml:"threads"` // 0 - по числу CPU
	Extensions  []string `toml:"extensions" yaml:"extensions"`
	Fix         bool     `toml:"fix" yaml:"fix"`
	FixPatterns []string `toml:"fix_patterns" yaml:"fix_patterns"`
	Strict      bool     `toml:"strict" yaml:"strict"`
	Cache       bool     `toml:"cache" yaml:"cache"`
	CacheDir    string   `toml:"cache_dir" yaml:"cache_dir"`
	UI          string   `toml:"ui" yaml:"ui"` // auto|on|off

	Logging Logging `toml:"logging" yaml:"logging"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

type Logging struct {
	Level  string `toml:"level" yaml:"level"`   // debug|info|warn|error
	Format string `toml:"format" yaml:"format"` // text|json
}

func Default() Config {
	return Config{
		Output:   "analysis_results.json",
		Format:   FormatJSON,
		Severity: "info",
		Parallel: true,
		Logging:  Logging{Level: "warn", Format: "text"},
	}
}

// Find returns the config file to use: $QA_CONFIG if it names an existing
// file, else the first of DefaultNames present in dir.
func Find(dir string) (string, bool, error) {
	if env := os.Getenv(EnvConfig); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, true, nil
		}
	}
	for _, name := range DefaultNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load reads path on top of Default. The decoder is picked by extension:
// .toml, or .yaml/.yml. Environment overrides are not applied.
func Load(path string) (Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(path, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(path, &cfg)
	default:
		return cfg, fmt.Errorf("%s: unsupported config format (want .toml, .yaml or .yml)", path)
	}
	if err != nil {
		return cfg, err
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// Discover finds and loads the config for dir, falling back to defaults,
// then applies environment overrides.
func Discover(dir string) (Config, error) {
	path, ok, err := Find(dir)
	if err != nil {
		return Default(), err
	}
	cfg := Default()
	if ok {
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

// ApplyEnv applies QA_LOG_LEVEL, QA_LOG_FORMAT, QA_THREADS and QA_UI.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("QA_UI"); v != "" {
		c.UI = v
	}
	if v := getenv("QA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("QA_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := getenv("QA_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("QA_THREADS: invalid thread count %q", v)
		}
		c.Threads = n
	}
	return nil
}

// Validate normalises Format and checks enumerated fields.
func (c *Config) Validate() error {
	format, err := NormalizeFormat(c.Format)
	if err != nil {
		return err
	}
	c.Format = format
	if _, err := pattern.ParseSeverity(c.Severity); err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	return nil
}

// NormalizeFormat maps "markdown" to "md" and rejects unknown formats.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case "markdown", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatBoth:
		return FormatBoth, nil
	}
	return "", fmt.Errorf("unsupported format %q (want json, md, markdown or both)", format)
}

// MinSeverity returns the parsed severity floor.
func (c *Config) MinSeverity() pattern.Severity {
	sev, err := pattern.ParseSeverity(c.Severity)
	if err != nil {
		return pattern.Info
	}
	return sev
}

// Jobs is the worker count for the scanner: 1 when parallel analysis is off.
func (c *Config) Jobs() int {
	if !c.Parallel {
		return 1
	}
	return c.Threads
}

// OutputPaths returns where JSON and Markdown reports go; an empty string
// means the format is not written. Markdown reuses Output with an .md suffix.
func (c *Config) OutputPaths() (jsonPath, mdPath string) {
	md := strings.TrimSuffix(c.Output, filepath.Ext(c.Output)) + ".md"
	switch c.Format {
	case FormatMarkdown:
		return "", md
	case FormatBoth:
		return c.Output, md
	default:
		return c.Output, ""
	}
}
