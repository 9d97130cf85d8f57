// Package config loads runtime configuration for the exhibit site.
//
// Values are layered, later entries winning: built-in defaults, the optional
// festival YAML file, the .env file, the process environment, and finally an
// explicit map supplied with WithEnvMap.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "EXHIBIT_WEB_"

	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultLogLevel     = "info"
	defaultTemplatesDir = "templates"
	defaultPublicDir    = "public"
	defaultLocalesDir   = "locales"
	defaultDataURL      = "public/data.json"
	defaultFetchTimeout = 5 * time.Second
	defaultDay1         = "2025-12-16"
	defaultDay2         = "2025-12-17"
	defaultTimezone     = "Asia/Tokyo"
	defaultSiteName     = "文化祭 展示一覧"

	// DateLayout is the format of the festival day settings.
	DateLayout = "2006-01-02"
)

// Config groups runtime settings by concern.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Paths    PathConfig
	Data     DataConfig
	Festival FestivalConfig
	Trace    TraceConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Dev reparses templates per request and switches to console logs.
	Dev bool
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string
}

// PathConfig locates the on-disk assets.
type PathConfig struct {
	Templates string
	Public    string
	Locales   string
}

// DataConfig locates the record document.
type DataConfig struct {
	// URL is a file path, file://, http(s):// or gs:// location.
	URL          string
	FetchTimeout time.Duration
}

// FestivalConfig pins the two festival days.
type FestivalConfig struct {
	Day1     time.Time
	Day2     time.Time
	Location *time.Location
	SiteName string
}

// TraceConfig names the Cloud project that trace ids belong to.
type TraceConfig struct {
	ProjectID string
}

// ValidationError lists configuration fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap supplies values that take precedence over every other layer.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load resolves the configuration.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	env := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}

	festivalPath := stringWithDefault(env, envPrefix+"FESTIVAL_FILE", "")
	fileValues, err := loadFestivalFile(festivalPath)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := env(key); ok && v != "" {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	}

	var invalid []string

	port := stringWithDefault(lookup, envPrefix+"PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		invalid = append(invalid, "Server.Port")
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, envPrefix+"READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, envPrefix+"WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, envPrefix+"IDLE_TIMEOUT", defaultIdleTimeout),
			Dev:          boolWithDefault(lookup, envPrefix+"DEV", false),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, envPrefix+"LOG_LEVEL", defaultLogLevel),
		},
		Paths: PathConfig{
			Templates: stringWithDefault(lookup, envPrefix+"TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, envPrefix+"PUBLIC_DIR", defaultPublicDir),
			Locales:   stringWithDefault(lookup, envPrefix+"LOCALES_DIR", defaultLocalesDir),
		},
		Data: DataConfig{
			URL:          strings.TrimSpace(stringWithDefault(lookup, envPrefix+"DATA_URL", defaultDataURL)),
			FetchTimeout: durationWithDefault(lookup, envPrefix+"FETCH_TIMEOUT", defaultFetchTimeout),
		},
		Festival: FestivalConfig{
			SiteName: stringWithDefault(lookup, envPrefix+"SITE_NAME", defaultSiteName),
		},
		Trace: TraceConfig{
			ProjectID: stringWithDefault(lookup, envPrefix+"TRACE_PROJECT", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
		},
	}

	if cfg.Data.URL == "" {
		invalid = append(invalid, "Data.URL")
	}

	loc, err := time.LoadLocation(stringWithDefault(lookup, envPrefix+"TIMEZONE", defaultTimezone))
	if err != nil {
		invalid = append(invalid, "Festival.Location")
		loc = time.UTC
	}
	cfg.Festival.Location = loc

	if cfg.Festival.Day1, err = time.ParseInLocation(DateLayout, stringWithDefault(lookup, envPrefix+"DAY1_DATE", defaultDay1), loc); err != nil {
		invalid = append(invalid, "Festival.Day1")
	}
	if cfg.Festival.Day2, err = time.ParseInLocation(DateLayout, stringWithDefault(lookup, envPrefix+"DAY2_DATE", defaultDay2), loc); err != nil {
		invalid = append(invalid, "Festival.Day2")
	}
	if !cfg.Festival.Day1.IsZero() && !cfg.Festival.Day2.IsZero() && cfg.Festival.Day2.Before(cfg.Festival.Day1) {
		invalid = append(invalid, "Festival.Day2")
	}

	if len(invalid) > 0 {
		return cfg, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

// festivalFile is the YAML shape of EXHIBIT_WEB_FESTIVAL_FILE.
type festivalFile struct {
	SiteName string `yaml:"site_name"`
	Timezone string `yaml:"timezone"`
	DataURL  string `yaml:"data_url"`
	Days     struct {
		Day1 string `yaml:"day1"`
		Day2 string `yaml:"day2"`
	} `yaml:"days"`
}

// loadFestivalFile maps the YAML file onto environment keys. An empty path yields no values;
// a named but missing file is an error.
func loadFestivalFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read festival file %s: %w", path, err)
	}
	var f festivalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse festival file %s: %w", path, err)
	}
	values := map[string]string{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values[envPrefix+key] = value
		}
	}
	set("SITE_NAME", f.SiteName)
	set("TIMEZONE", f.Timezone)
	set("DATA_URL", f.DataURL)
	set("DAY1_DATE", f.Days.Day1)
	set("DAY2_DATE", f.Days.Day2)
	return values, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
