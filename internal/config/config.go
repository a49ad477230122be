// Package config provides configuration management for the remix studio.
// Values come from built-in defaults, then an optional TOML file, then
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// Default values
	DefaultPort        = 8000
	DefaultHost        = "0.0.0.0"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "auto"
	DefaultDataDir     = "."
	DefaultFFmpeg      = "ffmpeg"
	DefaultFFprobe     = "ffprobe"
	DefaultYTDLP       = "yt-dlp"
	DefaultRembg       = "rembg"
	DefaultRemoveBGURL = "https://api.remove.bg/v1.0/removebg"

	// Environment variable names
	EnvConfigFile  = "STUDIO_CONFIG"
	EnvPort        = "STUDIO_PORT"
	EnvHost        = "STUDIO_HOST"
	EnvLogLevel    = "STUDIO_LOG_LEVEL"
	EnvLogFormat   = "STUDIO_LOG_FORMAT"
	EnvDataDir     = "STUDIO_DATA_DIR"
	EnvFFmpeg      = "STUDIO_FFMPEG"
	EnvFFprobe     = "STUDIO_FFPROBE"
	EnvYTDLP       = "STUDIO_YTDLP"
	EnvRembg       = "STUDIO_REMBG"
	EnvRemoveBGKey = "REMOVE_BG_API_KEY"
	EnvRemoveBGURL = "STUDIO_REMOVE_BG_URL"

	DBFilename   = "studio.db"
	LockFilename = "studio.lock"
)

// Config defines the application configuration interface. The working
// directory layout under DataDir is owned by the workspace package.
type Config interface {
	Port() int
	Host() string
	Addr() string
	LogLevel() string
	LogFormat() string
	DataDir() string
	DBPath() string
	LockPath() string
	FFmpegPath() string
	FFprobePath() string
	YTDLPPath() string
	RembgPath() string
	RemoveBGAPIKey() string
	RemoveBGURL() string
}

// fileConfig mirrors the TOML file layout. Zero values mean "not set".
type fileConfig struct {
	Port           int    `toml:"port"`
	Host           string `toml:"host"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	DataDir        string `toml:"data_dir"`
	FFmpeg         string `toml:"ffmpeg"`
	FFprobe        string `toml:"ffprobe"`
	YTDLP          string `toml:"ytdlp"`
	Rembg          string `toml:"rembg"`
	RemoveBGAPIKey string `toml:"remove_bg_api_key"`
	RemoveBGURL    string `toml:"remove_bg_url"`
}

var _ Config = (*EnvConfig)(nil)

// EnvConfig is the resolved configuration.
type EnvConfig struct {
	port      int
	host      string
	logLevel  string
	logFormat string
	dataDir   string

	ffmpeg  string
	ffprobe string
	ytdlp   string
	rembg   string

	removeBGKey string
	removeBGURL string
}

// New loads the file named by STUDIO_CONFIG, if any, then applies
// environment overrides.
func New() (*EnvConfig, error) {
	return Load(os.Getenv(EnvConfigFile))
}

// Load reads the TOML file at path (skipped when empty) and applies
// environment overrides on top.
func Load(path string) (*EnvConfig, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *EnvConfig {
	return &EnvConfig{
		port:        DefaultPort,
		host:        DefaultHost,
		logLevel:    DefaultLogLevel,
		logFormat:   DefaultLogFormat,
		dataDir:     DefaultDataDir,
		ffmpeg:      DefaultFFmpeg,
		ffprobe:     DefaultFFprobe,
		ytdlp:       DefaultYTDLP,
		rembg:       DefaultRembg,
		removeBGURL: DefaultRemoveBGURL,
	}
}

func (c *EnvConfig) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Port != 0 {
		c.port = fc.Port
	}
	setString(&c.host, fc.Host)
	setString(&c.logLevel, fc.LogLevel)
	setString(&c.logFormat, fc.LogFormat)
	setString(&c.dataDir, fc.DataDir)
	setString(&c.ffmpeg, fc.FFmpeg)
	setString(&c.ffprobe, fc.FFprobe)
	setString(&c.ytdlp, fc.YTDLP)
	setString(&c.rembg, fc.Rembg)
	setString(&c.removeBGKey, fc.RemoveBGAPIKey)
	setString(&c.removeBGURL, fc.RemoveBGURL)
	return nil
}

func (c *EnvConfig) applyEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}
	setString(&c.host, os.Getenv(EnvHost))
	setString(&c.logLevel, os.Getenv(EnvLogLevel))
	setString(&c.logFormat, os.Getenv(EnvLogFormat))
	setString(&c.dataDir, os.Getenv(EnvDataDir))
	setString(&c.ffmpeg, os.Getenv(EnvFFmpeg))
	setString(&c.ffprobe, os.Getenv(EnvFFprobe))
	setString(&c.ytdlp, os.Getenv(EnvYTDLP))
	setString(&c.rembg, os.Getenv(EnvRembg))
	setString(&c.removeBGKey, os.Getenv(EnvRemoveBGKey))
	setString(&c.removeBGURL, os.Getenv(EnvRemoveBGURL))
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	switch strings.ToLower(c.logFormat) {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: want auto, json or text", c.logFormat)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (c *EnvConfig) Port() int         { return c.port }
func (c *EnvConfig) Host() string      { return c.host }
func (c *EnvConfig) LogLevel() string  { return c.logLevel }
func (c *EnvConfig) LogFormat() string { return c.logFormat }
func (c *EnvConfig) DataDir() string   { return c.dataDir }

// Addr is the host:port the HTTP server listens on.
func (c *EnvConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBPath returns the full path to the SQLite job ledger.
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// LockPath is the single-instance lock file held while serving.
func (c *EnvConfig) LockPath() string {
	return filepath.Join(c.dataDir, LockFilename)
}

func (c *EnvConfig) FFmpegPath() string     { return c.ffmpeg }
func (c *EnvConfig) FFprobePath() string    { return c.ffprobe }
func (c *EnvConfig) YTDLPPath() string      { return c.ytdlp }
func (c *EnvConfig) RembgPath() string      { return c.rembg }
func (c *EnvConfig) RemoveBGAPIKey() string { return c.removeBGKey }
func (c *EnvConfig) RemoveBGURL() string    { return c.removeBGURL }

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
