package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	ScratchDir    string `yaml:"scratch_dir"`
	OutputDir     string `yaml:"output_dir"`
	ClipSeconds   int    `yaml:"clip_seconds"`
	ClipsPerVideo int    `yaml:"clips_per_video"`
	Concurrency   int    `yaml:"concurrency"`
	BurnCaptions  bool   `yaml:"burn_captions"`

	// Source duration bounds used when picking videos from the catalog.
	MinSourceSeconds int `yaml:"min_source_seconds"`
	MaxSourceSeconds int `yaml:"max_source_seconds"`

	Tools   ToolsConfig   `yaml:"tools"`
	Whisper WhisperConfig `yaml:"whisper"`
	YouTube YouTubeConfig `yaml:"youtube"`

	EnableBrowserCookies bool `yaml:"enable_browser_cookies"`
}

type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	YtDlp   string `yaml:"yt_dlp"`
}

type WhisperConfig struct {
	Bin   string `yaml:"bin"`
	Model string `yaml:"model"`
	Lang  string `yaml:"lang"`
}

type YouTubeConfig struct {
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	Region       string   `yaml:"region"`
	Category     string   `yaml:"category"`
	DaysBack     int      `yaml:"days_back"`
	MaxResults   int      `yaml:"max_results"`
}

// Load reads configuration from file, falling back to defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ScratchDir:       filepath.Join(".cache", "downloads"),
		OutputDir:        "output",
		ClipSeconds:      30,
		ClipsPerVideo:    3,
		Concurrency:      1,
		MinSourceSeconds: 60,
		MaxSourceSeconds: 2400,
		Tools: ToolsConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			YtDlp:   "yt-dlp",
		},
		Whisper: WhisperConfig{Lang: "auto"},
		YouTube: YouTubeConfig{
			Region:     "ID",
			Category:   "24",
			DaysBack:   3,
			MaxResults: 10,
		},
	}
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("SHORTSCLIP_SCRATCH_DIR", &c.ScratchDir)
	str("SHORTSCLIP_OUTPUT_DIR", &c.OutputDir)
	str("FFMPEG_PATH", &c.Tools.FFmpeg)
	str("FFPROBE_PATH", &c.Tools.FFprobe)
	str("YT_DLP_PATH", &c.Tools.YtDlp)
	str("WHISPER_BIN", &c.Whisper.Bin)
	str("WHISPER_MODEL", &c.Whisper.Model)
	str("YOUTUBE_API_KEY", &c.YouTube.APIKey)
	str("YOUTUBE_API_BASE_URL", &c.YouTube.BaseURL)
	str("YOUTUBE_REGION", &c.YouTube.Region)
	str("YOUTUBE_CATEGORY_ID", &c.YouTube.Category)

	if v, ok := lookup("YOUTUBE_API_ALLOWED_HOSTS"); ok && strings.TrimSpace(v) != "" {
		c.YouTube.AllowedHosts = strings.Split(v, ",")
	}
	if v, ok := lookup("YT_DLP_ENABLE_BROWSER_COOKIES"); ok && strings.TrimSpace(v) != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("YT_DLP_ENABLE_BROWSER_COOKIES: %w", err)
		}
		c.EnableBrowserCookies = b
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.MinSourceSeconds < 0 || c.MaxSourceSeconds < 0 {
		return fmt.Errorf("source duration bounds must be >= 0")
	}
	if c.MaxSourceSeconds > 0 && c.MinSourceSeconds > c.MaxSourceSeconds {
		return fmt.Errorf("min_source_seconds (%d) exceeds max_source_seconds (%d)", c.MinSourceSeconds, c.MaxSourceSeconds)
	}
	return nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func findConfigFile() string {
	candidates := []string{
		"./shortsclip.yaml",
		"./shortsclip.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".shortsclip", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
