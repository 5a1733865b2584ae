package config

import (
	"os"
	"path/filepath"
	"testing"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("YT_DLP_PATH", "")
	t.Setenv("FFMPEG_PATH", "")
	t.Setenv("YOUTUBE_REGION", "")
	path := filepath.Join(t.TempDir(), "shortsclip.yaml")
	body := "clip_seconds: 45\nclips_per_video: 5\nyoutube:\n  region: US\ntools:\n  yt_dlp: /opt/yt-dlp\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClipSeconds != 45 || cfg.ClipsPerVideo != 5 {
		t.Fatalf("unexpected clip settings: %+v", cfg)
	}
	if cfg.Tools.YtDlp != "/opt/yt-dlp" || cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("unexpected tools: %+v", cfg.Tools)
	}
	if cfg.YouTube.Category != "24" || cfg.MaxSourceSeconds != 2400 {
		t.Fatalf("defaults must survive a partial file: %+v", cfg)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("clip_seconds: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"YT_DLP_ENABLE_BROWSER_COOKIES": "yes",
		"YOUTUBE_API_KEY":               " k ",
		"YOUTUBE_REGION":                "",
		"YOUTUBE_API_ALLOWED_HOSTS":     "a.example,b.example",
	}))
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if !cfg.EnableBrowserCookies || cfg.YouTube.APIKey != "k" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.YouTube.Region != "ID" {
		t.Fatalf("empty env value must not clear region, got %q", cfg.YouTube.Region)
	}
	if len(cfg.YouTube.AllowedHosts) != 2 {
		t.Fatalf("unexpected allowed hosts: %v", cfg.YouTube.AllowedHosts)
	}

	if err := Default().ApplyEnv(lookupFrom(map[string]string{"YT_DLP_ENABLE_BROWSER_COOKIES": "maybe"})); err == nil {
		t.Fatal("expected invalid boolean error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Concurrency = 4
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Concurrency != 4 {
		t.Fatalf("concurrency = %d, want 4", got.Concurrency)
	}
}

func TestValidate_SourceBounds(t *testing.T) {
	cfg := Default()
	cfg.MinSourceSeconds = 600
	cfg.MaxSourceSeconds = 60
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected min > max to be rejected")
	}
	cfg.MaxSourceSeconds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero max means unbounded: %v", err)
	}
}
