package types

import "time"

// CaptionSpan is one timed caption cue, in seconds.
type CaptionSpan struct {
	Start float64
	End   float64
	Text  string
}

// ClipWindow is a [Start, End) range selected for extraction.
// Score is 0 for evenly spaced windows.
type ClipWindow struct {
	Start float64
	End   float64
	Score int
}

func (w ClipWindow) Duration() float64 { return w.End - w.Start }

type ClipResult struct {
	Path   string
	Window ClipWindow
}

// Source is one item to clip: either a remote URL or a local file.
type Source struct {
	ID        string
	URL       string
	LocalPath string
	Title     string
}

func (s Source) IsLocal() bool { return s.LocalPath != "" }

// Video is a catalog entry.
type Video struct {
	ID          string
	Title       string
	Channel     string
	Views       int64
	Duration    time.Duration
	PublishedAt string
	Score       float64
}

func (v Video) URL() string { return "https://www.youtube.com/watch?v=" + v.ID }

type Manifest struct {
	CreatedAt string         `json:"created_at"`
	Items     []ManifestItem `json:"items"`
}

type ManifestItem struct {
	SourceID string         `json:"source_id"`
	Source   string         `json:"source"`
	Duration float64        `json:"duration_sec"`
	Fallback bool           `json:"even_spaced"`
	Error    string         `json:"error,omitempty"`
	Clips    []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID       string  `json:"id"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Score    int     `json:"score"`
	File     string  `json:"file"`
}

// RenderProfile is one way to transcode a window into a vertical clip.
type RenderProfile struct {
	Name         string
	Codec        string
	Width        int
	Height       int
	FPS          int
	Preset       string
	CRF          string // empty for encoders without constant-quality mode
	AudioBitrate string
	Threads      int
	Extra        []string
}

// EncodeJob is a single encoder invocation.
type EncodeJob struct {
	Input   string
	Output  string
	Start   float64
	End     float64
	Profile RenderProfile
	BurnASS string
}

type CatalogQuery struct {
	Region      string
	Category    string
	MaxResults  int
	MinDuration time.Duration
	MaxDuration time.Duration
	DaysBack    int
}
