package ports

import (
	"context"

	"github.com/forPelevin/shortsclip/internal/types"
)

type VideoTool interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Encode(ctx context.Context, job types.EncodeJob) error
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
}

// MediaFetcher drives an external downloader. Each call is one attempt.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, url, outTemplate string, extra []string) (string, error)
	FetchCaptions(ctx context.Context, url, outTemplate string, langs []string) error
}

// Transcriber produces a WebVTT caption track for a mono 16 kHz wav.
type Transcriber interface {
	TranscribeVTT(ctx context.Context, wavPath, outPrefix string) (string, error)
}

type Catalog interface {
	Trending(ctx context.Context, q types.CatalogQuery) ([]types.Video, error)
	TopRecent(ctx context.Context, q types.CatalogQuery) ([]types.Video, error)
}
