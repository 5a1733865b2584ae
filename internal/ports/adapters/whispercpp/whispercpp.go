package whispercpp

import (
	"context"
	"fmt"
	"os"

	"github.com/forPelevin/shortsclip/internal/ports/adapters/proc"
	"github.com/forPelevin/shortsclip/internal/types"
)

type Adapter struct {
	bin   string
	model string
	lang  string
}

func New(binPath, modelPath, lang string) *Adapter {
	if lang == "" {
		lang = "auto"
	}
	return &Adapter{bin: binPath, model: modelPath, lang: lang}
}

// TranscribeVTT writes <outPrefix>.vtt and returns its path.
func (a *Adapter) TranscribeVTT(ctx context.Context, wavPath, outPrefix string) (string, error) {
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", a.lang,
		"-ovtt",
		"-of", outPrefix,
	}
	if _, err := proc.Run(ctx, proc.Cmd{Tool: "whisper.cpp", Bin: a.bin, Args: args}); err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrCaptionFetchFailed, err)
	}
	vtt := outPrefix + ".vtt"
	if _, err := os.Stat(vtt); err != nil {
		return "", fmt.Errorf("%w: whisper.cpp output: %w", types.ErrCaptionFetchFailed, err)
	}
	return vtt, nil
}
