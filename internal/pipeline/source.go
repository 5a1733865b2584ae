package pipeline

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/forPelevin/shortsclip/internal/types"
)

// SourceFromArg turns a CLI argument into a source. Existing files and
// anything that is neither a URL nor a bare video id are local sources, so a
// bad path is reported by Validate instead of reaching the downloader.
func SourceFromArg(arg string) types.Source {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") {
		return types.Source{ID: videoIDFromURL(arg), URL: arg}
	}
	if st, err := os.Stat(arg); (err != nil || st.IsDir()) && looksLikeVideoID(arg) {
		v := types.Video{ID: arg}
		return types.Source{ID: arg, URL: v.URL()}
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}
	return types.Source{
		ID:        strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)),
		LocalPath: abs,
	}
}

// videoIDFromURL understands watch?v=, youtu.be/<id> and /shorts/<id>.
// Other URLs fall back to a hash of the URL.
func videoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hash(raw)
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case host == "youtu.be" && segs[0] != "":
		return segs[0]
	case len(segs) == 2 && (segs[0] == "shorts" || segs[0] == "live" || segs[0] == "embed"):
		return segs[1]
	}
	if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
		return base + "-" + hash(raw)[:6]
	}
	return hash(raw)
}

func looksLikeVideoID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
