package youtube

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/shortsclip/internal/cascade"
	"github.com/forPelevin/shortsclip/internal/types"
	"github.com/tidwall/gjson"
)

const (
	defaultRegion = "ID"
	defaultMax    = 10
	detailsPart   = "snippet,statistics,contentDetails"
)

var errNoResults = errors.New("search returned no videos")

// Adapter talks to the YouTube Data API v3.
type Adapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
	Logf    func(format string, args ...any)
}

func New(apiKey, baseURL string) *Adapter {
	return &Adapter{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: normalizeBaseURL(baseURL),
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

// Trending lists the region's most popular chart. An empty category result is
// retried without the category, and a duration filter that removes everything
// is ignored.
func (a *Adapter) Trending(ctx context.Context, q types.CatalogQuery) ([]types.Video, error) {
	q = withDefaults(q)
	query := func(category string) ([]gjson.Result, error) {
		params := url.Values{
			"part":       {detailsPart},
			"chart":      {"mostPopular"},
			"regionCode": {q.Region},
			"maxResults": {strconv.Itoa(q.MaxResults)},
		}
		if category != "" {
			params.Set("videoCategoryId", category)
		}
		body, err := a.get(ctx, "videos", params)
		if err != nil {
			return nil, err
		}
		return gjson.GetBytes(body, "items").Array(), nil
	}

	items, err := query(q.Category)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && q.Category != "" {
		a.logf("trending: no videos in category %s, retrying without category", q.Category)
		if items, err = query(""); err != nil {
			return nil, err
		}
	}
	return filterDuration(parseVideos(items, nil), q), nil
}

// TopRecent ranks recently published videos by an engagement score that
// decays with age. It falls back to Trending when search yields nothing.
func (a *Adapter) TopRecent(ctx context.Context, q types.CatalogQuery) ([]types.Video, error) {
	q = withDefaults(q)
	days := min(7, max(1, q.DaysBack))
	limit := max(25, min(50, q.MaxResults*4))
	now := a.now().UTC()

	search := func(after time.Time) cascade.Step[[]string] {
		name := "any-time"
		if !after.IsZero() {
			name = "published-after-" + after.Format("2006-01-02")
		}
		return cascade.Step[[]string]{
			Name: name,
			Run: func(ctx context.Context) ([]string, error) {
				return a.searchIDs(ctx, q, limit, after)
			},
		}
	}
	ids, _, err := cascade.Run(ctx, "catalog search", errNoResults, []cascade.Step[[]string]{
		search(now.AddDate(0, 0, -days)),
		search(now.AddDate(0, 0, -max(14, days*3))),
		search(time.Time{}),
	}, cascade.Policy{PreferLast: true, Logf: a.Logf})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logf("top recent: %s, using trending chart", types.FirstLine(err))
		return a.Trending(ctx, q)
	}

	body, err := a.get(ctx, "videos", url.Values{
		"part":       {detailsPart},
		"id":         {strings.Join(ids[:min(50, len(ids))], ",")},
		"maxResults": {"50"},
	})
	if err != nil {
		return nil, err
	}
	videos := filterDuration(parseVideos(gjson.GetBytes(body, "items").Array(), func(item gjson.Result) float64 {
		return engagementScore(
			item.Get("statistics.viewCount").Int(),
			item.Get("statistics.likeCount").Int(),
			item.Get("statistics.commentCount").Int(),
			publishedAt(item.Get("snippet.publishedAt").String(), now),
			now,
		)
	}), q)
	if len(videos) == 0 {
		return a.Trending(ctx, q)
	}

	slices.SortStableFunc(videos, func(x, y types.Video) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(y.Views, x.Views)
	})
	if len(videos) > q.MaxResults {
		videos = videos[:q.MaxResults]
	}
	return videos, nil
}

func (a *Adapter) searchIDs(ctx context.Context, q types.CatalogQuery, limit int, after time.Time) ([]string, error) {
	params := url.Values{
		"part":       {"id"},
		"type":       {"video"},
		"order":      {"viewCount"},
		"regionCode": {q.Region},
		"maxResults": {strconv.Itoa(limit)},
	}
	if !after.IsZero() {
		params.Set("publishedAfter", after.Format(time.RFC3339))
	}
	if q.Category != "" {
		params.Set("videoCategoryId", q.Category)
	}
	body, err := a.get(ctx, "search", params)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range gjson.GetBytes(body, "items.#.id.videoId").Array() {
		if s := id.String(); s != "" {
			ids = append(ids, s)
		}
	}
	if len(ids) == 0 {
		return nil, errNoResults
	}
	return ids, nil
}

func (a *Adapter) get(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	if a.apiKey == "" {
		return nil, errors.New("youtube api key is required (set YOUTUBE_API_KEY)")
	}
	params.Set("key", a.apiKey)
	endpoint := a.baseURL + "/youtube/v3/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.New(redactSecrets(err.Error(), a.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = truncate(string(body), 2000)
		}
		return nil, fmt.Errorf("youtube %s status %d: %s", resource, resp.StatusCode, redactSecrets(msg, a.apiKey))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("youtube %s: invalid json response", resource)
	}
	return body, nil
}

func (a *Adapter) logf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

func withDefaults(q types.CatalogQuery) types.CatalogQuery {
	q.Region = strings.TrimSpace(q.Region)
	if q.Region == "" {
		q.Region = defaultRegion
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.MaxResults <= 0 {
		q.MaxResults = defaultMax
	}
	return q
}

func parseVideos(items []gjson.Result, score func(gjson.Result) float64) []types.Video {
	out := make([]types.Video, 0, len(items))
	for _, item := range items {
		v := types.Video{
			ID:          item.Get("id").String(),
			Title:       item.Get("snippet.title").String(),
			Channel:     item.Get("snippet.channelTitle").String(),
			Views:       item.Get("statistics.viewCount").Int(),
			Duration:    parseISODuration(item.Get("contentDetails.duration").String()),
			PublishedAt: item.Get("snippet.publishedAt").String(),
		}
		if score != nil {
			v.Score = score(item)
		}
		out = append(out, v)
	}
	return out
}

// filterDuration keeps videos within [MinDuration, MaxDuration]. When nothing
// survives, the unfiltered list is returned.
func filterDuration(videos []types.Video, q types.CatalogQuery) []types.Video {
	var kept []types.Video
	for _, v := range videos {
		if v.Duration < q.MinDuration {
			continue
		}
		if q.MaxDuration > 0 && v.Duration > q.MaxDuration {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return videos
	}
	return kept
}

func engagementScore(views, likes, comments int64, published, now time.Time) float64 {
	hours := math.Max(1, now.Sub(published).Hours())
	return float64(views+2*likes+3*comments) / math.Pow(hours+2, 0.65)
}

// publishedAt treats an unparsable timestamp as brand new.
func publishedAt(s string, now time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return now
	}
	return t
}

// Years and months have no fixed length and are ignored.
var reISODuration = regexp.MustCompile(`^P(?:\d+Y)?(?:\d+M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

func parseISODuration(s string) time.Duration {
	m := reISODuration.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	n := func(i int) time.Duration {
		v, _ := strconv.Atoi(m[i])
		return time.Duration(v)
	}
	return n(1)*7*24*time.Hour + n(2)*24*time.Hour + n(3)*time.Hour + n(4)*time.Minute + n(5)*time.Second
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var apiKeyParamRE = regexp.MustCompile(`(?i)([?&]key=)[^&\s"]+`)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	return apiKeyParamRE.ReplaceAllString(out, "${1}[REDACTED]")
}
