// Package hls resolves the real media duration behind an HLS playlist URL.
// Master playlists are followed one level down to their first variant; media
// playlists are summed segment by segment.
package hls

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	streamVariantTag = "#EXT-X-STREAM-INF"
	segmentTag       = "#EXTINF:"
)

// Duration is the probed total runtime. Seconds is rounded to the nearest
// whole second, Minutes is rounded up.
type Duration struct {
	Seconds int64 `json:"seconds"`
	Minutes int64 `json:"minutes"`
}

// FetchError reports a failed playlist download. Status is zero when the
// request never produced a response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrNoVariantFound means a master playlist declared a stream variant but
// never named its URL.
var ErrNoVariantFound = errors.New("master playlist has no variant URL")

type Resolver struct {
	client *resty.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{client: resty.New().SetTimeout(timeout)}
}

// ResolveDuration fetches the playlist at url and returns its total media
// duration. A media playlist without segment tags yields zero, not an
// error; the caller decides how to treat an undetectable duration.
func (r *Resolver) ResolveDuration(url string) (Duration, error) {
	body, err := r.fetch(url)
	if err != nil {
		return Duration{}, err
	}

	if strings.Contains(body, streamVariantTag) {
		variant, err := variantURL(body, url)
		if err != nil {
			return Duration{}, err
		}
		body, err = r.fetch(variant)
		if err != nil {
			return Duration{}, err
		}
	}

	seconds := int64(math.Round(sumSegmentSeconds(body)))
	minutes := int64(math.Ceil(float64(seconds) / 60))

	return Duration{Seconds: seconds, Minutes: minutes}, nil
}

func (r *Resolver) fetch(url string) (string, error) {
	resp, err := r.client.R().Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &FetchError{URL: url, Status: resp.StatusCode()}
	}
	return resp.String(), nil
}

// variantURL finds the first variant reference in a master playlist: the
// first non-comment, non-blank line after the first stream-variant tag.
// Relative references are resolved against the master playlist's base path.
func variantURL(master, masterURL string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(master))
	seenVariantTag := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, streamVariantTag) {
			seenVariantTag = true
			continue
		}
		if !seenVariantTag || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") {
			if idx := strings.LastIndex(masterURL, "/"); idx >= 0 {
				line = masterURL[:idx+1] + line
			}
		}
		return line, nil
	}

	return "", ErrNoVariantFound
}

// sumSegmentSeconds adds up every EXTINF duration in a media playlist.
// Unparseable tags contribute zero.
func sumSegmentSeconds(media string) float64 {
	var total float64

	scanner := bufio.NewScanner(strings.NewReader(media))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, segmentTag) {
			continue
		}
		value := strings.TrimPrefix(line, segmentTag)
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[:idx]
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		total += seconds
	}

	return total
}
