package hls

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:4
#EXTINF:4.0,
segment0.ts
#EXTINF:4.0,
segment1.ts
#EXTINF:2.5,
segment2.ts
#EXT-X-ENDLIST
`

func playlistServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolveDurationMediaPlaylist(t *testing.T) {
	server := playlistServer(t, map[string]string{"/video.m3u8": mediaPlaylist})

	resolver := NewResolver(5 * time.Second)
	duration, err := resolver.ResolveDuration(server.URL + "/video.m3u8")
	require.NoError(t, err)

	// 10.5s rounds to 11; ceil(11/60) = 1
	assert.Equal(t, int64(11), duration.Seconds)
	assert.Equal(t, int64(1), duration.Minutes)
}

func TestResolveDurationMasterWithRelativeVariant(t *testing.T) {
	master := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720
720p/index.m3u8
`
	variant := `#EXTM3U
#EXTINF:62.7,
seg0.ts
#EXTINF:62.7,
seg1.ts
#EXT-X-ENDLIST
`
	server := playlistServer(t, map[string]string{
		"/hls/master.m3u8":     master,
		"/hls/720p/index.m3u8": variant,
	})

	resolver := NewResolver(5 * time.Second)
	duration, err := resolver.ResolveDuration(server.URL + "/hls/master.m3u8")
	require.NoError(t, err)

	// 125.4s rounds to 125; ceil(125/60) = 3
	assert.Equal(t, int64(125), duration.Seconds)
	assert.Equal(t, int64(3), duration.Minutes)
}

func TestResolveDurationMasterWithAbsoluteVariant(t *testing.T) {
	variant := `#EXTM3U
#EXTINF:30.0,
seg0.ts
#EXT-X-ENDLIST
`
	routes := map[string]string{"/abs/variant.m3u8": variant}
	server := playlistServer(t, routes)
	routes["/master.m3u8"] = "#EXTM3U\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=800000\n" +
		server.URL + "/abs/variant.m3u8\n"

	resolver := NewResolver(5 * time.Second)
	duration, err := resolver.ResolveDuration(server.URL + "/master.m3u8")
	require.NoError(t, err)
	assert.Equal(t, int64(30), duration.Seconds)
	assert.Equal(t, int64(1), duration.Minutes)
}

func TestResolveDurationNoVariantFound(t *testing.T) {
	master := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000
#EXT-X-COMMENT:nothing follows
`
	server := playlistServer(t, map[string]string{"/master.m3u8": master})

	resolver := NewResolver(5 * time.Second)
	_, err := resolver.ResolveDuration(server.URL + "/master.m3u8")
	assert.ErrorIs(t, err, ErrNoVariantFound)
}

func TestResolveDurationFetchError(t *testing.T) {
	server := playlistServer(t, map[string]string{})

	resolver := NewResolver(5 * time.Second)
	_, err := resolver.ResolveDuration(server.URL + "/missing.m3u8")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestResolveDurationZeroSegments(t *testing.T) {
	server := playlistServer(t, map[string]string{"/empty.m3u8": "#EXTM3U\n#EXT-X-ENDLIST\n"})

	resolver := NewResolver(5 * time.Second)
	duration, err := resolver.ResolveDuration(server.URL + "/empty.m3u8")
	require.NoError(t, err)

	// Zero is a valid "could not detect" result, not an error.
	assert.Equal(t, int64(0), duration.Seconds)
	assert.Equal(t, int64(0), duration.Minutes)
}

func TestSumSegmentSecondsSkipsUnparseable(t *testing.T) {
	media := "#EXTM3U\n#EXTINF:abc,\nseg0.ts\n#EXTINF:5.0,\nseg1.ts\n"
	assert.Equal(t, 5.0, sumSegmentSeconds(media))
}

func TestVariantURLResolution(t *testing.T) {
	master := "#EXT-X-STREAM-INF:BANDWIDTH=1\n\n# comment\nlow/index.m3u8\n"
	url, err := variantURL(master, "https://cdn.example.com/course/lesson/master.m3u8")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/course/lesson/low/index.m3u8", url)

	_, err = variantURL("#EXT-X-STREAM-INF:BANDWIDTH=1\n", "https://cdn.example.com/master.m3u8")
	assert.True(t, errors.Is(err, ErrNoVariantFound))
}
