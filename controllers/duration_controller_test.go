package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestResolveDurationEndpoint(t *testing.T) {
	env := newTestEnv(t)
	server := playlistServer(t, map[string]string{
		"/video.m3u8": "#EXTM3U\n#EXTINF:4.0,\ns0.ts\n#EXTINF:4.0,\ns1.ts\n#EXTINF:2.5,\ns2.ts\n#EXT-X-ENDLIST\n",
	})

	_, token := env.createUser(t, "Admin", "admin")

	status, result := env.request(t, "POST", "/api/videos/duration", token,
		fiber.Map{"url": server.URL + "/video.m3u8"})

	require.Equal(t, fiber.StatusOK, status)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["seconds"])
	assert.Equal(t, float64(1), data["minutes"])
}

func TestResolveDurationEndpointMasterPlaylist(t *testing.T) {
	env := newTestEnv(t)
	routes := map[string]string{
		"/hls/variant.m3u8": "#EXTM3U\n#EXTINF:62.7,\ns0.ts\n#EXTINF:62.7,\ns1.ts\n#EXT-X-ENDLIST\n",
	}
	server := playlistServer(t, routes)
	routes["/hls/master.m3u8"] = "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=800000\nvariant.m3u8\n"

	_, token := env.createUser(t, "Admin", "admin")

	status, result := env.request(t, "POST", "/api/videos/duration", token,
		fiber.Map{"url": server.URL + "/hls/master.m3u8"})

	require.Equal(t, fiber.StatusOK, status)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, float64(125), data["seconds"])
	assert.Equal(t, float64(3), data["minutes"])
}

func TestResolveDurationEndpointFetchError(t *testing.T) {
	env := newTestEnv(t)
	server := playlistServer(t, map[string]string{})

	_, token := env.createUser(t, "Admin", "admin")

	status, result := env.request(t, "POST", "/api/videos/duration", token,
		fiber.Map{"url": server.URL + "/missing.m3u8"})

	require.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "FETCH_ERROR", result["error"])
	details := result["details"].(map[string]interface{})
	assert.Equal(t, float64(http.StatusNotFound), details["status"])
}

func TestResolveDurationEndpointNoVariant(t *testing.T) {
	env := newTestEnv(t)
	server := playlistServer(t, map[string]string{
		"/master.m3u8": "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=800000\n",
	})

	_, token := env.createUser(t, "Admin", "admin")

	status, result := env.request(t, "POST", "/api/videos/duration", token,
		fiber.Map{"url": server.URL + "/master.m3u8"})

	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "NO_VARIANT_FOUND", result["error"])
}

func TestResolveDurationEndpointRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.createUser(t, "Regular User", "user")

	status, result := env.request(t, "POST", "/api/videos/duration", token,
		fiber.Map{"url": "http://example.com/video.m3u8"})

	require.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", result["error"])
}
