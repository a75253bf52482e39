package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/conferences/:id/schedule")
	return c
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	// Both requests resolve to the same route template; the key must come
	// from the concrete path so one conference's board is never served for
	// another.
	a := cacheKeyFrom("cache", 0, boardContext(t, "/v1/conferences/5/schedule"))
	b := cacheKeyFrom("cache", 0, boardContext(t, "/v1/conferences/6/schedule"))
	assert.NotEqual(t, a, b)
}

func TestCacheKeyVariesWithQueryAndGeneration(t *testing.T) {
	base := cacheKeyFrom("cache", 0, boardContext(t, "/v1/conferences/5/schedule"))

	withQuery := cacheKeyFrom("cache", 0, boardContext(t, "/v1/conferences/5/schedule?day=2"))
	assert.NotEqual(t, base, withQuery)

	bumped := cacheKeyFrom("cache", 1, boardContext(t, "/v1/conferences/5/schedule"))
	assert.NotEqual(t, base, bumped)

	again := cacheKeyFrom("cache", 0, boardContext(t, "/v1/conferences/5/schedule"))
	assert.Equal(t, base, again)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": {"application/json"},
		"X-Custom":     {"a", "b"},
	}
	body := []byte(`{"ok":true}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestPayloadEmptyBody(t *testing.T) {
	bs, err := encodePayload(http.StatusNoContent, http.Header{}, nil)
	require.NoError(t, err)

	status, _, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload([]byte("short"))
	assert.False(t, ok)

	// Header length pointing past the buffer.
	bad := make([]byte, 12)
	bad[7] = 0xFF
	_, _, _, ok = decodePayload(bad)
	assert.False(t, ok)
}
