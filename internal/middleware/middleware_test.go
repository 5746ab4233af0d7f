package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShouldCompress(t *testing.T) {
	assert.True(t, ShouldCompress("application/json; charset=utf-8", 2048))
	assert.True(t, ShouldCompress("text/plain", 1024))
	assert.False(t, ShouldCompress("application/json", 10))
	assert.False(t, ShouldCompress("image/png", 1<<20))
}

func TestWithCompression(t *testing.T) {
	big := strings.Repeat("meme ", 1000)
	png := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 1000)

	r := gin.New()
	r.Use(WithCompression())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"count": 1}) })
	r.GET("/image", func(c *gin.Context) { c.Data(http.StatusOK, "image/png", png) })
	r.GET("/file", func(c *gin.Context) {
		http.ServeContent(c.Writer, c.Request, "memes.txt", time.Time{}, strings.NewReader(big))
	})

	t.Run("compresses large text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/big", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		w := serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Less(t, w.Body.Len(), len(big))

		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, big, string(plain))
	})

	t.Run("leaves small json alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/small", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := serve(r, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.JSONEq(t, `{"count":1}`, w.Body.String())
	})

	t.Run("never recompresses images", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/image", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := serve(r, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, png, w.Body.Bytes())
	})

	t.Run("leaves ranged responses alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/file", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("Range", "bytes=0-2999")
		w := serve(r, req)

		require.Equal(t, http.StatusPartialContent, w.Code)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "bytes 0-2999/5000", w.Header().Get("Content-Range"))
		assert.Equal(t, "3000", w.Header().Get("Content-Length"))
		assert.Equal(t, big[:3000], w.Body.String())
	})

	t.Run("respects missing accept-encoding", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/big", nil))
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, big, w.Body.String())
	})
}

func TestWithDimensions(t *testing.T) {
	r := gin.New()
	r.GET("/dims", WithDimensions("width", "height"), func(c *gin.Context) {
		_, hasW := c.Get("width")
		_, hasH := c.Get("height")
		c.JSON(http.StatusOK, gin.H{
			"width": c.GetInt("width"), "height": c.GetInt("height"),
			"hasWidth": hasW, "hasHeight": hasH,
		})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/dims?width=100", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"width":100,"height":0,"hasWidth":true,"hasHeight":false}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/dims", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"width":0,"height":0,"hasWidth":false,"hasHeight":false}`, w.Body.String())

	for _, q := range []string{"width=0", "width=-4", "height=abc", "height=1.5"} {
		w = serve(r, httptest.NewRequest(http.MethodGet, "/dims?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Contains(t, w.Body.String(), `"statusCode":400`, q)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), WithLogging(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetricsMiddleware()
	r := gin.New()
	r.Use(m.WithMetrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", m.Handler)

	serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), `http_response_status_total{code="200",route="/ping"}`)
}
