package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// MinSizeForCompression skips bodies too small to benefit.
const MinSizeForCompression = 1024

var compressibleTypes = []string{
	"text/",
	"application/json",
	"application/javascript",
	"application/xml",
	"application/yaml",
	"image/svg",
}

// ShouldCompress determines if content should be compressed based on type and size
func ShouldCompress(contentType string, size int) bool {
	if size < MinSizeForCompression {
		return false
	}
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// CompressData compresses byte data using gzip
func CompressData(data []byte) ([]byte, error) {
	var compressed bytes.Buffer
	gzipWriter := gzip.NewWriter(&compressed)

	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}

	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return compressed.Bytes(), nil
}

// bufferedWriter holds the body back so the encoding can be chosen once the
// content type and length are known.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// WithCompression gzips compressible responses for clients that accept it.
// Images are passed through untouched.
func WithCompression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		original := c.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		c.Writer = bw
		defer func() { c.Writer = original }()

		c.Next()

		data := bw.body.Bytes()
		header := original.Header()
		// ranges are byte offsets into the identity body
		partial := original.Status() == http.StatusPartialContent || header.Get("Content-Range") != ""
		if !original.Written() && !partial && header.Get("Content-Encoding") == "" &&
			ShouldCompress(header.Get("Content-Type"), len(data)) {
			if compressed, err := CompressData(data); err == nil && len(compressed) < len(data) {
				header.Set("Content-Encoding", "gzip")
				header.Add("Vary", "Accept-Encoding")
				header.Set("Content-Length", strconv.Itoa(len(compressed)))
				data = compressed
			}
		}
		if len(data) > 0 {
			_, _ = original.Write(data)
		}
	}
}
