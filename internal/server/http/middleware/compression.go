package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/earnbot/internal/server/http/dto"
)

// MaxBodyBytes bounds admin request bodies after decompression.
const MaxBodyBytes = 64 << 10

// LimitBody caps request bodies at limit bytes, decoding gzip payloads first.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		body := c.Request.Body
		if strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			reader, err := gzip.NewReader(body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_encoding"})
				return
			}
			defer reader.Close()
			defer body.Close()
			c.Request.Header.Del("Content-Encoding")
			c.Request.Body = io.NopCloser(reader)
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
