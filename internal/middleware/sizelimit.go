package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// DefaultMaxBodySize bounds request bodies. Nothing in this API takes
// uploads, so 1MB leaves generous headroom for JSON payloads.
const DefaultMaxBodySize int64 = 1 << 20

// SizeLimit rejects oversized request bodies up front and caps reads
// for requests that omit Content-Length.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			httputil.Abort(c, &apperrors.AppError{
				Status:  http.StatusRequestEntityTooLarge,
				Code:    apperrors.CodeBadRequest,
				Message: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
			})
			return
		}

		// Chunked requests carry no Content-Length; cap the reader so
		// they cannot stream past the limit either.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
