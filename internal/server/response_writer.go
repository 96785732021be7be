package server

import (
	"github.com/gin-gonic/gin"
)

// responseWriter wraps gin.ResponseWriter to capture the response size
type responseWriter struct {
	gin.ResponseWriter
	size int
}

func newResponseWriter(w gin.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// Write captures the response size
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// WriteString captures the response size for string writes
func (rw *responseWriter) WriteString(s string) (int, error) {
	n, err := rw.ResponseWriter.WriteString(s)
	rw.size += n
	return n, err
}

// Size returns the captured response size in bytes
func (rw *responseWriter) Size() int {
	return rw.size
}
