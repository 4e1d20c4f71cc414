// Package httpx carries the ambient HTTP-serving concerns the sync core
// itself stays free of: a status/size-capturing ResponseWriter, and slog
// based logging and panic-recovery middleware, scoped to what a small JSON
// API needs (no hijacking, pushing, or streaming multi-writers).
package httpx

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to record the status code and
// response size written, for the access logger, without the HTTP/2 push
// or hijack variants a two-endpoint JSON API never exercises.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int
	written bool
}

var writerPool = sync.Pool{
	New: func() any { return &ResponseWriter{} },
}

// NewResponseWriter acquires a ResponseWriter wrapping w from the pool.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	rw := writerPool.Get().(*ResponseWriter)
	rw.ResponseWriter = w
	rw.status = http.StatusOK
	rw.size = 0
	rw.written = false
	return rw
}

// Release returns rw to the pool. Callers must not use rw afterward.
func (rw *ResponseWriter) Release() {
	rw.ResponseWriter = nil
	writerPool.Put(rw)
}

func (rw *ResponseWriter) WriteHeader(status int) {
	if rw.written {
		return
	}
	rw.written = true
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the status code written, or 200 if WriteHeader was never called.
func (rw *ResponseWriter) Status() int { return rw.status }

// Size returns the number of response body bytes written so far.
func (rw *ResponseWriter) Size() int { return rw.size }
