package middleware

import (
	"bufio"
	"net"
	"net/http"
	"time"
)

// Logging logs the start and the outcome of every request.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w}

		m.log.Debug(r.Context(), "started", "method", r.Method, "URL", r.URL.Path, "request-host", r.Host)

		next.ServeHTTP(rw, r)

		m.log.Debug(r.Context(), "completed",
			"method", r.Method,
			"URL", r.URL.Path,
			"status", rw.Status(),
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the response status. It keeps http.Hijacker
// working, which websocket upgrades need.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(status int) {
	if rw.status == 0 {
		rw.status = status
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
