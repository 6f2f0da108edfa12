package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/crave-decoder/logging"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// logRequests tags each request with an ID, stores a request-scoped logger in
// its context and logs the outcome once the handler returns.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		log := s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http.method": r.Method,
			"http.path":   r.URL.Path,
		})
		w.Header().Set("X-Request-Id", requestID)

		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r.WithContext(logging.WithLogger(r.Context(), log)))

		log.WithFields(logrus.Fields{
			"http.status":     rr.status,
			"http.resp.bytes": rr.bytes,
			"http.duration":   time.Since(start).String(),
		}).Info("request complete")
	})
}
