package middleware

import "net/http"

// statusRecorder remembers the status code written through it.
// onHeader, when set, runs once right before the status line goes out.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	onHeader    func(statusCode int)
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	if s.wroteHeader {
		return
	}
	s.statusCode = statusCode
	s.wroteHeader = true
	if s.onHeader != nil {
		s.onHeader(statusCode)
	}
	s.ResponseWriter.WriteHeader(statusCode)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
