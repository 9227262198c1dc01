package middleware

import "net/http"

// Stage decorates a handler
type Stage func(http.Handler) http.Handler

// Chain wraps h in stages so that the first stage sees the request first
func Chain(h http.Handler, stages ...Stage) http.Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i] == nil {
			continue
		}
		h = stages[i](h)
	}
	return h
}
