package middleware

import (
	"bytes"
	"net/http"

	"go-response-cache/internal/models"
)

// ResponseCapture is an http.ResponseWriter that buffers everything written
// to it so the result can be stored, fanned out and replayed.
type ResponseCapture struct {
	header      http.Header
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
}

// NewResponseCapture creates an empty capture
func NewResponseCapture() *ResponseCapture {
	return &ResponseCapture{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (c *ResponseCapture) Header() http.Header {
	return c.header
}

func (c *ResponseCapture) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.statusCode = statusCode
	c.wroteHeader = true
}

func (c *ResponseCapture) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.body.Write(b)
}

// Result freezes the capture into a CapturedResponse
func (c *ResponseCapture) Result() *models.CapturedResponse {
	return &models.CapturedResponse{
		StatusCode: c.statusCode,
		Header:     c.header.Clone(),
		Body:       bytes.Clone(c.body.Bytes()),
	}
}

// replay writes a captured response to w unchanged
func replay(w http.ResponseWriter, resp *models.CapturedResponse) error {
	dst := w.Header()
	for name, values := range resp.Header {
		dst[name] = append([]string(nil), values...)
	}
	w.WriteHeader(resp.StatusCode)
	_, err := w.Write(resp.Body)
	return err
}
