// Package testutil provides helpers shared by the end-to-end tests of the
// school backend.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/school/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Envelope is the JSON body every API endpoint answers with
type Envelope struct {
	Success   bool                `json:"success"`
	Data      json.RawMessage     `json:"data"`
	Message   string              `json:"message"`
	Code      string              `json:"code"`
	Errors    []shared.FieldError `json:"errors"`
	RequestID string              `json:"requestId"`
}

// Fields returns the field names of the error details
func (e Envelope) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Response is a recorded API response
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Envelope Envelope
}

// APIClient sends requests straight to a handler without a network listener
type APIClient struct {
	t       *testing.T
	handler http.Handler
	prefix  string
}

// NewAPIClient creates a client. prefix is prepended to every path, e.g. "/api".
func NewAPIClient(t *testing.T, handler http.Handler, prefix string) *APIClient {
	return &APIClient{t: t, handler: handler, prefix: prefix}
}

// Do sends a request. A non-nil body is encoded as JSON.
func (c *APIClient) Do(method, path string, body any) *Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(c.t, body)
	}
	req := httptest.NewRequest(method, c.prefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &Response{Status: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(resp.Body, &resp.Envelope), "body: %s", resp.Body)
	}
	return resp
}

// Get is shorthand for Do(GET)
func (c *APIClient) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

// Post is shorthand for Do(POST)
func (c *APIClient) Post(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPost, path, body)
}

// Put is shorthand for Do(PUT)
func (c *APIClient) Put(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPut, path, body)
}

// Delete is shorthand for Do(DELETE)
func (c *APIClient) Delete(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodDelete, path, nil)
}

// DataAs decodes the data field of a response into T
func DataAs[T any](t *testing.T, resp *Response) T {
	t.Helper()

	var out T
	require.NotEmpty(t, resp.Envelope.Data, "response has no data: %s", resp.Body)
	require.NoError(t, json.Unmarshal(resp.Envelope.Data, &out))
	return out
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
