package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080", "tok")
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, "tok", c.Token)
	assert.Equal(t, 30*time.Second, c.HTTPClient.Timeout)
}

func TestNewClient_TrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8080/", "")
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
}

func TestDo_URLConstruction(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Do("GET", "/runs", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "/runs", gotPath)
}

func TestDo_QueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	q := url.Values{}
	q.Set("limit", "5")
	resp, err := c.Do("GET", "/runs", q, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "5", gotQuery.Get("limit"))
}

func TestDo_WithBody(t *testing.T) {
	var gotBody map[string]interface{}
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Do("POST", "/extract-and-index", nil, map[string]string{"datasetId": "ds-1"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "ds-1", gotBody["datasetId"])
}

func TestDo_NilBody(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Do("GET", "/health", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, gotContentType)
}

func TestDo_AcceptHeader(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Do("GET", "/health", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", gotAccept)
}

func TestDo_BearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "my-token")
	resp, err := c.Do("GET", "/runs", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer my-token", gotAuth)
}

func TestDo_NoAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Do("GET", "/health", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, gotAuth)
}

func TestDo_HTTPMethod(t *testing.T) {
	methods := []string{"GET", "POST", "PUT", "DELETE"}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			var gotMethod string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "")
			resp, err := c.Do(method, "/runs", nil, nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, method, gotMethod)
		})
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "")
	resp, err := c.Do("GET", "/health", nil, nil) //nolint:bodyclose // request fails before a body exists
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "execute request")
}

func TestCheckError_Success(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		resp := &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`{"status":"ok"}`)),
		}
		assert.NoError(t, CheckError(resp))
	}
}

func TestCheckError_StructuredError(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{"error":"run not found: r-1","code":"NOT_FOUND","request_id":"req-9"}`)),
	}
	err := CheckError(resp)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "run not found: r-1", apiErr.Message)
	assert.Equal(t, "req-9", apiErr.RequestID)
	assert.Equal(t, "API error (HTTP 404): run not found: r-1", err.Error())
}

func TestCheckError_RawBodyFallback(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       io.NopCloser(strings.NewReader("Internal Server Error\n")),
	}
	err := CheckError(resp)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestCheckError_EmptyBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader("")),
	}
	err := CheckError(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
