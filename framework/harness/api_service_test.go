package harness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/opt"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIServiceSendsFormWithBasicAuth(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"success": true, "token": "abc"}, nil))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		svc := NewAPIService(server.URL+"/api/", time.Second)
		assert.Equal(t, server.URL+"/api", svc.BaseURL())

		resp, err := svc.Do(context.Background(), APIRequest{
			Method:    http.MethodPost,
			Path:      "/login",
			BasicAuth: opt.Some(BasicAuth{Username: "rui@email.com", Password: "123456"}),
			Form:      url.Values{"role": {"admin"}},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, 200, resp.Status)
		assert.True(t, resp.IsSuccessful())
		assert.Equal(t, "abc", resp.Value.GetByKey("token").StringValue())
		assert.True(t, resp.Value.GetByKey("success").BoolValue())

		received := <-requests
		assert.Equal(t, "POST", received.Request.Method)
		assert.Equal(t, "/api/login", received.Request.URL.Path)
		user, password, ok := received.Request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rui@email.com", user)
		assert.Equal(t, "123456", password)
		assert.Equal(t, "application/x-www-form-urlencoded", received.Request.Header.Get("Content-Type"))
		assert.Equal(t, "role=admin", string(received.Body))
	})
}

func TestAPIServiceSendsJSONBodyQueryAndHeaders(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		svc := NewAPIService(server.URL, time.Second)
		_, err := svc.Do(context.Background(), APIRequest{
			Method:   http.MethodDelete,
			Path:     "/employees",
			Query:    url.Values{"id": {"7"}},
			Headers:  http.Header{"accessToken": {"my-token"}},
			JSONBody: map[string]int{"ids": 7},
		}, nil)
		require.NoError(t, err)

		received := <-requests
		assert.Equal(t, "DELETE", received.Request.Method)
		assert.Equal(t, "id=7", received.Request.URL.RawQuery)
		assert.Equal(t, "my-token", received.Request.Header.Get("accessToken"))
		assert.Equal(t, "application/json", received.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"ids":7}`, string(received.Body))
	})
}

func TestAPIServiceErrorStatusIsNotAnError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		svc := NewAPIService(server.URL, time.Second)
		resp, err := svc.Do(context.Background(), APIRequest{Method: http.MethodGet, Path: "/employees/9"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.Status)
		assert.False(t, resp.IsSuccessful())
		assert.True(t, resp.Value.IsNull())
	})
}

func TestAPIServiceNonJSONBodyGivesNullValue(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		resp, err := NewAPIService(server.URL, time.Second).Do(context.Background(),
			APIRequest{Method: http.MethodGet, Path: "/"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "<html>not json</html>", string(resp.Body))
		assert.True(t, resp.Value.IsNull())
	})
}

func TestAPIServiceTransportFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	serverURL := server.URL
	server.Close()

	_, err := NewAPIService(serverURL, time.Second).Do(context.Background(),
		APIRequest{Method: http.MethodGet, Path: "/register"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET "+serverURL+"/register failed")
}

func TestAPIServiceLogsRequestAndResponse(t *testing.T) {
	handler := httphelpers.HandlerWithJSONResponse(map[string]interface{}{"message": "created"}, nil)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var logger framework.CapturingLogger
		_, err := NewAPIService(server.URL, time.Second).Do(context.Background(), APIRequest{
			Method: http.MethodPost,
			Path:   "/register",
			Form:   url.Values{"email": {"a@b.com"}},
		}, &logger)
		require.NoError(t, err)

		output := logger.Output().ToString("")
		assert.Contains(t, output, "Sending POST "+server.URL+"/register: email=a%40b.com")
		assert.Contains(t, output, `Received HTTP 200: {"message":"created"}`)
	})
}
