package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apichallenge/api-test-harness/framework"
	"github.com/apichallenge/api-test-harness/framework/opt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const maxLoggedBodyLength = 2000

// BasicAuth is a username and password sent in an Authorization header.
type BasicAuth struct {
	Username string
	Password string
}

// APIRequest describes one call to the server. Path is relative to the API base URL. At most one
// of Form and JSONBody should be set.
type APIRequest struct {
	Method    string
	Path      string
	Query     url.Values
	Headers   http.Header
	BasicAuth opt.Maybe[BasicAuth]
	Form      url.Values

	// JSONBody, if not nil, is marshaled with encoding/json and sent as application/json.
	JSONBody interface{}
}

// APIResponse is what came back from the server. Value is the body parsed as JSON, or a null
// value if the body was empty or not valid JSON.
type APIResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
	Value   ldvalue.Value
}

// IsSuccessful returns true for a 2xx status.
func (r APIResponse) IsSuccessful() bool {
	return r.Status >= 200 && r.Status <= 299
}

// APIService sends requests to the server under test. It knows nothing about individual
// endpoints; a non-2xx status is a normal result, not an error.
type APIService struct {
	baseURL string
	client  *http.Client
}

// NewAPIService creates an APIService for the given base URL, such as "http://localhost:5000/api".
// Each APIService has its own connection pool, so that connections to a server from an earlier
// test are never reused.
func NewAPIService(baseURL string, timeout time.Duration) *APIService {
	return &APIService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}
}

func (s *APIService) BaseURL() string {
	return s.baseURL
}

// Do sends the request and reads the whole response. The error is non-nil only if no response
// was received at all.
func (s *APIService) Do(ctx context.Context, r APIRequest, logger framework.Logger) (APIResponse, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	target := s.baseURL + r.Path
	if len(r.Query) != 0 {
		target += "?" + r.Query.Encode()
	}

	var body []byte
	contentType := ""
	switch {
	case r.JSONBody != nil:
		data, err := json.Marshal(r.JSONBody)
		if err != nil {
			return APIResponse{}, fmt.Errorf("cannot serialize request body: %w", err)
		}
		body, contentType = data, "application/json"
	case r.Form != nil:
		body, contentType = []byte(r.Form.Encode()), "application/x-www-form-urlencoded"
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, bodyReader)
	if err != nil {
		return APIResponse{}, err
	}
	for name, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.BasicAuth.IsDefined() {
		auth := r.BasicAuth.Value()
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	if body != nil {
		logger.Printf("Sending %s %s: %s", r.Method, target, truncateForLog(body))
	} else {
		logger.Printf("Sending %s %s", r.Method, target)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Printf("Request failed: %s", err)
		return APIResponse{}, fmt.Errorf("%s %s failed: %w", r.Method, target, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return APIResponse{}, fmt.Errorf("cannot read response to %s %s: %w", r.Method, target, err)
	}
	logger.Printf("Received HTTP %d: %s", resp.StatusCode, truncateForLog(respBody))

	return APIResponse{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    respBody,
		Value:   parseJSONBody(respBody),
	}, nil
}

func parseJSONBody(body []byte) ldvalue.Value {
	if len(bytes.TrimSpace(body)) == 0 {
		return ldvalue.Null()
	}
	var v ldvalue.Value
	if err := json.Unmarshal(body, &v); err != nil {
		return ldvalue.Null()
	}
	return v
}

func truncateForLog(data []byte) string {
	if len(data) > maxLoggedBodyLength {
		return string(data[:maxLoggedBodyLength]) + "..."
	}
	return string(data)
}
