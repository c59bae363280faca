package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TestContext carries one scenario's state against a running server: the
// application token, the last response and values saved between steps.
type TestContext struct {
	baseURL    string
	token      string
	client     *http.Client
	lastStatus int
	lastBody   map[string]interface{}
	saved      map[string]string
}

func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		saved:   map[string]string{},
	}
}

func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.saved = map[string]string{}
}

func (tc *TestContext) GetAccessToken() string {
	return tc.token
}

func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body, tc.authHeaders())
}

func (tc *TestContext) PUT(path string, body interface{}) error {
	return tc.do(http.MethodPut, path, body, tc.authHeaders())
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil, tc.authHeaders())
}

// GET sends the request with exactly the given headers, so callers choose
// whether to authenticate.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + tc.token}
}

func (tc *TestContext) do(method, path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.baseURL+tc.Resolve(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		var decoded map[string]interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil {
			tc.lastBody = decoded
		}
	}
	return nil
}

func (tc *TestContext) GetLastStatus() int {
	return tc.lastStatus
}

// GetResponseField reads a dotted path such as "uitnodiging.code" or
// "results.0.version" from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no JSON response (status %d)", tc.lastStatus)
	}
	var cur interface{} = tc.lastBody
	for _, part := range strings.Split(field, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in response", field)
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("field %q: no element %q", field, part)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
	}
	return cur, nil
}

func (tc *TestContext) Save(name, value string) {
	tc.saved[name] = value
}

// Resolve replaces {name} placeholders with saved values.
func (tc *TestContext) Resolve(s string) string {
	for name, value := range tc.saved {
		s = strings.ReplaceAll(s, "{"+name+"}", value)
	}
	return s
}
