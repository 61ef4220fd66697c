package cloudhub

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/qjob-team/qjob/core"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type loggingRoundTripper struct {
	next http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := lrt.next.RoundTrip(req)
	if err != nil {
		zap.L().Error("API roundtrip failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		zap.L().Error("Failed to read API response body", zap.Error(readErr), zap.Int("statusCode", resp.StatusCode), zap.String("url", req.URL.String()))
		resp.Body.Close()
		return resp, nil
	}
	resp.Body.Close()

	zap.L().Debug("Received API response",
		zap.String("url", req.URL.String()),
		zap.Int("statusCode", resp.StatusCode),
		zap.ByteString("responseBody", bodyBytes),
	)

	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return resp, nil
}

// client wraps the account REST endpoint. The access token rides in a
// header on every request.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(baseURL, token string) *client {
	return &client{
		base:  baseURL,
		token: token,
		http: &http.Client{
			Transport: &loggingRoundTripper{next: http.DefaultTransport},
			Timeout:   60 * time.Second,
		},
	}
}

func (c *client) get(path string, query url.Values, out interface{}) error {
	return c.do(http.MethodGet, path, query, nil, out)
}

func (c *client) post(path string, body interface{}, out interface{}) error {
	return c.do(http.MethodPost, path, nil, body, out)
}

func (c *client) do(method, path string, query url.Values, body, out interface{}) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		b, err := jsonIter.Marshal(body)
		if err != nil {
			return core.NewRuntimeError(err, "failed to encode request body for %s", path)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return core.NewRuntimeError(err, "failed to build request for %s", path)
	}
	req.Header.Set("X-Access-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewRuntimeError(err, "request to %s failed", path)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewRuntimeError(err, "failed to read response from %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.NewRuntimeError(nil, "%s returned %d:%s", path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := jsonIter.Unmarshal(b, out); err != nil {
		return core.NewRuntimeError(err, "failed to decode response from %s", path)
	}
	return nil
}

func fmtHubPath(hub, group, project string) string {
	return fmt.Sprintf("/hubs/%s/groups/%s/projects/%s", hub, group, project)
}
