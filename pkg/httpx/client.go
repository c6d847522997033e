package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hatcher/secretaria/pkg/logs"
)

// Client is a thin JSON-oriented HTTP client bound to a base URL.
type Client struct {
	Client  *http.Client
	BaseUrl string
}

func NewClient(baseUrl string, timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Timeout: timeout,
		},
		BaseUrl: baseUrl,
	}
}

// NewDefaultClient creates a client with a 10s timeout.
func NewDefaultClient(baseUrl string) *Client {
	return NewClient(baseUrl, 10*time.Second)
}

func (c *Client) buildRequest(ctx context.Context, options *RequestOption) (*http.Request, error) {
	var body io.Reader
	if options.Body != nil {
		if raw, ok := options.Body.([]byte); ok {
			body = bytes.NewBuffer(raw)
		} else {
			jsonData, err := json.Marshal(options.Body)
			if err != nil {
				return nil, fmt.Errorf("marshal request body failed: %v", err)
			}
			body = bytes.NewBuffer(jsonData)
		}
	}
	reqURL := c.BaseUrl + options.Path
	req, err := http.NewRequestWithContext(ctx, options.Method.String(), reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request failed: %v", err)
	}
	if options.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Do sends the request and returns the response with a re-readable body.
func (c *Client) Do(ctx context.Context, options *RequestOption) (*http.Response, error) {
	requestTime := time.Now()
	request, err := c.buildRequest(ctx, options)
	if err != nil {
		return nil, err
	}
	response, err := c.Client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	response.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	response.ContentLength = int64(len(bodyBytes))
	logs.Debugf("[httpx] %s %s request_id=%s status=%d duration=%dms",
		options.Method, request.URL.String(), options.RequestID,
		response.StatusCode, time.Since(requestTime).Milliseconds())
	return response, nil
}

// DoWithPtr sends the request and unmarshals the JSON response into resp.
func (c *Client) DoWithPtr(ctx context.Context, options *RequestOption, resp interface{}) error {
	response, err := c.Do(ctx, options)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d: %s", response.StatusCode, string(bodyBytes))
	}
	return json.Unmarshal(bodyBytes, resp)
}
