package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/raterudder/wifisetup/pkg/common"
	"github.com/raterudder/wifisetup/pkg/log"
	"github.com/raterudder/wifisetup/pkg/types"
)

// Client implements Device against the device's HTTP API.
type Client struct {
	client  *http.Client
	baseURL string
}

var _ Device = (*Client)(nil)

// NewClient returns a Client for the device at baseURL. If client is nil the
// shared common client is used.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = common.HTTPClient(0)
	}
	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

// BaseURL implements Device.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type scanResponse struct {
	Nets *types.NetworkList `json:"nets"`
}

// Scan implements Device.
func (c *Client) Scan(ctx context.Context) (types.NetworkList, error) {
	req, err := c.newGetRequest(ctx, PathScan)
	if err != nil {
		return nil, err
	}
	body, err := c.doRequest(req, PathScan)
	if err != nil {
		return nil, err
	}

	var res scanResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, c.parseError(ctx, PathScan, err, body)
	}
	if res.Nets == nil {
		return nil, c.parseError(ctx, PathScan, errors.New("missing nets"), body)
	}
	log.Ctx(ctx).DebugContext(ctx, "device scan fetched", slog.Int("networks", len(*res.Nets)))
	return *res.Nets, nil
}

type configResponse struct {
	Nets []struct {
		SSID string `json:"ssid"`
	} `json:"nets"`
	Token string           `json:"token"`
	Time  types.DeviceTime `json:"time"`
}

// FetchConfig implements Device. The active SSID is the first entry of the
// response's nets, a response without any is rejected as a parse error.
func (c *Client) FetchConfig(ctx context.Context) (types.DeviceConfig, error) {
	req, err := c.newGetRequest(ctx, PathConfig)
	if err != nil {
		return types.DeviceConfig{}, err
	}
	body, err := c.doRequest(req, PathConfig)
	if err != nil {
		return types.DeviceConfig{}, err
	}

	var res configResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return types.DeviceConfig{}, c.parseError(ctx, PathConfig, err, body)
	}
	if len(res.Nets) == 0 {
		return types.DeviceConfig{}, c.parseError(ctx, PathConfig, errors.New("no networks in nets"), body)
	}
	log.Ctx(ctx).DebugContext(ctx, "device config fetched", slog.String("ssid", res.Nets[0].SSID))
	return types.DeviceConfig{
		CurrentSSID: res.Nets[0].SSID,
		Token:       res.Token,
		DeviceTime:  res.Time,
	}, nil
}

// Submit implements Device. A JSON string response is unquoted, anything
// else is returned as the raw body text.
func (c *Client) Submit(ctx context.Context, setupPath string, cred types.Credential) (types.Status, error) {
	req, err := c.newPostJSONRequest(ctx, setupPath, cred)
	if err != nil {
		return "", err
	}
	body, err := c.doRequest(req, setupPath)
	if err != nil {
		return "", err
	}

	log.Ctx(ctx).DebugContext(ctx, "device accepted credentials", slog.String("ssid", cred.SSID))

	body = bytes.TrimSpace(body)
	var s string
	if len(body) > 0 && body[0] == '"' && json.Unmarshal(body, &s) == nil {
		return types.Status(s), nil
	}
	return types.Status(body), nil
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path, err = url.JoinPath(u.Path, path)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (c *Client) newGetRequest(ctx context.Context, path string) (*http.Request, error) {
	u, err := c.endpoint(path)
	if err != nil {
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, Err: err}
	}
	return req, nil
}

func (c *Client) newPostJSONRequest(ctx context.Context, path string, data interface{}) (*http.Request, error) {
	u, err := c.endpoint(path)
	if err != nil {
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, Err: err}
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, &Error{Kind: types.ErrorKindParse, Path: path, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doRequest performs req once and returns the body of a 2xx response.
func (c *Client) doRequest(req *http.Request, path string) ([]byte, error) {
	ctx := req.Context()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "device request failed", slog.String("path", path), slog.Any("error", err))
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		log.Ctx(ctx).WarnContext(ctx, "device returned error status", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return nil, &Error{
			Kind:       types.ErrorKindHTTPStatus,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to read device response", slog.String("path", path), slog.Any("error", err))
		return nil, &Error{Kind: types.ErrorKindTransport, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

func (c *Client) parseError(ctx context.Context, path string, err error, body []byte) error {
	log.Ctx(ctx).WarnContext(ctx, "failed to decode device response", slog.String("path", path), slog.Any("error", err), slog.String("body", string(body)))
	return &Error{Kind: types.ErrorKindParse, Path: path, Err: err}
}
