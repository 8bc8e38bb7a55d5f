package device

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raterudder/wifisetup/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	// the device base URL is usually given with a trailing slash
	return NewClient(ts.URL+"/", ts.Client())
}

func TestClientScan(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/aplist", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"nets": []map[string]interface{}{
					{"ssid": "Home", "ch": 6, "rssi": -40},
					{"ssid": "Neighbor", "ch": 11, "rssi": -82},
				},
			})
		})

		nets, err := c.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.NetworkList{
			{SSID: "Home", Channel: 6, RSSI: -40},
			{SSID: "Neighbor", Channel: 11, RSSI: -82},
		}, nets)
	})

	t.Run("Empty List", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"nets":[]}`))
		})
		nets, err := c.Scan(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, nets)
		assert.Empty(t, nets)
	})

	t.Run("Missing Nets", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})
		_, err := c.Scan(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.ErrorKindParse, KindOf(err))
	})

	t.Run("Malformed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"nets": [`))
		})
		_, err := c.Scan(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.ErrorKindParse, KindOf(err))
	})

	t.Run("HTTP Status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
		})
		_, err := c.Scan(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.ErrorKindHTTPStatus, KindOf(err))
		assert.Equal(t, http.StatusServiceUnavailable, StatusCodeOf(err))
		assert.Contains(t, err.Error(), "aplist")
	})

	t.Run("Unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		c := NewClient(url, nil)
		_, err := c.Scan(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.ErrorKindTransport, KindOf(err))
		assert.Equal(t, 0, StatusCodeOf(err))
	})
}

func TestClientFetchConfig(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/conf", r.URL.Path)
			w.Write([]byte(`{"nets":[{"ssid":"Home"}],"token":"T1","time":"1000"}`))
		})
		conf, err := c.FetchConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.DeviceConfig{CurrentSSID: "Home", Token: "T1", DeviceTime: "1000"}, conf)
	})

	t.Run("Numeric Time", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"nets":[{"ssid":"A"},{"ssid":"B"}],"token":"T2","time":1700000000}`))
		})
		conf, err := c.FetchConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "A", conf.CurrentSSID)
		assert.Equal(t, types.DeviceTime("1700000000"), conf.DeviceTime)
	})

	t.Run("No Networks", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"nets":[],"token":"T1","time":"1000"}`))
		})
		_, err := c.FetchConfig(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.ErrorKindParse, KindOf(err))
	})
}

func TestClientSubmit(t *testing.T) {
	cred := types.Credential{SSID: "Home", Password: "pw", Token: "T1", Epoch: 1700000000}

	t.Run("Payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/wifi", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ssid":"Home","password":"pw","token":"T1","epoch":1700000000}`, string(body))
			w.Write([]byte("OK"))
		})
		status, err := c.Submit(context.Background(), "wifi", cred)
		require.NoError(t, err)
		assert.Equal(t, types.Status("OK"), status)
	})

	t.Run("JSON String Response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"Saved, rebooting"`))
		})
		status, err := c.Submit(context.Background(), "wifi", cred)
		require.NoError(t, err)
		assert.Equal(t, types.Status("Saved, rebooting"), status)
	})

	t.Run("JSON Object Response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":"ok"}` + "\n"))
		})
		status, err := c.Submit(context.Background(), "wifi", cred)
		require.NoError(t, err)
		assert.Equal(t, types.Status(`{"result":"ok"}`), status)
	})

	t.Run("Custom Setup Path", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/set", r.URL.Path)
			w.Write([]byte("done"))
		})
		_, err := c.Submit(context.Background(), "set", cred)
		require.NoError(t, err)
	})

	t.Run("Rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad token", http.StatusForbidden)
		})
		_, err := c.Submit(context.Background(), "wifi", cred)
		require.Error(t, err)
		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, types.ErrorKindHTTPStatus, de.Kind)
		assert.Equal(t, http.StatusForbidden, de.StatusCode)
		assert.Equal(t, "wifi", de.Path)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, types.ErrorKindTransport, KindOf(errors.New("plain")))
	wrapped := &Error{Kind: types.ErrorKindParse, Path: "conf", Err: errors.New("x")}
	assert.Equal(t, types.ErrorKindParse, KindOf(errors.Join(errors.New("outer"), wrapped)))
}
