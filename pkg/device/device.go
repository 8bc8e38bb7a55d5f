package device

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/raterudder/wifisetup/pkg/common"
	"github.com/raterudder/wifisetup/pkg/types"
)

const (
	// PathScan lists the access points the device can see.
	PathScan = "aplist"
	// PathConfig returns the device's current configuration and token.
	PathConfig = "conf"

	DefaultBaseURL   = "http://192.168.1.1/"
	DefaultSetupPath = "wifi"
)

// Device is the local setup API exposed by a WiFi device. Every method is a
// single attempt, nothing is retried.
type Device interface {
	// Scan returns the access points the device reported, in its order.
	Scan(ctx context.Context) (types.NetworkList, error)

	// FetchConfig returns the device's active configuration.
	FetchConfig(ctx context.Context) (types.DeviceConfig, error)

	// Submit posts the credential to setupPath and returns the device's
	// response as an opaque status.
	Submit(ctx context.Context, setupPath string, cred types.Credential) (types.Status, error)

	// BaseURL is the address the device is reached at.
	BaseURL() string
}

// Configured registers the device flags and returns a Client that is filled
// in once flags are parsed.
func Configured() *Client {
	c := &Client{}
	baseURL := lflag.String("device-url", DefaultBaseURL, "Base URL of the device's setup API")
	timeout := lflag.Duration("device-timeout", 30*time.Second, "Timeout for a single request to the device")

	lflag.Do(func() {
		if _, err := url.Parse(*baseURL); err != nil {
			panic(fmt.Sprintf("invalid device-url (%s): %v", *baseURL, err))
		}
		if *timeout <= 0 {
			panic("device-timeout must be positive")
		}
		c.baseURL = *baseURL
		c.client = common.HTTPClient(*timeout)
	})
	return c
}
