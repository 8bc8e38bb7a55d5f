package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DeviceTime is the device clock as the device reported it. Devices send it
// either as a string or as a number, both are kept as their textual form.
type DeviceTime string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (t *DeviceTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = DeviceTime(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("device time must be a string or number: %w", err)
	}
	*t = DeviceTime(n.String())
	return nil
}

// DeviceConfig is the configuration the device currently runs with.
type DeviceConfig struct {
	CurrentSSID string `json:"currentSSID" yaml:"currentSSID"`
	// Token is issued by the device and echoed back verbatim on submission.
	Token      string     `json:"token" yaml:"token"`
	DeviceTime DeviceTime `json:"deviceTime" yaml:"deviceTime"`
}

// Credential is the payload posted to the device's setup path. The field set
// and names are what the device firmware parses, nothing else may be added.
type Credential struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Token    string `json:"token"`
	Epoch    int64  `json:"epoch"`
}

// Status is the human readable progress shown to the operator. After a
// successful submission it holds the device's response verbatim.
type Status string

const (
	StatusInitial    Status = "(Status of the app)"
	StatusFetched    Status = "Data fetched."
	StatusSubmitting Status = "Sending data... Please wait!"
)

// FetchingStatus is the status set while a read of path is outstanding.
func FetchingStatus(path string) Status {
	return Status("Fetching data... /" + path)
}

// SubmitFailedStatus is the status a failed submission resolves to.
func SubmitFailedStatus(err error) Status {
	return Status("Submission failed: " + err.Error())
}
