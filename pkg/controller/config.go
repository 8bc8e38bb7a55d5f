package controller

import (
	"github.com/levenlabs/go-lflag"
	"github.com/raterudder/wifisetup/pkg/device"
)

// Configured registers the controller flags and returns a Controller for dev
// that picks them up once flags are parsed.
func Configured(dev device.Device) *Controller {
	c := NewController(dev)

	setupPath := lflag.String("setup-path", device.DefaultSetupPath, "Path on the device credentials are posted to")
	scanDelay := lflag.Duration("scan-delay", DefaultScanDelay, "Delay after startup before scanning for networks")
	configDelay := lflag.Duration("config-delay", DefaultConfigDelay, "Delay after startup before reading the device config")
	blocking := lflag.Bool("device-blocking", false, "Issue device requests on the calling goroutine, blocking it for each whole request. Only for constrained runtimes")

	lflag.Do(func() {
		if *setupPath == "" {
			panic("setup-path cannot be empty")
		}
		if *scanDelay < 0 || *configDelay < 0 {
			panic("scan-delay and config-delay cannot be negative")
		}
		c.state.setupPath = *setupPath
		c.scanDelay = *scanDelay
		c.configDelay = *configDelay
		if *blocking {
			c.strategy = &Blocking{}
		}
	})
	return c
}
