package controller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raterudder/wifisetup/pkg/device"
	"github.com/raterudder/wifisetup/pkg/device/devicemock"
	"github.com/raterudder/wifisetup/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAsyncDispatch(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	Async{}.Dispatch(context.Background(), func(context.Context) {
		<-release
		close(done)
	})
	// Dispatch returned while the operation is still blocked
	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("operation never ran")
	}
}

func TestBlockingDispatch(t *testing.T) {
	t.Run("Runs Inline", func(t *testing.T) {
		var ran bool
		b := &Blocking{}
		b.Dispatch(context.Background(), func(context.Context) {
			ran = true
		})
		assert.True(t, ran)
	})

	t.Run("Serializes Operations", func(t *testing.T) {
		b := &Blocking{}
		var active, maxActive atomic.Int32
		op := func(context.Context) {
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}

		done := make(chan struct{})
		for i := 0; i < 4; i++ {
			go func() {
				b.Dispatch(context.Background(), op)
				done <- struct{}{}
			}()
		}
		for i := 0; i < 4; i++ {
			<-done
		}
		assert.Equal(t, int32(1), maxActive.Load())
	})

	t.Run("Controller State Updated On Return", func(t *testing.T) {
		dev := new(devicemock.MockDevice)
		dev.On("Scan", mock.Anything).Return(types.NetworkList{{SSID: "Home", RSSI: -40}}, nil).Once()
		dev.On("BaseURL").Return(device.DefaultBaseURL)

		c := newTestController(dev, WithStrategy(&Blocking{}))
		c.Scan(context.Background())

		// no Wait needed, the scan finished before Scan returned
		assert.Equal(t, types.NetworkList{{SSID: "Home", RSSI: -40}}, c.Networks())
		assert.Equal(t, types.StatusFetched, c.View().Status)
	})
}
