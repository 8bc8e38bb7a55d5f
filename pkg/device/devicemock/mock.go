package devicemock

import (
	"context"

	"github.com/raterudder/wifisetup/pkg/device"
	"github.com/raterudder/wifisetup/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDevice struct {
	mock.Mock
}

var _ device.Device = (*MockDevice)(nil)

func (m *MockDevice) Scan(ctx context.Context) (types.NetworkList, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(types.NetworkList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDevice) FetchConfig(ctx context.Context) (types.DeviceConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.DeviceConfig), args.Error(1)
}

func (m *MockDevice) Submit(ctx context.Context, setupPath string, cred types.Credential) (types.Status, error) {
	args := m.Called(ctx, setupPath, cred)
	return args.Get(0).(types.Status), args.Error(1)
}

func (m *MockDevice) BaseURL() string {
	args := m.Called()
	return args.String(0)
}
