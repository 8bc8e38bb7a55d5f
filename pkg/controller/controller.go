package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/raterudder/wifisetup/pkg/device"
	"github.com/raterudder/wifisetup/pkg/log"
	"github.com/raterudder/wifisetup/pkg/types"
)

const (
	// DefaultScanDelay is how long after Start the scan is issued.
	DefaultScanDelay = 300 * time.Millisecond
	// DefaultConfigDelay is how long after Start the config read is issued.
	// It trails the scan because a scan keeps the device's radio busy.
	DefaultConfigDelay = 900 * time.Millisecond
)

type state struct {
	networks     types.NetworkList
	config       types.DeviceConfig
	selectedSSID string
	password     string
	userToken    string
	setupPath    string
	status       types.Status
	errors       types.ErrorLog
	epoch        int64

	fetching   int
	submitting int
	settled    bool
}

func (s *state) phase() types.Phase {
	switch {
	case s.submitting > 0:
		return types.PhaseSubmitting
	case s.fetching > 0:
		return types.PhaseFetching
	case s.settled:
		return types.PhaseReady
	default:
		return types.PhaseIdle
	}
}

// Controller owns the provisioning state for a single device. It issues the
// device reads and the credential submission, folds their results into the
// state and records every failure in the error log instead of returning it.
// All methods are safe for concurrent use.
type Controller struct {
	device      device.Device
	strategy    Strategy
	now         func() time.Time
	scanDelay   time.Duration
	configDelay time.Duration

	// inflight counts scheduled and dispatched operations
	inflight sync.WaitGroup

	mu     sync.Mutex
	state  state
	timers []*time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithStrategy sets how device operations are dispatched.
func WithStrategy(s Strategy) Option {
	return func(c *Controller) {
		c.strategy = s
	}
}

// WithClock replaces time.Now, used for the epoch and error timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithDelays sets the startup delays of the scan and the config read.
func WithDelays(scan, config time.Duration) Option {
	return func(c *Controller) {
		c.scanDelay = scan
		c.configDelay = config
	}
}

// WithSetupPath sets the initial path credentials are posted to.
func WithSetupPath(path string) Option {
	return func(c *Controller) {
		c.state.setupPath = path
	}
}

// NewController creates a Controller for dev. The epoch sent with the
// credentials is taken from the clock here, once, and reused for every
// submission.
func NewController(dev device.Device, opts ...Option) *Controller {
	c := &Controller{
		device:      dev,
		strategy:    Async{},
		now:         time.Now,
		scanDelay:   DefaultScanDelay,
		configDelay: DefaultConfigDelay,
		state: state{
			networks:  types.PlaceholderNetworks(),
			setupPath: device.DefaultSetupPath,
			status:    types.StatusInitial,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.epoch = c.now().Unix()
	return c
}

// Start schedules the initial scan and config read. Each is issued after its
// own delay regardless of whether the other has finished. If ctx is done
// before a delay elapses that operation is never issued.
func (c *Controller) Start(ctx context.Context) {
	log.Ctx(ctx).DebugContext(ctx, "scheduling initial device reads",
		slog.Duration("scanDelay", c.scanDelay),
		slog.Duration("configDelay", c.configDelay),
	)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers,
		c.schedule(ctx, c.scanDelay, c.Scan),
		c.schedule(ctx, c.configDelay, c.FetchConfig),
	)
}

func (c *Controller) schedule(ctx context.Context, d time.Duration, fn func(context.Context)) *time.Timer {
	c.inflight.Add(1)
	return time.AfterFunc(d, func() {
		defer c.inflight.Done()
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop cancels scheduled operations that have not been issued yet. Requests
// already sent to the device run to completion.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.timers {
		if t.Stop() {
			c.inflight.Done()
		}
	}
	c.timers = nil
}

// Wait blocks until every scheduled and dispatched operation has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Scan issues one access point scan. On success the scan replaces the
// network list, on failure the list is left as it was.
func (c *Controller) Scan(ctx context.Context) {
	c.fetch(ctx, device.PathScan, func(ctx context.Context) (func(*state), error) {
		nets, err := c.device.Scan(ctx)
		if err != nil {
			return nil, err
		}
		return func(s *state) {
			s.networks = nets
		}, nil
	})
}

// FetchConfig issues one read of the device configuration.
func (c *Controller) FetchConfig(ctx context.Context) {
	c.fetch(ctx, device.PathConfig, func(ctx context.Context) (func(*state), error) {
		conf, err := c.device.FetchConfig(ctx)
		if err != nil {
			return nil, err
		}
		return func(s *state) {
			s.config = conf
		}, nil
	})
}

func (c *Controller) fetch(ctx context.Context, path string, op func(context.Context) (func(*state), error)) {
	c.mu.Lock()
	c.state.status = types.FetchingStatus(path)
	c.state.fetching++
	c.mu.Unlock()

	c.dispatch(ctx, path, func(ctx context.Context) {
		apply, err := op(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.fetching--
		c.state.settled = true
		if err != nil {
			c.recordError(ctx, path, err)
			return
		}
		apply(&c.state)
		c.state.status = types.StatusFetched
	})
}

// Submit posts the selected network, password and token together with the
// startup epoch. The token is the one the operator entered, or the device
// issued token if the operator left it empty. The status shows the submission
// is in flight until it resolves to the device's response or to a failure
// message.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	path := c.state.setupPath
	token := c.state.userToken
	if token == "" {
		token = c.state.config.Token
	}
	cred := types.Credential{
		SSID:     c.state.selectedSSID,
		Password: c.state.password,
		Token:    token,
		Epoch:    c.state.epoch,
	}
	c.state.status = types.StatusSubmitting
	c.state.submitting++
	c.mu.Unlock()

	c.dispatch(ctx, path, func(ctx context.Context) {
		status, err := c.device.Submit(ctx, path, cred)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.submitting--
		c.state.settled = true
		if err != nil {
			c.recordError(ctx, path, err)
			c.state.status = types.SubmitFailedStatus(err)
			return
		}
		log.Ctx(ctx).InfoContext(ctx, "credentials submitted", slog.String("ssid", cred.SSID), slog.String("status", string(status)))
		c.state.status = status
	})
}

// dispatch hands fn to the strategy. Once issued an operation is not
// cancelled by ctx.
func (c *Controller) dispatch(ctx context.Context, op string, fn func(context.Context)) {
	ctx = log.WithOp(context.WithoutCancel(ctx), op)
	c.inflight.Add(1)
	c.strategy.Dispatch(ctx, func(ctx context.Context) {
		defer c.inflight.Done()
		fn(ctx)
	})
}

// recordError must be called with mu held.
func (c *Controller) recordError(ctx context.Context, op string, err error) {
	log.Ctx(ctx).WarnContext(ctx, "device operation failed", slog.Any("error", err))
	c.state.errors.Append(types.ErrorRecord{
		Time:       c.now(),
		Op:         op,
		Kind:       device.KindOf(err),
		StatusCode: device.StatusCodeOf(err),
		Message:    err.Error(),
	})
}

// SelectNetwork sets the SSID the credentials are for.
func (c *Controller) SelectNetwork(ssid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.selectedSSID = ssid
}

// SetPassword sets the password submitted for the selected network.
func (c *Controller) SetPassword(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.password = password
}

// SetUserToken sets the token the operator entered.
func (c *Controller) SetUserToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.userToken = token
}

// SelectSetupPath sets the path credentials are posted to.
func (c *Controller) SelectSetupPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.setupPath = path
}

// Networks returns the network list in device order.
func (c *Controller) Networks() types.NetworkList {
	c.mu.Lock()
	defer c.mu.Unlock()
	nets := make(types.NetworkList, len(c.state.networks))
	copy(nets, c.state.networks)
	return nets
}

// View returns a snapshot for the rendering layer. Networks are ranked on
// every call.
func (c *Controller) View() types.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.View{
		BaseURL:        c.device.BaseURL(),
		SetupPath:      c.state.setupPath,
		Phase:          c.state.phase(),
		RankedNetworks: types.RankBySignal(c.state.networks),
		Config:         c.state.config,
		SelectedSSID:   c.state.selectedSSID,
		Status:         c.state.status,
		Errors:         c.state.errors.Records(),
		Epoch:          c.state.epoch,
	}
}
