package types

// Phase is where the provisioning flow currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseFetching   Phase = "fetching"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
)

// View is a point-in-time snapshot of the provisioning state for the
// rendering layer. Networks are already ranked strongest first.
type View struct {
	BaseURL        string        `json:"baseURL" yaml:"baseURL"`
	SetupPath      string        `json:"setupPath" yaml:"setupPath"`
	Phase          Phase         `json:"phase" yaml:"phase"`
	RankedNetworks []AccessPoint `json:"rankedNetworks" yaml:"rankedNetworks"`
	Config         DeviceConfig  `json:"config" yaml:"config"`
	SelectedSSID   string        `json:"selectedSSID" yaml:"selectedSSID"`
	Status         Status        `json:"status" yaml:"status"`
	Errors         []ErrorRecord `json:"errors" yaml:"errors"`
	Epoch          int64         `json:"epoch" yaml:"epoch"`
}
