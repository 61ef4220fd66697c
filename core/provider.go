package core

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/qjob-team/qjob/qasm"
)

// Provider is one backend family: the local simulators, a cloud hub
// account, or a QVM endpoint.
type Provider interface {
	Name() string
	Backends() ([]Backend, error)
	GetBackend(name string) (Backend, error)
}

// BackendConfiguration is the static description of a backend. Extra
// provider-specific fields ride along raw.
type BackendConfiguration struct {
	BackendName string   `json:"backend_name"`
	NumQubits   int      `json:"n_qubits"`
	Simulator   bool     `json:"simulator"`
	Local       bool     `json:"local"`
	MaxShots    int      `json:"max_shots"`
	BasisGates  []string `json:"basis_gates,omitempty"`
	Extra       jx.Raw   `json:"extra,omitempty"`
}

// BackendStatus is the live operational state of a backend.
type BackendStatus struct {
	BackendName   string `json:"backend_name"`
	Operational   bool   `json:"operational"`
	PendingJobs   int    `json:"pending_jobs"`
	StatusMessage string `json:"status_msg"`
}

// Backend runs circuits and answers introspection queries.
type Backend interface {
	Name() string
	Configuration() (*BackendConfiguration, error)
	Status() (*BackendStatus, error)
	Run(circs []*qasm.Circuit, params RunParams) (Job, error)
}

// PropertiesReader is implemented by backends with calibration data.
// The at argument asks for the properties as of that instant; the zero
// time means current.
type PropertiesReader interface {
	Properties(at time.Time) (map[string]interface{}, error)
}

// SimulatorNamer is implemented by providers with a canonical cloud
// simulator reachable under a fixed name.
type SimulatorNamer interface {
	SimulatorName() string
}

// FirstFitter is implemented by providers whose house rule is to take
// the first backend with enough qubit capacity.
type FirstFitter interface {
	FirstFit(qubits int) (Backend, error)
}

// JobHistorian is implemented by backends that keep job history.
type JobHistorian interface {
	Jobs(limit int) ([]Job, error)
	RetrieveJob(id string) (Job, error)
}

// Job is one submitted unit of work.
type Job interface {
	ID() string
	Backend() Backend
	CreationDate() time.Time
	Status() (Status, error)
	Result() (*Result, error)
	ErrorMessage() string
}

// Optional job capabilities, probed defensively by the snapshotter.
// A provider family implements the ones its job objects can answer.
type (
	QueueInfoReader      interface{ QueueInfo() (interface{}, error) }
	QueuePositionReader  interface{ QueuePosition() (int, error) }
	NameReader           interface{ JobName() (string, error) }
	TagsReader           interface{ Tags() ([]string, error) }
	SchedulingModeReader interface{ SchedulingMode() (string, error) }
	ShareLevelReader     interface{ ShareLevel() (string, error) }
	JobPropertiesReader  interface{ JobProperties() (map[string]interface{}, error) }
	SpecReader           interface{ Spec() (map[string]interface{}, error) }
	TimePerStepReader    interface{ TimePerStep() (map[string]time.Time, error) }
)
