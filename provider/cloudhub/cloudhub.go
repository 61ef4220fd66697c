// Package cloudhub is the hub/group/project cloud family. Accounts are
// addressed by token+url pairs and scope backends under a hub path.
package cloudhub

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"go.uber.org/zap"
)

// SimulatorName is the fixed name of the family's cloud simulator.
const SimulatorName = "hub_qasm_simulator"

const SettingName = "cloudhub"

type Setting struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

func NewSetting() Setting {
	return Setting{
		URL: "https://quantum.example.com/api",
	}
}

type Provider struct {
	hub     string
	group   string
	project string
	cli     *client
}

// NewProvider opens the account. An explicit token requires an explicit
// url and vice versa; with neither, the settings file supplies them.
func NewProvider(conf *core.Conf) (*Provider, error) {
	if (conf.Token == "") != (conf.URL == "") {
		return nil, core.NewArgumentError("--token and --url must be given together")
	}
	s := NewSetting()
	if raw, ok := core.GetComponentSetting(SettingName); ok {
		if mapped, ok := raw.(map[string]interface{}); ok {
			if u, ok := mapped["url"].(string); ok {
				s.URL = u
			}
			if t, ok := mapped["token"].(string); ok {
				s.Token = t
			}
		}
	}
	if conf.Token != "" {
		s.Token = conf.Token
		s.URL = conf.URL
	}
	p := &Provider{
		hub:     conf.Hub,
		group:   conf.Group,
		project: conf.Proj,
		cli:     newClient(s.URL, s.Token),
	}
	zap.L().Debug(fmt.Sprintf("cloudhub provider opened for %s/%s/%s", p.hub, p.group, p.project))
	return p, nil
}

func (p *Provider) Name() string {
	return fmt.Sprintf("cloudhub(%s/%s/%s)", p.hub, p.group, p.project)
}

// SimulatorName satisfies the canonical-simulator selection rule.
func (p *Provider) SimulatorName() string {
	return SimulatorName
}

// Hubs lists the hub names visible to the account.
func (p *Provider) Hubs() ([]string, error) {
	var resp []struct {
		Name string `json:"name"`
	}
	if err := p.cli.get("/hubs", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, len(resp))
	for i, h := range resp {
		names[i] = h.Name
	}
	return names, nil
}

type deviceInfo struct {
	BackendName string   `json:"backend_name"`
	NumQubits   int      `json:"n_qubits"`
	Simulator   bool     `json:"simulator"`
	MaxShots    int      `json:"max_shots"`
	BasisGates  []string `json:"basis_gates"`
}

func (p *Provider) Backends() ([]core.Backend, error) {
	var resp []deviceInfo
	if err := p.cli.get(fmtHubPath(p.hub, p.group, p.project)+"/devices", nil, &resp); err != nil {
		return nil, err
	}
	bs := make([]core.Backend, len(resp))
	for i, d := range resp {
		bs[i] = &Backend{provider: p, info: d}
	}
	return bs, nil
}

func (p *Provider) GetBackend(name string) (core.Backend, error) {
	bs, err := p.Backends()
	if err != nil {
		return nil, &core.BackendNotFoundError{Name: name, Cause: err}
	}
	for _, b := range bs {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, &core.BackendNotFoundError{Name: name}
}

type Backend struct {
	provider *Provider
	info     deviceInfo
}

func (b *Backend) Name() string {
	return b.info.BackendName
}

func (b *Backend) Configuration() (*core.BackendConfiguration, error) {
	return &core.BackendConfiguration{
		BackendName: b.info.BackendName,
		NumQubits:   b.info.NumQubits,
		Simulator:   b.info.Simulator,
		MaxShots:    b.info.MaxShots,
		BasisGates:  b.info.BasisGates,
	}, nil
}

func (b *Backend) Status() (*core.BackendStatus, error) {
	var resp core.BackendStatus
	if err := b.provider.cli.get("/devices/"+b.info.BackendName+"/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Properties returns the calibration data, as of the given instant when
// at is non-zero.
func (b *Backend) Properties(at time.Time) (map[string]interface{}, error) {
	query := url.Values{}
	if !at.IsZero() {
		query.Set("updated_before", at.Format(time.RFC3339))
	}
	var resp map[string]interface{}
	if err := b.provider.cli.get("/devices/"+b.info.BackendName+"/properties", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type jobPayload struct {
	ID             string                     `json:"id"`
	Status         string                     `json:"status"`
	CreationDate   strfmt.DateTime            `json:"creation_date"`
	Name           string                     `json:"name"`
	Tags           []string                   `json:"tags"`
	SchedulingMode string                     `json:"scheduling_mode"`
	ShareLevel     string                     `json:"share_level"`
	QueuePosition  int                        `json:"queue_position"`
	ErrorMessage   string                     `json:"error_message"`
	TimePerStep    map[string]strfmt.DateTime `json:"time_per_step"`
}

type submitRequest struct {
	QASM   []string       `json:"qasm"`
	Params core.RunParams `json:"params"`
}

func (b *Backend) Run(circs []*qasm.Circuit, params core.RunParams) (core.Job, error) {
	req := submitRequest{Params: params}
	for _, c := range circs {
		req.QASM = append(req.QASM, c.ToQASM())
	}
	var resp jobPayload
	if err := b.provider.cli.post("/devices/"+b.info.BackendName+"/jobs", req, &resp); err != nil {
		return nil, err
	}
	zap.L().Info(fmt.Sprintf("submitted job %s to %s", resp.ID, b.info.BackendName))
	return &Job{backend: b, payload: resp, circuits: circs}, nil
}

func (b *Backend) Jobs(limit int) ([]core.Job, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	var resp []jobPayload
	if err := b.provider.cli.get("/devices/"+b.info.BackendName+"/jobs", query, &resp); err != nil {
		return nil, err
	}
	jobs := make([]core.Job, len(resp))
	for i, payload := range resp {
		jobs[i] = &Job{backend: b, payload: payload}
	}
	return jobs, nil
}

func (b *Backend) RetrieveJob(id string) (core.Job, error) {
	var resp jobPayload
	if err := b.provider.cli.get("/jobs/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &Job{backend: b, payload: resp}, nil
}

type Job struct {
	backend  *Backend
	payload  jobPayload
	circuits []*qasm.Circuit
}

func (j *Job) ID() string {
	return j.payload.ID
}

func (j *Job) Backend() core.Backend {
	return j.backend
}

func (j *Job) CreationDate() time.Time {
	return time.Time(j.payload.CreationDate)
}

func (j *Job) Status() (core.Status, error) {
	var resp jobPayload
	if err := j.backend.provider.cli.get("/jobs/"+j.payload.ID, nil, &resp); err != nil {
		return core.FAILED, err
	}
	j.payload = resp
	return core.ToStatus(resp.Status)
}

type resultPayload struct {
	BackendName string `json:"backend_name"`
	Experiments []struct {
		Counts   map[string]int    `json:"counts"`
		Memory   []string          `json:"memory"`
		Metadata map[string]string `json:"metadata"`
	} `json:"experiments"`
}

func (j *Job) Result() (*core.Result, error) {
	var resp resultPayload
	if err := j.backend.provider.cli.get("/jobs/"+j.payload.ID+"/result", nil, &resp); err != nil {
		return nil, err
	}
	exps := make([]*core.ExpData, len(resp.Experiments))
	for i, e := range resp.Experiments {
		exps[i] = &core.ExpData{
			Counts:   core.Counts(e.Counts),
			Memory:   e.Memory,
			Metadata: e.Metadata,
		}
	}
	circs := j.circuits
	if circs == nil {
		// Retrieved jobs have no local circuit objects; synthesize
		// placeholders so the result still pairs one to one.
		circs = make([]*qasm.Circuit, len(exps))
		for i := range circs {
			circs[i] = &qasm.Circuit{Name: fmt.Sprintf("experiment_%d", i)}
		}
	}
	return core.NewResult(resp.BackendName, circs, exps)
}

func (j *Job) ErrorMessage() string {
	return j.payload.ErrorMessage
}

func (j *Job) QueuePosition() (int, error) {
	return j.payload.QueuePosition, nil
}

func (j *Job) JobName() (string, error) {
	return j.payload.Name, nil
}

func (j *Job) Tags() ([]string, error) {
	return j.payload.Tags, nil
}

func (j *Job) SchedulingMode() (string, error) {
	return j.payload.SchedulingMode, nil
}

func (j *Job) ShareLevel() (string, error) {
	return j.payload.ShareLevel, nil
}

func (j *Job) TimePerStep() (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(j.payload.TimePerStep))
	for k, v := range j.payload.TimePerStep {
		out[k] = time.Time(v)
	}
	return out, nil
}
