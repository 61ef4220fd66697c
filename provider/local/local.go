// Package local is the in-process simulator family. Its backends run
// synchronously on the sim engine, so a submitted job is already in a
// terminal state when Run returns.
package local

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"github.com/qjob-team/qjob/sim"
	"go.uber.org/zap"
)

const SettingName = "local_sim"

type Setting struct {
	Seed      int64 `toml:"seed"`
	MaxQubits int   `toml:"max_qubits"`
}

func NewSetting() Setting {
	return Setting{
		Seed:      0,
		MaxQubits: 24,
	}
}

type Provider struct {
	setting  Setting
	backends map[string]*Backend
}

func NewProvider() *Provider {
	p := &Provider{setting: NewSetting()}
	if raw, ok := core.GetComponentSetting(SettingName); ok {
		if mapped, ok := raw.(map[string]interface{}); ok {
			if seed, ok := mapped["seed"].(int64); ok {
				p.setting.Seed = seed
			}
			if mq, ok := mapped["max_qubits"].(int64); ok {
				p.setting.MaxQubits = int(mq)
			}
		} else {
			zap.L().Warn(fmt.Sprintf("ignoring malformed %s setting:%v", SettingName, raw))
		}
	}
	p.backends = map[string]*Backend{}
	for _, kind := range []string{
		core.KindStatevector,
		core.KindQasm,
		core.KindUnitary,
		core.KindDensityMatrix,
		core.KindPulse,
	} {
		p.backends[kind] = &Backend{kind: kind, setting: p.setting}
	}
	return p
}

func (p *Provider) Name() string {
	return "local"
}

func (p *Provider) Backends() ([]core.Backend, error) {
	bs := make([]core.Backend, 0, len(p.backends))
	for _, kind := range []string{
		core.KindStatevector,
		core.KindQasm,
		core.KindUnitary,
		core.KindDensityMatrix,
		core.KindPulse,
	} {
		bs = append(bs, p.backends[kind])
	}
	return bs, nil
}

func (p *Provider) GetBackend(name string) (core.Backend, error) {
	b, ok := p.backends[name]
	if !ok {
		return nil, &core.BackendNotFoundError{Name: name}
	}
	return b, nil
}

type Backend struct {
	kind    string
	setting Setting
}

func (b *Backend) Name() string {
	return b.kind
}

func (b *Backend) Configuration() (*core.BackendConfiguration, error) {
	return &core.BackendConfiguration{
		BackendName: b.kind,
		NumQubits:   b.setting.MaxQubits,
		Simulator:   true,
		Local:       true,
		MaxShots:    1 << 20,
		BasisGates: []string{
			"h", "x", "y", "z", "s", "sdg", "t", "tdg", "id",
			"rx", "ry", "rz", "p", "cx", "cz", "swap", "reset",
		},
	}, nil
}

func (b *Backend) Status() (*core.BackendStatus, error) {
	return &core.BackendStatus{
		BackendName:   b.kind,
		Operational:   true,
		PendingJobs:   0,
		StatusMessage: "active",
	}, nil
}

// Run simulates all circuits and returns a finished job. The seed
// setting makes sampling reproducible; seed 0 derives one from the
// clock. A GPU method is accepted and recorded, the simulation itself
// runs on the CPU engine either way.
func (b *Backend) Run(circs []*qasm.Circuit, params core.RunParams) (core.Job, error) {
	if b.kind == core.KindPulse {
		return nil, core.NewRuntimeError(nil, "the %s backend takes pulse schedules, not circuits", b.kind)
	}
	for _, c := range circs {
		if c.NumQubits > b.setting.MaxQubits {
			return nil, core.NewRuntimeError(nil,
				"circuit %s needs %d qubits, %s is capped at %d",
				c.Name, c.NumQubits, b.kind, b.setting.MaxQubits)
		}
	}
	seed := b.setting.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	exps := make([]*core.ExpData, 0, len(circs))
	for _, c := range circs {
		exp, err := b.simulate(c, params, rng, seed)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	result, err := core.NewResult(b.kind, circs, exps)
	if err != nil {
		return nil, err
	}
	job := &Job{
		id:      uuid.NewString(),
		backend: b,
		created: time.Now().UTC(),
		result:  result,
	}
	zap.L().Debug(fmt.Sprintf("local job %s finished %d experiments on %s", job.id, len(circs), b.kind))
	return job, nil
}

func (b *Backend) simulate(c *qasm.Circuit, params core.RunParams, rng *rand.Rand, seed int64) (*core.ExpData, error) {
	exp := &core.ExpData{
		Metadata: map[string]string{
			"simulator": b.kind,
			"seed":      strconv.FormatInt(seed, 10),
		},
	}
	if params.Method != "" {
		exp.Metadata["method"] = params.Method
	}

	counts, memory := sim.Sample(c, params.Shots, rng)
	exp.Counts = core.Counts(counts)
	if params.Memory {
		exp.Memory = memory
	}

	switch b.kind {
	case core.KindStatevector:
		exp.Statevector = sim.Evolve(c).Amplitudes
	case core.KindUnitary:
		u := sim.Unitary(c)
		exp.Metadata["unitary_dim"] = strconv.Itoa(len(u))
	case core.KindDensityMatrix:
		rho := sim.DensityMatrix(c)
		exp.Metadata["density_matrix_dim"] = strconv.Itoa(len(rho))
	}
	return exp, nil
}

type Job struct {
	id      string
	backend *Backend
	created time.Time
	result  *core.Result
}

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Backend() core.Backend {
	return j.backend
}

func (j *Job) CreationDate() time.Time {
	return j.created
}

func (j *Job) Status() (core.Status, error) {
	return core.DONE, nil
}

func (j *Job) Result() (*core.Result, error) {
	return j.result, nil
}

func (j *Job) ErrorMessage() string {
	return ""
}
