// Package qvm is the QVM family: a virtual machine reachable on a
// local socket that runs circuits synchronously, optionally emulating
// a named device's topology.
package qvm

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/qjob-team/qjob/common"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const SettingName = "qvm"

type Setting struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func NewSetting() Setting {
	return Setting{
		Host: "localhost",
		Port: "5000",
	}
}

type Provider struct {
	address string
	cli     *http.Client
	as      string
}

// NewProvider connects to the QVM endpoint. An empty as runs the plain
// QVM; a device name emulates that device.
func NewProvider(as string) (*Provider, error) {
	s := NewSetting()
	if raw, ok := core.GetComponentSetting(SettingName); ok {
		if mapped, ok := raw.(map[string]interface{}); ok {
			if h, ok := mapped["host"].(string); ok {
				s.Host = h
			}
			if p, ok := mapped["port"].(string); ok {
				s.Port = p
			}
		}
	}
	address, err := common.ValidAddress(s.Host, s.Port)
	if err != nil {
		return nil, core.NewRuntimeError(err, "invalid qvm address")
	}
	zap.L().Debug(fmt.Sprintf("qvm provider at %s emulating %q", address, as))
	return &Provider{
		address: address,
		cli:     &http.Client{Timeout: 120 * time.Second},
		as:      as,
	}, nil
}

func (p *Provider) Name() string {
	return "qvm"
}

func (p *Provider) backendName() string {
	if p.as != "" {
		return p.as + "-qvm"
	}
	return "qvm"
}

func (p *Provider) Backends() ([]core.Backend, error) {
	return []core.Backend{&Backend{provider: p}}, nil
}

func (p *Provider) GetBackend(name string) (core.Backend, error) {
	if name != p.backendName() {
		return nil, &core.BackendNotFoundError{Name: name}
	}
	return &Backend{provider: p}, nil
}

type Backend struct {
	provider *Provider
}

func (b *Backend) Name() string {
	return b.provider.backendName()
}

func (b *Backend) Configuration() (*core.BackendConfiguration, error) {
	return &core.BackendConfiguration{
		BackendName: b.Name(),
		NumQubits:   32,
		Simulator:   true,
		Local:       true,
		MaxShots:    1 << 16,
	}, nil
}

func (b *Backend) Status() (*core.BackendStatus, error) {
	resp, err := b.provider.cli.Get("http://" + b.provider.address + "/version")
	operational := err == nil && resp.StatusCode == http.StatusOK
	if resp != nil {
		resp.Body.Close()
	}
	return &core.BackendStatus{
		BackendName:   b.Name(),
		Operational:   operational,
		StatusMessage: "qvm endpoint",
	}, nil
}

// Run posts all circuits in one request. The QVM answers with the
// counts directly, so the returned job is already terminal.
func (b *Backend) Run(circs []*qasm.Circuit, params core.RunParams) (core.Job, error) {
	qasms := make([]string, len(circs))
	for i, c := range circs {
		qasms[i] = c.ToQASM()
	}
	req := map[string]interface{}{
		"programs": qasms,
		"trials":   params.Shots,
	}
	if b.provider.as != "" {
		req["emulate"] = b.provider.as
	}
	body, err := jsonIter.Marshal(req)
	if err != nil {
		return nil, core.NewRuntimeError(err, "failed to encode qvm request")
	}
	resp, err := b.provider.cli.Post("http://"+b.provider.address+"/execute", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, core.NewRuntimeError(err, "qvm request failed")
	}
	defer resp.Body.Close()
	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewRuntimeError(err, "failed to read qvm response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewRuntimeError(nil, "qvm returned %d:%s", resp.StatusCode, string(rb))
	}
	var decoded struct {
		Results []struct {
			Counts map[string]int `json:"counts"`
			Memory []string       `json:"memory"`
		} `json:"results"`
	}
	if err := jsonIter.Unmarshal(rb, &decoded); err != nil {
		return nil, core.NewRuntimeError(err, "failed to decode qvm response")
	}
	exps := make([]*core.ExpData, len(decoded.Results))
	for i, r := range decoded.Results {
		exps[i] = &core.ExpData{Counts: core.Counts(r.Counts)}
		if params.Memory {
			exps[i].Memory = r.Memory
		}
	}
	result, err := core.NewResult(b.Name(), circs, exps)
	if err != nil {
		return nil, err
	}
	return &Job{
		id:      uuid.NewString(),
		backend: b,
		created: time.Now().UTC(),
		result:  result,
	}, nil
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
