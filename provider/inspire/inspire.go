// Package inspire is the second cloud family. The account is enabled
// with a bare token against a fixed API endpoint, and its house
// selection rule takes the first backend with enough qubits.
package inspire

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const SimulatorName = "inspire_simulator"

const SettingName = "inspire"

type Setting struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

func NewSetting() Setting {
	return Setting{
		URL: "https://api.inspire.example.com",
	}
}

type Provider struct {
	cli *http.Client
	url string
}

// NewProvider enables the account. A token on the command line beats
// the settings file.
func NewProvider(conf *core.Conf) (*Provider, error) {
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
	}
	if s.Token == "" {
		return nil, core.NewArgumentError("the inspire family needs a token, via --token or the settings file")
	}
	p := &Provider{
		cli: &http.Client{
			Transport: &tokenRoundTripper{token: s.Token, next: http.DefaultTransport},
			Timeout:   60 * time.Second,
		},
		url: s.URL,
	}
	// Enable-account handshake. Failing here beats failing on first use.
	if err := p.getJSON("/account", nil); err != nil {
		return nil, core.NewRuntimeError(err, "failed to enable inspire account")
	}
	zap.L().Debug("inspire account enabled")
	return p, nil
}

type tokenRoundTripper struct {
	token string
	next  http.RoundTripper
}

func (t *tokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "token "+t.token)
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		zap.L().Error("API roundtrip failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("Received API response",
		zap.String("url", req.URL.String()),
		zap.Int("statusCode", resp.StatusCode),
	)
	return resp, nil
}

func (p *Provider) getJSON(path string, out interface{}) error {
	resp, err := p.cli.Get(p.url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d:%s", path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return jsonIter.Unmarshal(b, out)
}

func (p *Provider) postJSON(path string, body, out interface{}) error {
	b, err := jsonIter.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := p.cli.Post(p.url+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d:%s", path, resp.StatusCode, string(rb))
	}
	if out == nil {
		return nil
	}
	return jsonIter.Unmarshal(rb, out)
}

func (p *Provider) Name() string {
	return "inspire"
}

func (p *Provider) SimulatorName() string {
	return SimulatorName
}

type backendType struct {
	Name           string `json:"name"`
	NumberOfQubits int    `json:"number_of_qubits"`
	IsSimulator    bool   `json:"is_simulator"`
	MaxShots       int    `json:"max_number_of_shots"`
	Status         string `json:"status"`
	PendingJobs    int    `json:"pending_jobs"`
}

func (p *Provider) Backends() ([]core.Backend, error) {
	var resp []backendType
	if err := p.getJSON("/backendtypes", &resp); err != nil {
		return nil, core.NewRuntimeError(err, "failed to list inspire backends")
	}
	bs := make([]core.Backend, len(resp))
	for i, bt := range resp {
		bs[i] = &Backend{provider: p, info: bt}
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

// FirstFit takes the first listed backend with enough qubit capacity.
func (p *Provider) FirstFit(qubits int) (core.Backend, error) {
	bs, err := p.Backends()
	if err != nil {
		return nil, err
	}
	for _, b := range bs {
		cfg, err := b.Configuration()
		if err != nil {
			continue
		}
		if cfg.NumQubits >= qubits {
			zap.L().Info(fmt.Sprintf("first fit for %d qubits is %s", qubits, b.Name()))
			return b, nil
		}
	}
	return nil, &core.NoSuitableBackendError{Qubits: qubits}
}

type Backend struct {
	provider *Provider
	info     backendType
}

func (b *Backend) Name() string {
	return b.info.Name
}

func (b *Backend) Configuration() (*core.BackendConfiguration, error) {
	return &core.BackendConfiguration{
		BackendName: b.info.Name,
		NumQubits:   b.info.NumberOfQubits,
		Simulator:   b.info.IsSimulator,
		MaxShots:    b.info.MaxShots,
	}, nil
}

func (b *Backend) Status() (*core.BackendStatus, error) {
	var resp []backendType
	if err := b.provider.getJSON("/backendtypes", &resp); err != nil {
		return nil, core.NewRuntimeError(err, "failed to read inspire backend status")
	}
	for _, bt := range resp {
		if bt.Name == b.info.Name {
			return &core.BackendStatus{
				BackendName:   bt.Name,
				Operational:   bt.Status != "OFFLINE",
				PendingJobs:   bt.PendingJobs,
				StatusMessage: bt.Status,
			}, nil
		}
	}
	return nil, &core.BackendNotFoundError{Name: b.info.Name}
}

type inspireJob struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	CreatedAt    strfmt.DateTime `json:"created_at"`
	ErrorMessage string          `json:"error_message"`
}

func (b *Backend) Run(circs []*qasm.Circuit, params core.RunParams) (core.Job, error) {
	qasms := make([]string, len(circs))
	for i, c := range circs {
		qasms[i] = c.ToQASM()
	}
	req := map[string]interface{}{
		"backend": b.info.Name,
		"qasm":    qasms,
		"shots":   params.Shots,
	}
	var resp inspireJob
	if err := b.provider.postJSON("/jobs", req, &resp); err != nil {
		return nil, core.NewRuntimeError(err, "failed to submit to %s", b.info.Name)
	}
	zap.L().Info(fmt.Sprintf("submitted job %s to %s", resp.ID, b.info.Name))
	return &Job{backend: b, payload: resp, circuits: circs}, nil
}

type Job struct {
	backend  *Backend
	payload  inspireJob
	circuits []*qasm.Circuit
}

func (j *Job) ID() string {
	return j.payload.ID
}

func (j *Job) Backend() core.Backend {
	return j.backend
}

func (j *Job) CreationDate() time.Time {
	return time.Time(j.payload.CreatedAt)
}

func (j *Job) Status() (core.Status, error) {
	var resp inspireJob
	if err := j.backend.provider.getJSON("/jobs/"+j.payload.ID, &resp); err != nil {
		return core.FAILED, core.NewRuntimeError(err, "failed to poll job %s", j.payload.ID)
	}
	j.payload = resp
	return core.ToStatus(resp.Status)
}

func (j *Job) Result() (*core.Result, error) {
	var resp struct {
		Histograms []map[string]int `json:"histograms"`
		RawText    []string         `json:"raw_text"`
	}
	if err := j.backend.provider.getJSON("/jobs/"+j.payload.ID+"/result", &resp); err != nil {
		return nil, core.NewRuntimeError(err, "failed to fetch result of job %s", j.payload.ID)
	}
	exps := make([]*core.ExpData, len(resp.Histograms))
	for i, h := range resp.Histograms {
		exps[i] = &core.ExpData{Counts: core.Counts(h)}
	}
	circs := j.circuits
	if circs == nil {
		circs = make([]*qasm.Circuit, len(exps))
		for i := range circs {
			circs[i] = &qasm.Circuit{Name: fmt.Sprintf("experiment_%d", i)}
		}
	}
	return core.NewResult(j.backend.info.Name, circs, exps)
}

func (j *Job) ErrorMessage() string {
	return j.payload.ErrorMessage
}
