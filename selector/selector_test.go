//go:build unit
// +build unit

package selector

import (
	"fmt"
	"testing"

	"github.com/qjob-team/qjob/core"
	"github.com/stretchr/testify/assert"
)

// simulatorProvider adds the canonical-simulator rule to the mock.
type simulatorProvider struct {
	core.MockProvider
}

func (p *simulatorProvider) SimulatorName() string {
	return "canonical_sim"
}

// firstFitProvider adds the house first-fit rule to the mock.
type firstFitProvider struct {
	core.MockProvider
}

func (p *firstFitProvider) FirstFit(qubits int) (core.Backend, error) {
	bs, _ := p.Backends()
	for _, b := range bs {
		cfg, _ := b.Configuration()
		if cfg.NumQubits >= qubits {
			return b, nil
		}
	}
	return nil, &core.NoSuitableBackendError{Qubits: qubits}
}

func newConf() *core.Conf {
	return &core.Conf{Qubits: 5, Shots: 1024, OptimizationLevel: 1}
}

func TestExplicitNameWins(t *testing.T) {
	p := &simulatorProvider{core.MockProvider{
		ProviderName: "cloud",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "device_a", NumQubits: 5, Operational: true},
			&core.MockBackend{BackendName: "canonical_sim", NumQubits: 32, Simulator: true, Operational: true},
		},
	}}
	conf := newConf()
	conf.Backend = "device_a"
	conf.Sim = true

	b, err := Select(conf, p)
	assert.Nil(t, err)
	assert.Equal(t, "device_a", b.Name())
}

func TestExplicitNameMiss(t *testing.T) {
	p := &core.MockProvider{ProviderName: "cloud"}
	conf := newConf()
	conf.Backend = "ghost"

	_, err := Select(conf, p)
	assert.NotNil(t, err)
	assert.IsType(t, &core.BackendNotFoundError{}, err)
}

func TestSimFlagPicksCanonicalSimulator(t *testing.T) {
	p := &simulatorProvider{core.MockProvider{
		ProviderName: "cloud",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "canonical_sim", NumQubits: 32, Simulator: true},
		},
	}}
	conf := newConf()
	conf.Sim = true

	b, err := Select(conf, p)
	assert.Nil(t, err)
	assert.Equal(t, "canonical_sim", b.Name())
}

func TestFirstFitRule(t *testing.T) {
	p := &firstFitProvider{core.MockProvider{
		ProviderName: "inspire",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "small", NumQubits: 2},
			&core.MockBackend{BackendName: "medium", NumQubits: 5},
			&core.MockBackend{BackendName: "large", NumQubits: 26},
		},
	}}
	conf := newConf()

	b, err := Select(conf, p)
	assert.Nil(t, err)
	assert.Equal(t, "medium", b.Name())
}

func TestLeastBusySkipsSimulatorsAndSmallDevices(t *testing.T) {
	p := &core.MockProvider{
		ProviderName: "cloud",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "sim", NumQubits: 32, Simulator: true, Operational: true, PendingJobs: 0},
			&core.MockBackend{BackendName: "tiny", NumQubits: 2, Operational: true, PendingJobs: 0},
			&core.MockBackend{BackendName: "busy", NumQubits: 7, Operational: true, PendingJobs: 40},
			&core.MockBackend{BackendName: "calm", NumQubits: 7, Operational: true, PendingJobs: 3},
			&core.MockBackend{BackendName: "down", NumQubits: 7, Operational: false, PendingJobs: 0},
		},
	}
	conf := newConf()

	b, err := Select(conf, p)
	assert.Nil(t, err)
	assert.Equal(t, "calm", b.Name())
}

func TestLeastBusyFailsOnStatusQueryError(t *testing.T) {
	p := &core.MockProvider{
		ProviderName: "cloud",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "calm", NumQubits: 7, Operational: true, PendingJobs: 3},
			&core.MockBackend{BackendName: "flaky", NumQubits: 7, StatusErr: fmt.Errorf("status endpoint timed out")},
		},
	}
	conf := newConf()

	_, err := Select(conf, p)
	assert.NotNil(t, err)
	assert.IsType(t, &core.NoSuitableBackendError{}, err)
	assert.Contains(t, err.Error(), "status endpoint timed out")
}

func TestNoSuitableBackend(t *testing.T) {
	p := &core.MockProvider{
		ProviderName: "cloud",
		BackendList: []core.Backend{
			&core.MockBackend{BackendName: "tiny", NumQubits: 2, Operational: true},
		},
	}
	conf := newConf()
	conf.Qubits = 50

	_, err := Select(conf, p)
	assert.NotNil(t, err)
	assert.IsType(t, &core.NoSuitableBackendError{}, err)
}
