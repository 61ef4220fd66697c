//go:build unit
// +build unit

package engine

import (
	"bytes"
	"testing"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"github.com/stretchr/testify/assert"
)

func newEngine(conf *core.Conf) *Engine {
	e := &Engine{conf: conf, setting: NewSetting()}
	e.setting.PollIntervalSec = 0
	e.out = &bytes.Buffer{}
	return e
}

func bell() *qasm.Circuit {
	c := &qasm.Circuit{Name: "bell"}
	c.AddGate("H", 0, nil)
	c.AddGate("CX", 1, nil, 0)
	c.AddMeasure(0, 0)
	c.AddMeasure(1, 1)
	return c
}

func TestExecutePollsToDone(t *testing.T) {
	circ := bell()
	result, err := core.NewResult("mock", []*qasm.Circuit{circ}, []*core.ExpData{
		{Counts: core.Counts{"00": 512, "11": 512}},
	})
	assert.Nil(t, err)

	backend := &core.MockBackend{
		BackendName: "mock",
		SubmittedJob: &core.MockJob{
			JobID:     "j1",
			StatusSeq: []core.Status{core.QUEUED, core.RUNNING, core.DONE},
			JobResult: result,
		},
	}
	conf := &core.Conf{Shots: 1024, OptimizationLevel: 1}

	got, err := newEngine(conf).Execute(backend, []*qasm.Circuit{circ})
	assert.Nil(t, err)
	assert.Equal(t, "mock", got.BackendName())
	assert.Equal(t, 1024, conf.Shots)
	assert.Equal(t, 1, len(backend.LastCircuits))
}

func TestExecuteFailedJob(t *testing.T) {
	backend := &core.MockBackend{
		BackendName: "mock",
		SubmittedJob: &core.MockJob{
			JobID:      "j2",
			StatusSeq:  []core.Status{core.RUNNING, core.FAILED},
			ErrMessage: "calibration drift",
		},
	}
	conf := &core.Conf{Shots: 1024}

	_, err := newEngine(conf).Execute(backend, []*qasm.Circuit{bell()})
	assert.NotNil(t, err)
	assert.IsType(t, &core.JobFailureError{}, err)
	assert.Contains(t, err.Error(), "calibration drift")
}

func TestExecuteCancelledJob(t *testing.T) {
	backend := &core.MockBackend{
		BackendName: "mock",
		SubmittedJob: &core.MockJob{
			JobID:     "j3",
			JobStatus: core.CANCELLED,
		},
	}
	conf := &core.Conf{Shots: 1024}

	_, err := newEngine(conf).Execute(backend, []*qasm.Circuit{bell()})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestExecutePassesMethod(t *testing.T) {
	backend := &core.MockBackend{BackendName: "mock"}
	backend.SubmittedJob = &core.MockJob{JobID: "j4", JobStatus: core.DONE}
	circ := bell()
	result, _ := core.NewResult("mock", []*qasm.Circuit{circ}, []*core.ExpData{{}})
	backend.SubmittedJob.JobResult = result

	conf := &core.Conf{Shots: 100, StatevectorGPU: true}
	_, err := newEngine(conf).Execute(backend, []*qasm.Circuit{circ})
	assert.Nil(t, err)
	assert.Equal(t, core.MethodStatevectorGPU, backend.LastParams.Method)
}
