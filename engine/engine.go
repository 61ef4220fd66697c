// Package engine drives a job from submission to a terminal state.
package engine

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"go.uber.org/zap"
)

const SettingName = "engine"

type Setting struct {
	PollIntervalSec int `toml:"poll_interval_sec"`
}

func NewSetting() Setting {
	return Setting{
		PollIntervalSec: 2,
	}
}

type Engine struct {
	conf    *core.Conf
	setting Setting
	out     io.Writer
}

func New(conf *core.Conf) *Engine {
	e := &Engine{conf: conf, setting: NewSetting(), out: os.Stdout}
	if raw, ok := core.GetComponentSetting(SettingName); ok {
		if mapped, ok := raw.(map[string]interface{}); ok {
			if iv, ok := mapped["poll_interval_sec"].(int64); ok {
				e.setting.PollIntervalSec = int(iv)
			}
		}
	}
	return e
}

// Execute submits the circuits as one job and blocks until the job is
// terminal. A failed or cancelled job is an error carrying the
// backend's message.
func (e *Engine) Execute(backend core.Backend, circs []*qasm.Circuit) (*core.Result, error) {
	params, err := e.conf.RunParams()
	if err != nil {
		return nil, err
	}
	job, err := backend.Run(circs, params)
	if err != nil {
		return nil, err
	}
	zap.L().Info(fmt.Sprintf("job %s submitted to %s", job.ID(), backend.Name()))

	if e.conf.Job {
		fmt.Fprintln(e.out, "Before run:")
		PrintSnapshot(e.out, Snapshot(job))
	}

	if err := e.wait(job); err != nil {
		return nil, err
	}

	if e.conf.Job {
		fmt.Fprintln(e.out, "After run:")
		PrintSnapshot(e.out, Snapshot(job))
	}

	result, err := job.Result()
	if err != nil {
		return nil, core.NewRuntimeError(err, "failed to fetch result of job %s", job.ID())
	}
	return result, nil
}

// wait polls until the job reaches a terminal state, driving the
// monitor when one was requested.
func (e *Engine) wait(job core.Job) error {
	monitor, closeMonitor, err := e.newMonitor()
	if err != nil {
		return err
	}
	defer closeMonitor()

	interval := time.Duration(e.setting.PollIntervalSec) * time.Second
	for {
		status, err := job.Status()
		if err != nil {
			return core.NewRuntimeError(err, "failed to poll status of job %s", job.ID())
		}
		monitor.Update(status)
		if status.IsTerminal() {
			monitor.Finish()
			return e.checkTerminal(job, status)
		}
		time.Sleep(interval)
	}
}

func (e *Engine) checkTerminal(job core.Job, status core.Status) error {
	switch status {
	case core.DONE:
		return nil
	case core.CANCELLED:
		return &core.JobFailureError{JobID: job.ID(), Message: "job was cancelled"}
	default:
		msg := job.ErrorMessage()
		if msg == "" {
			msg = "job failed without an error message"
		}
		return &core.JobFailureError{JobID: job.ID(), Message: msg}
	}
}
