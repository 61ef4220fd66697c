package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/qjob-team/qjob/core"
)

// Monitor writes job progress while the engine waits. Each update is
// prefixed with the configured line-discipline bytes; the default
// carriage return makes updates overwrite each other on a terminal.
type Monitor struct {
	w      io.Writer
	prefix string
	last   string
}

// newMonitor builds the monitor, a no-op one when monitoring is off.
func (e *Engine) newMonitor() (*Monitor, func(), error) {
	if !e.conf.UseJobMonitor {
		return &Monitor{w: io.Discard}, func() {}, nil
	}
	prefix, err := core.DecodeMonitorLine(e.conf.JobMonitorLine)
	if err != nil {
		return nil, nil, err
	}
	if e.conf.JobMonitorFilepath != "" {
		f, err := os.Create(e.conf.JobMonitorFilepath)
		if err != nil {
			return nil, nil, core.NewRuntimeError(err, "failed to open monitor file %s", e.conf.JobMonitorFilepath)
		}
		return &Monitor{w: f, prefix: prefix}, func() { f.Close() }, nil
	}
	return &Monitor{w: os.Stdout, prefix: prefix}, func() {}, nil
}

// Update writes the status when it changed since the last update.
func (m *Monitor) Update(status core.Status) {
	line := fmt.Sprintf("Job Status: %s", status)
	if line == m.last {
		return
	}
	m.last = line
	fmt.Fprintf(m.w, "%s%s", m.prefix, line)
}

// Finish terminates the monitor line with a newline.
func (m *Monitor) Finish() {
	if m.last != "" {
		fmt.Fprintln(m.w)
	}
}
