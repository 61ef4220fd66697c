//go:build unit
// +build unit

package engine

import (
	"bytes"
	"testing"

	"github.com/qjob-team/qjob/core"
	"github.com/stretchr/testify/assert"
)

func TestMonitorLineDiscipline(t *testing.T) {
	var buf bytes.Buffer
	m := &Monitor{w: &buf, prefix: "\r"}
	m.Update(core.QUEUED)
	m.Update(core.QUEUED)
	m.Update(core.RUNNING)
	m.Finish()

	assert.Equal(t, "\rJob Status: QUEUED\rJob Status: RUNNING\n", buf.String())
}

func TestMonitorNoUpdatesNoNewline(t *testing.T) {
	var buf bytes.Buffer
	m := &Monitor{w: &buf}
	m.Finish()
	assert.Equal(t, "", buf.String())
}
