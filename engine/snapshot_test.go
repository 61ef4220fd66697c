//go:build unit
// +build unit

package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotPlainJob(t *testing.T) {
	job := &core.MockJob{
		JobID:      "j1",
		JobBackend: &core.MockBackend{BackendName: "mock"},
		Created:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		JobStatus:  core.DONE,
	}
	snap := Snapshot(job)

	assert.Equal(t, "j1", snap["job_id"])
	assert.Equal(t, "mock", snap["backend"])
	assert.Equal(t, "DONE", snap["status"])
	assert.Equal(t, true, snap["done"])
	assert.Equal(t, false, snap["cancelled"])
	assert.Equal(t, true, snap["in_final_state"])

	// Capabilities the plain job lacks are omitted, not failed.
	_, hasPos := snap["queue_position"]
	assert.False(t, hasPos)
	_, hasTags := snap["tags"]
	assert.False(t, hasTags)
}

func TestSnapshotRichJob(t *testing.T) {
	job := &core.RichMockJob{
		MockJob: core.MockJob{
			JobID:      "j2",
			JobBackend: &core.MockBackend{BackendName: "mock"},
			JobStatus:  core.QUEUED,
		},
		Position: 12,
		JName:    "friday run",
		JTags:    []string{"bench"},
	}
	snap := Snapshot(job)

	assert.Equal(t, 12, snap["queue_position"])
	assert.Equal(t, "friday run", snap["name"])
	assert.Equal(t, []string{"bench"}, snap["tags"])
	assert.NotNil(t, snap["properties"])
	assert.Equal(t, false, snap["done"])
}

func TestSnapshotFailingAccessorIsSkipped(t *testing.T) {
	job := &core.RichMockJob{
		MockJob: core.MockJob{
			JobID:      "j3",
			JobBackend: &core.MockBackend{BackendName: "mock"},
			JobStatus:  core.RUNNING,
		},
		PropsErr: fmt.Errorf("properties endpoint is down"),
	}
	snap := Snapshot(job)

	_, hasProps := snap["properties"]
	assert.False(t, hasProps)
	assert.Equal(t, "j3", snap["job_id"])
	assert.Equal(t, true, snap["running"])
}

func TestSnapshotCarriesResultPayload(t *testing.T) {
	circ := bell()
	result, err := core.NewResult("mock", []*qasm.Circuit{circ},
		[]*core.ExpData{{Counts: core.Counts{"00": 512, "11": 512}}})
	assert.Nil(t, err)
	job := &core.MockJob{
		JobID:      "j5",
		JobBackend: &core.MockBackend{BackendName: "mock"},
		JobStatus:  core.DONE,
		JobResult:  result,
	}
	snap := Snapshot(job)

	payload, ok := snap["result"]
	assert.True(t, ok, "snapshot should carry the full result payload")
	assert.Equal(t, result.ToMap(), payload)
}

func TestSnapshotOmitsResultBeforeDone(t *testing.T) {
	circ := bell()
	result, err := core.NewResult("mock", []*qasm.Circuit{circ},
		[]*core.ExpData{{Counts: core.Counts{"00": 1024}}})
	assert.Nil(t, err)
	job := &core.MockJob{
		JobID:      "j6",
		JobBackend: &core.MockBackend{BackendName: "mock"},
		JobStatus:  core.RUNNING,
		JobResult:  result,
	}
	snap := Snapshot(job)

	_, ok := snap["result"]
	assert.False(t, ok)
}

func TestSnapshotSurvivesPanickingAccessor(t *testing.T) {
	// A job without a backend makes the backend accessor dereference
	// nil; the snapshot must lose that field only.
	job := &core.MockJob{JobID: "j7", JobStatus: core.DONE}
	snap := Snapshot(job)

	_, hasBackend := snap["backend"]
	assert.False(t, hasBackend)
	assert.Equal(t, "j7", snap["job_id"])
	assert.Equal(t, "DONE", snap["status"])
}

func TestSnapshotOmitsZeroCreationDate(t *testing.T) {
	job := &core.MockJob{
		JobID:      "j4",
		JobBackend: &core.MockBackend{BackendName: "mock"},
		JobStatus:  core.DONE,
	}
	snap := Snapshot(job)
	_, has := snap["creation_date"]
	assert.False(t, has)
}
