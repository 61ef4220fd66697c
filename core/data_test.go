//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/qjob-team/qjob/qasm"
	"github.com/stretchr/testify/assert"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected Status
	}{
		{"created", CREATED},
		{"initializing", CREATED},
		{"queued", QUEUED},
		{"pending", QUEUED},
		{"running", RUNNING},
		{"done", DONE},
		{"completed", DONE},
		{"cancelled", CANCELLED},
		{"canceled", CANCELLED},
		{"failed", FAILED},
	}
	for _, tt := range tests {
		s, err := ToStatus(tt.in)
		assert.Nil(t, err, tt.in)
		assert.Equal(t, tt.expected, s, tt.in)
	}
	_, err := ToStatus("weird")
	assert.NotNil(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, DONE.IsTerminal())
	assert.True(t, CANCELLED.IsTerminal())
	assert.True(t, FAILED.IsTerminal())
	assert.False(t, RUNNING.IsTerminal())
	assert.False(t, QUEUED.IsTerminal())
}

func TestCountsSortedKeys(t *testing.T) {
	c := Counts{"11": 500, "00": 510, "01": 7, "10": 7}
	assert.Equal(t, []string{"00", "01", "10", "11"}, c.SortedKeys())
	assert.Equal(t, 1024, c.TotalShots())
}

func TestResultLookup(t *testing.T) {
	c1 := &qasm.Circuit{Name: "first"}
	c2 := &qasm.Circuit{Name: "second"}
	exps := []*ExpData{
		{Counts: Counts{"0": 1024}},
		{},
	}
	r, err := NewResult("some_backend", []*qasm.Circuit{c1, c2}, exps)
	assert.Nil(t, err)
	assert.Equal(t, "some_backend", r.BackendName())

	counts, err := r.GetCounts(c1)
	assert.Nil(t, err)
	assert.Equal(t, 1024, counts["0"])

	_, err = r.GetCounts(c2)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no measurement was taken")

	outsider := &qasm.Circuit{Name: "outsider"}
	_, err = r.Data(outsider)
	assert.NotNil(t, err)
}

func TestResultLengthMismatch(t *testing.T) {
	c1 := &qasm.Circuit{Name: "only"}
	_, err := NewResult("b", []*qasm.Circuit{c1}, []*ExpData{{}, {}})
	assert.NotNil(t, err)
}

func TestResultToMap(t *testing.T) {
	c1 := &qasm.Circuit{Name: "bell"}
	exps := []*ExpData{{
		Counts:      Counts{"00": 500, "11": 524},
		Statevector: []complex128{complex(0.7071, 0), 0, 0, complex(0.7071, 0)},
	}}
	r, err := NewResult("statevector_simulator", []*qasm.Circuit{c1}, exps)
	assert.Nil(t, err)
	m := r.ToMap()
	assert.Equal(t, "statevector_simulator", m["backend_name"])
	expList := m["experiments"].([]map[string]interface{})
	assert.Equal(t, 1, len(expList))
	assert.Equal(t, "bell", expList[0]["name"])
}
