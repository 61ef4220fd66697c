//go:build unit
// +build unit

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"github.com/stretchr/testify/assert"
)

func TestNewRecordSortsKeys(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecord("some_backend", at, core.Counts{"11": 524, "00": 500})
	assert.NotNil(t, r)
	assert.Equal(t, "some_backend 2024-03-01T12:00:00Z", r.Description)
	assert.Equal(t, []string{"00", "11"}, r.Keys)
	assert.Equal(t, []int{500, 524}, r.Values)
}

func TestNewRecordNoCounts(t *testing.T) {
	assert.Nil(t, NewRecord("b", time.Now(), nil))
	assert.Nil(t, NewRecord("b", time.Now(), core.Counts{}))
}

func TestCSVLinesFormat(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecord("some_backend", at, core.Counts{"00": 500, "01": 7, "10": 9, "11": 508})
	lines := r.CSVLines()

	assert.Equal(t, 3, len(lines))
	assert.Equal(t, "some_backend 2024-03-01T12:00:00Z", lines[0])
	assert.Equal(t, "00;01;10;11;", lines[1])
	assert.Equal(t, "500;7;9;508;", lines[2])
	assert.True(t, strings.HasSuffix(lines[1], ";"))
	assert.True(t, strings.HasSuffix(lines[2], ";"))
}

func TestKeysAndValuesStayAligned(t *testing.T) {
	counts := core.Counts{"010": 1, "111": 2, "000": 3, "101": 4}
	r := NewRecord("b", time.Now(), counts)
	assert.Equal(t, len(r.Keys), len(r.Values))
	for i, k := range r.Keys {
		assert.Equal(t, counts[k], r.Values[i])
		if i > 0 {
			assert.Less(t, r.Keys[i-1], k)
		}
	}
}

func TestReportWritesNothingWithoutCounts(t *testing.T) {
	circ := &qasm.Circuit{Name: "no_measure"}
	circ.AddGate("H", 0, nil)
	result, err := core.NewResult("local_statevector",
		[]*qasm.Circuit{circ}, []*core.ExpData{{}})
	assert.Nil(t, err)

	var buf bytes.Buffer
	r := &Reporter{conf: &core.Conf{}, out: &buf}
	assert.Nil(t, r.Report(result))
	assert.Empty(t, buf.String())
}
