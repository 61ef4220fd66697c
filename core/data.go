package core

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/qjob-team/qjob/qasm"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Status is the lifecycle state of a submitted job.
type Status int

const (
	CREATED Status = iota
	SUBMITTED
	QUEUED
	RUNNING
	DONE
	CANCELLED
	FAILED
)

func (s Status) String() string {
	switch s {
	case CREATED:
		return "CREATED"
	case SUBMITTED:
		return "SUBMITTED"
	case QUEUED:
		return "QUEUED"
	case RUNNING:
		return "RUNNING"
	case DONE:
		return "DONE"
	case CANCELLED:
		return "CANCELLED"
	case FAILED:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further state transitions can occur.
func (s Status) IsTerminal() bool {
	return s == DONE || s == CANCELLED || s == FAILED
}

// ToStatus maps a provider status string onto the common lifecycle.
// Providers disagree on spelling, so the common aliases are folded in.
func ToStatus(s string) (Status, error) {
	switch s {
	case "created", "initializing":
		return CREATED, nil
	case "submitted", "validating":
		return SUBMITTED, nil
	case "queued", "pending", "ready":
		return QUEUED, nil
	case "running":
		return RUNNING, nil
	case "done", "completed", "succeeded":
		return DONE, nil
	case "cancelled", "canceled":
		return CANCELLED, nil
	case "failed", "error":
		return FAILED, nil
	default:
		return FAILED, fmt.Errorf("unknown status string:%s", s)
	}
}

// Counts maps classical bitstrings to how many shots produced them.
type Counts map[string]int

func (c Counts) String() string {
	b, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal counts. Reason:%s", err))
		return ""
	}
	return string(b)
}

// SortedKeys returns the bitstrings in lexical order. The report
// package relies on this ordering for stable CSV output.
func (c Counts) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TotalShots sums the counts over all bitstrings.
func (c Counts) TotalShots() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// RunParams carries the per-submission knobs shared by every provider.
type RunParams struct {
	Shots             int    `json:"shots"`
	OptimizationLevel int    `json:"optimization_level"`
	Memory            bool   `json:"memory"`
	Method            string `json:"method,omitempty"`
}

// ExpData is the measured output of one experiment within a job.
type ExpData struct {
	Counts      Counts            `json:"counts,omitempty"`
	Memory      []string          `json:"memory,omitempty"`
	Statevector []complex128      `json:"-"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasCounts reports whether any measurement was taken for this
// experiment. Circuits without measurements legitimately produce none.
func (e *ExpData) HasCounts() bool {
	return len(e.Counts) > 0
}

// Result holds the per-circuit outputs of one finished job. Experiment
// data is retrieved by the circuit that produced it, in submission
// order.
type Result struct {
	backendName string
	circuits    []*qasm.Circuit
	exps        []*ExpData
	index       map[*qasm.Circuit]int
}

// NewResult pairs circuits with their experiment data.
func NewResult(backendName string, circuits []*qasm.Circuit, exps []*ExpData) (*Result, error) {
	if len(circuits) != len(exps) {
		return nil, errors.Errorf("result has %d experiments for %d circuits", len(exps), len(circuits))
	}
	index := make(map[*qasm.Circuit]int, len(circuits))
	for i, c := range circuits {
		index[c] = i
	}
	return &Result{
		backendName: backendName,
		circuits:    circuits,
		exps:        exps,
		index:       index,
	}, nil
}

func (r *Result) BackendName() string {
	return r.backendName
}

// Circuits returns the circuits in submission order.
func (r *Result) Circuits() []*qasm.Circuit {
	return r.circuits
}

// Data returns the experiment data for one circuit of this result.
func (r *Result) Data(circ *qasm.Circuit) (*ExpData, error) {
	i, ok := r.index[circ]
	if !ok {
		return nil, errors.New("circuit is not part of this result")
	}
	return r.exps[i], nil
}

// GetCounts returns the counts for one circuit. An experiment with no
// measurements has no counts, which is reported as an error the caller
// downgrades to a warning.
func (r *Result) GetCounts(circ *qasm.Circuit) (Counts, error) {
	data, err := r.Data(circ)
	if err != nil {
		return nil, err
	}
	if !data.HasCounts() {
		return nil, errors.New("no counts for experiment, no measurement was taken")
	}
	return data.Counts, nil
}

// GetStatevector returns the final statevector for one circuit, when
// the backend produced one.
func (r *Result) GetStatevector(circ *qasm.Circuit) ([]complex128, error) {
	data, err := r.Data(circ)
	if err != nil {
		return nil, err
	}
	if len(data.Statevector) == 0 {
		return nil, errors.New("no statevector in experiment data")
	}
	return data.Statevector, nil
}

// ToMap renders the result as a plain map for JSON pretty printing.
func (r *Result) ToMap() map[string]interface{} {
	exps := make([]map[string]interface{}, 0, len(r.exps))
	for i, e := range r.exps {
		exp := map[string]interface{}{
			"name": r.circuits[i].Name,
		}
		if e.HasCounts() {
			exp["counts"] = e.Counts
		}
		if len(e.Memory) > 0 {
			exp["memory"] = e.Memory
		}
		if len(e.Statevector) > 0 {
			exp["statevector"] = statevectorStrings(e.Statevector)
		}
		if len(e.Metadata) > 0 {
			exp["metadata"] = e.Metadata
		}
		exps = append(exps, exp)
	}
	return map[string]interface{}{
		"backend_name": r.backendName,
		"experiments":  exps,
	}
}

func statevectorStrings(sv []complex128) []string {
	out := make([]string, len(sv))
	for i, a := range sv {
		out[i] = strconv.FormatComplex(a, 'g', 8, 128)
	}
	return out
}
