//go:build unit
// +build unit

package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/qjob-team/qjob/qasm"
	"github.com/stretchr/testify/assert"
)

func bellCircuit() *qasm.Circuit {
	c := &qasm.Circuit{}
	c.AddGate("H", 0, nil)
	c.AddGate("CX", 1, nil, 0)
	c.AddMeasure(0, 0)
	c.AddMeasure(1, 1)
	return c
}

func TestEvolveH(t *testing.T) {
	c := &qasm.Circuit{}
	c.AddGate("H", 0, nil)
	state := Evolve(c)
	assert.Equal(t, 2, len(state.Amplitudes))
	assert.InDelta(t, 1/math.Sqrt2, real(state.Amplitudes[0]), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, real(state.Amplitudes[1]), 1e-12)
}

func TestEvolveBellState(t *testing.T) {
	state := Evolve(bellCircuit())
	probs := state.Probabilities()
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.0, probs[1], 1e-12)
	assert.InDelta(t, 0.0, probs[2], 1e-12)
	assert.InDelta(t, 0.5, probs[3], 1e-12)
}

func TestSampleDeterministicX(t *testing.T) {
	c := &qasm.Circuit{}
	c.AddGate("X", 0, nil)
	c.AddMeasure(0, 0)
	counts, memory := Sample(c, 100, rand.New(rand.NewSource(1)))
	assert.Equal(t, 100, counts["1"])
	assert.Equal(t, 100, len(memory))
	assert.Equal(t, "1", memory[0])
}

func TestSampleBellOnlyCorrelatedOutcomes(t *testing.T) {
	counts, _ := Sample(bellCircuit(), 1024, rand.New(rand.NewSource(42)))
	total := 0
	for key, n := range counts {
		assert.Contains(t, []string{"00", "11"}, key)
		total += n
	}
	assert.Equal(t, 1024, total)
}

func TestSampleReproducibleUnderSeed(t *testing.T) {
	a, _ := Sample(bellCircuit(), 256, rand.New(rand.NewSource(7)))
	b, _ := Sample(bellCircuit(), 256, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestSampleNoMeasurement(t *testing.T) {
	c := &qasm.Circuit{}
	c.AddGate("H", 0, nil)
	counts, memory := Sample(c, 100, rand.New(rand.NewSource(1)))
	assert.Nil(t, counts)
	assert.Nil(t, memory)
}

func TestUnitaryOfX(t *testing.T) {
	c := &qasm.Circuit{}
	c.AddGate("X", 0, nil)
	u := Unitary(c)
	assert.Equal(t, 2, len(u))
	assert.InDelta(t, 0, real(u[0][0]), 1e-12)
	assert.InDelta(t, 1, real(u[0][1]), 1e-12)
	assert.InDelta(t, 1, real(u[1][0]), 1e-12)
	assert.InDelta(t, 0, real(u[1][1]), 1e-12)
}

func TestDensityMatrixTrace(t *testing.T) {
	rho := DensityMatrix(bellCircuit())
	trace := 0.0
	for i := range rho {
		trace += real(rho[i][i])
	}
	assert.InDelta(t, 1.0, trace, 1e-12)
}

func TestResetCollapsesQubit(t *testing.T) {
	c := &qasm.Circuit{}
	c.AddGate("X", 0, nil)
	c.AddGate("RESET", 0, nil)
	state := Evolve(c)
	probs := state.Probabilities()
	assert.InDelta(t, 0.0, probs[1], 1e-12)
}
