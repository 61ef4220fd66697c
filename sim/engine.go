package sim

import (
	"math/rand"

	"github.com/qjob-team/qjob/qasm"
)

// Sample evolves the circuit and draws shots from the final
// distribution. It returns the aggregated counts and the per-shot
// memory, both keyed by classical bitstrings with clbit 0 rightmost.
// Circuits without measurements yield nil counts and memory.
func Sample(circ *qasm.Circuit, shots int, rng *rand.Rand) (map[string]int, []string) {
	if !circ.HasMeasurement() {
		return nil, nil
	}
	state := Evolve(circ)
	probs := state.Probabilities()
	pairs := circ.Measurements()

	numClbits := circ.NumClbits
	counts := make(map[string]int)
	memory := make([]string, 0, shots)
	for s := 0; s < shots; s++ {
		basis := drawBasisState(probs, rng)
		bits := make([]byte, numClbits)
		for i := range bits {
			bits[i] = '0'
		}
		for _, p := range pairs {
			qubit, clbit := p[0], p[1]
			if basis&(1<<qubit) != 0 {
				bits[numClbits-1-clbit] = '1'
			}
		}
		key := string(bits)
		counts[key]++
		memory = append(memory, key)
	}
	return counts, memory
}

func drawBasisState(probs []float64, rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r < acc {
			return i
		}
	}
	// Floating point slack leaves r just above the accumulated sum.
	return len(probs) - 1
}

// Unitary builds the full circuit unitary column by column, one basis
// state at a time. Exponential in qubit count, same as the statevector.
func Unitary(circ *qasm.Circuit) [][]Complex {
	numQubits := circ.NumQubits
	if numQubits == 0 {
		numQubits = 1
	}
	n := 1 << numQubits
	u := make([][]Complex, n)
	for i := range u {
		u[i] = make([]Complex, n)
	}
	for col := 0; col < n; col++ {
		state := NewStateVector(numQubits)
		for i := range state.Amplitudes {
			state.Amplitudes[i] = 0
		}
		state.Amplitudes[col] = 1
		for _, g := range circ.Gates {
			state.ApplyGate(g)
		}
		for row := 0; row < n; row++ {
			u[row][col] = state.Amplitudes[row]
		}
	}
	return u
}

// DensityMatrix computes the pure-state density matrix of the final
// state, the outer product of the statevector with its conjugate.
func DensityMatrix(circ *qasm.Circuit) [][]Complex {
	state := Evolve(circ)
	n := len(state.Amplitudes)
	rho := make([][]Complex, n)
	for i := 0; i < n; i++ {
		rho[i] = make([]Complex, n)
		for j := 0; j < n; j++ {
			rho[i][j] = state.Amplitudes[i] * conj(state.Amplitudes[j])
		}
	}
	return rho
}

func conj(c Complex) Complex {
	return complex(real(c), -imag(c))
}
