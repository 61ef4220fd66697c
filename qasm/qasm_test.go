//go:build unit
// +build unit

package qasm

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const bellSource = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

func TestParseBell(t *testing.T) {
	circ, err := Parse(bellSource)
	assert.Nil(t, err)
	assert.Equal(t, 2, circ.NumQubits)
	assert.Equal(t, 2, circ.NumClbits)
	assert.Equal(t, 4, len(circ.Gates))
	assert.Equal(t, "H", circ.Gates[0].Type)
	assert.Equal(t, "CX", circ.Gates[1].Type)
	assert.Equal(t, 0, circ.Gates[1].Control)
	assert.Equal(t, 1, circ.Gates[1].Target)
	assert.True(t, circ.HasMeasurement())
	assert.Equal(t, [][2]int{{0, 0}, {1, 1}}, circ.Measurements())
}

func TestParseMeasureAll(t *testing.T) {
	circ, err := Parse("qreg q[3];\ncreg c[3];\nh q[0];\nmeasure q -> c;\n")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(circ.Measurements()))
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		line     string
		expected float64
	}{
		{"rx(pi) q[0];", math.Pi},
		{"ry(pi/2) q[0];", math.Pi / 2},
		{"rz(-pi/4) q[0];", -math.Pi / 4},
		{"rz(0.5) q[0];", 0.5},
		{"p(2*pi) q[0];", 2 * math.Pi},
	}
	for _, tt := range tests {
		circ, err := Parse("qreg q[1];\n" + tt.line)
		assert.Nil(t, err, tt.line)
		assert.InDelta(t, tt.expected, circ.Gates[0].Params[0], 1e-12, tt.line)
	}
}

func TestParseRejectsUnknownGate(t *testing.T) {
	_, err := Parse("qreg q[1];\nfoo q[0];\n")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unsupported gate")
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("qreg q[1];\nthis is not qasm\n")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestToQASMRoundTrip(t *testing.T) {
	circ, err := Parse(bellSource)
	assert.Nil(t, err)
	echoed := circ.ToQASM()
	again, err := Parse(echoed)
	assert.Nil(t, err)
	assert.Equal(t, circ.NumQubits, again.NumQubits)
	assert.Equal(t, len(circ.Gates), len(again.Gates))
	assert.True(t, strings.HasPrefix(echoed, "OPENQASM 2.0;"))
	assert.Contains(t, echoed, "cx q[0],q[1];")
}

func TestAddGateGrowsRegisters(t *testing.T) {
	circ := &Circuit{}
	circ.AddGate("H", 2, nil)
	assert.Equal(t, 3, circ.NumQubits)
	circ.AddMeasure(2, 4)
	assert.Equal(t, 5, circ.NumClbits)
}
