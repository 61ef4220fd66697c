package loader

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/qjob-team/qjob/qasm"
)

const scriptTimeout = 10 * time.Second

// ScriptCircuit is the builder handed to circuit-construction scripts.
// Method names appear uncapitalized in the script.
type ScriptCircuit struct {
	circ *qasm.Circuit
}

func (s *ScriptCircuit) H(q int) { s.circ.AddGate("H", q, nil) }
func (s *ScriptCircuit) X(q int) { s.circ.AddGate("X", q, nil) }
func (s *ScriptCircuit) Y(q int) { s.circ.AddGate("Y", q, nil) }
func (s *ScriptCircuit) Z(q int) { s.circ.AddGate("Z", q, nil) }
func (s *ScriptCircuit) S(q int) { s.circ.AddGate("S", q, nil) }
func (s *ScriptCircuit) Sdg(q int) { s.circ.AddGate("SDG", q, nil) }
func (s *ScriptCircuit) T(q int) { s.circ.AddGate("T", q, nil) }
func (s *ScriptCircuit) Tdg(q int) { s.circ.AddGate("TDG", q, nil) }
func (s *ScriptCircuit) Rx(theta float64, q int) { s.circ.AddGate("RX", q, []float64{theta}) }
func (s *ScriptCircuit) Ry(theta float64, q int) { s.circ.AddGate("RY", q, []float64{theta}) }
func (s *ScriptCircuit) Rz(theta float64, q int) { s.circ.AddGate("RZ", q, []float64{theta}) }
func (s *ScriptCircuit) P(theta float64, q int) { s.circ.AddGate("P", q, []float64{theta}) }
func (s *ScriptCircuit) Cx(control, target int) { s.circ.AddGate("CX", target, nil, control) }
func (s *ScriptCircuit) Cz(control, target int) { s.circ.AddGate("CZ", target, nil, control) }
func (s *ScriptCircuit) Swap(q1, q2 int) { s.circ.AddGate("SWAP", q2, nil, q1) }
func (s *ScriptCircuit) Reset(q int) { s.circ.AddGate("RESET", q, nil) }
func (s *ScriptCircuit) Measure(q, c int) { s.circ.AddMeasure(q, c) }

func (s *ScriptCircuit) MeasureAll() {
	for q := 0; q < s.circ.NumQubits; q++ {
		s.circ.AddMeasure(q, q)
	}
}

func (s *ScriptCircuit) Barrier() {
	s.circ.Gates = append(s.circ.Gates, qasm.Gate{Type: "BARRIER", Target: -1, Control: -1, Clbit: -1})
}

// EvalScript runs a circuit-construction script in an isolated VM and
// extracts the named circuit binding. Scripts are trusted input, the
// same trust as any file submitted for execution, but a runaway loop
// is still interrupted.
func EvalScript(src, name string) (*qasm.Circuit, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	err := vm.Set("newCircuit", func(qubits, clbits int) *ScriptCircuit {
		return &ScriptCircuit{circ: &qasm.Circuit{NumQubits: qubits, NumClbits: clbits}}
	})
	if err != nil {
		return nil, err
	}

	timer := time.AfterFunc(scriptTimeout, func() {
		vm.Interrupt(fmt.Sprintf("script ran longer than %s", scriptTimeout))
	})
	defer timer.Stop()

	if _, err := vm.RunString(src); err != nil {
		return nil, err
	}
	val := vm.Get(name)
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, fmt.Errorf("script defines no binding named %q", name)
	}
	sc, ok := val.Export().(*ScriptCircuit)
	if !ok {
		return nil, fmt.Errorf("binding %q is not a circuit", name)
	}
	sc.circ.Name = name
	return sc.circ, nil
}
