// Package qasm holds the circuit model and a small OpenQASM 2 parser.
// The parser covers the single-register subset qjob submits: one qreg,
// one creg, the common gate set, barriers, and measurements.
package qasm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+q\[(\d+)\]\s*;?$`)
	twoQubitRegex   = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\]\s*,\s*q\[(\d+)\]\s*;?$`)
	measureRegex    = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*c\[(\d+)\]\s*;?$`)
	measureAllRegex = regexp.MustCompile(`^measure\s+q\s*->\s*c\s*;?$`)
	qregRegex       = regexp.MustCompile(`^qreg\s+q\[(\d+)\]\s*;?$`)
	cregRegex       = regexp.MustCompile(`^creg\s+c\[(\d+)\]\s*;?$`)
	barrierRegex    = regexp.MustCompile(`^barrier\b`)
)

// Gate represents one operation in the circuit.
type Gate struct {
	Type    string    // upper-cased mnemonic, MEASURE and BARRIER included
	Target  int
	Control int // -1 if not a controlled gate
	Clbit   int // -1 unless Type is MEASURE
	Params  []float64
}

// Circuit is the unit of work submitted to a backend. Immutable once
// the loader hands it out.
type Circuit struct {
	Name      string
	NumQubits int
	NumClbits int
	Gates     []Gate
}

// AddGate appends a gate, growing the qubit count as needed.
func (c *Circuit) AddGate(gateType string, target int, params []float64, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: ctrl,
		Clbit:   -1,
		Params:  params,
	})
	c.growQubits(target, ctrl)
}

// AddMeasure appends a measurement of one qubit into one classical bit.
func (c *Circuit) AddMeasure(qubit, clbit int) {
	c.Gates = append(c.Gates, Gate{
		Type:    "MEASURE",
		Target:  qubit,
		Control: -1,
		Clbit:   clbit,
	})
	c.growQubits(qubit, -1)
	if clbit >= c.NumClbits {
		c.NumClbits = clbit + 1
	}
}

func (c *Circuit) growQubits(qubits ...int) {
	for _, q := range qubits {
		if q >= c.NumQubits {
			c.NumQubits = q + 1
		}
	}
}

// HasMeasurement reports whether any measurement instruction exists.
func (c *Circuit) HasMeasurement() bool {
	for _, g := range c.Gates {
		if g.Type == "MEASURE" {
			return true
		}
	}
	return false
}

// Measurements returns the (qubit, clbit) pairs in program order.
func (c *Circuit) Measurements() [][2]int {
	var pairs [][2]int
	for _, g := range c.Gates {
		if g.Type == "MEASURE" {
			pairs = append(pairs, [2]int{g.Target, g.Clbit})
		}
	}
	return pairs
}

// ToQASM generates OpenQASM 2.0 output from the circuit. This is the
// echo form used by the reporter and the transpile preview.
func (c *Circuit) ToQASM() string {
	numQubits := c.NumQubits
	if numQubits < 1 {
		numQubits = 1
	}
	numClbits := c.NumClbits

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	if numClbits > 0 {
		fmt.Fprintf(&sb, "creg c[%d];\n", numClbits)
	}
	for _, g := range c.Gates {
		switch {
		case g.Type == "MEASURE":
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", g.Target, g.Clbit)
		case g.Type == "BARRIER":
			sb.WriteString("barrier q;\n")
		case g.Control >= 0:
			fmt.Fprintf(&sb, "%s q[%d],q[%d];\n", strings.ToLower(g.Type), g.Control, g.Target)
		case len(g.Params) > 0:
			fmt.Fprintf(&sb, "%s(%s) q[%d];\n", strings.ToLower(g.Type), paramList(g.Params), g.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", strings.ToLower(g.Type), g.Target)
		}
	}
	return sb.String()
}

func paramList(params []float64) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Parse parses OpenQASM 2 text into a Circuit.
func Parse(source string) (*Circuit, error) {
	circ := &Circuit{}
	lines := strings.Split(source, "\n")
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if matches := qregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[1])
			if size > circ.NumQubits {
				circ.NumQubits = size
			}
			continue
		}
		if matches := cregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[1])
			if size > circ.NumClbits {
				circ.NumClbits = size
			}
			continue
		}
		if measureAllRegex.MatchString(line) {
			for q := 0; q < circ.NumQubits; q++ {
				circ.AddMeasure(q, q)
			}
			continue
		}
		if matches := measureRegex.FindStringSubmatch(line); matches != nil {
			qubit, _ := strconv.Atoi(matches[1])
			clbit, _ := strconv.Atoi(matches[2])
			circ.AddMeasure(qubit, clbit)
			continue
		}
		if barrierRegex.MatchString(line) {
			circ.Gates = append(circ.Gates, Gate{Type: "BARRIER", Target: -1, Control: -1, Clbit: -1})
			continue
		}
		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			qubit1, _ := strconv.Atoi(matches[2])
			qubit2, _ := strconv.Atoi(matches[3])
			if !knownTwoQubitGate(gateType) {
				return nil, fmt.Errorf("line %d: unsupported gate %q", n+1, matches[1])
			}
			circ.AddGate(gateType, qubit2, nil, qubit1)
			continue
		}
		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			params, err := parseParams(matches[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", n+1, err)
			}
			target, _ := strconv.Atoi(matches[3])
			if !knownSingleQubitGate(gateType) {
				return nil, fmt.Errorf("line %d: unsupported gate %q", n+1, matches[1])
			}
			circ.AddGate(gateType, target, params)
			continue
		}
		return nil, fmt.Errorf("line %d: cannot parse %q", n+1, line)
	}
	if circ.NumQubits == 0 {
		return nil, fmt.Errorf("no qreg declaration and no gates in source")
	}
	return circ, nil
}

func knownSingleQubitGate(t string) bool {
	switch t {
	case "H", "X", "Y", "Z", "S", "SDG", "T", "TDG", "ID", "RX", "RY", "RZ", "P", "U1", "RESET":
		return true
	}
	return false
}

func knownTwoQubitGate(t string) bool {
	switch t {
	case "CX", "CZ", "SWAP":
		return true
	}
	return false
}

// parseParams parses the parenthesized parameter list of a gate.
// "pi" and simple "pi/N", "N*pi" forms are accepted since OpenQASM
// sources use them heavily.
func parseParams(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	params := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseParamExpr(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}
	return params, nil
}

func parseParamExpr(s string) (float64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	var v float64
	switch {
	case s == "pi":
		v = math.Pi
	case strings.HasPrefix(s, "pi/"):
		d, err := strconv.ParseFloat(strings.TrimPrefix(s, "pi/"), 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("invalid parameter %q", s)
		}
		v = math.Pi / d
	case strings.HasSuffix(s, "*pi"):
		m, err := strconv.ParseFloat(strings.TrimSuffix(s, "*pi"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid parameter %q", s)
		}
		v = m * math.Pi
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid parameter %q", s)
		}
		v = f
	}
	if neg {
		v = -v
	}
	return v, nil
}
