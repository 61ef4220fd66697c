// Package report renders finished results: semicolon-delimited CSV
// records, raw memory and statevector dumps, and figure files.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one reportable experiment: a description line plus the
// sorted bitstring keys and their aligned counts.
type Record struct {
	Description string
	Keys        []string
	Values      []int
}

// NewRecord builds the record for one experiment. No counts means no
// record; the caller reports that circumstance separately.
func NewRecord(backendName string, at time.Time, counts core.Counts) *Record {
	if len(counts) == 0 {
		return nil
	}
	keys := counts.SortedKeys()
	values := make([]int, len(keys))
	for i, k := range keys {
		values[i] = counts[k]
	}
	return &Record{
		Description: fmt.Sprintf("%s %s", backendName, at.Format(time.RFC3339)),
		Keys:        keys,
		Values:      values,
	}
}

// CSVLines renders the record as exactly three lines, each field
// followed by a semicolon.
func (r *Record) CSVLines() []string {
	var keys, values strings.Builder
	for _, k := range r.Keys {
		keys.WriteString(k)
		keys.WriteString(";")
	}
	for _, v := range r.Values {
		values.WriteString(strconv.Itoa(v))
		values.WriteString(";")
	}
	return []string{r.Description, keys.String(), values.String()}
}

// Reporter writes the run's output to the configured destination.
type Reporter struct {
	conf *core.Conf
	out  io.Writer
	file *os.File
}

func NewReporter(conf *core.Conf) (*Reporter, error) {
	r := &Reporter{conf: conf, out: os.Stdout}
	if conf.Outfile != "" {
		f, err := os.Create(conf.Outfile)
		if err != nil {
			return nil, core.NewRuntimeError(err, "failed to open outfile %s", conf.Outfile)
		}
		r.out = f
		r.file = f
	}
	return r, nil
}

func (r *Reporter) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Report writes everything requested for one result, circuit by
// circuit in submission order.
func (r *Reporter) Report(result *core.Result) error {
	if r.conf.Result {
		b, err := jsonIter.Marshal(result.ToMap())
		if err != nil {
			return core.NewRuntimeError(err, "failed to marshal result")
		}
		fmt.Fprintf(r.out, "%s", pretty.Pretty(b))
	}
	for _, circ := range result.Circuits() {
		if err := r.reportCircuit(result, circ); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) reportCircuit(result *core.Result, circ *qasm.Circuit) error {
	if r.conf.Echo {
		fmt.Fprintln(r.out, circ.ToQASM())
	}
	data, err := result.Data(circ)
	if err != nil {
		return core.NewRuntimeError(err, "result has no data for circuit %s", circ.Name)
	}
	if r.conf.Memory && len(data.Memory) > 0 {
		fmt.Fprintf(r.out, "Memory: %v\n", data.Memory)
	}
	if r.conf.Verbosity() >= 1 {
		if sv, err := result.GetStatevector(circ); err == nil {
			r.dumpStatevector(sv)
		}
	}

	counts, err := result.GetCounts(circ)
	if err != nil {
		// Circuits without measurements have nothing to tabulate.
		zap.L().Warn(fmt.Sprintf("no output for circuit %s. Reason:%s", circ.Name, err))
		return r.figures(result, circ, nil)
	}
	record := NewRecord(result.BackendName(), time.Now().UTC(), counts)
	for _, line := range record.CSVLines() {
		fmt.Fprintln(r.out, line)
	}
	return r.figures(result, circ, counts)
}

func (r *Reporter) dumpStatevector(sv []complex128) {
	fmt.Fprintln(r.out, "Statevector:")
	for i, a := range sv {
		fmt.Fprintf(r.out, "%s: %s\n", basisLabel(i, len(sv)), strconv.FormatComplex(a, 'g', 8, 128))
	}
}

func basisLabel(i, dim int) string {
	bits := 0
	for d := dim; d > 1; d >>= 1 {
		bits++
	}
	return fmt.Sprintf("|%0*b>", bits, i)
}

func (r *Reporter) figures(result *core.Result, circ *qasm.Circuit, counts core.Counts) error {
	if r.conf.Histogram && len(counts) > 0 {
		path, err := HistogramFile(r.conf.FigureBasename, result.BackendName(), counts)
		if err != nil {
			return err
		}
		zap.L().Info(fmt.Sprintf("wrote histogram %s", path))
	}
	if r.conf.PlotStateCity {
		sv, err := result.GetStatevector(circ)
		if err != nil {
			zap.L().Warn(fmt.Sprintf("no statevector for circuit %s, skipping state city", circ.Name))
			return nil
		}
		path, err := StateCityFile(r.conf.FigureBasename, result.BackendName(), sv)
		if err != nil {
			return err
		}
		zap.L().Info(fmt.Sprintf("wrote state city %s", path))
	}
	return nil
}
